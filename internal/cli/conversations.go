package cli

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/quorum/internal/state"
)

func newConversationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "conversations",
		Aliases: []string{"conv"},
		Short:   "Browse saved conversations",
	}

	cmd.AddCommand(newConversationsListCmd())
	cmd.AddCommand(newConversationsShowCmd())
	cmd.AddCommand(newConversationsDeleteCmd())
	return cmd
}

func newConversationsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List conversations, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			list, err := store.ListConversations()
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Println("No conversations yet. Start one with: quorum ask \"...\"")
				return nil
			}
			fmt.Print(conversationsTable(list, stdoutIsTTY()))
			return nil
		},
	}
}

func newConversationsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one conversation with its messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			c, err := store.GetConversation(args[0])
			if err != nil {
				return err
			}
			if c == nil {
				return fmt.Errorf("conversation %s not found", args[0])
			}

			tty := stdoutIsTTY()
			title := fmt.Sprintf("%s  [%s]", c.Title, c.Mode)
			if tty {
				title = styleHeading.Render(title)
			}
			fmt.Println(title)
			for _, m := range c.Messages {
				fmt.Println()
				header := fmt.Sprintf("── %s · %s", m.Role, m.CreatedAt.Format("2006-01-02 15:04"))
				if len(m.Stages) > 0 {
					header += fmt.Sprintf(" · %d stages", len(m.Stages))
				}
				if tty {
					header = stylePhase.Render(header)
				}
				fmt.Println(header)
				if m.Role == "assistant" {
					fmt.Println(renderMarkdown(m.Content))
				} else {
					fmt.Println(m.Content)
				}
			}
			return nil
		},
	}
}

func newConversationsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a conversation and its messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.DeleteConversation(args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted conversation %s\n", args[0])
			return nil
		},
	}
}

func conversationsTable(list []state.Conversation, color bool) string {
	headers := []string{"ID", "TITLE", "MODE", "UPDATED"}
	rows := make([][]string, 0, len(list))
	for _, c := range list {
		title := c.Title
		if r := []rune(title); len(r) > 40 {
			title = string(r[:39]) + "…"
		}
		rows = append(rows, []string{
			c.ID, title, c.Mode, c.UpdatedAt.Format("2006-01-02 15:04"),
		})
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	for i, h := range headers {
		cell := padCell(h, widths[i])
		if color {
			cell = styleHeading.Render(cell)
		}
		b.WriteString(cell)
		if i < len(headers)-1 {
			b.WriteString("  ")
		}
	}
	b.WriteString("\n")
	for _, row := range rows {
		for i, cell := range row {
			b.WriteString(padCell(cell, widths[i]))
			if i < len(row)-1 {
				b.WriteString("  ")
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}
