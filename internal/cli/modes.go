package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/quorum/internal/modes"
)

func newModesCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "modes",
		Short: "List the deliberation modes",
		Long: `List all fifteen deliberation modes with their model-count bounds,
special roles, and multi-turn support.

Examples:
  quorum modes          # Table
  quorum modes --json   # Machine-readable registry dump`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(modes.Registry)
			}
			fmt.Print(modesTable(modes.Registry, stdoutIsTTY()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output registry as JSON")
	return cmd
}

// modesTable formats the registry as an aligned table.
func modesTable(registry []modes.Definition, color bool) string {
	headers := []string{"MODE", "NAME", "FAMILY", "MODELS", "SPECIAL ROLE", "MULTI-TURN"}
	rows := make([][]string, 0, len(registry))
	for _, d := range registry {
		role := d.SpecialRole
		if role == "" {
			role = "-"
		}
		multi := "no"
		if d.SupportsMultiTurn {
			multi = "yes"
		}
		rows = append(rows, []string{
			d.ID, d.Name, d.Family,
			fmt.Sprintf("%d-%d", d.MinModels, d.MaxModels),
			role, multi,
		})
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := len(cell); w > widths[i] {
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
