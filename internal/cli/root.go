// Package cli wires the quorum commands: serve, ask, modes, conversations,
// config, version.
package cli

import (
	"fmt"
	"os"

	"github.com/Dicklesworthstone/quorum/internal/config"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config

	// Build information - set by goreleaser via ldflags
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "quorum",
	Short: "Quorum - multi-model deliberation engine",
	Long: `Quorum asks several LLMs the same question and makes them deliberate:
debate, vote, cross-examine, or synthesize until one answer remains.

Quick Start:
  quorum ask "should we shard the database?"     # Council mode, default roster
  quorum ask --mode vote "tabs or spaces?"       # Blind vote with chairman tiebreak
  quorum ask --mode redteam "review this plan"   # Adversarial review
  quorum modes                                   # List all fifteen modes
  quorum serve                                   # HTTP API with SSE streaming

Configuration lives at ~/.config/quorum/config.toml (quorum config init).
Set QUORUM_API_KEY for the model gateway.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "completion" {
			return nil
		}
		cfg = config.LoadOrDefault(cfgFile)
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.config/quorum/config.toml)")

	rootCmd.AddCommand(
		newAskCmd(),
		newServeCmd(),
		newModesCmd(),
		newConversationsCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
}

func newVersionCmd() *cobra.Command {
	var short bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			if short {
				fmt.Println(Version)
				return
			}
			fmt.Printf("quorum version %s\n", Version)
			fmt.Printf("  commit: %s\n", Commit)
			fmt.Printf("  built:  %s\n", Date)
		},
	}
	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print only version number")
	return cmd
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.CreateDefault()
			if err != nil {
				return err
			}
			fmt.Printf("Created config file: %s\n", path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print configuration file path",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(config.DefaultPath())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load(cfgFile)
			if err != nil {
				c = config.Default()
				fmt.Println("# Using default configuration (no config file found)")
				fmt.Println()
			}
			return config.Print(c, os.Stdout)
		},
	})

	return cmd
}
