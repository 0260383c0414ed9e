// Command jarvis is the command-line front end of the agent.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/0xcro3dile/jarvis-go/internal/app"
	"github.com/0xcro3dile/jarvis-go/internal/config"
)

// Version is overridden at link time with -ldflags "-X main.Version=...".
var Version = "dev"

var (
	cfgFile    string
	verbose    bool
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "jarvis",
	Short: "Jarvis - LLM code-generation and repair agent",
	Long: `Jarvis builds small projects (static websites, REST APIs, CLI tools) from a
natural-language request, and diagnoses and repairs existing projects.

Configuration:
  The agent reads, in order of precedence:
  1. JARVIS_* environment variables (e.g. JARVIS_LLM_MODEL)
  2. --config flag (explicit path), or ./jarvis.yaml
  3. built-in defaults

Every modification of an existing project is preceded by a backup and is
confined to security.allowed_directories.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./jarvis.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print raw JSON results")

	rootCmd.AddCommand(requestCmd, buildCmd, fixCmd, analyzeCmd, diagnoseCmd, refactorCmd)
	rootCmd.AddCommand(askCmd, learnCmd, deployCmd)
	rootCmd.AddCommand(serveCmd, mcpCmd, reindexCmd, watchCmd)
	rootCmd.AddCommand(configCmd, versionCmd)

	configCmd.AddCommand(configInitCmd, configShowCmd, configValidateCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, styles.err.Render("Erreur : ")+err.Error())
		os.Exit(1)
	}
}

// openApp loads the configuration and wires the agent.
func openApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	return app.New(ctx, cfg, app.Options{})
}

// withApp runs fn against a wired agent and releases it afterwards.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "jarvis %s\n", Version)
	},
}
