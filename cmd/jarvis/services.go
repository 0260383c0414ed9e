package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/0xcro3dile/jarvis-go/internal/app"
	httpserver "github.com/0xcro3dile/jarvis-go/internal/infrastructure/http"
	mcpserver "github.com/0xcro3dile/jarvis-go/internal/infrastructure/mcp"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			addr := serveAddr
			if addr == "" {
				addr = a.Config.Server.Addr
			}
			fmt.Fprintln(cmd.ErrOrStderr(), styles.title.Render("Jarvis API")+" on "+addr)
			return httpserver.NewServer(a.Agent, addr, a.Logger.Component("http")).
				AllowOrigins(a.Config.Server.AllowedOrigins...).
				Start(ctx)
		})
	},
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the agent as MCP tools over stdio",
	Long: `Starts a Model Context Protocol server on stdin/stdout exposing
jarvis_build, jarvis_fix, jarvis_analyze, jarvis_refactor, jarvis_ask and
jarvis_learn. Logs go to stderr or the configured log file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(_ context.Context, a *app.App) error {
			return mcpserver.Serve(mcpserver.NewServer(a.Agent, Version))
		})
	},
}

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the vector index from the knowledge-base records",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if !a.Store.Semantic() {
				fmt.Fprintln(cmd.OutOrStdout(), styles.muted.Render("vector index disabled, nothing to rebuild"))
				return nil
			}
			stats, err := a.Agent.Reindex(ctx)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), stats)
			}
			fmt.Fprintln(cmd.OutOrStdout(), styles.ok.Render(fmt.Sprintf(
				"✓ %d templates, %d solutions indexed (%d failed)",
				stats.Templates, stats.Solutions, stats.Failed)))
			return nil
		})
	},
}

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild the vector index whenever knowledge-base records change",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if !a.Store.Semantic() {
				return fmt.Errorf("knowledge_base.vector_db_enabled is false, nothing to watch")
			}
			w, err := a.NewWatcher()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), styles.title.Render("Watching ")+a.Store.Path())
			return a.Store.Watch(ctx, w, watchDebounce)
		})
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default server.addr)")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 2*time.Second, "quiet period before re-indexing")
}
