package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/0xcro3dile/jarvis-go/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a configuration file with the default values",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.DefaultFileName
		if len(args) == 1 {
			path = args[0]
		}
		if err := config.Template().WriteFile(path); err != nil {
			return err
		}
		abs, _ := filepath.Abs(path)
		fmt.Fprintln(cmd.OutOrStdout(), styles.ok.Render("✓ Configuration created at ")+abs)
		fmt.Fprintln(cmd.OutOrStdout(), styles.muted.Render("Values can be overridden with JARVIS_* variables, e.g. JARVIS_LLM_API_KEY."))
		fmt.Fprintln(cmd.OutOrStdout(), styles.muted.Render(backupDirHint))
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		shown := *cfg
		shown.LLM.APIKey = mask(cfg.LLM.APIKey)
		shown.KnowledgeBase.Embedding.APIKey = mask(cfg.KnowledgeBase.Embedding.APIKey)

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), shown)
		}
		data, err := yaml.Marshal(&shown)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), styles.muted.Render("# base dir: "+cfg.BaseDir))
		fmt.Fprint(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			fmt.Fprintln(cmd.OutOrStdout(), styles.err.Render("✗ Configuration is invalid"))
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), styles.ok.Render("✓ Configuration is valid"))
		if cfg.LLM.Provider == "openai" && cfg.LLM.APIKey == "" && os.Getenv("OPENAI_API_KEY") == "" {
			fmt.Fprintln(cmd.OutOrStdout(), styles.muted.Render("  llm.api_key is empty; set JARVIS_LLM_API_KEY or OPENAI_API_KEY"))
		}
		if cfg.Security.BackupBeforeModification && cfg.Security.BackupDir == "" {
			fmt.Fprintln(cmd.OutOrStdout(), styles.muted.Render("  "+backupDirHint))
		}
		return nil
	},
}

// Backups default to a sibling of the project, which can sit outside the allow-list.
const backupDirHint = "security.backup_dir is empty: backups are written next to each project. Set it to keep them in one place."

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "********"
}
