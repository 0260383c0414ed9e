package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/0xcro3dile/jarvis-go/internal/app"
	"github.com/0xcro3dile/jarvis-go/internal/domain/usecases"
)

var requestCmd = &cobra.Command{
	Use:   "request <text>",
	Short: "Classify a free-form request and route it",
	Long: `Classifies the request as build, fix or question. Build requests are
generated into the projects directory; questions are answered; fix requests
need a project path and must go through 'jarvis fix'.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			result := a.Agent.ProcessRequest(ctx, strings.Join(args, " "))
			return printRequest(cmd.OutOrStdout(), result)
		})
	},
}

var buildOutput string

var buildCmd = &cobra.Command{
	Use:   "build <description>",
	Short: "Generate a new project from a description",
	Example: `  jarvis build "Crée un site web pour un photographe"
  jarvis build -o ./api "Crée une API de gestion de tâches"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			return printBuild(cmd.OutOrStdout(), a.Agent.Build(ctx, strings.Join(args, " "), buildOutput))
		})
	},
}

var fixCmd = &cobra.Command{
	Use:   "fix <project-path> <description>",
	Short: "Diagnose and repair an issue in a project",
	Long: `Analyzes the project, backs it up (when security.backup_before_modification
is set), asks for a diagnosis and rewrites every affected file. The fix is
recorded as a solution in the knowledge base.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			return printFix(cmd.OutOrStdout(), a.Agent.Fix(ctx, args[0], strings.Join(args[1:], " ")))
		})
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <project-path>",
	Short: "Describe a project: type, files, dependencies, languages",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(_ context.Context, a *app.App) error {
			return printAnalysis(cmd.OutOrStdout(), a.Agent.Analyze(args[0]))
		})
	},
}

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose <project-path> <description>",
	Short: "Diagnose an issue without modifying anything",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			return printDiagnosis(cmd.OutOrStdout(), a.Agent.Diagnose(ctx, args[0], strings.Join(args[1:], " ")))
		})
	},
}

var refactorObjective string

var refactorCmd = &cobra.Command{
	Use:   "refactor <file>",
	Short: "Rewrite a file toward an objective",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			return printRefactor(cmd.OutOrStdout(), a.Agent.Refactor(ctx, args[0], refactorObjective))
		})
	},
}

var (
	askContext string
	askStream  bool
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a development question",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.Join(args, " ")
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			out := cmd.OutOrStdout()
			if askStream {
				tokens, err := a.Agent.AskStream(ctx, question, askContext)
				if err != nil {
					return err
				}
				for tok := range tokens {
					if tok.Error != nil {
						return tok.Error
					}
					fmt.Fprint(out, tok.Content)
					if tok.Done {
						break
					}
				}
				fmt.Fprintln(out)
				return nil
			}

			answer, err := a.Agent.Ask(ctx, question, askContext)
			if err != nil {
				return err
			}
			return printAnswer(out, answer)
		})
	},
}

var (
	learnType string
	learnTags []string
)

var learnCmd = &cobra.Command{
	Use:     "learn <content>",
	Short:   "Store knowledge in the knowledge base",
	Example: `  jarvis learn --tags python,imports "Problème: ModuleNotFoundError Solution: ajouter __init__.py"`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			id, err := a.Agent.Learn(ctx, strings.Join(args, " "), learnType, learnTags)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), map[string]any{"success": true, "id": id})
			}
			fmt.Fprintln(cmd.OutOrStdout(), styles.ok.Render("✓ Connaissance sauvegardée : ")+id)
			return nil
		})
	},
}

var (
	deployMethod  string
	deployOptions map[string]string
)

var deployCmd = &cobra.Command{
	Use:   "deploy <project-path>",
	Short: "Deploy a built project",
	Long: fmt.Sprintf(`Hands the project to the configured deployer.
Supported methods: %s.`, strings.Join(usecases.DeployMethods, ", ")),
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			opts := make(map[string]any, len(deployOptions))
			for k, v := range deployOptions {
				opts[k] = v
			}
			return printDeploy(cmd.OutOrStdout(), a.Agent.Deploy(ctx, args[0], deployMethod, opts))
		})
	},
}

func init() {
	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "", "output directory (default <projects_dir>/<project_name>)")
	refactorCmd.Flags().StringVar(&refactorObjective, "objective", usecases.DefaultRefactorObjective, "refactoring objective")
	askCmd.Flags().StringVar(&askContext, "context", "", "extra context for the question")
	askCmd.Flags().BoolVar(&askStream, "stream", false, "stream the answer as it is generated")
	learnCmd.Flags().StringVar(&learnType, "type", "solution", "knowledge type: solution, template or pattern")
	learnCmd.Flags().StringSliceVar(&learnTags, "tags", nil, "comma-separated tags")
	deployCmd.Flags().StringVar(&deployMethod, "method", "ssh", "deployment method")
	deployCmd.Flags().StringToStringVar(&deployOptions, "opt", nil, "method option as key=value (repeatable)")
}
