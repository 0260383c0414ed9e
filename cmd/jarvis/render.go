package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/0xcro3dile/jarvis-go/internal/domain/entities"
)

const wordWrap = 100

var styles = struct {
	title lipgloss.Style
	label lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	muted lipgloss.Style
	box   lipgloss.Style
}{
	title: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
	label: lipgloss.NewStyle().Bold(true).Width(14),
	ok:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
	err:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
	muted: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("12")).
		Padding(0, 1),
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func field(w io.Writer, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintln(w, styles.label.Render(label)+value)
}

func list(w io.Writer, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintln(w, styles.label.Render(label))
	for _, it := range items {
		fmt.Fprintln(w, "  • "+it)
	}
}

// status prints the success or failure banner and reports whether to go on.
func status(w io.Writer, success bool, okMsg, errMsg string) bool {
	if success {
		fmt.Fprintln(w, styles.ok.Render("✓ "+okMsg))
		return true
	}
	fmt.Fprintln(w, styles.err.Render("✗ "+errMsg))
	return false
}

// renderMarkdown falls back to the raw text when the terminal renderer fails.
func renderMarkdown(content string) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wordWrap),
	)
	if err != nil {
		return content
	}
	out, err := r.Render(content)
	if err != nil {
		return content
	}
	return out
}

func printAnswer(w io.Writer, answer string) error {
	if jsonOutput {
		return printJSON(w, map[string]any{"success": true, "answer": answer})
	}
	fmt.Fprint(w, renderMarkdown(answer))
	return nil
}

func printBuild(w io.Writer, r *entities.BuildResult) error {
	if jsonOutput {
		return printJSON(w, r)
	}
	if !status(w, r.Success, "Projet généré", r.Error) {
		return nil
	}
	field(w, "Projet", r.ProjectName)
	field(w, "Dossier", r.OutputDir)
	list(w, "Fichiers", r.Files)
	field(w, "Sauvegarde", r.BackupPath)
	field(w, "Historique", r.HistoryID)
	return nil
}

func printDiagnostic(w io.Writer, d *entities.Diagnostic) {
	if d == nil {
		return
	}
	var b strings.Builder
	fmt.Fprintln(&b, styles.title.Render("Diagnostic")+styles.muted.Render(" (confiance : "+string(d.Confidence)+")"))
	field(&b, "Cause", d.Cause)
	field(&b, "Solution", d.Solution)
	list(&b, "Fichiers", d.AffectedFiles)
	list(&b, "Reproduction", d.ReproductionSteps)
	list(&b, "Risques", d.Risks)
	fmt.Fprintln(w, styles.box.Render(strings.TrimRight(b.String(), "\n")))
}

func printFix(w io.Writer, r *entities.FixResult) error {
	if jsonOutput {
		return printJSON(w, r)
	}
	status(w, r.Success, "Réparation appliquée", r.Error)
	printDiagnostic(w, r.Diagnostic)
	list(w, "Modifiés", r.FixedFiles)
	field(w, "Sauvegarde", r.BackupPath)
	field(w, "Solution", r.SolutionID)
	return nil
}

func printDiagnosis(w io.Writer, r *entities.DiagnosisResult) error {
	if jsonOutput {
		return printJSON(w, r)
	}
	if !status(w, r.Success, "Diagnostic établi", r.Error) {
		return nil
	}
	printDiagnostic(w, r.Diagnostic)
	return nil
}

func printAnalysis(w io.Writer, r *entities.ProjectAnalysis) error {
	if jsonOutput {
		return printJSON(w, r)
	}
	if !status(w, r.Success, "Analyse terminée", r.Error) {
		return nil
	}
	field(w, "Projet", r.ProjectPath)
	field(w, "Type", r.ProjectType)
	field(w, "Fichiers", fmt.Sprintf("%d", len(r.Files)))

	langs := make([]string, 0, len(r.Languages))
	for lang, n := range r.Languages {
		langs = append(langs, fmt.Sprintf("%s (%d)", lang, n))
	}
	sort.Strings(langs)
	field(w, "Langages", strings.Join(langs, ", "))

	sources := make([]string, 0, len(r.Dependencies))
	for source := range r.Dependencies {
		sources = append(sources, source)
	}
	sort.Strings(sources)
	for _, source := range sources {
		list(w, source, r.Dependencies[source])
	}
	if r.VCS != nil && r.VCS.IsRepo {
		state := "propre"
		if !r.VCS.Clean {
			state = "modifications en cours"
		}
		field(w, "Git", fmt.Sprintf("%s, %s", r.VCS.Branch, state))
	}
	return nil
}

func printRefactor(w io.Writer, r *entities.RefactorResult) error {
	if jsonOutput {
		return printJSON(w, r)
	}
	if !status(w, r.Success, "Refactoring appliqué", r.Error) {
		return nil
	}
	field(w, "Fichier", r.FilePath)
	field(w, "Sauvegarde", r.BackupPath)
	return nil
}

func printRequest(w io.Writer, r *entities.RequestResult) error {
	if jsonOutput {
		return printJSON(w, r)
	}
	fmt.Fprintln(w, styles.muted.Render("intention : "+string(r.Intent)))
	switch {
	case r.Build != nil:
		return printBuild(w, r.Build)
	case r.Success:
		return printAnswer(w, r.Answer)
	default:
		status(w, false, "", r.Error)
		field(w, "Suggestion", r.Suggestion)
		return nil
	}
}

func printDeploy(w io.Writer, r *entities.DeployResult) error {
	if jsonOutput {
		return printJSON(w, r)
	}
	if !status(w, r.Success, "Déploiement terminé", r.Error) {
		return nil
	}
	keys := make([]string, 0, len(r.Details))
	for k := range r.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		field(w, k, fmt.Sprint(r.Details[k]))
	}
	return nil
}
