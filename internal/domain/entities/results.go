package entities

// User-facing failure messages. They are part of the product surface and are
// matched by callers, so keep them stable.
const (
	MsgUnauthorized        = "Accès non autorisé"
	MsgProjectNotFound     = "Projet non trouvé"
	MsgFileNotFound        = "Fichier non trouvé"
	MsgFixFailed           = "Échec de la réparation"
	MsgNoFilesToFix        = "Aucun fichier à modifier"
	MsgDiagnosticNoJSON    = "Impossible de parser le diagnostic"
	MsgDiagnosticBadJSON   = "Erreur de parsing du diagnostic"
	MsgBuilderDisabled     = "Module Builder non activé"
	MsgFixerDisabled       = "Module Fixer non activé"
	MsgLearnerDisabled     = "Module Learner non activé"
	MsgDeployerDisabled    = "Module Deployer non activé"
	MsgFixNeedsProjectPath = "Veuillez spécifier le chemin du projet à réparer"
	MsgFixSuggestion       = "Utilisez la commande fix avec le chemin du projet"
)

// BuildResult is returned by every Builder entry point.
type BuildResult struct {
	Success     bool     `json:"success"`
	ProjectName string   `json:"project_name,omitempty"`
	OutputDir   string   `json:"output_dir,omitempty"`
	Files       []string `json:"files,omitempty"`
	HistoryID   string   `json:"history_id,omitempty"`
	BackupPath  string   `json:"backup_path,omitempty"`
	Error       string   `json:"error,omitempty"`
	Cause       error    `json:"-"`
}

// FailedBuild converts an error into a failed BuildResult.
func FailedBuild(msg string, cause error) *BuildResult {
	return &BuildResult{Error: msg, Cause: cause}
}

// VCSInfo describes the version-control state of a project directory.
type VCSInfo struct {
	IsRepo bool   `json:"is_repo"`
	Branch string `json:"branch,omitempty"`
	Clean  bool   `json:"clean"`
}

// ProjectAnalysis is the Fixer's introspection of a project directory.
type ProjectAnalysis struct {
	Success      bool                `json:"success"`
	ProjectPath  string              `json:"project_path,omitempty"`
	ProjectType  string              `json:"project_type,omitempty"`
	Files        []string            `json:"files,omitempty"`
	Dependencies map[string][]string `json:"dependencies,omitempty"`
	Languages    map[string]int      `json:"languages,omitempty"`
	VCS          *VCSInfo            `json:"vcs,omitempty"`
	Error        string              `json:"error,omitempty"`
	Cause        error               `json:"-"`
}

// DiagnosisResult wraps a Diagnostic with the success/error shape.
type DiagnosisResult struct {
	Success    bool        `json:"success"`
	Diagnostic *Diagnostic `json:"diagnostic,omitempty"`
	Error      string      `json:"error,omitempty"`
	Cause      error       `json:"-"`
}

// FixResult is returned by FixIssue.
type FixResult struct {
	Success    bool        `json:"success"`
	FixedFiles []string    `json:"fixed_files"`
	Diagnostic *Diagnostic `json:"diagnostic,omitempty"`
	BackupPath string      `json:"backup_path,omitempty"`
	SolutionID string      `json:"solution_id,omitempty"`
	Error      string      `json:"error,omitempty"`
	Cause      error       `json:"-"`
}

// RefactorResult is returned by Refactor.
type RefactorResult struct {
	Success    bool   `json:"success"`
	FilePath   string `json:"file_path,omitempty"`
	BackupPath string `json:"backup_path,omitempty"`
	Error      string `json:"error,omitempty"`
	Cause      error  `json:"-"`
}

// RequestResult is returned by the free-form request entry point.
type RequestResult struct {
	Success    bool         `json:"success"`
	Intent     Intent       `json:"intent"`
	Build      *BuildResult `json:"build,omitempty"`
	Answer     string       `json:"answer,omitempty"`
	Error      string       `json:"error,omitempty"`
	Suggestion string       `json:"suggestion,omitempty"`
}

// DeployResult is returned by the deployer collaborator.
type DeployResult struct {
	Success bool           `json:"success"`
	Details map[string]any `json:"details,omitempty"`
	Error   string         `json:"error,omitempty"`
}
