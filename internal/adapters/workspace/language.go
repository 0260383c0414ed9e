package workspace

import (
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
)

var languageByExt = map[string]string{
	".py":   "python",
	".js":   "javascript",
	".ts":   "typescript",
	".html": "html",
	".css":  "css",
	".java": "java",
	".cpp":  "cpp",
	".c":    "c",
	".go":   "go",
	".rs":   "rust",
	".rb":   "ruby",
	".php":  "php",
}

// DetectLanguage names the language of path. The fixed extension table wins;
// other files are matched against chroma's lexer registry. Unknown is "text".
func (l *Local) DetectLanguage(path string) string {
	return DetectLanguage(path)
}

// DetectLanguage is the package-level form of Local.DetectLanguage.
func DetectLanguage(path string) string {
	if lang, ok := languageByExt[strings.ToLower(filepath.Ext(path))]; ok {
		return lang
	}
	if lexer := lexers.Match(filepath.Base(path)); lexer != nil {
		return strings.ToLower(lexer.Config().Name)
	}
	return "text"
}
