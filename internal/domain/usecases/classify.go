package usecases

import (
	"strings"

	"github.com/0xcro3dile/jarvis-go/internal/domain/entities"
)

// Build keywords are checked before fix keywords, so a request carrying both
// is a build.
var (
	buildKeywords = []string{"crée", "construis", "génère", "développe", "fais", "build", "create"}
	fixKeywords   = []string{"répare", "corrige", "fix", "debug", "résous", "problème", "erreur", "bug"}
)

// Classify maps free text to an intent by keyword membership.
func Classify(text string) entities.Intent {
	lower := strings.ToLower(text)
	switch {
	case containsAny(lower, buildKeywords):
		return entities.IntentBuild
	case containsAny(lower, fixKeywords):
		return entities.IntentFix
	default:
		return entities.IntentQuestion
	}
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
