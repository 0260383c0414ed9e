package oracle

import "fmt"

const (
	roleSystem = "system"
	roleUser   = "user"
)

// DefaultRefactorObjective is used when the caller gives no objective.
const DefaultRefactorObjective = "améliorer la lisibilité et la maintenabilité"

func generateSystemPrompt(language string) string {
	return fmt.Sprintf(`Tu es un expert en développement %s.
Génère du code propre, bien structuré et commenté.
Suis les meilleures pratiques et conventions du langage.
Retourne uniquement le code, sans explications supplémentaires.`, language)
}

func analyzeSystemPrompt(language string) string {
	return fmt.Sprintf(`Tu es un expert en analyse de code %s.
Analyse le code fourni et identifie :
1. Les erreurs potentielles
2. Les problèmes de performance
3. Les violations des meilleures pratiques
4. Les suggestions d'amélioration

Retourne ta réponse au format JSON avec les clés suivantes :
- errors: liste des erreurs
- warnings: liste des avertissements
- suggestions: liste des suggestions d'amélioration
- severity: niveau de gravité global (low, medium, high)`, language)
}

func fixSystemPrompt(language string) string {
	return fmt.Sprintf(`Tu es un expert en débogage %s.
Analyse le code et l'erreur fournis, puis génère une version corrigée du code.
Retourne uniquement le code corrigé, sans explications supplémentaires.`, language)
}

func fixUserPrompt(code, errorMessage, language string) string {
	return fmt.Sprintf("Code avec erreur :\n```%s\n%s\n```\n\nErreur rencontrée :\n```\n%s\n```\n\nCorrige ce code.",
		language, code, errorMessage)
}

func refactorSystemPrompt(language, objective string) string {
	return fmt.Sprintf(`Tu es un expert en refactoring %s.
Refactorise le code fourni pour %s.
Conserve la fonctionnalité exacte du code original.
Retourne uniquement le code refactorisé.`, language, objective)
}

func explainSystemPrompt(language string) string {
	return fmt.Sprintf(`Tu es un expert en %s.
Explique clairement ce que fait le code fourni, en français.
Structure ton explication de manière pédagogique.`, language)
}

func documentationSystemPrompt(language string) string {
	return fmt.Sprintf(`Tu es un expert en documentation technique %s.
Génère une documentation complète pour le code fourni, incluant :
- Description générale
- Paramètres et types
- Valeurs de retour
- Exemples d'utilisation
- Notes importantes

Utilise le format de documentation standard pour %s.`, language, language)
}

const answerSystemPrompt = `Tu es un assistant expert en développement informatique.
Réponds de manière claire, précise et structurée en français.
Si tu n'es pas sûr d'une information, indique-le clairement.`

func answerUserPrompt(question, background string) string {
	if background == "" {
		return question
	}
	return fmt.Sprintf("Contexte :\n%s\n\nQuestion :\n%s", background, question)
}

func fenced(label, language, code string) string {
	return fmt.Sprintf("%s :\n\n```%s\n%s\n```", label, language, code)
}
