package usecases

import (
	"fmt"
	"strings"

	"github.com/0xcro3dile/jarvis-go/internal/domain/entities"
)

func analysisPrompt(request string) string {
	return fmt.Sprintf(`Analyse cette demande de construction d'outil informatique :

"%s"

Identifie :
1. Le type d'outil demandé (site web statique, application web dynamique, API, script CLI, application mobile, autre)
2. Les fonctionnalités principales requises
3. Les technologies suggérées
4. Le niveau de complexité (simple, moyen, complexe)
5. Les questions à poser à l'utilisateur pour clarifier les besoins

Retourne ta réponse au format JSON avec les clés suivantes :
- tool_type: type d'outil
- features: liste des fonctionnalités
- technologies: liste des technologies suggérées
- complexity: niveau de complexité
- questions: liste des questions à poser (peut être vide si tout est clair)
- project_name: suggestion de nom de projet (format snake_case)`, request)
}

func endpointsPrompt(request string) string {
	return fmt.Sprintf(`À partir de cette demande d'API :

"%s"

Extrais les endpoints à créer au format JSON :
[
  {"method": "GET", "path": "/endpoint", "description": "Description"},
  ...
]

Retourne uniquement le JSON.`, request)
}

func commandsPrompt(request string) string {
	return fmt.Sprintf(`À partir de cette demande d'outil CLI :

"%s"

Extrais les commandes à créer au format JSON :
[
  {"name": "command", "description": "Description de la commande"},
  ...
]

Retourne uniquement le JSON.`, request)
}

func htmlPrompt(name, description string, features []string) string {
	return fmt.Sprintf(`Crée un site web HTML5 complet et moderne pour :

Nom du projet : %s
Description : %s
Fonctionnalités : %s

Le site doit :
- Être responsive (mobile-first)
- Utiliser un design moderne et élégant en mode sombre avec des couleurs vives
- Inclure une navigation claire
- Avoir une structure sémantique HTML5
- Être prêt à l'emploi
- Charger la feuille de style style.css

Retourne uniquement le code HTML complet.`, name, description, strings.Join(features, ", "))
}

func cssPrompt(name string) string {
	return fmt.Sprintf(`Crée un fichier CSS moderne pour le site web "%s".

Le design doit :
- Utiliser un mode sombre avec des couleurs vives et chatoyantes
- Être responsive avec des media queries
- Utiliser des animations subtiles
- Avoir une typographie moderne
- Inclure des transitions fluides

Retourne uniquement le code CSS.`, name)
}

func jsPrompt(name string, features []string) string {
	return fmt.Sprintf(`Crée un fichier JavaScript pour ajouter de l'interactivité au site "%s".

Fonctionnalités : %s

Le JavaScript doit :
- Être moderne (ES6+)
- Gérer les interactions utilisateur
- Ajouter des animations fluides
- Être bien commenté

Retourne uniquement le code JavaScript.`, name, strings.Join(features, ", "))
}

func apiPrompt(name, description, endpoints string) string {
	return fmt.Sprintf(`Crée une API REST complète avec FastAPI pour :

Nom du projet : %s
Description : %s

Endpoints à implémenter :
%s

L'API doit :
- Utiliser FastAPI
- Inclure la validation des données avec Pydantic
- Avoir une documentation automatique (Swagger)
- Gérer les erreurs correctement
- Utiliser des modèles de données clairs
- Être bien structurée et commentée

Retourne uniquement le code Python complet pour main.py.`, name, description, endpoints)
}

func cliPrompt(name, description, commands string) string {
	return fmt.Sprintf(`Crée un outil CLI complet en Python avec Click pour :

Nom du projet : %s
Description : %s

Commandes à implémenter :
%s

L'outil doit :
- Utiliser Click pour la CLI
- Avoir une aide claire pour chaque commande
- Gérer les erreurs correctement
- Utiliser Rich pour un affichage amélioré
- Être bien structuré et commenté

Retourne uniquement le code Python complet.`, name, description, commands)
}

func diagnosticPrompt(projectType, issue, files string) string {
	return fmt.Sprintf(`Diagnostique le problème suivant dans ce projet %s :

Problème décrit : %s

Fichiers du projet :
%s

Identifie :
1. La cause probable du problème
2. Les fichiers concernés
3. Les étapes pour reproduire le problème
4. La solution recommandée
5. Les risques potentiels de la solution

Retourne ta réponse au format JSON avec les clés suivantes :
- cause: cause probable
- affected_files: liste des fichiers concernés
- reproduction_steps: étapes pour reproduire
- solution: solution recommandée
- risks: risques potentiels
- confidence: niveau de confiance (low, medium, high)`, projectType, issue, files)
}

func describeEndpoints(endpoints []entities.Endpoint) string {
	lines := make([]string, len(endpoints))
	for i, ep := range endpoints {
		lines[i] = fmt.Sprintf("- %s %s: %s", ep.Method, ep.Path, ep.Description)
	}
	return strings.Join(lines, "\n")
}

func describeCommands(commands []entities.Command) string {
	lines := make([]string, len(commands))
	for i, cmd := range commands {
		lines[i] = fmt.Sprintf("- %s: %s", cmd.Name, cmd.Description)
	}
	return strings.Join(lines, "\n")
}
