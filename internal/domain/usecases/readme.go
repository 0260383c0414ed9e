package usecases

import (
	"strings"
	"text/template"
)

var readmeTemplates = template.Must(template.New("readme").Parse(`
{{- define "website" -}}
# {{.Name}}

{{.Description}}

## Fonctionnalités

{{range .Features}}- {{.}}
{{end}}
## Installation

Ouvrez simplement le fichier ` + "`index.html`" + ` dans votre navigateur web.

## Structure du projet

` + "```" + `
{{.Name}}/
├── index.html      # Page principale
├── style.css       # Styles CSS
└── script.js       # Scripts JavaScript (si applicable)
` + "```" + `

## Généré par

Agent AMIKAL - {{.Timestamp}}
{{end -}}

{{- define "api" -}}
# {{.Name}}

{{.Description}}

## Endpoints

{{.Listing}}

## Installation

` + "```bash" + `
pip install -r requirements.txt
` + "```" + `

## Lancement

` + "```bash" + `
uvicorn main:app --reload
` + "```" + `

L'API sera accessible sur http://localhost:8000

Documentation interactive : http://localhost:8000/docs

## Généré par

Agent AMIKAL - {{.Timestamp}}
{{end -}}

{{- define "cli" -}}
# {{.Name}}

{{.Description}}

## Commandes

{{.Listing}}

## Installation

` + "```bash" + `
pip install -r requirements.txt
` + "```" + `

## Utilisation

` + "```bash" + `
python {{.Name}}.py --help
` + "```" + `

## Généré par

Agent AMIKAL - {{.Timestamp}}
{{end -}}
`))

type readmeData struct {
	Name        string
	Description string
	Features    []string
	Listing     string
	Timestamp   string
}

func renderReadme(kind string, data readmeData) (string, error) {
	var sb strings.Builder
	if err := readmeTemplates.ExecuteTemplate(&sb, kind, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}
