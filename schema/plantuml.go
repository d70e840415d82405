package schema

import (
	"bytes"
	"text/template"

	"github.com/pkg/errors"
)

const entryTmpl = `entity "{{ .Name }}" as {{ .Name }}{{ with .Comment.String }} <<{{ . }}>>{{ end }} {
{{- range .PrimaryKeys }}
  * {{ .Name }} : {{ .DDLType }}{{ with .Comment.String }} /' {{ . }} '/{{ end }}
{{- end }}
  --
{{- range .Attributes }}
  {{ if .NotNull }}* {{ end }}{{ .Name }} : {{ .DDLType }}{{ if .IsForeignKey }} <<FK>>{{ end }}{{ with .Comment.String }} /' {{ . }} '/{{ end }}
{{- end }}
}
`

const relationTmpl = `{{ .TargetTableName }} ||--{{ if .IsOneToOne }}o|{{ else }}o{{ "{" }}{{ end }} {{ .SourceTableName }} : {{ .ConstraintName }}
`

var (
	entryTemplate    = template.Must(template.New("entry").Parse(entryTmpl))
	relationTemplate = template.Must(template.New("relation").Parse(relationTmpl))
)

// Entities writes one PlantUML entity per table.
func Entities(tbls []*Table) ([]byte, error) {
	buf := new(bytes.Buffer)
	for _, tbl := range tbls {
		if err := entryTemplate.Execute(buf, tbl); err != nil {
			return nil, errors.Wrapf(err, "failed to execute template: %s", tbl.Name)
		}
	}
	return buf.Bytes(), nil
}

// Relations writes one PlantUML relation per foreign key.
func Relations(tbls []*Table) ([]byte, error) {
	buf := new(bytes.Buffer)
	for _, tbl := range tbls {
		for _, fk := range tbl.ForeignKeys {
			if err := relationTemplate.Execute(buf, fk); err != nil {
				return nil, errors.Wrapf(err, "failed to execute template: %s", fk.ConstraintName)
			}
		}
	}
	return buf.Bytes(), nil
}

// Source returns the complete @startuml ... @enduml document for tbls.
func Source(tbls []*Table, title string) ([]byte, error) {
	entities, err := Entities(tbls)
	if err != nil {
		return nil, err
	}
	relations, err := Relations(tbls)
	if err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	buf.WriteString("@startuml\n")
	if title != "" {
		buf.WriteString("title " + title + "\n")
	}
	buf.WriteString("hide circle\nskinparam linetype ortho\n")
	buf.Write(entities)
	buf.Write(relations)
	buf.WriteString("@enduml\n")
	return buf.Bytes(), nil
}
