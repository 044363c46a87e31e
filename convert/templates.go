package convert

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	sprig "github.com/go-task/slim-sprig/v3"

	"dcx/content"
)

type templateFieldName string

const outputNameTemplateField templateFieldName = "document.output_name_template"

// Values holds the variables we make available for template expansion.
type Values struct {
	Context    string
	Title      string
	Date       string
	SourceFile string
	ExportID   string
}

func expandTemplate(c *content.Content, name templateFieldName, field string) (string, error) {
	funcMap := sprig.FuncMap()

	tmpl, err := template.New(string(name)).Funcs(funcMap).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	values := Values{
		Context:    string(name),
		Title:      c.Root.Title(),
		Date:       time.Now().Format("2006-01-02"),
		SourceFile: strings.TrimSuffix(filepath.Base(c.SrcName), filepath.Ext(c.SrcName)),
		ExportID:   c.ExportID,
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}
