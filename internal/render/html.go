// Package render draws ranked results for the browser and the terminal.
package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/Brownie44l1/analyart/internal/ranking"
	"github.com/Brownie44l1/analyart/internal/session"
)

//go:embed templates/page.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/page.html"))

// Page is the data behind the upload page.
type Page struct {
	// Status is the model readiness: "loading", "ready" or "failed".
	Status      string
	LoadError   string
	Filename    string
	Result      *ranking.Result
	MaxUploadMB int64
}

// ButtonLabel is the identify control's idle text.
func (Page) ButtonLabel() string { return session.LabelIdentify }

// AnalyzingLabel is the identify control's text while a request is running.
func (Page) AnalyzingLabel() string { return session.LabelAnalyzing }

// HTML writes the upload page, with results when p.Result is set.
func HTML(w io.Writer, p Page) error {
	if err := pageTemplate.Execute(w, p); err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}
	return nil
}
