// Package render maps the board tree to HTML. Rendering is a pure function
// of the Board value: no package state, no DOM scraping, identical input
// gives byte-identical output. The admin view carries edit affordances; the
// entrepreneur view is read-only.
package render

import (
	"embed"
	"fmt"
	"html/template"
	"strings"

	"centrale/internal/model"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

type Renderer struct {
	tmpl *template.Template
}

func New() (*Renderer, error) {
	tmpl, err := template.New("centrale").Funcs(template.FuncMap{
		"plural": func(n int) string {
			if n > 1 {
				return "s"
			}
			return ""
		},
	}).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Board renders one board as the admin editing table.
func (r *Renderer) Board(b *model.Board) (template.HTML, error) {
	var sb strings.Builder
	if err := r.tmpl.ExecuteTemplate(&sb, "board.tmpl", newBoardView(b)); err != nil {
		return "", fmt.Errorf("render board %s: %w", b.ID, err)
	}
	return template.HTML(sb.String()), nil
}

// Boards renders the whole admin board list.
func (r *Renderer) Boards(boards []*model.Board) (template.HTML, error) {
	var sb strings.Builder
	for _, b := range boards {
		h, err := r.Board(b)
		if err != nil {
			return "", err
		}
		sb.WriteString(string(h))
	}
	return template.HTML(sb.String()), nil
}

// View renders the read-only entrepreneur page for a board set.
func (r *Renderer) View(boards []*model.Board) (template.HTML, error) {
	var sb strings.Builder
	for i, b := range boards {
		v := newBoardView(b)
		v.HeaderColor = viewColors[i%len(viewColors)]
		if err := r.tmpl.ExecuteTemplate(&sb, "view.tmpl", v); err != nil {
			return "", fmt.Errorf("render view %s: %w", b.ID, err)
		}
	}
	return template.HTML(sb.String()), nil
}

// view gradient rotation, one per board position
var viewColors = []string{
	"linear-gradient(135deg, #60a5fa 0%, #3b82f6 100%)",
	"linear-gradient(135deg, #f59e0b 0%, #d97706 100%)",
	"linear-gradient(135deg, #8b5cf6 0%, #7c3aed 100%)",
	"linear-gradient(135deg, #10b981 0%, #059669 100%)",
	"linear-gradient(135deg, #ef4444 0%, #dc2626 100%)",
	"linear-gradient(135deg, #ec4899 0%, #db2777 100%)",
	"linear-gradient(135deg, #14b8a6 0%, #0f766e 100%)",
}
