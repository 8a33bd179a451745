// Package render formats runner events for a terminal.
package render

import (
	"fmt"
	"strings"

	"github.com/go-go-golems/actionrunner/pkg/action"
	"github.com/go-go-golems/actionrunner/pkg/alert"
)

const statusWidth = 10

type Renderer struct {
	theme Theme
}

func New(theme Theme) *Renderer {
	return &Renderer{theme: theme}
}

func (r *Renderer) typeStyle(t alert.Type) func(...string) string {
	switch t {
	case alert.TypeSuccess:
		return r.theme.Success.Render
	case alert.TypeWarning:
		return r.theme.Warning.Render
	case alert.TypeError:
		return r.theme.Error.Render
	default:
		return r.theme.Info.Render
	}
}

func (r *Renderer) statusStyle(s action.Status) func(...string) string {
	switch s {
	case action.StatusRunning:
		return r.theme.Running.Render
	case action.StatusComplete:
		return r.theme.Complete.Render
	case action.StatusAborted:
		return r.theme.Aborted.Render
	case action.StatusFailed:
		return r.theme.Failed.Render
	default:
		return r.theme.Pending.Render
	}
}

// ActionLine renders a one-line state transition.
func (r *Renderer) ActionLine(id string, typ action.Type, status action.Status, errMsg string) string {
	pad := ""
	if n := statusWidth - len(status); n > 0 {
		pad = strings.Repeat(" ", n)
	}
	line := r.statusStyle(status)(string(status)) + pad + " " +
		r.theme.Title.Render(id) + " " +
		r.theme.Muted.Render("("+string(typ)+")")
	if errMsg != "" {
		line += " " + r.theme.Failed.Render(errMsg)
	}
	return line
}

func (r *Renderer) box(t alert.Type, title, description, content string, footer ...string) string {
	var b strings.Builder
	b.WriteString(r.typeStyle(t)(strings.ToUpper(string(t))))
	b.WriteString(" ")
	b.WriteString(r.theme.Title.Render(title))
	if description != "" {
		b.WriteString("\n")
		b.WriteString(description)
	}
	if content = strings.TrimRight(content, "\n"); content != "" {
		b.WriteString("\n\n")
		b.WriteString(r.theme.Muted.Render(content))
	}
	for _, f := range footer {
		if f == "" {
			continue
		}
		b.WriteString("\n")
		b.WriteString(r.theme.Muted.Render(f))
	}
	return r.theme.Box.Render(b.String())
}

func (r *Renderer) ActionAlert(a alert.ActionAlert) string {
	return r.box(a.Type, a.Title, a.Description, a.Content, sourceLine(a.Source))
}

func (r *Renderer) SupabaseAlert(a alert.SupabaseAlert) string {
	return r.box(a.Type, a.Title, a.Description, a.Content, sourceLine(a.Source))
}

func (r *Renderer) DeployAlert(a alert.DeployAlert) string {
	stages := fmt.Sprintf("stage=%s build=%s deploy=%s", a.Stage, a.BuildStatus, a.DeployStatus)
	url := ""
	if a.URL != "" {
		url = "url: " + a.URL
	}
	return r.box(a.Type, a.Title, a.Description, a.Content, stages, url, sourceLine(string(a.Source)))
}

func sourceLine(source string) string {
	if source == "" {
		return ""
	}
	return "source: " + source
}
