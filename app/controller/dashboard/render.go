package dashboard

import (
	"embed"
	"html/template"
	"io"
	"net/url"
	"strings"
	"time"

	"taskdeck/app/view"
	"taskdeck/domain/task"
	"taskdeck/version"

	"github.com/dustin/go-humanize"
)

//go:embed templates/*.html
var templatesFS embed.FS

var funcs = template.FuncMap{
	"pathEscape": url.PathEscape,
	"lastRun":    lastRun,
	"fieldError": func(form view.CreateForm, field string) string {
		return form.Errors[field]
	},
}

var templates = template.Must(template.New("").Funcs(funcs).ParseFS(templatesFS, "templates/*.html"))

// Page is the data the task page is rendered from.
type Page struct {
	State         view.State
	Notifications []view.Notification
	Version       string
}

func NewPage(state view.State, notes []view.Notification) Page {
	return Page{
		State:         state,
		Notifications: notes,
		Version:       version.Version,
	}
}

// Render writes the task page for p. It has no side effects on the view.
func Render(w io.Writer, p Page) error {
	return templates.ExecuteTemplate(w, "index.html", p)
}

func lastRun(t task.Task) string {
	last, ok := t.LastExecution()
	if !ok {
		return ""
	}
	var b strings.Builder
	b.WriteString(humanize.Time(last.StartTime))
	b.WriteString(" (")
	b.WriteString(last.Duration().Round(time.Millisecond).String())
	b.WriteString(")")
	return b.String()
}
