package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"taskdeck/domain/task"

	"github.com/dustin/go-humanize"
)

// Formatter interface for formatting output
type Formatter interface {
	Format(data any) (string, error)
}

// New returns the formatter for name: "json" or "table".
func New(name string) (Formatter, error) {
	switch name {
	case "", "json":
		return NewJSONFormatter(), nil
	case "table":
		return NewTableFormatter(time.Now), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", name)
	}
}

// JSONFormatter implements the Formatter interface for JSON output
type JSONFormatter struct{}

func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

func (f *JSONFormatter) Format(data any) (string, error) {
	bytes, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// TableFormatter renders tasks as aligned columns. Anything that is not a
// task or task list falls back to JSON.
type TableFormatter struct {
	now func() time.Time
}

func NewTableFormatter(now func() time.Time) *TableFormatter {
	return &TableFormatter{now: now}
}

func (f *TableFormatter) Format(data any) (string, error) {
	var tasks []task.Task
	switch v := data.(type) {
	case []task.Task:
		tasks = v
	case *task.Task:
		tasks = []task.Task{*v}
	case task.Task:
		tasks = []task.Task{v}
	default:
		return NewJSONFormatter().Format(data)
	}

	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tOWNER\tCOMMAND\tLAST RUN")
	for _, t := range tasks {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", t.ID, t.Name, t.Owner, t.Command, f.lastRun(t))
	}
	if err := w.Flush(); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

func (f *TableFormatter) lastRun(t task.Task) string {
	last, ok := t.LastExecution()
	if !ok {
		return "never"
	}
	return humanize.RelTime(last.StartTime, f.now(), "ago", "from now")
}
