// Package console renders the browser management page and its PDF snapshot.
package console

import (
	"bytes"
	_ "embed"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/yourorg/keyverify/internal/registry"
)

// VisibleLogs is the number of log entries shown on the page.
const VisibleLogs = 15

//go:embed console.html.tmpl
var pageTemplate string

var tmpl = template.Must(template.New("console").Funcs(template.FuncMap{
	"stamp":    stamp,
	"logClass": logClass,
}).Parse(pageTemplate))

// Page is the data the console reads from the registry and the log.
type Page struct {
	BaseURL     string
	Keys        []registry.KeyRecord
	Stats       registry.Stats
	Logs        []registry.LogEntry
	GeneratedAt time.Time
	Location    *time.Location
}

// NewPage snapshots store into a Page.
func NewPage(store *registry.Store, baseURL string, now time.Time) Page {
	return Page{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		Keys:        store.Keys().List(),
		Stats:       store.Stats(),
		Logs:        store.Log().Recent(VisibleLogs),
		GeneratedAt: now,
	}
}

// Render writes the console HTML for p.
func Render(w io.Writer, p Page) error {
	if p.Location == nil {
		p.Location = time.Local
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, p); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

func stamp(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("02/01/2006 15:04:05")
}

func logClass(r registry.Result) string {
	switch {
	case r == registry.ResultApproved:
		return "log-approved"
	case r == registry.ResultRejected:
		return "log-rejected"
	case strings.Contains(string(r), "ERRO"):
		return "log-error"
	}
	return "log-system"
}
