package templates

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/a-h/templ"
)

// NotificationData is the input to Notification.
type NotificationData struct {
	Title    string
	// HTML is inserted verbatim. When empty, Text is shown preformatted.
	HTML     string
	Text     string
	ItemID   string
	Priority int
	Elapsed  time.Duration
}

// Notification renders a queued notification as a minimal email body.
func Notification(d NotificationData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		ew := &errWriter{w: w}

		ew.print(`<!DOCTYPE html><html><body style="font-family:-apple-system,Segoe UI,Helvetica,Arial,sans-serif;color:#111;">`)
		ew.printf(`<h1 style="font-size:20px;margin:0 0 16px;">%s</h1>`, templ.EscapeString(d.Title))

		if d.HTML != "" {
			ew.print(`<div>`)
			ew.print(d.HTML)
			ew.print(`</div>`)
		} else {
			ew.printf(`<pre style="white-space:pre-wrap;font-family:ui-monospace,Menlo,monospace;">%s</pre>`, templ.EscapeString(d.Text))
		}

		ew.printf(`<p style="color:#888;font-size:12px;margin-top:24px;">item %s &middot; priority %d &middot; queued %s</p>`,
			templ.EscapeString(d.ItemID), d.Priority, d.Elapsed.Round(time.Millisecond))
		ew.print(`</body></html>`)

		return ew.err
	})
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) print(s string) {
	if e.err == nil {
		_, e.err = io.WriteString(e.w, s)
	}
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err == nil {
		_, e.err = fmt.Fprintf(e.w, format, args...)
	}
}
