package render

import (
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/Sumatoshi-tech/locdiff/pkg/report"
)

// palette holds the console colors; all are no-ops when color is off.
type palette struct {
	title, ok, warn, bad *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		title: color.New(color.FgCyan, color.Bold),
		ok:    color.New(color.FgGreen),
		warn:  color.New(color.FgYellow),
		bad:   color.New(color.FgRed),
	}

	for _, c := range []*color.Color{p.title, p.ok, p.warn, p.bad} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	return p
}

func (p palette) status(s report.Status) *color.Color {
	switch s {
	case report.StatusOK:
		return p.ok
	case report.StatusPartial:
		return p.warn
	default:
		return p.bad
	}
}

func writeConsole(w io.Writer, v any, opts Options) error {
	secs, err := sections(v, cells{human: true})
	if err != nil {
		return err
	}

	p := newPalette(opts.Color)

	var b strings.Builder

	if rev := headline(v); rev != "" {
		p.title.Fprintln(&b, rev)
		b.WriteString("\n")
	}

	for _, s := range secs {
		p.title.Fprintln(&b, s.Title)
		b.WriteString(s.writer().Render())
		b.WriteString("\n\n")
	}

	if st, ok := statusOf(v); ok {
		p.status(st).Fprintf(&b, "Status: %s\n", st)
	}

	_, err = io.WriteString(w, b.String())
	if err != nil {
		return fmt.Errorf("write console output: %w", err)
	}

	return nil
}

func headline(v any) string {
	if rep, ok := v.(*report.CountReport); ok {
		return "Revision: " + rep.Revision
	}

	return ""
}

func statusOf(v any) (report.Status, bool) {
	switch rep := v.(type) {
	case *report.CountReport:
		return rep.Status, true
	case *report.DiffReport:
		return rep.Status, true
	case *report.TrendReport:
		return rep.Status, true
	default:
		return report.StatusOK, false
	}
}

// writeCSV writes the primary table only.
func writeCSV(w io.Writer, v any) error {
	secs, err := sections(v, cells{})
	if err != nil {
		return err
	}

	primary := secs[0]
	primary.Footer = nil

	_, err = io.WriteString(w, primary.writer().RenderCSV()+"\n")
	if err != nil {
		return fmt.Errorf("write csv: %w", err)
	}

	return nil
}

func writeMarkdown(w io.Writer, v any) error {
	secs, err := sections(v, cells{})
	if err != nil {
		return err
	}

	var b strings.Builder

	for i, s := range secs {
		if i > 0 {
			b.WriteString("\n")
		}

		b.WriteString("### " + s.Title + "\n\n")
		b.WriteString(s.writer().RenderMarkdown())
		b.WriteString("\n")
	}

	_, err = io.WriteString(w, b.String())
	if err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}

	return nil
}

const htmlTitle = "locdiff report"

func writeHTML(w io.Writer, v any) error {
	if rep, ok := v.(*report.TrendReport); ok {
		return writeTrendPage(w, rep)
	}

	secs, err := sections(v, cells{})
	if err != nil {
		return err
	}

	var b strings.Builder

	b.WriteString("<!DOCTYPE html>\n<html>\n<head><meta charset=\"utf-8\"><title>" + htmlTitle + "</title></head>\n<body>\n")

	for _, s := range secs {
		b.WriteString("<h3>" + html.EscapeString(s.Title) + "</h3>\n")
		b.WriteString(s.writer().RenderHTML())
		b.WriteString("\n")
	}

	b.WriteString("</body>\n</html>\n")

	_, err = io.WriteString(w, b.String())
	if err != nil {
		return fmt.Errorf("write html: %w", err)
	}

	return nil
}
