package render

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/Sumatoshi-tech/locdiff/pkg/gitlib"
	"github.com/Sumatoshi-tech/locdiff/pkg/report"
	"github.com/Sumatoshi-tech/locdiff/pkg/safeconv"
)

const shortHashLen = 10

// section is one titled table of a report.
type section struct {
	Title  string
	Header table.Row
	Rows   []table.Row
	Footer table.Row
}

// cells controls how numbers are shown: console output humanizes sizes and
// signs deltas, file formats keep raw values.
type cells struct {
	human bool
}

func (c cells) size(n int64) any {
	if c.human {
		return humanize.Bytes(safeconv.ClampToUint64(n))
	}

	return n
}

func (c cells) delta(n int) any {
	if c.human {
		return fmt.Sprintf("%+d", n)
	}

	return n
}

func (c cells) count(n int) any {
	if c.human {
		return humanize.Comma(int64(n))
	}

	return n
}

func (c cells) rev(id string) string {
	if c.human && len(id) > shortHashLen {
		return id[:shortHashLen]
	}

	return id
}

// sections lays out v as tables. The first section is the primary one.
func sections(v any, c cells) ([]section, error) {
	switch rep := v.(type) {
	case *report.CountReport:
		return countSections(rep, c), nil
	case *report.DiffReport:
		return diffSections(rep, c), nil
	case *report.TrendReport:
		return trendSections(rep, c), nil
	case *gitlib.Info:
		return infoSections(rep, c), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}
}

func countSections(rep *report.CountReport, c cells) []section {
	langs := section{
		Title:  "Languages",
		Header: table.Row{"Language", "Files", "Code", "Comments", "Blank", "Total", "Size"},
		Footer: table.Row{
			"Total", c.count(rep.Summary.Files), c.count(rep.Summary.Code), c.count(rep.Summary.Comments),
			c.count(rep.Summary.Blank), c.count(rep.Summary.Total), c.size(rep.Summary.Size),
		},
	}

	for _, l := range rep.Languages {
		langs.Rows = append(langs.Rows, table.Row{
			l.Language, c.count(l.Files), c.count(l.Code), c.count(l.Comments),
			c.count(l.Blank), c.count(l.Total), c.size(l.Size),
		})
	}

	out := []section{langs}

	if len(rep.Files) > 0 {
		files := section{
			Title:  "Files",
			Header: table.Row{"Path", "Language", "Code", "Comments", "Blank", "Total", "Size"},
		}

		for _, f := range rep.Files {
			files.Rows = append(files.Rows, table.Row{
				f.Path, f.Language, c.count(f.Code), c.count(f.Comments),
				c.count(f.Blank), c.count(f.Total), c.size(f.Size),
			})
		}

		out = append(out, files)
	}

	if len(rep.Ineligible) > 0 {
		skipped := section{Title: "Skipped", Header: table.Row{"Path", "Reason", "Detail"}}

		for _, i := range rep.Ineligible {
			skipped.Rows = append(skipped.Rows, table.Row{i.Path, i.Reason, i.Detail})
		}

		out = append(out, skipped)
	}

	return append(out, failureSections(rep.Failures, c)...)
}

func diffSections(rep *report.DiffReport, c cells) []section {
	langs := section{
		Title:  fmt.Sprintf("Changes %s..%s", c.rev(rep.From), c.rev(rep.To)),
		Header: table.Row{"Language", "Files", "Code", "Comments", "Blank", "Total"},
		Footer: table.Row{
			"Total",
			c.count(rep.Summary.Added + rep.Summary.Modified + rep.Summary.Renamed + rep.Summary.Deleted),
			c.delta(rep.Summary.Delta.Code), c.delta(rep.Summary.Delta.Comments),
			c.delta(rep.Summary.Delta.Blank), c.delta(rep.Summary.Delta.Total),
		},
	}

	for _, l := range rep.Languages {
		langs.Rows = append(langs.Rows, table.Row{
			l.Language, c.count(l.Files), c.delta(l.Code), c.delta(l.Comments), c.delta(l.Blank), c.delta(l.Total),
		})
	}

	out := []section{langs}

	if len(rep.Entries) > 0 {
		files := section{
			Title:  "Files",
			Header: table.Row{"Status", "Path", "Language", "Code", "Comments", "Blank", "Total", "Similarity"},
		}

		for _, e := range rep.Entries {
			files.Rows = append(files.Rows, table.Row{
				e.Status, entryPath(e), e.Language, c.delta(e.Code), c.delta(e.Comments),
				c.delta(e.Blank), c.delta(e.Total), similarity(e),
			})
		}

		out = append(out, files)
	}

	return append(out, failureSections(rep.Failures, c)...)
}

func entryPath(e report.EntryRow) string {
	switch {
	case e.OldPath != "" && e.NewPath != "" && e.OldPath != e.NewPath:
		return e.OldPath + " => " + e.NewPath
	case e.NewPath != "":
		return e.NewPath
	default:
		return e.OldPath
	}
}

func similarity(e report.EntryRow) string {
	if e.Status != "renamed" {
		return ""
	}

	return strconv.FormatFloat(e.Similarity*100, 'f', 0, 64) + "%"
}

func trendSections(rep *report.TrendReport, c cells) []section {
	points := section{
		Title:  fmt.Sprintf("Trend over %d commits", rep.Commits),
		Header: table.Row{"#", "From", "To", "Code", "Comments", "Blank", "Total", "Δ Code", "Δ Total", "Files", "Error"},
	}

	for _, p := range rep.Points {
		points.Rows = append(points.Rows, table.Row{
			p.Index + 1, c.rev(p.From), c.rev(p.To), c.count(p.Code), c.count(p.Comments), c.count(p.Blank),
			c.count(p.Total), c.delta(p.DeltaCode), c.delta(p.DeltaTotal), c.count(p.FilesChanged), p.Error,
		})
	}

	return append([]section{points}, failureSections(rep.Failures, c)...)
}

func infoSections(info *gitlib.Info, c cells) []section {
	repo := section{
		Title:  "Repository",
		Header: table.Row{"Field", "Value"},
		Rows: []table.Row{
			{"Path", info.Path},
			{"Branch", info.Branch},
			{"Commits", c.count(info.Commits)},
			{"Last commit", c.rev(info.Last.ID)},
			{"Message", info.Last.Message},
			{"Author", info.Last.Author},
			{"Date", info.Last.Date.Format("2006-01-02 15:04:05 -0700")},
		},
	}

	out := []section{repo}

	if len(info.Remotes) > 0 {
		remotes := section{Title: "Remotes", Header: table.Row{"Name", "URL"}}

		for _, r := range info.Remotes {
			remotes.Rows = append(remotes.Rows, table.Row{r.Name, r.URL})
		}

		out = append(out, remotes)
	}

	return out
}

func failureSections(fs []report.FailureRow, c cells) []section {
	if len(fs) == 0 {
		return nil
	}

	s := section{Title: "Errors", Header: table.Row{"Revision", "Path", "Kind", "Message"}}

	for _, f := range fs {
		s.Rows = append(s.Rows, table.Row{c.rev(f.Revision), f.Path, f.Kind, f.Message})
	}

	return []section{s}
}

func (s section) writer() table.Writer {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(s.Header)
	tbl.AppendRows(s.Rows)

	if s.Footer != nil {
		tbl.AppendFooter(s.Footer)
	}

	return tbl
}
