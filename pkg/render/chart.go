package render

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/Sumatoshi-tech/locdiff/pkg/report"
)

const fullZoomPct = 100

// writeTrendPage renders the trend as an interactive page: line totals per
// commit and the net code change of each pair.
func writeTrendPage(w io.Writer, rep *report.TrendReport) error {
	page := components.NewPage()
	page.PageTitle = htmlTitle
	page.AddCharts(totalsChart(rep), changeChart(rep))

	err := page.Render(w)
	if err != nil {
		return fmt.Errorf("render trend page: %w", err)
	}

	return nil
}

func trendLabels(rep *report.TrendReport) []string {
	labels := make([]string, len(rep.Points))
	c := cells{human: true}

	for i, p := range rep.Points {
		labels[i] = c.rev(p.To)
	}

	return labels
}

func totalsChart(rep *report.TrendReport) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Lines over time",
			Subtitle: fmt.Sprintf("%d commits", rep.Commits),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "5px"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: fullZoomPct}, opts.DataZoom{Type: "inside"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Commit"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Lines"}),
	)
	line.SetXAxis(trendLabels(rep))

	series := []struct {
		name  string
		value func(report.TrendPoint) int
	}{
		{"Code", func(p report.TrendPoint) int { return p.Code }},
		{"Comments", func(p report.TrendPoint) int { return p.Comments }},
		{"Blank", func(p report.TrendPoint) int { return p.Blank }},
	}

	for _, s := range series {
		data := make([]opts.LineData, len(rep.Points))

		for i, p := range rep.Points {
			if p.Error != "" {
				data[i] = opts.LineData{Value: nil}

				continue
			}

			data[i] = opts.LineData{Value: s.value(p)}
		}

		line.AddSeries(s.name, data)
	}

	return line
}

func changeChart(rep *report.TrendReport) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Net code change per commit"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Commit"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Lines"}),
	)
	bar.SetXAxis(trendLabels(rep))

	data := make([]opts.BarData, len(rep.Points))
	for i, p := range rep.Points {
		data[i] = opts.BarData{Value: p.DeltaCode}
	}

	bar.AddSeries("Code", data)

	return bar
}
