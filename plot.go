package paysynth

import (
	"io"
	"math"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// gap is rendered by echarts as a missing point
const gap = "-"

func lineData(y []float64) []opts.LineData {
	data := make([]opts.LineData, 0, len(y))
	for _, v := range y {
		if math.IsNaN(v) {
			data = append(data, opts.LineData{Value: gap})
			continue
		}
		data = append(data, opts.LineData{Value: v})
	}
	return data
}

// LineTSeries generates an echart multi-line chart sharing one date axis. Each slice in y must
// have the same length as t and NaN values are left as gaps.
func LineTSeries(title string, seriesName []string, t []time.Time, y [][]float64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
	)

	xAxis := make([]string, len(t))
	for i, tPnt := range t {
		xAxis[i] = tPnt.Format(time.DateOnly)
	}

	line = line.SetXAxis(xAxis)
	for i, series := range seriesName {
		line = line.AddSeries(series, lineData(y[i]))
	}
	return line
}

// LineForecast charts the history of the forecast series, the fitted curve over that history
// and the forecast points after it
func (r *Report) LineForecast() *charts.Line {
	history, _ := r.Data.Values(r.Forecast.Series)
	n := len(history) + len(r.Forecast.Points)

	t := make([]time.Time, 0, n)
	t = append(t, r.Data.Dates()...)
	t = append(t, r.Forecast.Points.Dates()...)

	actual := make([]float64, n)
	fitted := make([]float64, n)
	predicted := make([]float64, n)
	for i := range actual {
		actual[i] = math.NaN()
		fitted[i] = math.NaN()
		predicted[i] = math.NaN()
	}
	copy(actual, history)
	copy(fitted, r.Forecast.Fitted)
	copy(predicted[len(history):], r.Forecast.Points.Values())

	line := LineTSeries(
		"Forecast "+r.Forecast.Series,
		[]string{"Actual", "Fitted", "Forecast"},
		t,
		[][]float64{actual, fitted, predicted},
	)
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title:    "Forecast " + r.Forecast.Series,
				Subtitle: r.Forecast.Equation,
			},
		),
	)
	return line
}

// BarAttribution charts the percentage points credited to each factor
func (r *Report) BarAttribution() *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title:    "Attribution " + r.Attribution.Name,
				Subtitle: r.Attribution.Method,
			},
		),
	)

	names := make([]string, len(r.Attribution.Factors))
	data := make([]opts.BarData, len(r.Attribution.Factors))
	for i, pts := range r.Attribution.PercentagePoints() {
		names[i] = r.Attribution.Factors[i].Name
		data[i] = opts.BarData{Value: pts.InexactFloat64()}
	}
	bar.SetXAxis(names).AddSeries("pp", data)
	return bar
}

// Plot renders an html page with one line chart per generated series, the forecast chart and
// the attribution chart when present
func (r *Report) Plot(w io.Writer) error {
	page := components.NewPage()
	page.PageTitle = "paysynth " + r.Profile.String()

	if r.Data != nil {
		t := r.Data.Dates()
		for _, name := range r.Data.Names() {
			y, _ := r.Data.Values(name)
			page.AddCharts(LineTSeries(name, []string{name}, t, [][]float64{y}))
		}
	}
	if r.Forecast != nil && r.Data != nil {
		page.AddCharts(r.LineForecast())
	}
	if r.Attribution != nil {
		page.AddCharts(r.BarAttribution())
	}
	return page.Render(w)
}
