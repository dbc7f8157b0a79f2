package paysynth

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/aouyang1/go-paysynth/attribution"
	"github.com/aouyang1/go-paysynth/forecast"
	"github.com/aouyang1/go-paysynth/timedataset"
	"github.com/goccy/go-json"
)

// ForecastResult holds the extrapolated points of one series along with the fit model.
// Fitted is the model evaluated over the history.
type ForecastResult struct {
	Series   string             `json:"series"`
	Horizon  int                `json:"horizon"`
	Fitted   []float64          `json:"fitted"`
	Points   timedataset.Series `json:"points"`
	Equation string             `json:"equation"`
	Model    forecast.Model     `json:"model"`
}

type AttributionResult struct {
	Name string `json:"name"`
	*attribution.Attribution
}

// Report is the outcome of one analysis request
type Report struct {
	Profile     Profile                  `json:"profile"`
	Seed        uint64                   `json:"seed"`
	Data        *timedataset.MultiSeries `json:"data"`
	Forecast    *ForecastResult          `json:"forecast,omitempty"`
	Attribution *AttributionResult       `json:"attribution,omitempty"`
}

// WriteJSON writes the indented JSON encoding of the report. Equal reports produce equal bytes.
func (r *Report) WriteJSON(w io.Writer) error {
	out, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	out = append(out, '\n')
	_, err = w.Write(out)
	return err
}

// WriteTable writes the generated series as aligned columns followed by the forecast model
// and the attribution summary
func (r *Report) WriteTable(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "Profile: %s    Seed: %d\n\n", r.Profile, r.Seed); err != nil {
		return err
	}

	if r.Data != nil {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
		names := r.Data.Names()
		fmt.Fprint(tw, "date\t")
		for _, name := range names {
			fmt.Fprintf(tw, "%s\t", name)
		}
		fmt.Fprintln(tw)
		for _, rec := range r.Data.Records() {
			fmt.Fprintf(tw, "%s\t", rec.Date.Format(time.DateOnly))
			for _, name := range names {
				fmt.Fprintf(tw, "%.3f\t", rec.Values[name])
			}
			fmt.Fprintln(tw)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if r.Forecast != nil {
		if _, err := fmt.Fprintf(w, "\n%s: %s\n", r.Forecast.Series, r.Forecast.Equation); err != nil {
			return err
		}
		if err := r.Forecast.Model.TablePrint(w, "", "  "); err != nil {
			return err
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(tw, "date\tforecast\t")
		for _, p := range r.Forecast.Points {
			fmt.Fprintf(tw, "%s\t%.3f\t\n", p.Date.Format(time.DateOnly), p.Value)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if r.Attribution != nil {
		if _, err := fmt.Fprintf(w, "\n%s (%s):\n%s", r.Attribution.Name,
			r.Attribution.Method, r.Attribution.Summary()); err != nil {
			return err
		}
	}
	return nil
}
