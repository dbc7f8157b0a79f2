package forecast

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/aouyang1/go-paysynth/feature"
	"github.com/aouyang1/go-paysynth/timedataset"
	"github.com/goccy/go-json"
)

var (
	ErrUnknownFeatureType = errors.New("unknown feature type")
	ErrUnknownCadence     = errors.New("unknown cadence")
)

const (
	CadenceMonthly = "monthly"
	CadenceFixed   = "fixed"
)

// Model represents a serializeable format of a forecast storing the forecast options, fit scores,
// and coefficients
type Model struct {
	TrainEndTime time.Time    `json:"train_end_time"`
	TrainPoints  int          `json:"train_points"`
	Cadence      *CadenceSpec `json:"cadence,omitempty"`
	Options      *Options     `json:"options"`
	Scores       *Scores      `json:"scores"`
	Weights      Weights      `json:"weights"`
	Excluded     []int        `json:"excluded,omitempty"`
}

func indentExpand(indent string, growth int) string {
	return strings.Repeat(indent, growth)
}

func (m Model) TablePrint(w io.Writer, prefix, indent string) error {
	if _, err := fmt.Fprintf(w, "%s%sForecast:\n", prefix, indentExpand(indent, 0)); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "%s%sTraining Points: %d\n", prefix, indentExpand(indent, 1), m.TrainPoints); err != nil {
		return err
	}

	if m.Cadence != nil {
		if _, err := fmt.Fprintf(w, "%s%sTraining End Time: %s\n", prefix, indentExpand(indent, 1), m.TrainEndTime.Format(time.DateOnly)); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s%sCadence: %s\n", prefix, indentExpand(indent, 1), m.Cadence); err != nil {
			return err
		}
	}

	if m.Options != nil {
		if _, err := fmt.Fprintf(w, "%s%sDegree: %d\n", prefix, indentExpand(indent, 1), m.Options.Degree); err != nil {
			return err
		}
		if m.Options.OutlierOptions == nil {
			if _, err := fmt.Fprintf(w, "%s%sOutliers: None\n", prefix, indentExpand(indent, 1)); err != nil {
				return err
			}
		} else {
			if _, err := fmt.Fprintf(w, "%s%sOutliers: %d passes, excluded %v\n",
				prefix, indentExpand(indent, 1), m.Options.OutlierOptions.NumPasses, m.Excluded); err != nil {
				return err
			}
		}
	}

	if m.Scores != nil {
		if _, err := fmt.Fprintf(w, "%s%sScores:\n", prefix, indentExpand(indent, 0)); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s%sMAPE: %.3f    MSE: %.3f    R2: %.3f\n",
			prefix, indentExpand(indent, 1),
			m.Scores.MAPE,
			m.Scores.MSE,
			m.Scores.R2,
		); err != nil {
			return err
		}
	}

	return m.Weights.tablePrint(w, prefix, indent, 0)
}

// CadenceSpec is the serializeable form of the cadence the training dates followed
type CadenceSpec struct {
	Kind     string        `json:"kind"`
	Marker   string        `json:"marker,omitempty"`
	Interval time.Duration `json:"interval,omitempty"`
}

func NewCadenceSpec(c timedataset.Cadence) CadenceSpec {
	switch v := c.(type) {
	case timedataset.Monthly:
		return CadenceSpec{Kind: CadenceMonthly, Marker: v.Marker.String()}
	case timedataset.Fixed:
		return CadenceSpec{Kind: CadenceFixed, Interval: v.Interval}
	}
	return CadenceSpec{Kind: c.String()}
}

// ToCadence rebuilds the cadence it describes
func (c CadenceSpec) ToCadence() (timedataset.Cadence, error) {
	switch c.Kind {
	case CadenceMonthly:
		marker, err := timedataset.ParseMonthMarker(c.Marker)
		if err != nil {
			return nil, err
		}
		return timedataset.Monthly{Marker: marker}, nil
	case CadenceFixed:
		if c.Interval <= 0 {
			return nil, fmt.Errorf("non-positive interval %s, %w", c.Interval, ErrUnknownCadence)
		}
		return timedataset.Fixed{Interval: c.Interval}, nil
	}
	return nil, fmt.Errorf("%q, %w", c.Kind, ErrUnknownCadence)
}

func (c CadenceSpec) String() string {
	if c.Kind == CadenceFixed {
		return fmt.Sprintf("%s %s", c.Kind, c.Interval)
	}
	return fmt.Sprintf("%s %s", c.Kind, c.Marker)
}

// Weights stores the coefficients for the forecast model
type Weights struct {
	Coef []FeatureWeight `json:"coefficients"`
}

// FeatureLabels returns all of the feature labels in the same order as the coefficients
func (w *Weights) FeatureLabels() ([]feature.Feature, error) {
	labels := make([]feature.Feature, 0, len(w.Coef))
	for _, fw := range w.Coef {
		feat, err := fw.ToFeature()
		if err != nil {
			return nil, err
		}
		labels = append(labels, feat)
	}
	return labels, nil
}

// Coefficients returns a slice copy of the coefficients
func (w *Weights) Coefficients() []float64 {
	coef := make([]float64, 0, len(w.Coef))
	for _, fw := range w.Coef {
		coef = append(coef, fw.Value)
	}
	return coef
}

func (w Weights) tablePrint(wr io.Writer, prefix, indent string, indentGrowth int) error {
	if _, err := fmt.Fprintf(wr, "%s%sWeights:\n", prefix, indentExpand(indent, indentGrowth)); err != nil {
		return err
	}
	tbl := tabwriter.NewWriter(wr, 0, 0, 1, ' ', tabwriter.AlignRight)
	if _, err := fmt.Fprintf(tbl, "%s%sType\tLabels\tValue\t\n", prefix, indentExpand(indent, indentGrowth+1)); err != nil {
		return err
	}
	for _, fw := range w.Coef {
		labelOut, err := json.Marshal(fw.Labels)
		if err != nil {
			return err
		}
		val := fmt.Sprintf("%.3f", fw.Value)
		if fw.Value == 0 {
			val = "..."
		}
		if _, err := fmt.Fprintf(tbl, "%s%s%s\t%s\t%s\t\n",
			prefix, indentExpand(indent, indentGrowth+1),
			fw.Type, string(labelOut), val); err != nil {
			return err
		}
	}
	return tbl.Flush()
}

// FeatureWeight represents a feature described with a type e.g. polynomial, labels and the value
type FeatureWeight struct {
	Labels map[string]string   `json:"labels"`
	Type   feature.FeatureType `json:"type"`
	Value  float64             `json:"value"`
}

func NewFeatureWeight(f feature.Feature, val float64) FeatureWeight {
	return FeatureWeight{
		Labels: f.Decode(),
		Type:   f.Type(),
		Value:  val,
	}
}

// ToFeature transforms the Type and Labels into a feature type
func (fw *FeatureWeight) ToFeature() (feature.Feature, error) {
	if fw == nil {
		return nil, ErrUnknownFeatureType
	}

	bytes, err := json.Marshal(fw.Labels)
	if err != nil {
		return nil, err
	}

	var feat feature.Feature
	switch fw.Type {
	case feature.FeatureTypePolynomial:
		feat = new(feature.Polynomial)
	default:
		return nil, ErrUnknownFeatureType
	}
	if err := json.Unmarshal(bytes, feat); err != nil {
		return nil, err
	}
	return feat, nil
}
