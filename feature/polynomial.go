package feature

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Polynomial is the x^Degree regressor over a sequence index x
type Polynomial struct {
	Degree int `json:"degree"`
}

func NewPolynomial(degree int) *Polynomial {
	return &Polynomial{degree}
}

// String returns the string representation of the polynomial feature
func (p Polynomial) String() string {
	return fmt.Sprintf("poly_%d", p.Degree)
}

// Term renders the feature as it appears in a model equation, empty for the constant term
func (p Polynomial) Term() string {
	switch p.Degree {
	case 0:
		return ""
	case 1:
		return "x"
	}
	return fmt.Sprintf("x^%d", p.Degree)
}

// Get returns the value of an arbitrary label and returns the value along with whether
// the label exists
func (p Polynomial) Get(label string) (string, bool) {
	switch strings.ToLower(label) {
	case "degree":
		return strconv.Itoa(p.Degree), true
	}
	return "", false
}

// Type returns the type of this feature
func (p Polynomial) Type() FeatureType {
	return FeatureTypePolynomial
}

// Decode converts the feature into a map of label values
func (p Polynomial) Decode() map[string]string {
	res := make(map[string]string)
	res["degree"] = strconv.Itoa(p.Degree)
	return res
}

// UnmarshalJSON is the custom unmarshalling to convert a map[string]string
// to a polynomial feature. A numeric degree is accepted as well.
func (p *Polynomial) UnmarshalJSON(data []byte) error {
	var labelStr struct {
		Degree json.RawMessage `json:"degree"`
	}
	if err := json.Unmarshal(data, &labelStr); err != nil {
		return err
	}
	raw := strings.Trim(string(labelStr.Degree), `"`)
	degree, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("invalid polynomial degree %q, %w", raw, err)
	}
	p.Degree = degree
	return nil
}

// Generate evaluates x^Degree at every point
func (p Polynomial) Generate(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = math.Pow(v, float64(p.Degree))
	}
	return out
}

// PolynomialBasis returns the set of features [x^0, x^1, ..., x^degree] evaluated at x,
// ordered by ascending degree.
func PolynomialBasis(x []float64, degree int) (*Set, error) {
	s := NewSet()
	for d := 0; d <= degree; d++ {
		feat := NewPolynomial(d)
		if err := s.Set(feat, feat.Generate(x)); err != nil {
			return nil, err
		}
	}
	return s, nil
}
