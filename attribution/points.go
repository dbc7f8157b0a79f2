package attribution

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const pointsPlaces = 2

func (a *Attribution) toPoints(v float64) decimal.Decimal {
	// unit is validated on allocation
	scale, _ := a.Unit.scale()
	return decimal.NewFromFloat(v).Mul(decimal.NewFromFloat(scale)).Round(pointsPlaces)
}

// PercentagePoints returns each factor's amount in percentage points rounded to two
// places, in factor order
func (a *Attribution) PercentagePoints() []decimal.Decimal {
	out := make([]decimal.Decimal, len(a.Factors))
	for i, f := range a.Factors {
		out[i] = a.toPoints(f.Amount)
	}
	return out
}

// Summary renders the combined value followed by one line per factor, e.g.
//
//	combined 97.10% (baseline 96.00% + 1.10 pp)
//	  risk_prescreen +0.50 pp (45.45%)
func (a *Attribution) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "combined %s%% (baseline %s%% + %s pp)\n",
		a.toPoints(a.Combined).StringFixed(pointsPlaces),
		a.toPoints(a.Baseline).StringFixed(pointsPlaces),
		a.toPoints(a.Total).StringFixed(pointsPlaces),
	)
	for i, pts := range a.PercentagePoints() {
		share := decimal.NewFromFloat(a.Factors[i].Share).Round(pointsPlaces)
		fmt.Fprintf(&sb, "  %s +%s pp (%s%%)\n",
			a.Factors[i].Name, pts.StringFixed(pointsPlaces), share.StringFixed(pointsPlaces))
	}
	return sb.String()
}
