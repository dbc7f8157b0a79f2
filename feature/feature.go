// Package feature describes the regressors of a design matrix along with their labels
package feature

type FeatureType int

const (
	FeatureTypePolynomial FeatureType = iota
)

func (f FeatureType) String() string {
	switch f {
	case FeatureTypePolynomial:
		return "polynomial"
	}
	return "unknown"
}

type Feature interface {
	String() string
	Get(string) (string, bool)
	Type() FeatureType
	Decode() map[string]string
}
