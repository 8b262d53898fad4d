package domain

// Normalizer turns a raw coordinate value into its stored form.
type Normalizer interface {
	Normalize(value float64) (float64, error)
}

// NormalizerFunc adapts a plain function to Normalizer.
type NormalizerFunc func(value float64) (float64, error)

func (f NormalizerFunc) Normalize(value float64) (float64, error) { return f(value) }

// DefaultNormalizer is the uncached Normalize.
var DefaultNormalizer Normalizer = NormalizerFunc(Normalize)

// Normalize formats value as a D:M:S string and parses it back. The string
// always carries minutes and seconds, so the result goes through the
// validated path of ParseDMS and fails with InvalidFormat whenever rounding
// leaves a fractional degree or minute, or pushes a component out of range.
func Normalize(value float64) (float64, error) {
	s, err := FormatDMS(value)
	if err != nil {
		return 0, err
	}
	return ParseDMS(s)
}
