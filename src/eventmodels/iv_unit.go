package eventmodels

// IVUnit is the scale a provider reports implied volatility in.
type IVUnit int

const (
	IVUnitPercent IVUnit = iota
	IVUnitFraction
)

// NormalizeIV converts a provider implied volatility into a percentage.
func NormalizeIV(value float64, unit IVUnit) float64 {
	if unit == IVUnitFraction {
		return value * 100.0
	}

	return value
}
