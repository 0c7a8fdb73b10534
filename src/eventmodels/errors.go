package eventmodels

import "errors"

var (
	ErrDataInsufficient    = errors.New("insufficient data")
	ErrNoATMEstimate       = errors.New("no at-the-money price estimate")
	ErrMathUndefined       = errors.New("forward variance undefined")
	ErrProviderUnavailable = errors.New("provider unavailable")
)
