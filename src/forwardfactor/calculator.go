package forwardfactor

import (
	"fmt"
	"math"

	"github.com/jiaming2012/forward-factor/src/eventmodels"
)

const daysPerYear = 365.0

type Result struct {
	ForwardVariance float64
	ForwardVol      float64
	ForwardFactor   float64
}

// Calculate derives the forward volatility between two expirations and the
// forward factor of the front implied volatility against it. Volatilities are
// percentages. A non-positive forward variance yields ErrMathUndefined.
func Calculate(frontIV float64, frontDTE int, backIV float64, backDTE int) (Result, error) {
	if frontDTE <= 0 || backDTE <= frontDTE {
		return Result{}, fmt.Errorf("Calculate: front dte %d, back dte %d: %w", frontDTE, backDTE, eventmodels.ErrMathUndefined)
	}

	t1 := float64(frontDTE) / daysPerYear
	t2 := float64(backDTE) / daysPerYear

	sigma1 := frontIV / 100.0
	sigma2 := backIV / 100.0

	forwardVariance := (sigma2*sigma2*t2 - sigma1*sigma1*t1) / (t2 - t1)

	if forwardVariance <= 0 || math.IsNaN(forwardVariance) {
		return Result{}, fmt.Errorf("Calculate: forward variance %.6f: %w", forwardVariance, eventmodels.ErrMathUndefined)
	}

	sigmaForward := math.Sqrt(forwardVariance)

	return Result{
		ForwardVariance: forwardVariance,
		ForwardVol:      sigmaForward * 100.0,
		ForwardFactor:   (sigma1 - sigmaForward) / sigmaForward * 100.0,
	}, nil
}
