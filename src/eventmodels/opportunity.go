package eventmodels

import (
	"fmt"
	"math"
	"time"
)

type Signal string

const (
	// SignalSell sells the front expiration and buys the back one.
	SignalSell Signal = "SELL"
	// SignalBuy buys the front expiration and sells the back one.
	SignalBuy Signal = "BUY"
)

func SignalFor(forwardFactor float64) Signal {
	if forwardFactor > 0 {
		return SignalSell
	}

	return SignalBuy
}

// Opportunity is a front/back expiration pair of one underlying. It is built once
// and shared read-only by every Analysis that references it.
type Opportunity struct {
	Ticker          StockSymbol
	ForwardFactor   float64
	FrontDate       time.Time
	BackDate        time.Time
	FrontDTE        int
	BackDTE         int
	FrontIV         float64
	BackIV          float64
	ForwardVol      float64
	HasEarningsSoon bool
}

func (o *Opportunity) Signal() Signal {
	return SignalFor(o.ForwardFactor)
}

func (o *Opportunity) AbsForwardFactor() float64 {
	return math.Abs(o.ForwardFactor)
}

// IsInverted reports whether front implied volatility exceeds back implied volatility.
func (o *Opportunity) IsInverted() bool {
	return o.FrontIV > o.BackIV
}

func (o *Opportunity) DTESpread() int {
	return o.BackDTE - o.FrontDTE
}

func (o *Opportunity) String() string {
	return fmt.Sprintf("%s %s/%s FF=%+.2f%%", o.Ticker, o.FrontDate.Format("2006-01-02"), o.BackDate.Format("2006-01-02"), o.ForwardFactor)
}
