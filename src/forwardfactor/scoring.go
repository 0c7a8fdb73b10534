package forwardfactor

import (
	"fmt"

	"github.com/jiaming2012/forward-factor/src/eventmodels"
)

// Step is one row of a threshold table: Value applies when |FF| >= Min.
type Step struct {
	Min   float64
	Value float64
}

// StepTable is evaluated top to bottom; rows must be sorted by Min descending.
type StepTable struct {
	Steps   []Step
	Default float64
}

func (t StepTable) Lookup(x float64) float64 {
	for _, s := range t.Steps {
		if x >= s.Min {
			return s.Value
		}
	}

	return t.Default
}

var (
	ProbabilityTable = StepTable{
		Steps:   []Step{{80, 85}, {60, 80}, {40, 75}, {30, 70}, {20, 65}},
		Default: 60,
	}

	RiskRewardTable = StepTable{
		Steps:   []Step{{80, 5.0}, {60, 4.0}, {40, 3.5}, {30, 3.0}, {20, 2.5}},
		Default: 2.0,
	}

	RatingForwardFactorBonus = StepTable{
		Steps:   []Step{{80, 3}, {60, 2}, {40, 1}},
		Default: 0,
	}
)

const (
	EarningsProbabilityDiscount = 0.85
	BaseRating                  = 5
	MinRating                   = 0
	MaxRating                   = 10
	SweetSpotMinDTE             = 20
	SweetSpotMaxDTE             = 60
	HighProbability             = 80.0
	HighRiskReward              = 4.0
)

// ProbabilityOfProfit is a heuristic step function of |FF|, discounted when an
// earnings event is near.
func ProbabilityOfProfit(opp *eventmodels.Opportunity, info *eventmodels.EarningsInfo) float64 {
	p := ProbabilityTable.Lookup(opp.AbsForwardFactor())
	if HasEarningsSoon(opp, info) {
		p *= EarningsProbabilityDiscount
	}

	return p
}

func RiskReward(opp *eventmodels.Opportunity) float64 {
	return RiskRewardTable.Lookup(opp.AbsForwardFactor())
}

// Rating combines signal strength, earnings positioning, DTE and the heuristics
// into an integer in [MinRating, MaxRating].
func Rating(opp *eventmodels.Opportunity, info *eventmodels.EarningsInfo, probability, riskReward float64) int {
	rating := BaseRating + int(RatingForwardFactorBonus.Lookup(opp.AbsForwardFactor()))

	if info.IsCleanStraddle() && HasEarningsSoon(opp, info) {
		rating++
	}

	if opp.FrontDTE >= SweetSpotMinDTE && opp.FrontDTE <= SweetSpotMaxDTE {
		rating++
	}

	if opp.IsInverted() {
		rating--
	}

	if probability >= HighProbability {
		rating++
	}

	if riskReward >= HighRiskReward {
		rating++
	}

	return clamp(rating, MinRating, MaxRating)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}

	if v > hi {
		return hi
	}

	return v
}

func Thesis(opp *eventmodels.Opportunity, info *eventmodels.EarningsInfo) string {
	var direction, explanation string

	if opp.Signal() == eventmodels.SignalSell {
		direction = "SELL FRONT / BUY BACK"
		explanation = fmt.Sprintf(
			"Front contract IV (%.1f%%) is significantly elevated compared to the implied forward volatility (%.1f%%). "+
				"This %.1f%% premium suggests the front contract is overpriced relative to the back contract (%.1f%% IV).",
			opp.FrontIV, opp.ForwardVol, opp.ForwardFactor, opp.BackIV,
		)
	} else {
		direction = "BUY FRONT / SELL BACK"
		explanation = fmt.Sprintf(
			"Front contract IV (%.1f%%) is significantly depressed compared to the implied forward volatility (%.1f%%). "+
				"This %.1f%% discount suggests the front contract is underpriced relative to the back contract (%.1f%% IV).",
			opp.FrontIV, opp.ForwardVol, opp.AbsForwardFactor(), opp.BackIV,
		)
	}

	var catalyst string
	switch {
	case info.HasDate():
		catalyst = fmt.Sprintf("\n\nCATALYST: Earnings on %s. ", info.EarningsDate.Format("2006-01-02"))
		if info.IsCleanStraddle() {
			catalyst += "Front expires before earnings, back expires after. This creates a natural volatility term structure around the event."
		} else if info.BothPostEarnings {
			catalyst += "Both contracts expire after earnings. IV differential may reflect post-earnings volatility decay."
		}
	case opp.HasEarningsSoon:
		catalyst = "\n\nCATALYST: Earnings expected soon. This volatility mispricing may be event-driven. Verify earnings date manually before trading."
	default:
		catalyst = "\n\nNO IMMINENT CATALYST: No earnings expected soon. However, always verify earnings calendar manually before trading."
	}

	return direction + "\n\n" + explanation + catalyst
}

func TradeStructure(opp *eventmodels.Opportunity) string {
	front := opp.FrontDate.Format("2006-01-02")
	back := opp.BackDate.Format("2006-01-02")

	if opp.Signal() == eventmodels.SignalSell {
		return fmt.Sprintf(
			"**Calendar Spread (Credit)**\n"+
				"- Sell %s %s ATM straddle/strangle\n"+
				"- Buy %s %s ATM straddle/strangle\n"+
				"- Net credit from elevated front IV\n"+
				"- Profit from front IV decay and/or time decay",
			opp.Ticker, front, opp.Ticker, back,
		)
	}

	return fmt.Sprintf(
		"**Reverse Calendar Spread (Debit)**\n"+
			"- Buy %s %s ATM straddle/strangle\n"+
			"- Sell %s %s ATM straddle/strangle\n"+
			"- Net debit to capture underpriced front IV\n"+
			"- Profit from front IV expansion",
		opp.Ticker, front, opp.Ticker, back,
	)
}
