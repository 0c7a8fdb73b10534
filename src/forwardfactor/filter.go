package forwardfactor

import (
	"fmt"
	"math"

	"github.com/jiaming2012/forward-factor/src/eventmodels"
)

const (
	MinForwardFactor     = 30.0
	MinDTE               = 7
	MaxDTE               = 180
	MinIV                = 15.0
	MaxIV                = 150.0
	EarningsOverrideFF   = 40.0
	ConsistencyTolerance = 2.0
	MinDTESpread         = 3
)

type FilterConfig struct {
	MinForwardFactor     float64
	MinDTE               int
	MaxDTE               int
	MinIV                float64
	MaxIV                float64
	EarningsOverrideFF   float64
	ConsistencyTolerance float64
	MinDTESpread         int
}

func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		MinForwardFactor:     MinForwardFactor,
		MinDTE:               MinDTE,
		MaxDTE:               MaxDTE,
		MinIV:                MinIV,
		MaxIV:                MaxIV,
		EarningsOverrideFF:   EarningsOverrideFF,
		ConsistencyTolerance: ConsistencyTolerance,
		MinDTESpread:         MinDTESpread,
	}
}

// Gate is one independent quality check. Check returns the rejection reason
// and true when the opportunity fails the gate.
type Gate struct {
	Name  string
	Check func(cfg FilterConfig, opp *eventmodels.Opportunity, info *eventmodels.EarningsInfo) (string, bool)
}

var Gates = []Gate{
	{Name: "magnitude", Check: checkMagnitude},
	{Name: "front_dte_floor", Check: checkFrontDTEFloor},
	{Name: "front_dte_ceiling", Check: checkFrontDTECeiling},
	{Name: "iv_floor", Check: checkIVFloor},
	{Name: "iv_ceiling", Check: checkIVCeiling},
	{Name: "earnings_conflict", Check: checkEarningsConflict},
	{Name: "calculation_consistency", Check: checkConsistency},
	{Name: "spread_width", Check: checkSpreadWidth},
}

// Evaluate runs every gate and returns all rejection reasons in gate order.
// An empty result means the opportunity is a quality setup.
func (c FilterConfig) Evaluate(opp *eventmodels.Opportunity, info *eventmodels.EarningsInfo) []string {
	reasons := []string{}
	for _, g := range Gates {
		if reason, rejected := g.Check(c, opp, info); rejected {
			reasons = append(reasons, reason)
		}
	}

	return reasons
}

// HasEarningsSoon combines the opportunity hint with the resolved earnings info.
func HasEarningsSoon(opp *eventmodels.Opportunity, info *eventmodels.EarningsInfo) bool {
	return opp.HasEarningsSoon || (info != nil && info.HasEarningsSoon)
}

// VerifyForwardFactor re-derives the forward factor from the stored volatilities
// and DTEs and compares it against the stored value.
func VerifyForwardFactor(opp *eventmodels.Opportunity, tolerance float64) (float64, bool, error) {
	result, err := Calculate(opp.FrontIV, opp.FrontDTE, opp.BackIV, opp.BackDTE)
	if err != nil {
		return 0, false, err
	}

	return result.ForwardFactor, math.Abs(result.ForwardFactor-opp.ForwardFactor) < tolerance, nil
}

func checkMagnitude(cfg FilterConfig, opp *eventmodels.Opportunity, _ *eventmodels.EarningsInfo) (string, bool) {
	if opp.AbsForwardFactor() < cfg.MinForwardFactor {
		return fmt.Sprintf("Forward Factor too low: %.1f%% (need >=%.1f%%)", opp.ForwardFactor, cfg.MinForwardFactor), true
	}

	return "", false
}

func checkFrontDTEFloor(cfg FilterConfig, opp *eventmodels.Opportunity, _ *eventmodels.EarningsInfo) (string, bool) {
	if opp.FrontDTE < cfg.MinDTE {
		return fmt.Sprintf("Front DTE too short: %d days (need >=%d)", opp.FrontDTE, cfg.MinDTE), true
	}

	return "", false
}

func checkFrontDTECeiling(cfg FilterConfig, opp *eventmodels.Opportunity, _ *eventmodels.EarningsInfo) (string, bool) {
	if opp.FrontDTE > cfg.MaxDTE {
		return fmt.Sprintf("Front DTE too long: %d days (need <=%d)", opp.FrontDTE, cfg.MaxDTE), true
	}

	return "", false
}

func checkIVFloor(cfg FilterConfig, opp *eventmodels.Opportunity, _ *eventmodels.EarningsInfo) (string, bool) {
	if opp.FrontIV < cfg.MinIV {
		return fmt.Sprintf("Front IV too low: %.1f%% (need >=%.1f%%)", opp.FrontIV, cfg.MinIV), true
	}

	return "", false
}

func checkIVCeiling(cfg FilterConfig, opp *eventmodels.Opportunity, _ *eventmodels.EarningsInfo) (string, bool) {
	if opp.FrontIV > cfg.MaxIV {
		return fmt.Sprintf("Front IV too high: %.1f%% (need <=%.1f%%)", opp.FrontIV, cfg.MaxIV), true
	}

	return "", false
}

// An inverted curve ahead of earnings is usually post-event IV crush, not mispricing.
func checkEarningsConflict(cfg FilterConfig, opp *eventmodels.Opportunity, info *eventmodels.EarningsInfo) (string, bool) {
	if !HasEarningsSoon(opp, info) || !opp.IsInverted() {
		return "", false
	}

	if opp.AbsForwardFactor() < cfg.EarningsOverrideFF {
		return fmt.Sprintf(
			"FALSE SIGNAL: Inverted term structure (front IV %.1f%% > back IV %.1f%%) with earnings soon likely indicates post-earnings IV decay. FF %.1f%% not strong enough to override (need >=%.1f%% with earnings catalyst)",
			opp.FrontIV, opp.BackIV, opp.ForwardFactor, cfg.EarningsOverrideFF,
		), true
	}

	return "", false
}

func checkConsistency(cfg FilterConfig, opp *eventmodels.Opportunity, _ *eventmodels.EarningsInfo) (string, bool) {
	calculated, matches, err := VerifyForwardFactor(opp, cfg.ConsistencyTolerance)
	if err != nil {
		return fmt.Sprintf("Forward Factor calculation mismatch: reported %.1f%%, forward variance undefined", opp.ForwardFactor), true
	}

	if !matches {
		return fmt.Sprintf("Forward Factor calculation mismatch: reported %.1f%%, calculated %.1f%%", opp.ForwardFactor, calculated), true
	}

	return "", false
}

func checkSpreadWidth(cfg FilterConfig, opp *eventmodels.Opportunity, _ *eventmodels.EarningsInfo) (string, bool) {
	if spread := opp.DTESpread(); spread < cfg.MinDTESpread {
		return fmt.Sprintf("DTE difference too small: %d days (need >=%d)", spread, cfg.MinDTESpread), true
	}

	return "", false
}
