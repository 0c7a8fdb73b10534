package forwardfactor

import (
	"fmt"
	"math"
	"time"

	"github.com/montanaflynn/stats"
	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/forward-factor/src/eventmodels"
	"github.com/jiaming2012/forward-factor/src/utils"
)

const (
	ATMDeltaMin        = 0.45
	ATMDeltaMax        = 0.55
	MaxStrikeDeviation = 0.10
	MaxValidIV         = 500.0
	MinSampleSize      = 3
	MinTermPoints      = 2
)

// EstimateATMPrice takes the strike of the first contract whose delta magnitude
// is in [ATMDeltaMin, ATMDeltaMax].
func EstimateATMPrice(contracts []eventmodels.ContractObservation) (float64, bool) {
	for _, c := range contracts {
		if c.Delta == nil || c.Strike <= 0 {
			continue
		}

		delta := math.Abs(*c.Delta)
		if delta >= ATMDeltaMin && delta <= ATMDeltaMax {
			return c.Strike, true
		}
	}

	return 0, false
}

// BuildTermStructure groups near-the-money contracts by expiration and averages
// their implied volatility. Expirations with fewer than MinSampleSize contracts
// are dropped. DTE is relative to today, so the result must be rebuilt daily.
func BuildTermStructure(contracts []eventmodels.ContractObservation, today time.Time) (eventmodels.TermStructure, error) {
	price, found := EstimateATMPrice(contracts)
	if !found {
		return nil, fmt.Errorf("BuildTermStructure: %w: %w", eventmodels.ErrDataInsufficient, eventmodels.ErrNoATMEstimate)
	}

	today = utils.DateOf(today)
	ivsByExpiration := make(map[eventmodels.ExpirationDate][]float64)
	expirations := make(map[eventmodels.ExpirationDate]time.Time)

	for _, c := range contracts {
		if c.ImpliedVolatility == nil {
			continue
		}

		iv := *c.ImpliedVolatility
		if iv <= 0 || iv > MaxValidIV || math.IsNaN(iv) {
			continue
		}

		if math.Abs(c.Strike-price)/price > MaxStrikeDeviation {
			continue
		}

		exp, err := utils.ParseDate(c.Expiration)
		if err != nil {
			continue
		}

		if !exp.After(today) {
			continue
		}

		key := eventmodels.NewExpirationDate(exp)
		ivsByExpiration[key] = append(ivsByExpiration[key], iv)
		expirations[key] = exp
	}

	ts := make(eventmodels.TermStructure)
	for key, ivs := range ivsByExpiration {
		if len(ivs) < MinSampleSize {
			log.Debugf("BuildTermStructure: dropping %s with %d contracts", key, len(ivs))
			continue
		}

		mean, err := stats.Mean(ivs)
		if err != nil {
			continue
		}

		exp := expirations[key]
		ts[key] = eventmodels.TermPoint{
			Expiration: exp,
			DTE:        utils.DaysBetween(today, exp),
			IV:         mean,
			Count:      len(ivs),
		}
	}

	return ts, nil
}

// BuildUsableTermStructure is BuildTermStructure that also rejects ladders too
// short to form a pair.
func BuildUsableTermStructure(contracts []eventmodels.ContractObservation, today time.Time) (eventmodels.TermStructure, error) {
	ts, err := BuildTermStructure(contracts, today)
	if err != nil {
		return nil, err
	}

	if len(ts) < MinTermPoints {
		return nil, fmt.Errorf("BuildUsableTermStructure: found %d expirations: %w", len(ts), eventmodels.ErrDataInsufficient)
	}

	return ts, nil
}
