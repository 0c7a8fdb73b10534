package eventservices

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/forward-factor/src/eventmodels"
)

// ChainedEarningsProvider asks each provider in turn until one reports a date.
type ChainedEarningsProvider struct {
	Providers []eventmodels.EarningsProvider
}

func NewChainedEarningsProvider(providers ...eventmodels.EarningsProvider) *ChainedEarningsProvider {
	return &ChainedEarningsProvider{Providers: providers}
}

// FetchNextEarningsDate returns an error only when every provider failed.
func (c *ChainedEarningsProvider) FetchNextEarningsDate(ctx context.Context, symbol eventmodels.StockSymbol) (string, bool, error) {
	var errs []error

	for _, p := range c.Providers {
		date, found, err := p.FetchNextEarningsDate(ctx, symbol)
		if err != nil {
			log.WithField("ticker", symbol).Warnf("ChainedEarningsProvider: %T failed: %v", p, err)
			errs = append(errs, err)
			continue
		}

		if found {
			return date, true, nil
		}
	}

	if len(errs) > 0 && len(errs) == len(c.Providers) {
		return "", false, fmt.Errorf("ChainedEarningsProvider: %w", errors.Join(errs...))
	}

	return "", false, nil
}
