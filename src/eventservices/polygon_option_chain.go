package eventservices

import (
	"context"
	"fmt"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"

	"github.com/jiaming2012/forward-factor/src/eventmodels"
)

const polygonSnapshotPageLimit = 250

// PolygonOptionChainProvider reads the options chain snapshot of an underlying.
type PolygonOptionChainProvider struct {
	Client       *polygon.Client
	Limiter      *rate.Limiter
	PageLimit    int
	MaxContracts int
}

func NewPolygonOptionChainProvider(apiKey string, requestsPerSecond float64, maxContracts int) *PolygonOptionChainProvider {
	return &PolygonOptionChainProvider{
		Client:       polygon.New(apiKey),
		Limiter:      rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		PageLimit:    polygonSnapshotPageLimit,
		MaxContracts: maxContracts,
	}
}

func (p *PolygonOptionChainProvider) FetchContracts(ctx context.Context, symbol eventmodels.StockSymbol) ([]eventmodels.ContractObservation, error) {
	tracer := otel.Tracer("PolygonOptionChainProvider")
	ctx, span := tracer.Start(ctx, "PolygonOptionChainProvider.FetchContracts")
	defer span.End()

	span.SetAttributes(attribute.String("ticker", symbol.String()))

	if err := p.Limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("FetchContracts: rate limiter: %w", err)
	}

	limit := p.PageLimit
	params := &models.ListOptionsChainParams{
		UnderlyingAsset: symbol.String(),
		Limit:           &limit,
	}

	log.Debugf("fetching polygon option chain snapshot for %s", symbol)

	iter := p.Client.ListOptionsChainSnapshot(ctx, params)

	var contracts []eventmodels.ContractObservation
	for iter.Next() {
		contracts = append(contracts, ConvertPolygonSnapshot(iter.Item()))

		if p.MaxContracts > 0 && len(contracts) >= p.MaxContracts {
			break
		}
	}

	if err := iter.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list options chain snapshot")
		return nil, fmt.Errorf("FetchContracts: failed to list options chain for %s: %w: %w", symbol, eventmodels.ErrProviderUnavailable, err)
	}

	span.SetAttributes(attribute.Int("contracts", len(contracts)))

	return contracts, nil
}

// ConvertPolygonSnapshot maps a snapshot onto a ContractObservation. Polygon
// reports implied volatility as a fraction and omits it (zero) for illiquid contracts.
func ConvertPolygonSnapshot(s models.OptionContractSnapshot) eventmodels.ContractObservation {
	obs := eventmodels.ContractObservation{
		Strike:     s.Details.StrikePrice,
		Expiration: time.Time(s.Details.ExpirationDate).Format("2006-01-02"),
		OptionType: eventmodels.OptionType(s.Details.ContractType),
	}

	if s.ImpliedVolatility > 0 {
		iv := eventmodels.NormalizeIV(s.ImpliedVolatility, eventmodels.IVUnitFraction)
		obs.ImpliedVolatility = &iv
	}

	if s.Greeks.Delta != 0 {
		delta := s.Greeks.Delta
		obs.Delta = &delta
	}

	return obs
}
