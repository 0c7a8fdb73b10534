package eventservices

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"

	"github.com/jiaming2012/forward-factor/src/eventmodels"
	"github.com/jiaming2012/forward-factor/src/utils"
)

const (
	tradierMaxExpirations = 12
	tradierMaxRetries     = 3
)

// TradierOptionChainProvider lists expirations of an underlying and then fetches
// each chain with greeks.
type TradierOptionChainProvider struct {
	ExpirationsURL string
	ChainURL       string
	BearerToken    string
	MaxExpirations int
	MaxContracts   int
	Limiter        *rate.Limiter
	Client         *http.Client
	Now            func() time.Time
}

func NewTradierOptionChainProvider(expirationsURL, chainURL, bearerToken string, requestsPerSecond float64, maxContracts int) *TradierOptionChainProvider {
	return &TradierOptionChainProvider{
		ExpirationsURL: expirationsURL,
		ChainURL:       chainURL,
		BearerToken:    bearerToken,
		MaxExpirations: tradierMaxExpirations,
		MaxContracts:   maxContracts,
		Limiter:        rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		Client:         utils.NewHTTPClient(10 * time.Second),
		Now:            time.Now,
	}
}

func (p *TradierOptionChainProvider) headers() map[string]string {
	return map[string]string{
		"Accept":        "application/json",
		"Authorization": fmt.Sprintf("Bearer %s", p.BearerToken),
	}
}

func (p *TradierOptionChainProvider) get(ctx context.Context, base string, query url.Values) ([]byte, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("get: failed to parse url: %w", err)
	}

	q := u.Query()
	for k, vs := range query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()

	if err := p.Limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("get: rate limiter: %w", err)
	}

	return utils.GetWithRetry(ctx, p.Client, u.String(), p.headers(), tradierMaxRetries)
}

// FetchExpirations returns the listed expirations after today, nearest first.
func (p *TradierOptionChainProvider) FetchExpirations(ctx context.Context, symbol eventmodels.StockSymbol) ([]string, error) {
	body, err := p.get(ctx, p.ExpirationsURL, url.Values{"symbol": {symbol.String()}})
	if err != nil {
		return nil, fmt.Errorf("FetchExpirations: %w", err)
	}

	dates, err := utils.ParseTradierResponse[string](body)
	if err != nil {
		return nil, fmt.Errorf("FetchExpirations: %w", err)
	}

	today := utils.DateOf(p.Now())

	var out []string
	for _, d := range dates {
		exp, err := utils.ParseDate(d)
		if err != nil {
			log.Warnf("FetchExpirations: skipping %s: %v", d, err)
			continue
		}

		if exp.After(today) {
			out = append(out, d)
		}
	}

	return out, nil
}

func (p *TradierOptionChainProvider) FetchChain(ctx context.Context, symbol eventmodels.StockSymbol, expiration string) ([]eventmodels.TradierOptionDTO, error) {
	body, err := p.get(ctx, p.ChainURL, url.Values{
		"symbol":     {symbol.String()},
		"expiration": {expiration},
		"greeks":     {"true"},
	})
	if err != nil {
		return nil, fmt.Errorf("FetchChain: %w", err)
	}

	options, err := utils.ParseTradierResponse[eventmodels.TradierOptionDTO](body)
	if err != nil {
		return nil, fmt.Errorf("FetchChain: %w", err)
	}

	return options, nil
}

func (p *TradierOptionChainProvider) FetchContracts(ctx context.Context, symbol eventmodels.StockSymbol) ([]eventmodels.ContractObservation, error) {
	tracer := otel.Tracer("TradierOptionChainProvider")
	ctx, span := tracer.Start(ctx, "TradierOptionChainProvider.FetchContracts")
	defer span.End()

	span.SetAttributes(attribute.String("ticker", symbol.String()))

	expirations, err := p.FetchExpirations(ctx, symbol)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch expirations")
		return nil, fmt.Errorf("FetchContracts: %w: %w", eventmodels.ErrProviderUnavailable, err)
	}

	if p.MaxExpirations > 0 && len(expirations) > p.MaxExpirations {
		expirations = expirations[:p.MaxExpirations]
	}

	var contracts []eventmodels.ContractObservation
	for _, exp := range expirations {
		options, err := p.FetchChain(ctx, symbol, exp)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to fetch chain")
			return nil, fmt.Errorf("FetchContracts: %w: %w", eventmodels.ErrProviderUnavailable, err)
		}

		for i := range options {
			contracts = append(contracts, options[i].ToObservation())
		}

		if p.MaxContracts > 0 && len(contracts) >= p.MaxContracts {
			contracts = contracts[:p.MaxContracts]
			break
		}
	}

	span.SetAttributes(attribute.Int("contracts", len(contracts)))

	return contracts, nil
}
