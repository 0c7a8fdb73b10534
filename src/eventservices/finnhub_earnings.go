package eventservices

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"

	"github.com/jiaming2012/forward-factor/src/eventmodels"
	"github.com/jiaming2012/forward-factor/src/utils"
)

const (
	FinnhubBaseURL           = "https://finnhub.io/api/v1"
	finnhubLookaheadDays     = 90
	finnhubMaxRetries        = 2
	finnhubRequestsPerSecond = 1
)

type FinnhubEarningsProvider struct {
	BaseURL string
	APIKey  string
	Limiter *rate.Limiter
	Client  *http.Client
	Now     func() time.Time
}

func NewFinnhubEarningsProvider(apiKey string) *FinnhubEarningsProvider {
	return &FinnhubEarningsProvider{
		BaseURL: FinnhubBaseURL,
		APIKey:  apiKey,
		Limiter: rate.NewLimiter(finnhubRequestsPerSecond, 1),
		Client:  utils.NewHTTPClient(10 * time.Second),
		Now:     time.Now,
	}
}

// FetchNextEarningsDate searches the earnings calendar from today through the
// next 90 days and returns the earliest announcement.
func (p *FinnhubEarningsProvider) FetchNextEarningsDate(ctx context.Context, symbol eventmodels.StockSymbol) (string, bool, error) {
	tracer := otel.Tracer("FinnhubEarningsProvider")
	ctx, span := tracer.Start(ctx, "FinnhubEarningsProvider.FetchNextEarningsDate")
	defer span.End()

	span.SetAttributes(attribute.String("ticker", symbol.String()))

	today := utils.DateOf(p.Now())

	q := url.Values{}
	q.Set("symbol", symbol.String())
	q.Set("from", today.Format(utils.DateLayout))
	q.Set("to", today.AddDate(0, 0, finnhubLookaheadDays).Format(utils.DateLayout))
	q.Set("token", p.APIKey)

	u := strings.TrimRight(p.BaseURL, "/") + "/calendar/earnings?" + q.Encode()

	if err := p.Limiter.Wait(ctx); err != nil {
		return "", false, fmt.Errorf("FinnhubEarningsProvider: rate limiter: %w", err)
	}

	body, err := utils.GetWithRetry(ctx, p.Client, u, map[string]string{"Accept": "application/json"}, finnhubMaxRetries)
	if err != nil {
		span.RecordError(err)
		return "", false, fmt.Errorf("FinnhubEarningsProvider: %w: %w", eventmodels.ErrProviderUnavailable, err)
	}

	var dto eventmodels.FinnhubEarningsCalendarDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return "", false, fmt.Errorf("FinnhubEarningsProvider: failed to decode json: %w", err)
	}

	var dates []string
	for _, item := range dto.EarningsCalendar {
		if item.Symbol != "" && !strings.EqualFold(item.Symbol, symbol.String()) {
			continue
		}

		if _, err := utils.ParseDate(item.Date); err != nil {
			continue
		}

		dates = append(dates, item.Date)
	}

	if len(dates) == 0 {
		return "", false, nil
	}

	sort.Strings(dates)

	return dates[0], true, nil
}
