package eventservices

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"

	"github.com/jiaming2012/forward-factor/src/eventmodels"
	"github.com/jiaming2012/forward-factor/src/utils"
)

// TradierMarketCalendar answers trading day questions from Tradier's monthly
// market calendar. Months are fetched once and cached.
type TradierMarketCalendar struct {
	URL         string
	BearerToken string
	Client      *http.Client

	mu     sync.Mutex
	months map[string]*eventmodels.MarketCalendar
}

func NewTradierMarketCalendar(url, bearerToken string) *TradierMarketCalendar {
	return &TradierMarketCalendar{
		URL:         url,
		BearerToken: bearerToken,
		Client:      utils.NewHTTPClient(10 * time.Second),
		months:      make(map[string]*eventmodels.MarketCalendar),
	}
}

func (c *TradierMarketCalendar) IsTradingDay(ctx context.Context, date time.Time) (bool, error) {
	calendar, err := c.FetchMonth(ctx, date)
	if err != nil {
		return false, fmt.Errorf("IsTradingDay: %w", err)
	}

	day, found := calendar.FindDay(date.Format(utils.DateLayout))
	if !found {
		log.Debugf("IsTradingDay: %s missing from market calendar, using weekday rule", date.Format(utils.DateLayout))
		return utils.IsWeekday(date), nil
	}

	return day.Status == "open", nil
}

// FetchMonth returns the market calendar for the month containing date.
func (c *TradierMarketCalendar) FetchMonth(ctx context.Context, date time.Time) (*eventmodels.MarketCalendar, error) {
	key := date.Format("2006-01")

	c.mu.Lock()
	defer c.mu.Unlock()

	if cached, ok := c.months[key]; ok {
		return cached, nil
	}

	tracer := otel.Tracer("TradierMarketCalendar")
	ctx, span := tracer.Start(ctx, "TradierMarketCalendar.FetchMonth")
	defer span.End()

	log.Debugf("Cache invalid. Fetching market calendar for %v", key)

	u, err := url.Parse(c.URL)
	if err != nil {
		return nil, fmt.Errorf("FetchMonth: failed to parse url: %w", err)
	}

	q := u.Query()
	q.Set("month", strconv.Itoa(int(date.Month())))
	q.Set("year", strconv.Itoa(date.Year()))
	u.RawQuery = q.Encode()

	headers := map[string]string{
		"Accept":        "application/json",
		"Authorization": fmt.Sprintf("Bearer %s", c.BearerToken),
	}

	body, err := utils.GetWithRetry(ctx, c.Client, u.String(), headers, 2)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("FetchMonth: failed to fetch market calendar: %w", err)
	}

	var dto eventmodels.MarketCalendar
	if err := json.Unmarshal(body, &dto); err != nil {
		return nil, fmt.Errorf("FetchMonth: failed to decode json: %w", err)
	}

	c.months[key] = &dto

	return &dto, nil
}

// WeekdayCalendar treats every weekday as a trading day. It is used when no
// market calendar credentials are configured.
type WeekdayCalendar struct{}

func (WeekdayCalendar) IsTradingDay(_ context.Context, date time.Time) (bool, error) {
	return utils.IsWeekday(date), nil
}
