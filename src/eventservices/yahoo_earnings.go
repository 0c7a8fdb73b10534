package eventservices

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"

	"github.com/jiaming2012/forward-factor/src/eventmodels"
	"github.com/jiaming2012/forward-factor/src/utils"
)

const (
	YahooBaseURL   = "https://finance.yahoo.com"
	yahooUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

var (
	yahooTimestampPatterns = []*regexp.Regexp{
		regexp.MustCompile(`"earningsTimestamp":\{"raw":(\d+)`),
		regexp.MustCompile(`"earningsTimestamp":\s*(\d+)`),
	}

	yahooTextPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Next Earnings Date[^<]*?([A-Za-z]+ \d{1,2}, \d{4})`),
		regexp.MustCompile(`(?i)Earnings Date[^<]*?([A-Za-z]+ \d{1,2}, \d{4})`),
	}

	yahooTextLayouts = []string{"Jan 2, 2006", "January 2, 2006"}
)

// YahooEarningsProvider scrapes the public quote page. No API key is required.
type YahooEarningsProvider struct {
	BaseURL string
	Limiter *rate.Limiter
	Client  *http.Client
}

func NewYahooEarningsProvider() *YahooEarningsProvider {
	return &YahooEarningsProvider{
		BaseURL: YahooBaseURL,
		Limiter: rate.NewLimiter(2, 1),
		Client:  utils.NewHTTPClient(10 * time.Second),
	}
}

func (p *YahooEarningsProvider) FetchNextEarningsDate(ctx context.Context, symbol eventmodels.StockSymbol) (string, bool, error) {
	tracer := otel.Tracer("YahooEarningsProvider")
	ctx, span := tracer.Start(ctx, "YahooEarningsProvider.FetchNextEarningsDate")
	defer span.End()

	span.SetAttributes(attribute.String("ticker", symbol.String()))

	if err := p.Limiter.Wait(ctx); err != nil {
		return "", false, fmt.Errorf("YahooEarningsProvider: rate limiter: %w", err)
	}

	u := strings.TrimRight(p.BaseURL, "/") + "/quote/" + url.PathEscape(symbol.String())

	body, err := utils.Get(ctx, p.Client, u, map[string]string{"User-Agent": yahooUserAgent})
	if err != nil {
		span.RecordError(err)
		return "", false, fmt.Errorf("YahooEarningsProvider: %w: %w", eventmodels.ErrProviderUnavailable, err)
	}

	date, found := ExtractYahooEarningsDate(string(body))
	return date, found, nil
}

// ExtractYahooEarningsDate looks for the earnings timestamp embedded in the page
// data first and falls back to the rendered "Earnings Date" text.
func ExtractYahooEarningsDate(html string) (string, bool) {
	for _, re := range yahooTimestampPatterns {
		m := re.FindStringSubmatch(html)
		if m == nil {
			continue
		}

		ts, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}

		return time.Unix(ts, 0).UTC().Format(utils.DateLayout), true
	}

	for _, re := range yahooTextPatterns {
		m := re.FindStringSubmatch(html)
		if m == nil {
			continue
		}

		for _, layout := range yahooTextLayouts {
			if t, err := time.Parse(layout, m[1]); err == nil {
				return t.Format(utils.DateLayout), true
			}
		}
	}

	return "", false
}
