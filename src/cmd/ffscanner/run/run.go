package run

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/jiaming2012/forward-factor/src/eventmodels"
	"github.com/jiaming2012/forward-factor/src/eventservices"
	"github.com/jiaming2012/forward-factor/src/forwardfactor"
	"github.com/jiaming2012/forward-factor/src/handler"
	"github.com/jiaming2012/forward-factor/src/report"
	"github.com/jiaming2012/forward-factor/src/sheets"
	"github.com/jiaming2012/forward-factor/src/slack"
	"github.com/jiaming2012/forward-factor/src/utils"
)

// Env holds the credentials and endpoints read from the environment.
type Env struct {
	PolygonAPIKey         string
	TradierBearerToken    string
	TradierChainURL       string
	TradierExpirationsURL string
	TradierCalendarURL    string
	FinnhubAPIKey         string
	RedisURL              string
	SlackWebhookURL       string
}

// LoadEnv reads every setting as optional. Commands that fetch option chains
// use LoadScanEnv instead.
func LoadEnv() Env {
	return Env{
		PolygonAPIKey:         utils.GetEnvOrDefault("POLYGON_API_KEY", ""),
		TradierBearerToken:    utils.GetEnvOrDefault("TRADIER_BEARER_TOKEN", ""),
		TradierChainURL:       utils.GetEnvOrDefault("TRADIER_OPTION_CHAIN_URL", ""),
		TradierExpirationsURL: utils.GetEnvOrDefault("TRADIER_OPTION_EXPIRATIONS_URL", ""),
		TradierCalendarURL:    utils.GetEnvOrDefault("TRADIER_MARKET_CALENDAR_URL", ""),
		FinnhubAPIKey:         utils.GetEnvOrDefault("FINNHUB_API_KEY", ""),
		RedisURL:              utils.GetEnvOrDefault("REDIS_URL", ""),
		SlackWebhookURL:       utils.GetEnvOrDefault("SLACK_WEBHOOK_URL", ""),
	}
}

// LoadScanEnv is LoadEnv plus the variables the configured chain provider
// requires. A missing one is an error.
func LoadScanEnv(cfg *eventmodels.ScanConfigYAML) (Env, error) {
	env := LoadEnv()

	type requiredVar struct {
		name  string
		field *string
	}

	var required []requiredVar
	switch cfg.ChainProvider {
	case eventmodels.ChainProviderPolygon:
		required = []requiredVar{
			{"POLYGON_API_KEY", &env.PolygonAPIKey},
		}
	case eventmodels.ChainProviderTradier:
		required = []requiredVar{
			{"TRADIER_BEARER_TOKEN", &env.TradierBearerToken},
			{"TRADIER_OPTION_CHAIN_URL", &env.TradierChainURL},
			{"TRADIER_OPTION_EXPIRATIONS_URL", &env.TradierExpirationsURL},
		}
	default:
		return env, fmt.Errorf("LoadScanEnv: unknown chain provider %q", cfg.ChainProvider)
	}

	for _, v := range required {
		value, err := utils.GetEnv(v.name)
		if err != nil {
			return env, fmt.Errorf("LoadScanEnv: %s provider: %w", cfg.ChainProvider, err)
		}

		*v.field = value
	}

	return env, nil
}

func LoadConfig(path string) (*eventmodels.ScanConfigYAML, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadConfig: failed to read %s: %w", path, err)
	}

	var cfg eventmodels.ScanConfigYAML
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("LoadConfig: failed to parse %s: %w", path, err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("LoadConfig: %w", err)
	}

	return &cfg, nil
}

func NewChainProvider(cfg *eventmodels.ScanConfigYAML, env Env) (eventmodels.OptionChainProvider, error) {
	switch cfg.ChainProvider {
	case eventmodels.ChainProviderPolygon:
		if env.PolygonAPIKey == "" {
			return nil, errors.New("NewChainProvider: $POLYGON_API_KEY not set")
		}

		return eventservices.NewPolygonOptionChainProvider(env.PolygonAPIKey, cfg.RequestsPerSecond, cfg.MaxContracts), nil
	case eventmodels.ChainProviderTradier:
		if env.TradierBearerToken == "" || env.TradierChainURL == "" || env.TradierExpirationsURL == "" {
			return nil, errors.New("NewChainProvider: $TRADIER_BEARER_TOKEN, $TRADIER_OPTION_CHAIN_URL and $TRADIER_OPTION_EXPIRATIONS_URL are required")
		}

		return eventservices.NewTradierOptionChainProvider(env.TradierExpirationsURL, env.TradierChainURL, env.TradierBearerToken, cfg.RequestsPerSecond, cfg.MaxContracts), nil
	default:
		return nil, fmt.Errorf("NewChainProvider: unknown chain provider %q", cfg.ChainProvider)
	}
}

// NewEarningsProvider chains Finnhub (when configured) in front of the Yahoo
// quote page and caches the answers, in redis too when $REDIS_URL is set.
func NewEarningsProvider(env Env) (*eventservices.EarningsCache, func(), error) {
	var providers []eventmodels.EarningsProvider
	if env.FinnhubAPIKey != "" {
		providers = append(providers, eventservices.NewFinnhubEarningsProvider(env.FinnhubAPIKey))
	}

	providers = append(providers, eventservices.NewYahooEarningsProvider())
	chained := eventservices.NewChainedEarningsProvider(providers...)

	if env.RedisURL == "" {
		return eventservices.NewEarningsCache(chained, nil), func() {}, nil
	}

	store, err := eventservices.NewRedisEarningsStoreFromURL(env.RedisURL, eventservices.EarningsCacheTTL)
	if err != nil {
		return nil, nil, fmt.Errorf("NewEarningsProvider: %w", err)
	}

	cleanup := func() {
		if err := store.Close(); err != nil {
			log.Warnf("NewEarningsProvider: failed to close redis: %v", err)
		}
	}

	return eventservices.NewEarningsCache(chained, store), cleanup, nil
}

func NewCalendar(env Env) eventmodels.TradingCalendar {
	if env.TradierBearerToken == "" || env.TradierCalendarURL == "" {
		log.Warn("NewCalendar: tradier market calendar not configured, treating every weekday as a trading day")
		return eventservices.WeekdayCalendar{}
	}

	return eventservices.NewTradierMarketCalendar(env.TradierCalendarURL, env.TradierBearerToken)
}

// NewScanner wires the configured providers. The returned func releases them.
func NewScanner(cfg *eventmodels.ScanConfigYAML, env Env) (*eventservices.Scanner, func(), error) {
	chains, err := NewChainProvider(cfg, env)
	if err != nil {
		return nil, nil, err
	}

	earnings, cleanup, err := NewEarningsProvider(env)
	if err != nil {
		return nil, nil, err
	}

	scanner := eventservices.NewScanner(chains, earnings, forwardfactor.NewAnalyzer(forwardfactor.DefaultFilterConfig()))
	scanner.Concurrency = cfg.Concurrency
	scanner.MinFF, scanner.MaxFF = cfg.ForwardFactorWindow()

	return scanner, cleanup, nil
}

// Tickers returns the override list when given, otherwise the configured universe.
func Tickers(cfg *eventmodels.ScanConfigYAML, override []string) []eventmodels.StockSymbol {
	if len(override) > 0 {
		return eventmodels.NewStockSymbols(override)
	}

	return eventmodels.NewStockSymbols(cfg.Tickers)
}

type ScanArgs struct {
	Tickers   []eventmodels.StockSymbol
	Top       int
	ExportDir string
}

func RunScan(ctx context.Context, scanner *eventservices.Scanner, args ScanArgs, out io.Writer) (*eventmodels.ScanResult, error) {
	result := scanner.Scan(ctx, args.Tickers)

	fmt.Fprintf(out, "\nTop %d raw opportunities by |forward factor|\n", args.Top)
	report.RenderOpportunitiesTable(out, forwardfactor.TopN(result.Opportunities, args.Top))

	fmt.Fprintf(out, "\nQuality setups (%d of %d analyzed)\n", len(result.Accepted), result.TotalAnalyzed())
	report.RenderAnalysesTable(out, forwardfactor.TopN(result.Accepted, args.Top))

	for _, s := range result.Skipped {
		fmt.Fprintf(out, "skipped %s: %v\n", s.Ticker, s.Reason)
	}

	if args.ExportDir != "" {
		path, err := report.ExportCSV(args.ExportDir, "ff_scan", result.Opportunities, scanner.Now())
		if err != nil {
			return result, fmt.Errorf("RunScan: %w", err)
		}

		fmt.Fprintf(out, "\nResults exported to %s\n", path)
	}

	return result, nil
}

type NightlyArgs struct {
	Tickers         []eventmodels.StockSymbol
	Force           bool
	ReportDir       string
	SlackWebhookURL string
	Journal         *sheets.ScanJournal
}

type NightlyResult struct {
	Ran        bool
	ReportPath string
	Result     *eventmodels.ScanResult
}

// RunNightly scans the universe on evenings before a trading day, writes the
// markdown report and forwards a summary to slack and the sheets journal.
// Notification failures are logged and do not fail the run.
func RunNightly(ctx context.Context, scanner *eventservices.Scanner, cal eventmodels.TradingCalendar, args NightlyArgs) (*NightlyResult, error) {
	now := scanner.Now()

	if !args.Force {
		shouldRun, err := eventservices.ShouldRunTonight(ctx, cal, now)
		if err != nil {
			return nil, fmt.Errorf("RunNightly: %w", err)
		}

		if !shouldRun {
			log.Infof("RunNightly: %s is not the evening before a trading day, skipping", now.Format("2006-01-02"))
			return &NightlyResult{}, nil
		}
	}

	result := scanner.Scan(ctx, args.Tickers)

	path, err := report.SaveMarkdown(args.ReportDir, result, now)
	if err != nil {
		return nil, fmt.Errorf("RunNightly: %w", err)
	}

	log.Infof("RunNightly: report saved to %s", path)

	if args.SlackWebhookURL != "" {
		if err := slack.PostScanSummary(ctx, args.SlackWebhookURL, result, path); err != nil {
			log.Errorf("RunNightly: failed to post slack summary: %v", err)
		}
	}

	if args.Journal != nil {
		if err := args.Journal.AppendScan(ctx, result); err != nil {
			log.Errorf("RunNightly: failed to append scan to sheets: %v", err)
		}
	}

	return &NightlyResult{Ran: true, ReportPath: path, Result: result}, nil
}

// RunAnalyze re-runs the quality filter and scoring over a previously exported CSV.
func RunAnalyze(ctx context.Context, scanner *eventservices.Scanner, csvPath string, out io.Writer) ([]*eventmodels.Analysis, error) {
	f, err := os.Open(csvPath)
	if err != nil {
		return nil, fmt.Errorf("RunAnalyze: failed to open %s: %w", csvPath, err)
	}

	defer f.Close()

	opportunities, rowErrs, err := report.ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("RunAnalyze: %w", err)
	}

	for _, rowErr := range rowErrs {
		log.Warnf("RunAnalyze: skipping row: %v", rowErr)
	}

	accepted, rejected := scanner.AnalyzeOpportunities(ctx, opportunities)

	fmt.Fprintf(out, "Quality setups (%d of %d analyzed)\n", len(accepted), len(accepted)+len(rejected))
	report.RenderAnalysesTable(out, accepted)

	return accepted, nil
}

func RunCalendar(ctx context.Context, cal eventmodels.TradingCalendar, now time.Time, out io.Writer) (*eventmodels.ScheduleInfo, error) {
	info, err := eventservices.GetScheduleInfo(ctx, cal, now)
	if err != nil {
		return nil, fmt.Errorf("RunCalendar: %w", err)
	}

	p := message.NewPrinter(language.English)
	p.Fprintf(out, "Current time:       %s\n", info.CurrentTime.Format("Monday, January 2, 2006 15:04 MST"))
	p.Fprintf(out, "Weekday:            %t\n", info.IsWeekday)
	p.Fprintf(out, "Trading day:        %t\n", info.IsTradingDay)
	p.Fprintf(out, "Run tonight:        %t\n", info.ShouldRunTonight)
	p.Fprintf(out, "Next trading day:   %s\n", info.NextTradingDay.Format("Monday, January 2, 2006"))

	holidays := make([]string, 0, len(info.UpcomingHolidays))
	for _, h := range info.UpcomingHolidays {
		holidays = append(holidays, h.Format("Jan 2"))
	}

	if len(holidays) == 0 {
		holidays = append(holidays, "none")
	}

	p.Fprintf(out, "Upcoming holidays:  %s\n", strings.Join(holidays, ", "))

	return info, nil
}

// RunServe blocks serving the http api until ctx is cancelled.
func RunServe(ctx context.Context, server *handler.Server, port string) error {
	srv := &http.Server{
		Handler: server.Handler(),
		Addr:    fmt.Sprintf(":%s", port),
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("listening on :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("RunServe: failed to listen and serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("RunServe: failed to shutdown: %w", err)
	}

	log.Info("RunServe: server stopped")
	return nil
}
