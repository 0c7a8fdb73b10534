package eventservices

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"github.com/jiaming2012/forward-factor/src/eventmodels"
	"github.com/jiaming2012/forward-factor/src/forwardfactor"
	"github.com/jiaming2012/forward-factor/src/utils"
)

const (
	DefaultScanConcurrency  = 4
	DefaultMinForwardFactor = -100.0
	DefaultMaxForwardFactor = 100.0
)

// Scanner runs the forward factor pipeline over a universe of underlyings.
type Scanner struct {
	Chains      eventmodels.OptionChainProvider
	Earnings    eventmodels.EarningsProvider
	Analyzer    *forwardfactor.Analyzer
	Concurrency int
	MinFF       float64
	MaxFF       float64
	Events      eventmodels.Publisher
	Now         func() time.Time

	tickersCounter  metric.Int64Counter
	accepted        metric.Int64Counter
	durationSeconds metric.Float64Histogram
}

func NewScanner(chains eventmodels.OptionChainProvider, earnings eventmodels.EarningsProvider, analyzer *forwardfactor.Analyzer) *Scanner {
	meter := otel.Meter("Scanner")

	tickersCounter, err := meter.Int64Counter("ffscanner.tickers", metric.WithDescription("Tickers scanned, by outcome"))
	if err != nil {
		log.Warnf("NewScanner: failed to create tickers counter: %v", err)
	}

	accepted, err := meter.Int64Counter("ffscanner.setups.accepted", metric.WithDescription("Opportunities that passed every quality gate"))
	if err != nil {
		log.Warnf("NewScanner: failed to create accepted counter: %v", err)
	}

	durationSeconds, err := meter.Float64Histogram("ffscanner.scan.duration", metric.WithUnit("s"))
	if err != nil {
		log.Warnf("NewScanner: failed to create duration histogram: %v", err)
	}

	return &Scanner{
		Chains:          chains,
		Earnings:        earnings,
		Analyzer:        analyzer,
		Concurrency:     DefaultScanConcurrency,
		MinFF:           DefaultMinForwardFactor,
		MaxFF:           DefaultMaxForwardFactor,
		Now:             time.Now,
		tickersCounter:  tickersCounter,
		accepted:        accepted,
		durationSeconds: durationSeconds,
	}
}

// TickerScan is the outcome of one underlying.
type TickerScan struct {
	Ticker        eventmodels.StockSymbol
	Opportunities []*eventmodels.Opportunity
	Accepted      []*eventmodels.Analysis
	Rejected      []*eventmodels.Analysis
}

// Scan never fails as a whole: tickers whose data could not be fetched or was
// too thin are reported in ScanResult.Skipped.
func (s *Scanner) Scan(ctx context.Context, tickers []eventmodels.StockSymbol) *eventmodels.ScanResult {
	now := s.Now()
	result := eventmodels.NewScanResult(now, tickers)
	today := utils.DateOf(now)

	logger := log.WithField("scan_id", result.ID)
	logger.Infof("scanning %d tickers", len(tickers))

	scans := make([]*TickerScan, len(tickers))
	skipped := make([]error, len(tickers))

	var mu sync.Mutex
	var completed int
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.Concurrency, 1))

	for i, ticker := range tickers {
		g.Go(func() error {
			scan, err := s.ScanTicker(gctx, ticker, today)

			mu.Lock()
			defer mu.Unlock()

			completed++
			event := eventmodels.ScanProgressEvent{ScanID: result.ID, Ticker: ticker, Completed: completed, Total: len(tickers)}

			if err != nil {
				logger.WithField("ticker", ticker).Warnf("skipping: %v", err)
				skipped[i] = err
				event.Error = err.Error()
				s.recordTicker(gctx, "skipped")
			} else {
				scans[i] = scan
				event.Opportunities = len(scan.Opportunities)
				event.Accepted = len(scan.Accepted)
				event.Rejected = len(scan.Rejected)
				s.recordTicker(gctx, "scanned")
			}

			s.publish(eventmodels.ScanProgressTopic, event)
			return nil
		})
	}

	g.Wait()

	var accepted []*eventmodels.Analysis
	for i, ticker := range tickers {
		if skipped[i] != nil {
			result.Skipped = append(result.Skipped, eventmodels.SkippedTicker{Ticker: ticker, Reason: skipped[i]})
			continue
		}

		scan := scans[i]
		result.Opportunities = append(result.Opportunities, scan.Opportunities...)
		accepted = append(accepted, scan.Accepted...)
		result.Rejected = append(result.Rejected, scan.Rejected...)
	}

	result.Opportunities = forwardfactor.SortByAbsForwardFactor(result.Opportunities)
	result.Accepted = forwardfactor.RankByRating(accepted)
	result.CompletedAt = s.Now()

	if s.accepted != nil {
		s.accepted.Add(ctx, int64(len(result.Accepted)))
	}

	if s.durationSeconds != nil {
		s.durationSeconds.Record(ctx, result.CompletedAt.Sub(result.StartedAt).Seconds())
	}

	s.publish(eventmodels.ScanCompletedTopic, result)

	logger.Infof("scan complete: %d opportunities, %d accepted, %d rejected, %d skipped",
		len(result.Opportunities), len(result.Accepted), len(result.Rejected), len(result.Skipped))

	return result
}

// ScanTicker fetches the chain of one underlying, builds its term structure and
// analyzes every adjacent expiration pair inside the forward factor window.
func (s *Scanner) ScanTicker(ctx context.Context, ticker eventmodels.StockSymbol, today time.Time) (*TickerScan, error) {
	tracer := otel.Tracer("Scanner")
	ctx, span := tracer.Start(ctx, "Scanner.ScanTicker")
	defer span.End()

	span.SetAttributes(attribute.String("ticker", ticker.String()))

	contracts, err := s.Chains.FetchContracts(ctx, ticker)
	if err != nil {
		span.RecordError(err)
		if !errors.Is(err, eventmodels.ErrProviderUnavailable) {
			err = fmt.Errorf("%w: %w", eventmodels.ErrProviderUnavailable, err)
		}
		return nil, fmt.Errorf("ScanTicker: %w", err)
	}

	if len(contracts) == 0 {
		return nil, fmt.Errorf("ScanTicker: no contracts: %w", eventmodels.ErrDataInsufficient)
	}

	ts, err := forwardfactor.BuildUsableTermStructure(contracts, today)
	if err != nil {
		return nil, fmt.Errorf("ScanTicker: %w", err)
	}

	opportunities := forwardfactor.SelectPairs(ticker, ts)
	opportunities = forwardfactor.FilterForwardFactorWindow(opportunities, s.MinFF, s.MaxFF)

	span.SetAttributes(attribute.Int("opportunities", len(opportunities)))

	scan := &TickerScan{Ticker: ticker, Opportunities: opportunities}
	if len(opportunities) == 0 {
		return scan, nil
	}

	earningsDate := s.lookupEarnings(ctx, ticker)

	scan.Accepted, scan.Rejected = s.Analyzer.AnalyzeAll(opportunities, func(opp *eventmodels.Opportunity) *eventmodels.EarningsInfo {
		return forwardfactor.ResolveEarningsPosition(ticker, opp.FrontDate, opp.BackDate, earningsDate, today)
	})

	return scan, nil
}

// AnalyzeOpportunities runs the quality pipeline over opportunities produced
// elsewhere, such as a previously exported scan.
func (s *Scanner) AnalyzeOpportunities(ctx context.Context, opportunities []*eventmodels.Opportunity) (accepted, rejected []*eventmodels.Analysis) {
	today := utils.DateOf(s.Now())
	dates := make(map[eventmodels.StockSymbol]string)

	return s.Analyzer.AnalyzeAll(opportunities, func(opp *eventmodels.Opportunity) *eventmodels.EarningsInfo {
		date, ok := dates[opp.Ticker]
		if !ok {
			date = s.lookupEarnings(ctx, opp.Ticker)
			dates[opp.Ticker] = date
		}

		return forwardfactor.ResolveEarningsPosition(opp.Ticker, opp.FrontDate, opp.BackDate, date, today)
	})
}

func (s *Scanner) recordTicker(ctx context.Context, outcome string) {
	if s.tickersCounter != nil {
		s.tickersCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}
}

func (s *Scanner) publish(topic string, event interface{}) {
	if s.Events != nil {
		s.Events.Publish(topic, event)
	}
}

// lookupEarnings treats provider failures as no known catalyst.
func (s *Scanner) lookupEarnings(ctx context.Context, ticker eventmodels.StockSymbol) string {
	if s.Earnings == nil {
		return ""
	}

	date, found, err := s.Earnings.FetchNextEarningsDate(ctx, ticker)
	if err != nil {
		log.WithField("ticker", ticker).Warnf("earnings lookup failed: %v", err)
		return ""
	}

	if !found {
		return ""
	}

	return date
}
