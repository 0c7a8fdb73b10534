package handler

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jiaming2012/forward-factor/src/eventmodels"
	"github.com/jiaming2012/forward-factor/src/eventpubsub"
	"github.com/jiaming2012/forward-factor/src/eventservices"
	"github.com/jiaming2012/forward-factor/src/forwardfactor"
	"github.com/jiaming2012/forward-factor/src/report"
)

var ErrScanInProgress = errors.New("a scan is already running")

// Server exposes on-demand scans, the latest result and the trading schedule
// over http. Only one scan runs at a time.
type Server struct {
	Scanner        *eventservices.Scanner
	Calendar       eventmodels.TradingCalendar
	DefaultTickers []eventmodels.StockSymbol
	Now            func() time.Time

	decoder *schema.Decoder
	streams *StreamHub
	scanMu  sync.Mutex
	mu      sync.RWMutex
	latest  *eventmodels.ScanResult
}

// NewServer publishes scanner progress on bus and relays it to websocket clients.
func NewServer(scanner *eventservices.Scanner, calendar eventmodels.TradingCalendar, bus *eventpubsub.Bus, defaultTickers []eventmodels.StockSymbol) (*Server, error) {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)

	s := &Server{
		Scanner:        scanner,
		Calendar:       calendar,
		DefaultTickers: defaultTickers,
		Now:            time.Now,
		decoder:        decoder,
		streams:        NewStreamHub(),
	}

	scanner.Events = bus
	if err := bus.Subscribe(eventmodels.ScanProgressTopic, s.streams.OnProgress); err != nil {
		return nil, fmt.Errorf("NewServer: %w", err)
	}

	return s, nil
}

func handle(router *mux.Router, method, pattern string, handlerFunc func(http.ResponseWriter, *http.Request)) {
	router.Handle(pattern, otelhttp.WithRouteTag(pattern, http.HandlerFunc(handlerFunc))).Methods(method)
}

func (s *Server) SetupHandler(router *mux.Router) {
	handle(router, http.MethodGet, "/healthz", s.handleHealth)
	handle(router, http.MethodGet, "/schedule", s.handleSchedule)
	handle(router, http.MethodPost, "/scans", s.handleScan)
	handle(router, http.MethodGet, "/scans/latest", s.handleLatest)
	handle(router, http.MethodGet, "/scans/latest/report", s.handleLatestReport)
	handle(router, http.MethodGet, "/scans/stream", s.handleStream)
}

// Handler returns the traced router.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	s.SetupHandler(router)
	return otelhttp.NewHandler(router, "ffscanner")
}

func (s *Server) Latest() *eventmodels.ScanResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.latest
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := setResponse(map[string]string{"status": "ok"}, w); err != nil {
		log.Errorf("handleHealth: %v", err)
	}
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	info, err := eventservices.GetScheduleInfo(r.Context(), s.Calendar, s.Now())
	if err != nil {
		setErrorResponse("handleSchedule: failed to get schedule", http.StatusBadGateway, err, w)
		return
	}

	if err := setResponse(info, w); err != nil {
		log.Errorf("handleSchedule: %v", err)
	}
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req eventmodels.ScanRequestDTO
	if err := s.decoder.Decode(&req, r.URL.Query()); err != nil {
		setErrorResponse("handleScan: failed to decode query", http.StatusBadRequest, err, w)
		return
	}

	if err := req.Validate(); err != nil {
		setErrorResponse("handleScan: invalid request", http.StatusBadRequest, err, w)
		return
	}

	if !s.scanMu.TryLock() {
		setErrorResponse("handleScan: busy", http.StatusConflict, ErrScanInProgress, w)
		return
	}

	defer s.scanMu.Unlock()

	tickers := eventmodels.NewStockSymbols(req.Tickers)
	if len(tickers) == 0 {
		tickers = s.DefaultTickers
	}

	scanner := *s.Scanner
	if req.MinFF != nil {
		scanner.MinFF = *req.MinFF
	}

	if req.MaxFF != nil {
		scanner.MaxFF = *req.MaxFF
	}

	result := scanner.Scan(r.Context(), tickers)

	s.mu.Lock()
	s.latest = result
	s.mu.Unlock()

	dto := eventmodels.NewScanResultDTO(result)
	if req.Top > 0 {
		dto.Accepted = forwardfactor.TopN(dto.Accepted, req.Top)
	}

	if err := setResponse(dto, w); err != nil {
		log.Errorf("handleScan: %v", err)
	}
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	latest := s.Latest()
	if latest == nil {
		setErrorResponse("handleLatest: no scan yet", http.StatusNotFound, errors.New("no scan has completed"), w)
		return
	}

	if err := setResponse(eventmodels.NewScanResultDTO(latest), w); err != nil {
		log.Errorf("handleLatest: %v", err)
	}
}

func (s *Server) handleLatestReport(w http.ResponseWriter, r *http.Request) {
	latest := s.Latest()
	if latest == nil {
		setErrorResponse("handleLatestReport: no scan yet", http.StatusNotFound, errors.New("no scan has completed"), w)
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	if err := report.RenderMarkdown(w, latest, s.Now()); err != nil {
		log.Errorf("handleLatestReport: %v", err)
	}
}
