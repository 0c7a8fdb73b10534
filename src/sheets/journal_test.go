package sheets

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/jiaming2012/forward-factor/src/eventmodels"
)

func newScanResult() *eventmodels.ScanResult {
	earnings := time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC)

	return &eventmodels.ScanResult{
		ID:          uuid.MustParse("6f1c2a8e-5a4b-4c1d-9f77-0d2b4c9e1a11"),
		CompletedAt: time.Date(2025, 3, 3, 21, 5, 0, 0, time.UTC),
		Accepted: []*eventmodels.Analysis{
			{
				Opportunity: &eventmodels.Opportunity{
					Ticker:        "AAPL",
					ForwardFactor: 64.018,
					FrontDate:     time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
					BackDate:      time.Date(2025, 5, 5, 0, 0, 0, 0, time.UTC),
					FrontDTE:      28,
					BackDTE:       63,
					FrontIV:       35.2,
					BackIV:        28.4,
					ForwardVol:    21.461,
				},
				Earnings:    &eventmodels.EarningsInfo{Ticker: "AAPL", EarningsDate: &earnings},
				Rating:      9,
				Probability: 80,
				RiskReward:  4,
			},
		},
	}
}

func TestScanRows(t *testing.T) {
	rows := ScanRows(newScanResult())
	require.Len(t, rows, 1)

	row := rows[0]
	require.Len(t, row, len(ScanHeader))
	assert.Equal(t, "6f1c2a8e-5a4b-4c1d-9f77-0d2b4c9e1a11", row[0])
	assert.Equal(t, "2025-03-03 21:05:00", row[1])
	assert.Equal(t, "AAPL", row[2])
	assert.Equal(t, "SELL", row[3])
	assert.Equal(t, "2025-03-31", row[4])
	assert.Equal(t, 28, row[6])
	assert.Equal(t, "64.02", row[11])
	assert.Equal(t, "2025-04-15", row[12])
	assert.Equal(t, 9, row[13])

	assert.Empty(t, ScanRows(&eventmodels.ScanResult{}))
}

type fakeSheetsAPI struct {
	mu       sync.Mutex
	existing [][]interface{}
	appended [][]interface{}
}

func (f *fakeSheetsAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":append"):
		body, _ := io.ReadAll(r.Body)

		var vr sheets.ValueRange
		if err := json.Unmarshal(body, &vr); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		f.appended = append(f.appended, vr.Values...)
		json.NewEncoder(w).Encode(map[string]interface{}{"spreadsheetId": "sheet-1"})
	case r.Method == http.MethodGet:
		json.NewEncoder(w).Encode(map[string]interface{}{"range": "Scans!A1:A1", "values": f.existing})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestJournal(t *testing.T, api *fakeSheetsAPI) *ScanJournal {
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	svc, err := sheets.NewService(context.Background(), option.WithEndpoint(srv.URL+"/"), option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	return NewScanJournal(svc, "sheet-1", DefaultSheetName)
}

func TestScanJournal_AppendScan(t *testing.T) {
	t.Run("writes a header to an empty sheet", func(t *testing.T) {
		api := &fakeSheetsAPI{}
		journal := newTestJournal(t, api)

		require.NoError(t, journal.AppendScan(context.Background(), newScanResult()))

		require.Len(t, api.appended, 2)
		assert.Equal(t, "Scan ID", api.appended[0][0])
		assert.Equal(t, "AAPL", api.appended[1][2])
	})

	t.Run("skips the header when one exists", func(t *testing.T) {
		api := &fakeSheetsAPI{existing: [][]interface{}{{"Scan ID"}}}
		journal := newTestJournal(t, api)

		require.NoError(t, journal.AppendScan(context.Background(), newScanResult()))

		require.Len(t, api.appended, 1)
		assert.Equal(t, "AAPL", api.appended[0][2])
	})

	t.Run("nothing to append", func(t *testing.T) {
		api := &fakeSheetsAPI{}
		journal := newTestJournal(t, api)

		require.NoError(t, journal.AppendScan(context.Background(), &eventmodels.ScanResult{}))
		assert.Empty(t, api.appended)
	})
}
