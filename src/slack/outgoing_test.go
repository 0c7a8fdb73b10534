package slack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jiaming2012/forward-factor/src/eventmodels"
)

func newResult() *eventmodels.ScanResult {
	result := eventmodels.NewScanResult(time.Date(2025, 3, 3, 21, 0, 0, 0, time.UTC), []eventmodels.StockSymbol{"AAPL", "MSFT"})
	result.Accepted = []*eventmodels.Analysis{{
		Opportunity: &eventmodels.Opportunity{
			Ticker:        "AAPL",
			ForwardFactor: 64.02,
			FrontDate:     time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
			BackDate:      time.Date(2025, 5, 5, 0, 0, 0, 0, time.UTC),
		},
		Rating: 9,
	}}
	return result
}

func TestFormatScanSummary(t *testing.T) {
	msg := FormatScanSummary(newResult(), "ff_reports/ff_scan_20250303.md")

	assert.Contains(t, msg, "*Forward Factor scan* 2025-03-03")
	assert.Contains(t, msg, "1 accepted, 0 rejected, 0 skipped")
	assert.Contains(t, msg, "1. *AAPL* SELL FF +64.0% (2025-03-31 / 2025-05-05) rating 9/10")
	assert.Contains(t, msg, "ff_reports/ff_scan_20250303.md")
}

func TestPostScanSummary(t *testing.T) {
	t.Run("posts text payload", func(t *testing.T) {
		var received map[string]interface{}
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
			w.Write([]byte("ok"))
		}))
		defer srv.Close()

		require.NoError(t, PostScanSummary(context.Background(), srv.URL, newResult(), ""))
		assert.Contains(t, received["text"], "AAPL")
	})

	t.Run("webhook error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte("invalid_token"))
		}))
		defer srv.Close()

		err := PostScanSummary(context.Background(), srv.URL, newResult(), "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid_token")
	})
}
