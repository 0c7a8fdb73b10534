package report

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jiaming2012/forward-factor/src/eventmodels"
)

func newOpportunity(ticker eventmodels.StockSymbol, ff float64) *eventmodels.Opportunity {
	return &eventmodels.Opportunity{
		Ticker:        ticker,
		ForwardFactor: ff,
		FrontDate:     time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
		BackDate:      time.Date(2025, 5, 5, 0, 0, 0, 0, time.UTC),
		FrontDTE:      28,
		BackDTE:       63,
		FrontIV:       35.2,
		BackIV:        28.4,
		ForwardVol:    21.461,
	}
}

func rejected(ticker eventmodels.StockSymbol, reason string) *eventmodels.Analysis {
	return &eventmodels.Analysis{
		Opportunity:      newOpportunity(ticker, 12),
		RejectionReasons: []string{reason},
	}
}

func TestCategorize(t *testing.T) {
	cases := map[string]RejectionCategory{
		"FALSE SIGNAL: Inverted term structure (front IV 40.0% > back IV 30.0%)": CategoryInverted,
		"Front DTE too short: 5 days (need >=7)":                                 CategoryDTE,
		"DTE difference too small: 2 days (need >=3)":                            CategoryDTE,
		"Forward Factor calculation mismatch: reported 40.0%, calculated 30.0%":  CategoryMismatch,
		"Forward Factor too low: 12.0% (need >=30.0%)":                           CategoryForwardFactor,
		"Front IV too high: 160.0% (need <=150.0%)":                              CategoryIV,
		"":                                                                        CategoryOther,
	}

	for reason, expected := range cases {
		assert.Equal(t, expected, Categorize(reason), reason)
	}
}

func TestRenderMarkdown(t *testing.T) {
	now := time.Date(2025, 3, 3, 21, 0, 0, 0, time.UTC)

	t.Run("with setups", func(t *testing.T) {
		result := eventmodels.NewScanResult(now, []eventmodels.StockSymbol{"AAPL", "MSFT", "FAIL"})
		result.Accepted = []*eventmodels.Analysis{{
			Opportunity:    newOpportunity("AAPL", 64.02),
			Earnings:       &eventmodels.EarningsInfo{},
			IsQuality:      true,
			Probability:    80,
			RiskReward:     4,
			Rating:         9,
			Thesis:         "SELL FRONT / BUY BACK",
			TradeStructure: "**Calendar Spread (Credit)**",
		}}

		for i := 0; i < 7; i++ {
			result.Rejected = append(result.Rejected, rejected("MSFT", "Forward Factor too low: 12.0% (need >=30.0%)"))
		}
		result.Rejected = append(result.Rejected, rejected("TSLA", "Front IV too high: 160.0% (need <=150.0%)"))
		result.Skipped = []eventmodels.SkippedTicker{{Ticker: "FAIL", Reason: errors.New("provider unavailable")}}

		var buf bytes.Buffer
		require.NoError(t, RenderMarkdown(&buf, result, now))
		md := buf.String()

		assert.Contains(t, md, "# Forward Factor Nightly Scan Report")
		assert.Contains(t, md, result.ID.String())
		assert.Contains(t, md, "- **Total Opportunities Analyzed**: 9")
		assert.Contains(t, md, "### 1 High-Quality Setup Identified")
		assert.Contains(t, md, "## 1. AAPL - SELL Signal")
		assert.Contains(t, md, "**Rating**: 9/10")
		assert.Contains(t, md, "**Forward Factor**: +64.0%")
		assert.Contains(t, md, "**Term Structure**: INVERTED (Front IV > Back IV)")
		assert.Contains(t, md, "### Forward Factor Too Low (7 opportunities)")
		assert.Contains(t, md, "- *...and 2 more*")
		assert.Equal(t, 5, strings.Count(md, "- **MSFT** (FF: +12.0%)"))
		assert.Contains(t, md, "### IV Out of Range (1 opportunities)")
		assert.Contains(t, md, "- **FAIL**: provider unavailable")
		assert.Contains(t, md, "## Important Disclaimers")

		assert.Less(t, strings.Index(md, "Forward Factor Too Low"), strings.Index(md, "IV Out of Range"))
	})

	t.Run("empty scan", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, RenderMarkdown(&buf, eventmodels.NewScanResult(now, nil), now))

		assert.Contains(t, buf.String(), "### No Quality Setups Found Tonight")
		assert.NotContains(t, buf.String(), "# Recommended Trades")
		assert.NotContains(t, buf.String(), "## Rejected Opportunities")
	})

	t.Run("save", func(t *testing.T) {
		dir := t.TempDir()

		path, err := SaveMarkdown(filepath.Join(dir, "reports"), eventmodels.NewScanResult(now, nil), now)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "reports", "ff_scan_20250303.md"), path)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "Executive Summary")
	})
}

func TestCSV(t *testing.T) {
	opps := []*eventmodels.Opportunity{newOpportunity("AAPL", 64.0182), newOpportunity("MSFT", -35.5)}
	opps[1].HasEarningsSoon = true

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, opps))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "ticker,forward_factor,signal,front_date,front_dte,front_iv,back_date,back_dte,back_iv,forward_vol,has_earnings_soon", lines[0])
	assert.Equal(t, "AAPL,64.02,SELL,2025-03-31,28,35.20,2025-05-05,63,28.40,21.46,false", lines[1])

	loaded, rowErrs, err := ReadCSV(strings.NewReader(buf.String()))
	require.NoError(t, err)
	assert.Empty(t, rowErrs)
	require.Len(t, loaded, 2)
	assert.Equal(t, eventmodels.SignalBuy, loaded[1].Signal())
	assert.True(t, loaded[1].HasEarningsSoon)
	assert.Equal(t, 64.02, loaded[0].ForwardFactor)

	t.Run("invalid rows are reported", func(t *testing.T) {
		input := "ticker,forward_factor,signal,front_date,front_dte,front_iv,back_date,back_dte,back_iv,forward_vol\n" +
			"AAPL,64.02,SELL,2025-03-31,28,35.20,2025-05-05,63,28.40,21.46\n" +
			"BAD,abc,SELL,2025-03-31,28,35.20,2025-05-05,63,28.40,21.46\n" +
			"FLIP,40,SELL,2025-05-05,63,35.20,2025-03-31,28,28.40,21.46\n"

		loaded, rowErrs, err := ReadCSV(strings.NewReader(input))
		require.NoError(t, err)
		assert.Len(t, loaded, 1)
		assert.Len(t, rowErrs, 2)
	})

	t.Run("export", func(t *testing.T) {
		path, err := ExportCSV(t.TempDir(), "ff_opportunities", opps, time.Date(2025, 3, 3, 21, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(path, "ff_opportunities_2025-03-03_21-00-00.csv"))
	})
}

func TestRenderTables(t *testing.T) {
	var buf bytes.Buffer
	RenderAnalysesTable(&buf, []*eventmodels.Analysis{{Opportunity: newOpportunity("AAPL", 64.02), Rating: 9, Probability: 80, RiskReward: 4}})
	assert.Contains(t, buf.String(), "AAPL")
	assert.Contains(t, buf.String(), "+64.0%")
	assert.Contains(t, buf.String(), "9/10")

	buf.Reset()
	RenderOpportunitiesTable(&buf, []*eventmodels.Opportunity{newOpportunity("MSFT", -35.5)})
	assert.Contains(t, buf.String(), "MSFT")
	assert.Contains(t, buf.String(), "BUY")
}
