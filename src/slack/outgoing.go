package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jiaming2012/forward-factor/src/eventmodels"
)

const maxSetupsInSummary = 5

func PostJSON(ctx context.Context, url string, body map[string]interface{}) ([]byte, error) {
	client := http.Client{
		Timeout: 60 * time.Second,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("PostJSON (Marshal): %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("PostJSON (NewRequest): %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	res, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("PostJSON (Do): %w", err)
	}

	defer res.Body.Close()

	bodyBytes, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("PostJSON (ReadAll): %w", err)
	}

	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("PostJSON: http code %v: %s", res.Status, strings.TrimSpace(string(bodyBytes)))
	}

	return bodyBytes, nil
}

// FormatScanSummary renders a short mrkdwn message for an incoming webhook.
func FormatScanSummary(result *eventmodels.ScanResult, reportPath string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "*Forward Factor scan* %s\n", result.StartedAt.Format("2006-01-02"))
	fmt.Fprintf(&b, "Analyzed %d opportunities across %d tickers: %d accepted, %d rejected, %d skipped\n",
		result.TotalAnalyzed(), len(result.Tickers), len(result.Accepted), len(result.Rejected), len(result.Skipped))

	for i, a := range result.Accepted {
		if i == maxSetupsInSummary {
			fmt.Fprintf(&b, "...and %d more\n", len(result.Accepted)-maxSetupsInSummary)
			break
		}

		opp := a.Opportunity
		fmt.Fprintf(&b, "%d. *%s* %s FF %+.1f%% (%s / %s) rating %d/10\n",
			i+1, opp.Ticker, opp.Signal(), opp.ForwardFactor,
			opp.FrontDate.Format("2006-01-02"), opp.BackDate.Format("2006-01-02"), a.Rating)
	}

	if reportPath != "" {
		fmt.Fprintf(&b, "Report: `%s`", reportPath)
	}

	return strings.TrimRight(b.String(), "\n")
}

func PostScanSummary(ctx context.Context, webhookURL string, result *eventmodels.ScanResult, reportPath string) error {
	body := map[string]interface{}{
		"text": FormatScanSummary(result, reportPath),
	}

	if _, err := PostJSON(ctx, webhookURL, body); err != nil {
		return fmt.Errorf("PostScanSummary: %w", err)
	}

	return nil
}
