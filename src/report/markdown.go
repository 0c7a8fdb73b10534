package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jiaming2012/forward-factor/src/eventmodels"
)

const rejectedPerCategory = 5

func RenderMarkdown(w io.Writer, result *eventmodels.ScanResult, now time.Time) error {
	var b strings.Builder

	writeSummary(&b, result, now)

	if len(result.Accepted) > 0 {
		b.WriteString("\n---\n\n# Recommended Trades\n")
		for i, a := range result.Accepted {
			writeSetup(&b, a, i+1)
		}
	}

	writeRejections(&b, result.Rejected)
	writeSkipped(&b, result.Skipped)
	writeDisclaimer(&b)

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("RenderMarkdown: %w", err)
	}

	return nil
}

// SaveMarkdown writes the report to <dir>/ff_scan_YYYYMMDD.md.
func SaveMarkdown(dir string, result *eventmodels.ScanResult, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", fmt.Errorf("SaveMarkdown: failed to create directory: %w", err)
	}

	outFilePath := filepath.Join(dir, fmt.Sprintf("ff_scan_%s.md", now.Format("20060102")))

	file, err := os.Create(outFilePath)
	if err != nil {
		return "", fmt.Errorf("SaveMarkdown: failed to create file: %w", err)
	}
	defer file.Close()

	if err := RenderMarkdown(file, result, now); err != nil {
		return "", fmt.Errorf("SaveMarkdown: %w", err)
	}

	return outFilePath, nil
}

func writeSummary(b *strings.Builder, result *eventmodels.ScanResult, now time.Time) {
	fmt.Fprintf(b, "# Forward Factor Nightly Scan Report\n\n")
	fmt.Fprintf(b, "**Date**: %s  \n", now.Format("Monday, January 02, 2006"))
	fmt.Fprintf(b, "**Scan ID**: %s  \n", result.ID)
	fmt.Fprintf(b, "**Report Generated**: %s\n\n", now.Format("03:04 PM MST"))
	b.WriteString("---\n\n## Executive Summary\n\n")
	fmt.Fprintf(b, "- **Tickers Scanned**: %d\n", len(result.Tickers))
	fmt.Fprintf(b, "- **Total Opportunities Analyzed**: %d\n", result.TotalAnalyzed())
	fmt.Fprintf(b, "- **Quality Setups Identified**: %d\n", len(result.Accepted))
	fmt.Fprintf(b, "- **Opportunities Rejected**: %d\n", len(result.Rejected))
	fmt.Fprintf(b, "- **Tickers Skipped**: %d\n\n", len(result.Skipped))

	if len(result.Accepted) == 0 {
		b.WriteString("### No Quality Setups Found Tonight\n\n")
		b.WriteString("Every opportunity failed at least one quality filter. Most raw forward factor signals come from inverted term structures ahead of earnings, ")
		b.WriteString("where front IV is expected to collapse after the event rather than being mispriced.\n\n")
		b.WriteString("Filters applied:\n")
		b.WriteString("- |Forward Factor| of at least 30%\n")
		b.WriteString("- Front DTE between 7 and 180 days\n")
		b.WriteString("- Front IV between 15% and 150%\n")
		b.WriteString("- Inverted curves with earnings soon need |Forward Factor| of at least 40%\n")
		b.WriteString("- Forward factor must re-derive within 2 points\n\n")
		return
	}

	plural := ""
	if len(result.Accepted) > 1 {
		plural = "s"
	}

	fmt.Fprintf(b, "### %d High-Quality Setup%s Identified\n\n", len(result.Accepted), plural)
	b.WriteString("The following opportunities passed all quality filters, ranked by rating.\n\n")
}

func writeSetup(b *strings.Builder, a *eventmodels.Analysis, rank int) {
	opp := a.Opportunity

	structure, comparison := "NORMAL", "<"
	if opp.IsInverted() {
		structure, comparison = "INVERTED", ">"
	}

	fmt.Fprintf(b, "\n---\n\n## %d. %s - %s Signal\n\n", rank, opp.Ticker, opp.Signal())
	fmt.Fprintf(b, "**Rating**: %d/10  \n", a.Rating)
	fmt.Fprintf(b, "**Forward Factor**: %+.1f%%  \n", opp.ForwardFactor)
	fmt.Fprintf(b, "**Probability**: %.0f%%  \n", a.Probability)
	fmt.Fprintf(b, "**Risk/Reward**: %.1f:1\n\n", a.RiskReward)

	b.WriteString("### Setup Details\n\n")
	b.WriteString("| Parameter | Front Contract | Back Contract |\n")
	b.WriteString("|-----------|----------------|---------------|\n")
	fmt.Fprintf(b, "| **Expiration** | %s | %s |\n", opp.FrontDate.Format("2006-01-02"), opp.BackDate.Format("2006-01-02"))
	fmt.Fprintf(b, "| **DTE** | %d days | %d days |\n", opp.FrontDTE, opp.BackDTE)
	fmt.Fprintf(b, "| **Implied Volatility** | %.1f%% | %.1f%% |\n", opp.FrontIV, opp.BackIV)
	fmt.Fprintf(b, "| **Forward Volatility** | %.1f%% | - |\n\n", opp.ForwardVol)
	fmt.Fprintf(b, "**Term Structure**: %s (Front IV %s Back IV)\n\n", structure, comparison)

	if a.Earnings.HasDate() {
		fmt.Fprintf(b, "**Earnings**: %s\n\n", a.Earnings.EarningsDate.Format("2006-01-02"))
	}

	fmt.Fprintf(b, "### Trading Thesis\n\n%s\n\n", a.Thesis)
	fmt.Fprintf(b, "### Recommended Trade Structure\n\n%s\n\n", a.TradeStructure)

	b.WriteString("### Execution Notes\n\n")
	b.WriteString("1. Confirm the earnings calendar has no surprise catalyst between expirations\n")
	b.WriteString("2. Check bid-ask spreads are under 5% of mid price\n")
	b.WriteString("3. Risk no more than 1-2% of the portfolio on a single trade\n")
	b.WriteString("4. Set profit targets and stop losses when entering\n")
}

func writeRejections(b *strings.Builder, rejected []*eventmodels.Analysis) {
	if len(rejected) == 0 {
		return
	}

	b.WriteString("\n---\n\n## Rejected Opportunities\n\n")
	b.WriteString("The following opportunities were analyzed but failed the quality criteria:\n")

	groups := GroupRejections(rejected)
	for _, category := range RejectionCategories {
		items := groups[category]
		if len(items) == 0 {
			continue
		}

		fmt.Fprintf(b, "\n### %s (%d opportunities)\n\n", category, len(items))
		for i, a := range items {
			if i == rejectedPerCategory {
				fmt.Fprintf(b, "- *...and %d more*\n", len(items)-rejectedPerCategory)
				break
			}

			fmt.Fprintf(b, "- **%s** (FF: %+.1f%%): %s\n", a.Opportunity.Ticker, a.Opportunity.ForwardFactor, a.FirstRejectionReason())
		}
	}
}

func writeSkipped(b *strings.Builder, skipped []eventmodels.SkippedTicker) {
	if len(skipped) == 0 {
		return
	}

	b.WriteString("\n---\n\n## Skipped Tickers\n\n")
	for _, s := range skipped {
		fmt.Fprintf(b, "- **%s**: %v\n", s.Ticker, s.Reason)
	}
}

func writeDisclaimer(b *strings.Builder) {
	b.WriteString("\n---\n\n## Important Disclaimers\n\n")
	b.WriteString("**This report is for educational and informational purposes only. It is not financial advice.**\n\n")
	b.WriteString("- Verify every analysis independently and confirm earnings dates manually before trading\n")
	b.WriteString("- Options are complex instruments and you can lose your entire investment\n")
	b.WriteString("- Probability and risk/reward figures are heuristics, not calibrated estimates\n")
	b.WriteString("- Market conditions change quickly and may invalidate the analysis\n\n")
	b.WriteString("---\n\n*Report generated by Forward Factor Nightly Scanner*\n")
}
