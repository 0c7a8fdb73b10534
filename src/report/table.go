package report

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jiaming2012/forward-factor/src/eventmodels"
)

func RenderAnalysesTable(w io.Writer, analyses []*eventmodels.Analysis) {
	p := message.NewPrinter(language.English)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "Ticker", "Signal", "FF", "Front", "Back", "Front IV", "Back IV", "Prob", "R/R", "Rating"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	for i, a := range analyses {
		opp := a.Opportunity
		table.Append([]string{
			p.Sprintf("%d", i+1),
			opp.Ticker.String(),
			string(opp.Signal()),
			p.Sprintf("%+.1f%%", opp.ForwardFactor),
			p.Sprintf("%s (%d)", opp.FrontDate.Format("2006-01-02"), opp.FrontDTE),
			p.Sprintf("%s (%d)", opp.BackDate.Format("2006-01-02"), opp.BackDTE),
			p.Sprintf("%.1f%%", opp.FrontIV),
			p.Sprintf("%.1f%%", opp.BackIV),
			p.Sprintf("%.0f%%", a.Probability),
			p.Sprintf("%.1f:1", a.RiskReward),
			fmt.Sprintf("%d/10", a.Rating),
		})
	}

	table.Render()
}

func RenderOpportunitiesTable(w io.Writer, opportunities []*eventmodels.Opportunity) {
	p := message.NewPrinter(language.English)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Ticker", "FF", "Signal", "Front", "DTE", "IV", "Back", "DTE", "IV", "Fwd Vol"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	for _, o := range opportunities {
		table.Append([]string{
			o.Ticker.String(),
			p.Sprintf("%+.2f%%", o.ForwardFactor),
			string(o.Signal()),
			o.FrontDate.Format("2006-01-02"),
			p.Sprintf("%d", o.FrontDTE),
			p.Sprintf("%.2f%%", o.FrontIV),
			o.BackDate.Format("2006-01-02"),
			p.Sprintf("%d", o.BackDTE),
			p.Sprintf("%.2f%%", o.BackIV),
			p.Sprintf("%.2f%%", o.ForwardVol),
		})
	}

	table.Render()
}
