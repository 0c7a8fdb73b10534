package forwardfactor

import (
	"github.com/jiaming2012/forward-factor/src/eventmodels"
)

type Analyzer struct {
	Config FilterConfig
}

func NewAnalyzer(cfg FilterConfig) *Analyzer {
	return &Analyzer{Config: cfg}
}

// Analyze runs every quality gate and scores the opportunity. Rejected
// opportunities are still scored so reports can show what was close.
func (a *Analyzer) Analyze(opp *eventmodels.Opportunity, info *eventmodels.EarningsInfo) *eventmodels.Analysis {
	if info == nil {
		info = &eventmodels.EarningsInfo{Ticker: opp.Ticker}
	}

	reasons := a.Config.Evaluate(opp, info)
	probability := ProbabilityOfProfit(opp, info)
	riskReward := RiskReward(opp)

	return &eventmodels.Analysis{
		Opportunity:      opp,
		Earnings:         info,
		IsQuality:        len(reasons) == 0,
		RejectionReasons: reasons,
		Probability:      probability,
		RiskReward:       riskReward,
		Rating:           Rating(opp, info, probability, riskReward),
		Thesis:           Thesis(opp, info),
		TradeStructure:   TradeStructure(opp),
	}
}

// AnalyzeAll partitions opportunities into accepted, ranked by rating, and
// rejected, in input order. lookup may return nil for tickers with no earnings data.
func (a *Analyzer) AnalyzeAll(opps []*eventmodels.Opportunity, lookup func(*eventmodels.Opportunity) *eventmodels.EarningsInfo) (accepted, rejected []*eventmodels.Analysis) {
	for _, opp := range opps {
		var info *eventmodels.EarningsInfo
		if lookup != nil {
			info = lookup(opp)
		}

		analysis := a.Analyze(opp, info)
		if analysis.IsQuality {
			accepted = append(accepted, analysis)
		} else {
			rejected = append(rejected, analysis)
		}
	}

	return RankByRating(accepted), rejected
}
