package eventmodels

// Analysis wraps an Opportunity with the outcome of the quality filter and scoring.
type Analysis struct {
	Opportunity      *Opportunity
	Earnings         *EarningsInfo
	IsQuality        bool
	RejectionReasons []string
	Probability      float64
	RiskReward       float64
	Rating           int
	Thesis           string
	TradeStructure   string
}

func (a *Analysis) FirstRejectionReason() string {
	if len(a.RejectionReasons) == 0 {
		return ""
	}

	return a.RejectionReasons[0]
}
