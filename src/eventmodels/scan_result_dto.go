package eventmodels

import (
	"time"

	"github.com/google/uuid"
)

type OpportunityDTO struct {
	Ticker          StockSymbol `json:"ticker"`
	Signal          Signal      `json:"signal"`
	ForwardFactor   float64     `json:"forward_factor"`
	FrontDate       string      `json:"front_date"`
	BackDate        string      `json:"back_date"`
	FrontDTE        int         `json:"front_dte"`
	BackDTE         int         `json:"back_dte"`
	FrontIV         float64     `json:"front_iv"`
	BackIV          float64     `json:"back_iv"`
	ForwardVol      float64     `json:"forward_vol"`
	HasEarningsSoon bool        `json:"has_earnings_soon"`
}

type AnalysisDTO struct {
	Opportunity      OpportunityDTO `json:"opportunity"`
	EarningsDate     string         `json:"earnings_date,omitempty"`
	IsQuality        bool           `json:"is_quality"`
	RejectionReasons []string       `json:"rejection_reasons,omitempty"`
	Probability      float64        `json:"probability"`
	RiskReward       float64        `json:"risk_reward"`
	Rating           int            `json:"rating"`
	Thesis           string         `json:"thesis,omitempty"`
	TradeStructure   string         `json:"trade_structure,omitempty"`
}

type SkippedTickerDTO struct {
	Ticker StockSymbol `json:"ticker"`
	Reason string      `json:"reason"`
}

type ScanResultDTO struct {
	ID            uuid.UUID          `json:"id"`
	StartedAt     time.Time          `json:"started_at"`
	CompletedAt   time.Time          `json:"completed_at"`
	Tickers       []StockSymbol      `json:"tickers"`
	Opportunities []OpportunityDTO   `json:"opportunities"`
	Accepted      []AnalysisDTO      `json:"accepted"`
	Rejected      []AnalysisDTO      `json:"rejected"`
	Skipped       []SkippedTickerDTO `json:"skipped"`
}

func NewOpportunityDTO(o *Opportunity) OpportunityDTO {
	return OpportunityDTO{
		Ticker:          o.Ticker,
		Signal:          o.Signal(),
		ForwardFactor:   o.ForwardFactor,
		FrontDate:       o.FrontDate.Format("2006-01-02"),
		BackDate:        o.BackDate.Format("2006-01-02"),
		FrontDTE:        o.FrontDTE,
		BackDTE:         o.BackDTE,
		FrontIV:         o.FrontIV,
		BackIV:          o.BackIV,
		ForwardVol:      o.ForwardVol,
		HasEarningsSoon: o.HasEarningsSoon,
	}
}

func NewAnalysisDTO(a *Analysis) AnalysisDTO {
	dto := AnalysisDTO{
		Opportunity:      NewOpportunityDTO(a.Opportunity),
		IsQuality:        a.IsQuality,
		RejectionReasons: a.RejectionReasons,
		Probability:      a.Probability,
		RiskReward:       a.RiskReward,
		Rating:           a.Rating,
		Thesis:           a.Thesis,
		TradeStructure:   a.TradeStructure,
	}

	if a.Earnings.HasDate() {
		dto.EarningsDate = a.Earnings.EarningsDate.Format("2006-01-02")
	}

	return dto
}

func NewScanResultDTO(r *ScanResult) ScanResultDTO {
	dto := ScanResultDTO{
		ID:            r.ID,
		StartedAt:     r.StartedAt,
		CompletedAt:   r.CompletedAt,
		Tickers:       r.Tickers,
		Opportunities: make([]OpportunityDTO, 0, len(r.Opportunities)),
		Accepted:      make([]AnalysisDTO, 0, len(r.Accepted)),
		Rejected:      make([]AnalysisDTO, 0, len(r.Rejected)),
		Skipped:       make([]SkippedTickerDTO, 0, len(r.Skipped)),
	}

	for _, o := range r.Opportunities {
		dto.Opportunities = append(dto.Opportunities, NewOpportunityDTO(o))
	}

	for _, a := range r.Accepted {
		dto.Accepted = append(dto.Accepted, NewAnalysisDTO(a))
	}

	for _, a := range r.Rejected {
		dto.Rejected = append(dto.Rejected, NewAnalysisDTO(a))
	}

	for _, s := range r.Skipped {
		dto.Skipped = append(dto.Skipped, SkippedTickerDTO{Ticker: s.Ticker, Reason: s.Reason.Error()})
	}

	return dto
}
