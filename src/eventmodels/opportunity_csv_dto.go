package eventmodels

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type OpportunityCSVDTO struct {
	Ticker          string `csv:"ticker"`
	ForwardFactor   string `csv:"forward_factor"`
	Signal          string `csv:"signal"`
	FrontDate       string `csv:"front_date"`
	FrontDTE        int    `csv:"front_dte"`
	FrontIV         string `csv:"front_iv"`
	BackDate        string `csv:"back_date"`
	BackDTE         int    `csv:"back_dte"`
	BackIV          string `csv:"back_iv"`
	ForwardVol      string `csv:"forward_vol"`
	HasEarningsSoon string `csv:"has_earnings_soon,omitempty"`
}

func NewOpportunityCSVDTO(o *Opportunity) *OpportunityCSVDTO {
	return &OpportunityCSVDTO{
		Ticker:          o.Ticker.String(),
		ForwardFactor:   fmt.Sprintf("%.2f", o.ForwardFactor),
		Signal:          string(o.Signal()),
		FrontDate:       o.FrontDate.Format("2006-01-02"),
		FrontDTE:        o.FrontDTE,
		FrontIV:         fmt.Sprintf("%.2f", o.FrontIV),
		BackDate:        o.BackDate.Format("2006-01-02"),
		BackDTE:         o.BackDTE,
		BackIV:          fmt.Sprintf("%.2f", o.BackIV),
		ForwardVol:      fmt.Sprintf("%.2f", o.ForwardVol),
		HasEarningsSoon: strconv.FormatBool(o.HasEarningsSoon),
	}
}

func (d *OpportunityCSVDTO) ToModel() (*Opportunity, error) {
	parseFloat := func(name, v string) (float64, error) {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("OpportunityCSVDTO.ToModel: invalid %s %q: %w", name, v, err)
		}
		return f, nil
	}

	ff, err := parseFloat("forward_factor", d.ForwardFactor)
	if err != nil {
		return nil, err
	}

	frontIV, err := parseFloat("front_iv", d.FrontIV)
	if err != nil {
		return nil, err
	}

	backIV, err := parseFloat("back_iv", d.BackIV)
	if err != nil {
		return nil, err
	}

	forwardVol, err := parseFloat("forward_vol", d.ForwardVol)
	if err != nil {
		return nil, err
	}

	frontDate, err := time.Parse("2006-01-02", strings.TrimSpace(d.FrontDate))
	if err != nil {
		return nil, fmt.Errorf("OpportunityCSVDTO.ToModel: invalid front_date: %w", err)
	}

	backDate, err := time.Parse("2006-01-02", strings.TrimSpace(d.BackDate))
	if err != nil {
		return nil, fmt.Errorf("OpportunityCSVDTO.ToModel: invalid back_date: %w", err)
	}

	if d.BackDTE <= d.FrontDTE {
		return nil, fmt.Errorf("OpportunityCSVDTO.ToModel: back_dte %d must exceed front_dte %d", d.BackDTE, d.FrontDTE)
	}

	return &Opportunity{
		Ticker:          NewStockSymbol(d.Ticker),
		ForwardFactor:   ff,
		FrontDate:       frontDate,
		BackDate:        backDate,
		FrontDTE:        d.FrontDTE,
		BackDTE:         d.BackDTE,
		FrontIV:         frontIV,
		BackIV:          backIV,
		ForwardVol:      forwardVol,
		HasEarningsSoon: strings.EqualFold(strings.TrimSpace(d.HasEarningsSoon), "true"),
	}, nil
}
