package eventmodels

type TradierGreeksDTO struct {
	Delta  float64 `json:"delta"`
	BidIv  float64 `json:"bid_iv"`
	MidIv  float64 `json:"mid_iv"`
	AskIv  float64 `json:"ask_iv"`
	SmvVol float64 `json:"smv_vol"`
}

type TradierOptionDTO struct {
	Symbol         string            `json:"symbol"`
	Underlying     string            `json:"underlying"`
	Strike         float64           `json:"strike"`
	OptionType     string            `json:"option_type"`
	ExpirationDate string            `json:"expiration_date"`
	Bid            float64           `json:"bid"`
	Ask            float64           `json:"ask"`
	Greeks         *TradierGreeksDTO `json:"greeks"`
}

// ToObservation converts the contract into a ContractObservation. Tradier reports
// implied volatility as a fraction.
func (d *TradierOptionDTO) ToObservation() ContractObservation {
	obs := ContractObservation{
		Strike:     d.Strike,
		Expiration: d.ExpirationDate,
		OptionType: OptionType(d.OptionType),
	}

	if d.Greeks != nil {
		if d.Greeks.MidIv > 0 {
			iv := NormalizeIV(d.Greeks.MidIv, IVUnitFraction)
			obs.ImpliedVolatility = &iv
		}

		if d.Greeks.Delta != 0 {
			delta := d.Greeks.Delta
			obs.Delta = &delta
		}
	}

	return obs
}
