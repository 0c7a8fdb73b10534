package eventmodels

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ScanRequestDTO is decoded from the query string of POST /scans.
type ScanRequestDTO struct {
	Tickers []string `schema:"ticker" validate:"dive,required,max=10"`
	MinFF   *float64 `schema:"min_ff"`
	MaxFF   *float64 `schema:"max_ff"`
	Top     int      `schema:"top" validate:"gte=0"`
}

func (r *ScanRequestDTO) Validate() error {
	if err := validator.New().Struct(r); err != nil {
		return fmt.Errorf("ScanRequestDTO: %w", err)
	}

	if r.MinFF != nil && r.MaxFF != nil && *r.MinFF > *r.MaxFF {
		return fmt.Errorf("ScanRequestDTO: min_ff %.2f exceeds max_ff %.2f", *r.MinFF, *r.MaxFF)
	}

	return nil
}
