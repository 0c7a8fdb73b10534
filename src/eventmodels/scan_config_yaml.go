package eventmodels

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

const (
	ChainProviderPolygon = "polygon"
	ChainProviderTradier = "tradier"
)

type ScanConfigYAML struct {
	Tickers           []string `yaml:"tickers" validate:"required,min=1,dive,required"`
	ChainProvider     string   `yaml:"chainProvider" validate:"oneof=polygon tradier"`
	Concurrency       int      `yaml:"concurrency" validate:"gte=1,lte=32"`
	RequestsPerSecond float64  `yaml:"requestsPerSecond" validate:"gt=0"`
	MaxContracts      int      `yaml:"maxContracts" validate:"gte=1"`
	MinForwardFactor  *float64 `yaml:"minForwardFactor,omitempty"`
	MaxForwardFactor  *float64 `yaml:"maxForwardFactor,omitempty"`
	ReportDir         string   `yaml:"reportDir" validate:"required"`
	TopN              int      `yaml:"topN" validate:"gte=0"`
}

// ApplyDefaults fills unset fields with the values the nightly scanner runs with.
func (c *ScanConfigYAML) ApplyDefaults() {
	if c.ChainProvider == "" {
		c.ChainProvider = ChainProviderPolygon
	}

	if c.Concurrency == 0 {
		c.Concurrency = 4
	}

	if c.RequestsPerSecond == 0 {
		c.RequestsPerSecond = 2
	}

	if c.MaxContracts == 0 {
		c.MaxContracts = 250
	}

	if c.ReportDir == "" {
		c.ReportDir = "ff_reports"
	}

	if c.TopN == 0 {
		c.TopN = 10
	}
}

func (c *ScanConfigYAML) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("ScanConfigYAML: invalid config: %w", err)
	}

	if c.MinForwardFactor != nil && c.MaxForwardFactor != nil && *c.MinForwardFactor > *c.MaxForwardFactor {
		return fmt.Errorf("ScanConfigYAML: minForwardFactor %.2f exceeds maxForwardFactor %.2f", *c.MinForwardFactor, *c.MaxForwardFactor)
	}

	return nil
}

// ForwardFactorWindow returns the raw forward factor range kept before filtering.
func (c *ScanConfigYAML) ForwardFactorWindow() (float64, float64) {
	lo, hi := -100.0, 100.0
	if c.MinForwardFactor != nil {
		lo = *c.MinForwardFactor
	}

	if c.MaxForwardFactor != nil {
		hi = *c.MaxForwardFactor
	}

	return lo, hi
}
