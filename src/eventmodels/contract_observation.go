package eventmodels

// ContractObservation is one option contract as reported by a chain provider.
// ImpliedVolatility is a percentage; Delta is nil when the provider has no greeks.
type ContractObservation struct {
	Strike            float64
	Expiration        string
	ImpliedVolatility *float64
	OptionType        OptionType
	Delta             *float64
}
