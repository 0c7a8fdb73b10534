package eventmodels

import "context"

type OptionChainProvider interface {
	FetchContracts(ctx context.Context, symbol StockSymbol) ([]ContractObservation, error)
}
