package core

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

type VenueID string

// Venue is a DEX whose router answers getAmountsOut.
type Venue struct {
	ID     VenueID
	Router common.Address
}

type Asset struct {
	Symbol   string
	Address  common.Address
	Decimals int
}

// TradingPair is the fixed ordered pair the scanner quotes. Quotes always
// travel Base -> Quote; prices are expressed as Base units per one Quote unit.
type TradingPair struct {
	Base  Asset
	Quote Asset
}

func (p TradingPair) Path() []common.Address {
	return []common.Address{p.Base.Address, p.Quote.Address}
}

func (p TradingPair) String() string {
	return p.Base.Symbol + "/" + p.Quote.Symbol
}

// QuoteSource returns the amount of the last path asset a venue would give for
// amountIn of the first one. Any error means the venue is unavailable.
type QuoteSource interface {
	Quote(ctx context.Context, venue Venue, amountIn *big.Int, path []common.Address) (*big.Int, error)
}
