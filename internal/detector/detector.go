package detector

import (
	"math"
	"time"

	"github.com/you/arb-scanner/internal/types"
)

// Params drives the round-trip simulation. StartAmount and MinProfit are in
// the base token's smallest unit.
type Params struct {
	StartAmount  float64
	FeeRate      float64
	SlippageRate float64
	MinProfit    float64
	BaseDecimals int
}

// RoundTrip simulates buying the quote token at buyPrice with StartAmount of
// base and selling it back at sellPrice, charging fee then slippage on each
// leg. It returns the raw profit in the base token's smallest unit.
func RoundTrip(p Params, buyPrice, sellPrice float64) float64 {
	amountQuote := (p.StartAmount * (1 - p.FeeRate) / buyPrice) * (1 - p.SlippageRate)
	final := (amountQuote * sellPrice * (1 - p.FeeRate)) * (1 - p.SlippageRate)
	return final - p.StartAmount
}

// Find evaluates every ordered (buy, sell) venue pair of the sample and
// returns the profitable ones in discovery order.
func Find(sample types.PriceSample, p Params, now time.Time) []types.Opportunity {
	var opps []types.Opportunity
	scale := math.Pow10(p.BaseDecimals)
	ts := now.UTC()

	for i, buy := range sample {
		for j, sell := range sample {
			if i == j || !buy.OK || !sell.OK {
				continue
			}
			// unavailable venues never reach here, so prices are positive
			if !(buy.Price < sell.Price) {
				continue
			}
			profit := RoundTrip(p, buy.Price, sell.Price)
			if !(profit > p.MinProfit) {
				continue
			}
			opps = append(opps, types.Opportunity{
				Ts:        ts,
				BuyOn:     buy.Venue,
				SellOn:    sell.Venue,
				BuyPrice:  buy.Price,
				SellPrice: sell.Price,
				Profit:    profit / scale,
			})
		}
	}
	return opps
}
