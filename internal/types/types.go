package types

import (
	"time"

	"github.com/you/arb-scanner/internal/dex/core"
)

// VenuePrice is one venue's entry in a PriceSample. OK is false when the
// venue's quote failed or returned a non-positive amount.
type VenuePrice struct {
	Venue core.VenueID `json:"venue"`
	Price float64      `json:"price"`
	OK    bool         `json:"ok"`
}

type PriceSample []VenuePrice

func (s PriceSample) Available() int {
	n := 0
	for _, vp := range s {
		if vp.OK {
			n++
		}
	}
	return n
}

// Opportunity is a detected, never executed, buy/sell round trip.
// Profit is in human units of the base asset.
type Opportunity struct {
	Ts        time.Time    `json:"timestamp"`
	BuyOn     core.VenueID `json:"buy_on"`
	SellOn    core.VenueID `json:"sell_on"`
	BuyPrice  float64      `json:"buy_price"`
	SellPrice float64      `json:"sell_price"`
	Profit    float64      `json:"profit"`
}

type CycleReport struct {
	Ts            time.Time     `json:"ts"`
	Pair          string        `json:"pair"`
	Prices        PriceSample   `json:"prices"`
	Opportunities []Opportunity `json:"opportunities"`
}
