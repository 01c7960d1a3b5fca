package detector

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/you/arb-scanner/internal/dex/core"
	"github.com/you/arb-scanner/internal/types"
)

func newTestParams() Params {
	return Params{
		StartAmount:  100e6, // 100 USDC
		FeeRate:      0.003,
		SlippageRate: 0.001,
		MinProfit:    1e6, // 1 USDC
		BaseDecimals: 6,
	}
}

func sample(prices ...any) types.PriceSample {
	s := make(types.PriceSample, 0, len(prices)/2)
	for i := 0; i+1 < len(prices); i += 2 {
		vp := types.VenuePrice{Venue: core.VenueID(prices[i].(string))}
		if px, ok := prices[i+1].(float64); ok {
			vp.Price, vp.OK = px, true
		}
		s = append(s, vp)
	}
	return s
}

func pairs(opps []types.Opportunity) [][2]core.VenueID {
	out := make([][2]core.VenueID, 0, len(opps))
	for _, o := range opps {
		out = append(out, [2]core.VenueID{o.BuyOn, o.SellOn})
	}
	return out
}

var now = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func TestRoundTrip_Arithmetic(t *testing.T) {
	p := newTestParams()
	got := RoundTrip(p, 1790, 1850)

	amountQuote := 100e6 * 0.997 / 1790 * 0.999
	want := amountQuote*1850*0.997*0.999 - 100e6
	assert.InDelta(t, want, got, 1e-6)
	assert.InDelta(t, 2.5277e6, got, 1e3)
}

func TestFind_AllUnavailable(t *testing.T) {
	opps := Find(sample("A", nil, "B", nil, "C", nil), newTestParams(), now)
	assert.Empty(t, opps)
}

func TestFind_EmptySample(t *testing.T) {
	assert.Empty(t, Find(nil, newTestParams(), now))
}

func TestFind_IdenticalPrices(t *testing.T) {
	p := newTestParams()
	p.MinProfit = math.Inf(-1)
	opps := Find(sample("A", 1800.0, "B", 1800.0, "C", 1800.0), p, now)
	assert.Empty(t, opps, "equal prices must never pass the strict price gate")
}

func TestFind_BuyNotCheaperIsSkipped(t *testing.T) {
	p := newTestParams()
	p.MinProfit = math.Inf(-1)
	opps := Find(sample("A", 1805.0, "B", 1800.0), p, now)
	require.Len(t, opps, 1)
	assert.Equal(t, core.VenueID("B"), opps[0].BuyOn)
	assert.Equal(t, core.VenueID("A"), opps[0].SellOn)
	for _, o := range opps {
		assert.Less(t, o.BuyPrice, o.SellPrice)
	}
}

func TestFind_SpreadBelowCosts(t *testing.T) {
	// 1790 -> 1800 is a 0.56% spread, less than the ~0.8% fee+slippage drag.
	p := newTestParams()
	p.MinProfit = 0
	opps := Find(sample("A", 1800.0, "C", 1790.0), p, now)
	assert.Empty(t, opps)
}

func TestFind_ThreeVenuesRawThreshold(t *testing.T) {
	// Threshold of one smallest unit: only the widest spread clears costs.
	p := newTestParams()
	p.MinProfit = 1
	opps := Find(sample("A", 1800.0, "B", 1805.0, "C", 1790.0), p, now)

	require.Len(t, opps, 1)
	assert.Equal(t, [2]core.VenueID{"C", "B"}, [2]core.VenueID{opps[0].BuyOn, opps[0].SellOn})
	assert.Greater(t, opps[0].Profit, 0.0)
	assert.InDelta(t, 0.0335, opps[0].Profit, 1e-3)
}

func TestFind_MultipleInDiscoveryOrder(t *testing.T) {
	opps := Find(sample("A", 1800.0, "B", 1850.0, "C", 1790.0), newTestParams(), now)

	assert.Equal(t, [][2]core.VenueID{{"A", "B"}, {"C", "B"}}, pairs(opps))
	for _, o := range opps {
		assert.Greater(t, o.Profit, 1.0)
		assert.Equal(t, now, o.Ts)
	}
	// no sorting by magnitude: C->B is the larger one but comes second
	assert.Greater(t, opps[1].Profit, opps[0].Profit)
}

func TestFind_ProfitReportedInHumanUnits(t *testing.T) {
	p := newTestParams()
	opps := Find(sample("A", 1790.0, "B", 1850.0), p, now)
	require.Len(t, opps, 1)
	assert.InDelta(t, RoundTrip(p, 1790, 1850)/1e6, opps[0].Profit, 1e-12)
	assert.Equal(t, 1790.0, opps[0].BuyPrice)
	assert.Equal(t, 1850.0, opps[0].SellPrice)
}

func TestFind_UnavailableVenueExcluded(t *testing.T) {
	opps := Find(sample("A", 1850.0, "B", nil, "C", 1790.0), newTestParams(), now)

	require.Len(t, opps, 1)
	assert.Equal(t, [2]core.VenueID{"C", "A"}, [2]core.VenueID{opps[0].BuyOn, opps[0].SellOn})
	for _, o := range opps {
		assert.NotEqual(t, core.VenueID("B"), o.BuyOn)
		assert.NotEqual(t, core.VenueID("B"), o.SellOn)
	}
}

func TestFind_ThresholdIsStrict(t *testing.T) {
	p := newTestParams()
	profit := RoundTrip(p, 1790, 1850)

	p.MinProfit = profit
	assert.Empty(t, Find(sample("A", 1790.0, "B", 1850.0), p, now))

	p.MinProfit = math.Nextafter(profit, math.Inf(-1))
	assert.Len(t, Find(sample("A", 1790.0, "B", 1850.0), p, now), 1)
}

func TestRoundTrip_MonotonicInSellPrice(t *testing.T) {
	p := newTestParams()
	prev := math.Inf(-1)
	for sell := 1790.0; sell <= 1900; sell += 0.5 {
		profit := RoundTrip(p, 1790, sell)
		assert.GreaterOrEqual(t, profit, prev, "sell=%v", sell)
		prev = profit
	}
}

func TestFind_AtMostOneDirectionPerPair(t *testing.T) {
	p := newTestParams()
	p.MinProfit = math.Inf(-1)
	opps := Find(sample("A", 1790.0, "B", 1850.0), p, now)
	assert.Equal(t, [][2]core.VenueID{{"A", "B"}}, pairs(opps))
}
