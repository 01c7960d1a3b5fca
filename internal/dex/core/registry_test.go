package core

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_KeepsOrder(t *testing.T) {
	r, err := NewRegistry(
		Venue{ID: "Uniswap", Router: common.HexToAddress("0x01")},
		Venue{ID: "Quickswap", Router: common.HexToAddress("0x02")},
		Venue{ID: "Sushiswap", Router: common.HexToAddress("0x03")},
	)
	require.NoError(t, err)
	assert.Equal(t, 3, r.Len())

	ids := make([]VenueID, 0, 3)
	for _, v := range r.All() {
		ids = append(ids, v.ID)
	}
	assert.Equal(t, []VenueID{"Uniswap", "Quickswap", "Sushiswap"}, ids)

	v, ok := r.Get("Quickswap")
	assert.True(t, ok)
	assert.Equal(t, common.HexToAddress("0x02"), v.Router)

	_, ok = r.Get("Camelot")
	assert.False(t, ok)
}

func TestRegistry_RejectsDuplicates(t *testing.T) {
	_, err := NewRegistry(
		Venue{ID: "Uniswap", Router: common.HexToAddress("0x01")},
		Venue{ID: "Uniswap", Router: common.HexToAddress("0x02")},
	)
	assert.Error(t, err)
}

func TestRegistry_RejectsEmptyName(t *testing.T) {
	_, err := NewRegistry(Venue{Router: common.HexToAddress("0x01")})
	assert.Error(t, err)
}

func TestRegistry_AllReturnsCopy(t *testing.T) {
	r, err := NewRegistry(Venue{ID: "Uniswap"})
	require.NoError(t, err)
	all := r.All()
	all[0].ID = "mutated"
	v, ok := r.Get("Uniswap")
	assert.True(t, ok)
	assert.Equal(t, VenueID("Uniswap"), v.ID)
}

func TestTradingPair_Path(t *testing.T) {
	p := TradingPair{
		Base:  Asset{Symbol: "USDC", Address: common.HexToAddress("0xaa"), Decimals: 6},
		Quote: Asset{Symbol: "WETH", Address: common.HexToAddress("0xbb"), Decimals: 18},
	}
	assert.Equal(t, []common.Address{common.HexToAddress("0xaa"), common.HexToAddress("0xbb")}, p.Path())
	assert.Equal(t, "USDC/WETH", p.String())
}
