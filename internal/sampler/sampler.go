package sampler

import (
	"context"
	"math/big"

	"go.uber.org/zap"

	"github.com/you/arb-scanner/internal/dex/core"
	imetrics "github.com/you/arb-scanner/internal/metrics"
	"github.com/you/arb-scanner/internal/types"
)

// NormalizePrice converts a getAmountsOut result into base units per one
// quote unit: (amountIn / amountOut) * 10^(quoteDec - baseDec).
// ok is false when amountOut is not strictly positive.
func NormalizePrice(amountIn, amountOut *big.Int, baseDec, quoteDec int) (float64, bool) {
	if amountIn == nil || amountOut == nil || amountOut.Sign() <= 0 {
		return 0, false
	}
	r := new(big.Rat).SetFrac(amountIn, amountOut)
	exp := quoteDec - baseDec
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(abs(exp))), nil)
	if exp >= 0 {
		r.Mul(r, new(big.Rat).SetInt(scale))
	} else {
		r.Quo(r, new(big.Rat).SetInt(scale))
	}
	f, _ := r.Float64()
	return f, true
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Sampler quotes every venue once, one after another.
type Sampler struct {
	src      core.QuoteSource
	venues   []core.Venue
	pair     core.TradingPair
	amountIn *big.Int
	log      *zap.Logger
}

func New(src core.QuoteSource, reg *core.Registry, pair core.TradingPair, amountIn *big.Int, log *zap.Logger) *Sampler {
	return &Sampler{
		src:      src,
		venues:   reg.All(),
		pair:     pair,
		amountIn: new(big.Int).Set(amountIn),
		log:      log,
	}
}

// Sample returns one entry per venue in registry order. A failed or empty
// quote only marks that venue unavailable.
func (s *Sampler) Sample(ctx context.Context) types.PriceSample {
	path := s.pair.Path()
	out := make(types.PriceSample, 0, len(s.venues))

	for _, v := range s.venues {
		vp := types.VenuePrice{Venue: v.ID}

		s.log.Debug("querying router",
			zap.String("venue", string(v.ID)),
			zap.String("router", v.Router.Hex()),
			zap.String("amount_in", s.amountIn.String()),
		)
		amountOut, err := s.src.Quote(ctx, v, s.amountIn, path)
		switch {
		case err != nil && ctx.Err() != nil:
			// остановка процесса, а не отказ площадки
			s.log.Debug("quote interrupted", zap.String("venue", string(v.ID)), zap.Error(err))
		case err != nil:
			s.log.Warn("quote failed", zap.String("venue", string(v.ID)), zap.Error(err))
		default:
			if px, ok := NormalizePrice(s.amountIn, amountOut, s.pair.Base.Decimals, s.pair.Quote.Decimals); ok {
				vp.Price, vp.OK = px, true
			} else {
				s.log.Warn("quote returned no output", zap.String("venue", string(v.ID)), zap.Stringer("amount_out", amountOut))
			}
		}

		imetrics.VenuePrice.WithLabelValues(string(v.ID)).Set(vp.Price)
		if vp.OK {
			imetrics.VenueAvailable.WithLabelValues(string(v.ID)).Set(1)
		} else {
			imetrics.VenueAvailable.WithLabelValues(string(v.ID)).Set(0)
		}
		out = append(out, vp)
	}
	return out
}
