package bot

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/you/arb-scanner/internal/detector"
	imetrics "github.com/you/arb-scanner/internal/metrics"
	"github.com/you/arb-scanner/internal/oplog"
	"github.com/you/arb-scanner/internal/types"
)

type State int32

const (
	Idle State = iota
	Sampling
)

func (s State) String() string {
	if s == Sampling {
		return "sampling"
	}
	return "idle"
}

type priceSampler interface {
	Sample(ctx context.Context) types.PriceSample
}

type broadcaster interface {
	Broadcast(rep types.CycleReport)
}

// Bot runs the sample -> find -> log -> sleep loop. Cycles never overlap.
type Bot struct {
	log      *zap.Logger
	sampler  priceSampler
	params   detector.Params
	sink     oplog.Sink
	feeds    []broadcaster
	pair     string
	interval time.Duration
	now      func() time.Time

	state atomic.Int32
}

type Option func(*Bot)

// WithFeed можно передавать несколько раз.
func WithFeed(b broadcaster) Option { return func(bt *Bot) { bt.feeds = append(bt.feeds, b) } }

func WithPair(name string) Option { return func(bt *Bot) { bt.pair = name } }

func WithClock(now func() time.Time) Option { return func(bt *Bot) { bt.now = now } }

func New(s priceSampler, p detector.Params, sink oplog.Sink, interval time.Duration, log *zap.Logger, opts ...Option) *Bot {
	b := &Bot{
		log:      log,
		sampler:  s,
		params:   p,
		sink:     sink,
		interval: interval,
		now:      time.Now,
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

func (b *Bot) State() State { return State(b.state.Load()) }

func (b *Bot) Run(ctx context.Context) {
	b.log.Info("arbitrage scanner loop started",
		zap.String("pair", b.pair),
		zap.Duration("interval", b.interval),
	)
	for {
		_, _ = b.RunCycle(ctx)

		t := time.NewTimer(b.interval)
		select {
		case <-ctx.Done():
			t.Stop()
			b.log.Info("arbitrage scanner loop stopped")
			return
		case <-t.C:
		}
	}
}

// RunCycle performs one full cycle. The returned error is the log write
// failure, if any, with the opportunities returned regardless; or ctx.Err()
// when the cycle was cancelled before its prices were complete.
func (b *Bot) RunCycle(ctx context.Context) ([]types.Opportunity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.state.Store(int32(Sampling))
	defer b.state.Store(int32(Idle))
	start := time.Now()
	defer func() { imetrics.CycleDuration.Observe(time.Since(start).Seconds()) }()

	sample := b.sampler.Sample(ctx)
	if err := ctx.Err(); err != nil {
		// часть площадок не опрошена, такой цикл не пишем
		b.log.Info("cycle interrupted", zap.Error(err))
		return nil, err
	}
	now := b.now().UTC()
	b.log.Info("prices", zap.Time("at", now), zap.Any("prices", priceFields(sample)))

	opps := detector.Find(sample, b.params, now)
	for _, o := range opps {
		imetrics.Opportunities.WithLabelValues(string(o.BuyOn), string(o.SellOn)).Inc()
		b.log.Info("ARBITRAGE",
			zap.String("buy_on", string(o.BuyOn)),
			zap.Float64("buy_price", o.BuyPrice),
			zap.String("sell_on", string(o.SellOn)),
			zap.Float64("sell_price", o.SellPrice),
			zap.Float64("profit", o.Profit),
		)
	}
	if len(opps) == 0 {
		b.log.Info("no arbitrage opportunity found")
	}

	if pr, ok := b.sink.(oplog.PriceRecorder); ok {
		if err := pr.RecordPrices(ctx, sample); err != nil {
			b.log.Warn("recording prices failed", zap.Error(err))
		}
	}

	var err error
	if len(opps) > 0 {
		if err = b.sink.Append(ctx, opps); err != nil {
			imetrics.LogWriteErrors.Inc()
			b.log.Error("opportunity log write failed; opportunities above were not persisted",
				zap.Int("count", len(opps)),
				zap.Error(err),
			)
		}
	}

	rep := types.CycleReport{Ts: now, Pair: b.pair, Prices: sample, Opportunities: opps}
	for _, f := range b.feeds {
		f.Broadcast(rep)
	}
	return opps, err
}

// priceFields maps venue to price; unavailable venues map to nil.
func priceFields(s types.PriceSample) map[string]*float64 {
	m := make(map[string]*float64, len(s))
	for _, vp := range s {
		if vp.OK {
			px := vp.Price
			m[string(vp.Venue)] = &px
		} else {
			m[string(vp.Venue)] = nil
		}
	}
	return m
}
