package oplog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/you/arb-scanner/internal/config"
	"github.com/you/arb-scanner/internal/types"
)

// Redis publishes opportunities to a stream and keeps the latest venue
// prices in a hash.
type Redis struct {
	rdb       *redis.Client
	stream    string
	pricesKey string
}

func NewRedis(cfg config.RedisCfg) *Redis {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		DB:       cfg.DB,
		Username: cfg.Username,
		Password: cfg.Password,
	})
	return NewRedisWithClient(rdb, cfg.Stream, cfg.PricesKey)
}

func NewRedisWithClient(rdb *redis.Client, stream, pricesKey string) *Redis {
	return &Redis{rdb: rdb, stream: stream, pricesKey: pricesKey}
}

func (r *Redis) Ping(ctx context.Context) error { return r.rdb.Ping(ctx).Err() }

func (r *Redis) Close() error { return r.rdb.Close() }

func (r *Redis) Append(ctx context.Context, opps []types.Opportunity) error {
	if len(opps) == 0 {
		return nil
	}
	pipe := r.rdb.Pipeline()
	for _, o := range opps {
		row := Row(o)
		pipe.XAdd(ctx, &redis.XAddArgs{
			Stream: r.stream,
			Values: map[string]interface{}{
				"id":         uuid.NewString(),
				"timestamp":  row[0],
				"buy_on":     row[1],
				"sell_on":    row[2],
				"buy_price":  row[3],
				"sell_price": row[4],
				"profit":     row[5],
			},
		})
	}
	_, err := pipe.Exec(ctx)
	return err
}

// RecordPrices overwrites the prices hash. Unavailable venues are stored as
// an empty string so readers can tell them from a zero price.
func (r *Redis) RecordPrices(ctx context.Context, sample types.PriceSample) error {
	fields := make(map[string]interface{}, len(sample)+1)
	for _, vp := range sample {
		v := ""
		if vp.OK {
			v = decimal.NewFromFloat(vp.Price).String()
		}
		fields[string(vp.Venue)] = v
	}
	fields["ts_ms"] = time.Now().UnixMilli()
	return r.rdb.HSet(ctx, r.pricesKey, fields).Err()
}
