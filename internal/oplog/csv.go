package oplog

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/you/arb-scanner/internal/types"
)

var Header = []string{"timestamp", "buy_on", "sell_on", "buy_price", "sell_price", "profit"}

// CSV appends rows to a file, writing the header only when the file is empty.
// The file is opened per append, so nothing accumulates in memory and a
// transient filesystem error only affects that append.
type CSV struct {
	path string
}

func NewCSV(path string) *CSV { return &CSV{path: path} }

func (c *CSV) Path() string { return c.path }

func (c *CSV) Append(_ context.Context, opps []types.Opportunity) error {
	if len(opps) == 0 {
		return nil
	}
	f, err := os.OpenFile(c.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open opportunity log: %w", err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat opportunity log: %w", err)
	}

	w := csv.NewWriter(f)
	if st.Size() == 0 {
		if err := w.Write(Header); err != nil {
			return fmt.Errorf("writing CSV header: %w", err)
		}
	}
	for _, o := range opps {
		if err := w.Write(Row(o)); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush opportunity log: %w", err)
	}
	return f.Sync()
}

func Row(o types.Opportunity) []string {
	return []string{
		o.Ts.UTC().Format(time.RFC3339Nano),
		string(o.BuyOn),
		string(o.SellOn),
		decimal.NewFromFloat(o.BuyPrice).String(),
		decimal.NewFromFloat(o.SellPrice).String(),
		decimal.NewFromFloat(o.Profit).String(),
	}
}
