package oplog

import (
	"context"
	"errors"

	"github.com/you/arb-scanner/internal/types"
)

// Sink durably records opportunities. Implementations only ever append.
type Sink interface {
	Append(ctx context.Context, opps []types.Opportunity) error
}

type PriceRecorder interface {
	RecordPrices(ctx context.Context, sample types.PriceSample) error
}

// Multi appends to every sink even if an earlier one fails.
type Multi []Sink

func (m Multi) Append(ctx context.Context, opps []types.Opportunity) error {
	var errs []error
	for _, s := range m {
		if err := s.Append(ctx, opps); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) RecordPrices(ctx context.Context, sample types.PriceSample) error {
	var errs []error
	for _, s := range m {
		if pr, ok := s.(PriceRecorder); ok {
			if err := pr.RecordPrices(ctx, sample); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
