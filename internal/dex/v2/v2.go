package v2

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/you/arb-scanner/internal/dex/core"
	imetrics "github.com/you/arb-scanner/internal/metrics"
)

const routerABI = `[
 {"inputs":[{"internalType":"uint256","name":"amountIn","type":"uint256"},{"internalType":"address[]","name":"path","type":"address[]"}],"name":"getAmountsOut","outputs":[{"internalType":"uint256[]","name":"amounts","type":"uint256[]"}],"stateMutability":"view","type":"function"}
]`

const DefaultTimeout = 10 * time.Second

var ErrBadAmounts = errors.New("bad amounts length")

// Quoter asks UniswapV2-style routers for getAmountsOut. It implements
// core.QuoteSource.
type Quoter struct {
	ec      ethereum.ContractCaller
	abi     abi.ABI
	timeout time.Duration
}

var _ core.QuoteSource = (*Quoter)(nil)

func New(ec ethereum.ContractCaller, timeout time.Duration) (*Quoter, error) {
	rABI, err := abi.JSON(strings.NewReader(routerABI))
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Quoter{ec: ec, abi: rABI, timeout: timeout}, nil
}

func (q *Quoter) Quote(ctx context.Context, venue core.Venue, amountIn *big.Int, path []common.Address) (*big.Int, error) {
	start := time.Now()
	out, err := q.getAmountsOut(ctx, venue.Router, amountIn, path)
	imetrics.QuoteLatency.WithLabelValues(string(venue.ID)).Observe(time.Since(start).Seconds())
	if err != nil {
		imetrics.QuoterErrors.WithLabelValues(string(venue.ID)).Inc()
		return nil, fmt.Errorf("%s getAmountsOut: %w", venue.ID, err)
	}
	return out, nil
}

func (q *Quoter) getAmountsOut(ctx context.Context, router common.Address, amountIn *big.Int, path []common.Address) (*big.Int, error) {
	if len(path) < 2 {
		return nil, fmt.Errorf("path too short: %d", len(path))
	}
	data, err := q.abi.Pack("getAmountsOut", amountIn, path)
	if err != nil {
		return nil, fmt.Errorf("pack: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, q.timeout)
	defer cancel()
	raw, err := q.ec.CallContract(ctx, ethereum.CallMsg{To: &router, Data: data}, nil)
	if err != nil {
		return nil, err
	}
	outs, err := q.abi.Methods["getAmountsOut"].Outputs.Unpack(raw)
	if err != nil || len(outs) == 0 {
		if err == nil {
			err = errors.New("empty output")
		}
		return nil, fmt.Errorf("decode: %w", err)
	}
	amounts, ok := outs[0].([]*big.Int)
	if !ok {
		return nil, fmt.Errorf("decode: unexpected type %T", outs[0])
	}
	if len(amounts) != len(path) {
		return nil, ErrBadAmounts
	}
	return amounts[len(amounts)-1], nil
}
