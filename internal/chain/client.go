package chain

import (
	"context"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// Dial connects to an HTTP JSON-RPC endpoint. Every request is bounded by
// timeout at the transport level as well as by the caller's context.
func Dial(ctx context.Context, url string, timeout time.Duration) (*ethclient.Client, error) {
	rc, err := rpc.DialOptions(ctx, url, rpc.WithHTTPClient(&http.Client{Timeout: timeout}))
	if err != nil {
		return nil, fmt.Errorf("dial rpc: %w", err)
	}
	return ethclient.NewClient(rc), nil
}

type prober interface {
	ChainID(ctx context.Context) (*big.Int, error)
	BlockNumber(ctx context.Context) (uint64, error)
}

type NodeInfo struct {
	ChainID     *big.Int
	BlockNumber uint64
}

// Probe checks once that the endpoint answers. HTTP dialing is lazy, so this
// is the first real round trip to the node.
func Probe(ctx context.Context, ec prober, timeout time.Duration) (NodeInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	id, err := ec.ChainID(ctx)
	if err != nil {
		return NodeInfo{}, fmt.Errorf("rpc connectivity probe (eth_chainId): %w", err)
	}
	bn, err := ec.BlockNumber(ctx)
	if err != nil {
		return NodeInfo{}, fmt.Errorf("rpc connectivity probe (eth_blockNumber): %w", err)
	}
	return NodeInfo{ChainID: id, BlockNumber: bn}, nil
}
