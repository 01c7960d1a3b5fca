package v2

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/you/arb-scanner/internal/dex/core"
	imetrics "github.com/you/arb-scanner/internal/metrics"
)

// MockCaller answers CallContract with a canned response.
type MockCaller struct {
	Raw   []byte
	Error error
	Wait  time.Duration

	LastMsg ethereum.CallMsg
}

func (m *MockCaller) CallContract(ctx context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	m.LastMsg = msg
	if m.Wait > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.Wait):
		}
	}
	if m.Error != nil {
		return nil, m.Error
	}
	return m.Raw, nil
}

var (
	usdc = common.HexToAddress("0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174")
	weth = common.HexToAddress("0x7ceB23fD6bC0adD59E62ac25578270cFf1b9f619")
	uni  = core.Venue{ID: "Uniswap", Router: common.HexToAddress("0xedf6066a2b290C185783862C7F4776A2C8077AD1")}
)

func packAmounts(t *testing.T, q *Quoter, amounts ...*big.Int) []byte {
	t.Helper()
	raw, err := q.abi.Methods["getAmountsOut"].Outputs.Pack(amounts)
	require.NoError(t, err)
	return raw
}

func TestQuote_ReturnsLastAmount(t *testing.T) {
	mock := &MockCaller{}
	q, err := New(mock, time.Second)
	require.NoError(t, err)

	in := big.NewInt(100_000_000)
	out, _ := new(big.Int).SetString("55555555555555555", 10)
	mock.Raw = packAmounts(t, q, in, out)

	got, err := q.Quote(context.Background(), uni, in, []common.Address{usdc, weth})
	require.NoError(t, err)
	assert.Equal(t, 0, out.Cmp(got))

	// calldata targets the venue router and round-trips through the ABI
	require.NotNil(t, mock.LastMsg.To)
	assert.Equal(t, uni.Router, *mock.LastMsg.To)
	args, err := q.abi.Methods["getAmountsOut"].Inputs.Unpack(mock.LastMsg.Data[4:])
	require.NoError(t, err)
	assert.Equal(t, 0, in.Cmp(args[0].(*big.Int)))
	assert.Equal(t, []common.Address{usdc, weth}, args[1].([]common.Address))
}

func TestQuote_TransportError(t *testing.T) {
	q, err := New(&MockCaller{Error: errors.New("connection refused")}, time.Second)
	require.NoError(t, err)

	before := testutil.ToFloat64(imetrics.QuoterErrors.WithLabelValues(string(uni.ID)))
	_, err = q.Quote(context.Background(), uni, big.NewInt(1), []common.Address{usdc, weth})
	assert.ErrorContains(t, err, "connection refused")
	assert.Equal(t, before+1, testutil.ToFloat64(imetrics.QuoterErrors.WithLabelValues(string(uni.ID))))
}

func TestQuote_Timeout(t *testing.T) {
	q, err := New(&MockCaller{Wait: time.Second}, 20*time.Millisecond)
	require.NoError(t, err)

	_, err = q.Quote(context.Background(), uni, big.NewInt(1), []common.Address{usdc, weth})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestQuote_MalformedResponse(t *testing.T) {
	q, err := New(&MockCaller{Raw: []byte{0x01, 0x02}}, time.Second)
	require.NoError(t, err)

	_, err = q.Quote(context.Background(), uni, big.NewInt(1), []common.Address{usdc, weth})
	assert.ErrorContains(t, err, "decode")
}

func TestQuote_ShortAmounts(t *testing.T) {
	mock := &MockCaller{}
	q, err := New(mock, time.Second)
	require.NoError(t, err)
	mock.Raw = packAmounts(t, q, big.NewInt(1))

	_, err = q.Quote(context.Background(), uni, big.NewInt(1), []common.Address{usdc, weth})
	assert.ErrorIs(t, err, ErrBadAmounts)
}

func TestQuote_ShortPath(t *testing.T) {
	q, err := New(&MockCaller{}, time.Second)
	require.NoError(t, err)

	_, err = q.Quote(context.Background(), uni, big.NewInt(1), []common.Address{usdc})
	assert.Error(t, err)
}

func TestNew_DefaultTimeout(t *testing.T) {
	q, err := New(&MockCaller{}, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeout, q.timeout)
}
