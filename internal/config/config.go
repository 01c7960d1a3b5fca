package config

import (
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/you/arb-scanner/internal/detector"
	"github.com/you/arb-scanner/internal/dex/core"
)

type TokenCfg struct {
	Symbol   string `yaml:"symbol"`
	Address  string `yaml:"address"`
	Decimals int    `yaml:"decimals"`
}

type VenueCfg struct {
	Name   string `yaml:"name"`
	Router string `yaml:"router"`
}

type ChainCfg struct {
	Network   string `yaml:"network"`
	RPCHTTP   string `yaml:"rpc_http"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

type PairCfg struct {
	Base  TokenCfg `yaml:"base"`
	Quote TokenCfg `yaml:"quote"`
}

type TradeCfg struct {
	// StartAmount is in human units of the base token (100 = 100 USDC).
	StartAmount float64 `yaml:"start_amount"`
}

type RiskCfg struct {
	FeeRate      float64 `yaml:"fee_rate"`
	SlippageRate float64 `yaml:"slippage_rate"`
	// MinProfit is in human units of the base token.
	MinProfit float64 `yaml:"min_profit"`
}

type TimingsCfg struct {
	PollIntervalMs int `yaml:"poll_interval_ms"`
}

type LogCfg struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

type OutputCfg struct {
	CSVPath string `yaml:"csv_path"`
}

type RedisCfg struct {
	Addr      string `yaml:"addr"`
	DB        int    `yaml:"db"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	Stream    string `yaml:"stream"`
	PricesKey string `yaml:"prices_key"`
}

type MetricsCfg struct {
	ListenAddr string `yaml:"listen_addr"`
}

type FeedCfg struct {
	ListenAddr string `yaml:"listen_addr"`
}

type Config struct {
	Chain   ChainCfg   `yaml:"chain"`
	Pair    PairCfg    `yaml:"pair"`
	Venues  []VenueCfg `yaml:"venues"`
	Trade   TradeCfg   `yaml:"trade"`
	Risk    RiskCfg    `yaml:"risk"`
	Timings TimingsCfg `yaml:"timings"`
	Log     LogCfg     `yaml:"log"`
	Output  OutputCfg  `yaml:"output"`
	Redis   RedisCfg   `yaml:"redis"`
	Metrics MetricsCfg `yaml:"metrics"`
	Feed    FeedCfg    `yaml:"feed"`
}

// Polygon USDC/WETH across three V2 routers.
var defaultVenues = []VenueCfg{
	{Name: "Uniswap", Router: "0xedf6066a2b290C185783862C7F4776A2C8077AD1"},
	{Name: "Quickswap", Router: "0xa5E0829CaCEd8fFDD4De3c43696c57F7D7A678ff"},
	{Name: "Sushiswap", Router: "0x1b02da8cb0d097eb8d57a175b88c7d8b47997506"},
}

var defaultRisk = RiskCfg{FeeRate: 0.003, SlippageRate: 0.001, MinProfit: 1}

var (
	defaultBase  = TokenCfg{Symbol: "USDC", Address: "0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174", Decimals: 6}
	defaultQuote = TokenCfg{Symbol: "WETH", Address: "0x7ceB23fD6bC0adD59E62ac25578270cFf1b9f619", Decimals: 18}
)

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	_ = godotenv.Load()
	c.applyEnv()
	return c, nil
}

// Parse decodes YAML and fills defaults. Env overrides are not applied.
func Parse(b []byte) (*Config, error) {
	// risk заполняем заранее: явный 0 в yaml должен остаться нулём
	c := Config{Risk: defaultRisk}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	c.applyDefaults()
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Chain.Network == "" {
		c.Chain.Network = "polygon"
	}
	if c.Chain.TimeoutMs == 0 {
		c.Chain.TimeoutMs = 10_000
	}
	if c.Pair.Base.Address == "" {
		c.Pair.Base = defaultBase
	}
	if c.Pair.Quote.Address == "" {
		c.Pair.Quote = defaultQuote
	}
	if len(c.Venues) == 0 {
		c.Venues = append([]VenueCfg(nil), defaultVenues...)
	}
	if c.Trade.StartAmount == 0 {
		c.Trade.StartAmount = 100
	}
	if c.Timings.PollIntervalMs == 0 {
		c.Timings.PollIntervalMs = 6000
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Output.CSVPath == "" {
		c.Output.CSVPath = "arbitrage_log.csv"
	}
	if c.Redis.Stream == "" {
		c.Redis.Stream = "arb:opportunities"
	}
	if c.Redis.PricesKey == "" {
		c.Redis.PricesKey = "arb:prices"
	}
}

func (c *Config) applyEnv() {
	setStr(&c.Chain.RPCHTTP, "ARB_RPC_HTTP")
	setStr(&c.Redis.Addr, "ARB_REDIS_ADDR")
	setStr(&c.Redis.Password, "ARB_REDIS_PASSWORD")
	setStr(&c.Metrics.ListenAddr, "ARB_METRICS_ADDR")
	setStr(&c.Feed.ListenAddr, "ARB_FEED_ADDR")
	setStr(&c.Log.Level, "ARB_LOG_LEVEL")
}

func setStr(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Chain.RPCHTTP) == "" {
		errs = append(errs, errors.New("chain.rpc_http is empty"))
	}
	if c.Chain.TimeoutMs < 0 {
		errs = append(errs, errors.New("chain.timeout_ms must be positive"))
	}
	tokens := []struct {
		name string
		tok  TokenCfg
	}{{"base", c.Pair.Base}, {"quote", c.Pair.Quote}}
	for _, t := range tokens {
		if !common.IsHexAddress(t.tok.Address) {
			errs = append(errs, fmt.Errorf("pair.%s.address %q is not a hex address", t.name, t.tok.Address))
		}
		if t.tok.Decimals < 0 {
			errs = append(errs, fmt.Errorf("pair.%s.decimals must be >= 0", t.name))
		}
	}
	if strings.EqualFold(c.Pair.Base.Address, c.Pair.Quote.Address) {
		errs = append(errs, errors.New("pair base and quote are the same token"))
	}
	if len(c.Venues) < 2 {
		errs = append(errs, errors.New("at least two venues are required"))
	}
	seen := make(map[string]struct{}, len(c.Venues))
	for _, v := range c.Venues {
		if _, dup := seen[v.Name]; dup {
			errs = append(errs, fmt.Errorf("duplicate venue %q", v.Name))
		}
		seen[v.Name] = struct{}{}
		if !common.IsHexAddress(v.Router) {
			errs = append(errs, fmt.Errorf("venue %q router %q is not a hex address", v.Name, v.Router))
		}
	}
	switch {
	case c.Trade.StartAmount <= 0:
		errs = append(errs, errors.New("trade.start_amount must be positive"))
	case c.Pair.Base.Decimals >= 0 && c.StartAmountRaw().Sign() <= 0:
		errs = append(errs, fmt.Errorf("trade.start_amount %v rounds to zero at %d decimals", c.Trade.StartAmount, c.Pair.Base.Decimals))
	}
	if c.Risk.FeeRate < 0 || c.Risk.FeeRate >= 1 {
		errs = append(errs, errors.New("risk.fee_rate must be in [0,1)"))
	}
	if c.Risk.SlippageRate < 0 || c.Risk.SlippageRate >= 1 {
		errs = append(errs, errors.New("risk.slippage_rate must be in [0,1)"))
	}
	if c.Risk.MinProfit < 0 {
		errs = append(errs, errors.New("risk.min_profit must be >= 0"))
	}
	if c.Timings.PollIntervalMs < 0 {
		errs = append(errs, errors.New("timings.poll_interval_ms must be positive"))
	}
	return errors.Join(errs...)
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Timings.PollIntervalMs) * time.Millisecond
}

func (c *Config) RPCTimeout() time.Duration {
	return time.Duration(c.Chain.TimeoutMs) * time.Millisecond
}

func (c *Config) TradingPair() core.TradingPair {
	return core.TradingPair{Base: c.Pair.Base.asset(), Quote: c.Pair.Quote.asset()}
}

func (t TokenCfg) asset() core.Asset {
	return core.Asset{Symbol: t.Symbol, Address: common.HexToAddress(t.Address), Decimals: t.Decimals}
}

func (c *Config) Registry() (*core.Registry, error) {
	venues := make([]core.Venue, 0, len(c.Venues))
	for _, v := range c.Venues {
		venues = append(venues, core.Venue{ID: core.VenueID(v.Name), Router: common.HexToAddress(v.Router)})
	}
	return core.NewRegistry(venues...)
}

// StartAmountRaw is trade.start_amount scaled to the base token's smallest unit.
func (c *Config) StartAmountRaw() *big.Int {
	return decimal.NewFromFloat(c.Trade.StartAmount).Shift(int32(c.Pair.Base.Decimals)).BigInt()
}

// MinProfitRaw is risk.min_profit scaled to the base token's smallest unit.
func (c *Config) MinProfitRaw() float64 {
	return decimal.NewFromFloat(c.Risk.MinProfit).Shift(int32(c.Pair.Base.Decimals)).InexactFloat64()
}

func (c *Config) DetectorParams() detector.Params {
	start, _ := new(big.Float).SetInt(c.StartAmountRaw()).Float64()
	return detector.Params{
		StartAmount:  start,
		FeeRate:      c.Risk.FeeRate,
		SlippageRate: c.Risk.SlippageRate,
		MinProfit:    c.MinProfitRaw(),
		BaseDecimals: c.Pair.Base.Decimals,
	}
}
