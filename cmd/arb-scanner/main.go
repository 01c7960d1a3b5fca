package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/you/arb-scanner/internal/bot"
	"github.com/you/arb-scanner/internal/chain"
	"github.com/you/arb-scanner/internal/config"
	"github.com/you/arb-scanner/internal/dash"
	v2 "github.com/you/arb-scanner/internal/dex/v2"
	"github.com/you/arb-scanner/internal/logging"
	"github.com/you/arb-scanner/internal/metrics"
	"github.com/you/arb-scanner/internal/oplog"
	"github.com/you/arb-scanner/internal/sampler"
	"github.com/you/arb-scanner/internal/server"
)

func parseFlags() (cfgPath string, once bool) {
	flag.StringVar(&cfgPath, "config", "./config.yaml", "path to config file")
	flag.BoolVar(&once, "once", false, "run a single cycle and exit")
	flag.Parse()
	return cfgPath, once
}

func main() {
	cfgPath, once := parseFlags()
	os.Exit(run(cfgPath, once))
}

// run возвращает код выхода; os.Exit только в main, чтобы отработали defer'ы.
func run(cfgPath string, once bool) int {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 1
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", zap.Error(err))
		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)
	go func() {
		select {
		case <-sigs:
			logger.Warn("received signal, shutting down...")
			cancel()
		case <-ctx.Done():
		}
	}()

	logger.Info("starting arbitrage scanner", zap.String("network", cfg.Chain.Network))
	ec, err := chain.Dial(ctx, cfg.Chain.RPCHTTP, cfg.RPCTimeout())
	if err != nil {
		logger.Error("rpc init failed", zap.Error(err))
		return 1
	}
	defer ec.Close()
	info, err := chain.Probe(ctx, ec, cfg.RPCTimeout())
	if err != nil {
		logger.Error("failed to connect to rpc", zap.Error(err))
		return 1
	}
	logger.Info("connected to rpc",
		zap.Stringer("chain_id", info.ChainID),
		zap.Uint64("block", info.BlockNumber),
	)

	reg, err := cfg.Registry()
	if err != nil {
		logger.Error("venue registry", zap.Error(err))
		return 1
	}
	quoter, err := v2.New(ec, cfg.RPCTimeout())
	if err != nil {
		logger.Error("v2 quoter init", zap.Error(err))
		return 1
	}
	pair := cfg.TradingPair()
	smp := sampler.New(quoter, reg, pair, cfg.StartAmountRaw(), logger)

	sinks := oplog.Multi{oplog.NewCSV(cfg.Output.CSVPath)}
	if cfg.Redis.Addr != "" {
		rs := oplog.NewRedis(cfg.Redis)
		defer rs.Close()
		if err := rs.Ping(ctx); err != nil {
			logger.Warn("redis unreachable; will keep trying each cycle", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		sinks = append(sinks, rs)
	}

	metrics.Serve(ctx, cfg.Metrics.ListenAddr, nil, logger)

	opts := []bot.Option{bot.WithPair(pair.String())}
	if cfg.Feed.ListenAddr != "" {
		hub := server.NewHub(logger)
		store := dash.NewStore()
		server.Serve(ctx, cfg.Feed.ListenAddr, hub, store, logger)
		opts = append(opts, bot.WithFeed(hub), bot.WithFeed(store))
	}

	b := bot.New(smp, cfg.DetectorParams(), sinks, cfg.PollInterval(), logger, opts...)
	logger.Info("scanner configured",
		zap.String("pair", pair.String()),
		zap.Int("venues", reg.Len()),
		zap.String("start_amount_raw", cfg.StartAmountRaw().String()),
		zap.Float64("fee_rate", cfg.Risk.FeeRate),
		zap.Float64("slippage_rate", cfg.Risk.SlippageRate),
		zap.Float64("min_profit", cfg.Risk.MinProfit),
		zap.String("csv", cfg.Output.CSVPath),
	)

	if once {
		if _, err := b.RunCycle(ctx); err != nil {
			logger.Error("cycle finished with errors", zap.Error(err))
			return 2
		}
		return 0
	}
	b.Run(ctx)
	return 0
}
