// Command pricewatch streams live ticker prices for one symbol from the
// Binance futures testnet until interrupted.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"futures_go/internal/domain"
	"futures_go/internal/infra"
	"futures_go/internal/infra/binance"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "", "path to config.yaml (optional)")
	symbol := flag.String("symbol", "BTCUSDT", "trading pair symbol")
	flag.Parse()

	if err := run(*configPath, *symbol); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, rawSymbol string) error {
	var (
		cfg *infra.Config
		err error
	)
	if configPath != "" {
		cfg, err = infra.LoadConfig(configPath)
		if err != nil {
			return err
		}
	} else {
		cfg = infra.DefaultConfig()
	}

	logger, err := infra.NewLogger(cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer logger.Sync()

	symbol, err := domain.ValidateSymbol(rawSymbol)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	worker := binance.NewTickerWorker(cfg.API.Binance.WSURL, symbol, func(u binance.PriceUpdate) {
		fmt.Printf("%s  %s  %s\n", u.EventTime.Format("15:04:05"), u.Symbol, u.LastPrice)
	}, logger)

	if err := worker.Connect(ctx); err != nil {
		return err
	}
	defer worker.Disconnect()

	logger.Info("streaming prices, Ctrl-C to stop", zap.String("symbol", symbol))
	<-ctx.Done()
	return nil
}
