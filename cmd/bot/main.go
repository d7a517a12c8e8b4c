// Command bot is a CLI for the Binance USDT-M Futures testnet: it places a
// single validated order and offers a few connectivity and account checks.
//
// Credentials come from BINANCE_API_KEY / BINANCE_API_SECRET (a .env file
// in the working directory is honored).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"futures_go/internal/domain"
	"futures_go/internal/infra"
	"futures_go/internal/infra/binance"
	"futures_go/internal/orders"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const usage = `Usage: bot <command> [flags]

Commands:
  order     place a MARKET or LIMIT order
  ping      check connectivity to the exchange
  time      print the exchange server time
  price     print the latest price for a symbol
  account   print the account snapshot (signed)

Run 'bot <command> -h' for command flags.`

func main() {
	// Missing .env is fine; the environment may carry the keys directly.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "order":
		err = runOrder(os.Args[2:])
	case "ping":
		err = runPing(os.Args[2:])
	case "time":
		err = runTime(os.Args[2:])
	case "price":
		err = runPrice(os.Args[2:])
	case "account":
		err = runAccount(os.Args[2:])
	case "-h", "--help", "help":
		fmt.Println(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n%s\n", os.Args[1], usage)
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, renderError(err))
		os.Exit(1)
	}
}

// setup loads config and builds the logger shared by all commands.
func setup(configPath string) (*infra.Config, *zap.Logger, error) {
	var (
		cfg *infra.Config
		err error
	)
	if configPath == "" {
		// No explicit path: use the conventional location if present.
		if p := infra.ResolveConfigPath(); fileExists(p) {
			configPath = p
		}
	}
	if configPath != "" {
		cfg, err = infra.LoadConfig(configPath)
		if err != nil {
			return nil, nil, err
		}
	} else {
		cfg = infra.DefaultConfig()
	}

	var logger *zap.Logger
	if cfg.Logging.File != "" {
		logger, err = infra.NewLoggerWithFile(cfg.Logging.Level, cfg.Logging.File)
	} else {
		logger, err = infra.NewLogger(cfg.Logging.Level)
	}
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func runOrder(args []string) error {
	fs := flag.NewFlagSet("order", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config.yaml (optional)")
	symbol := fs.String("symbol", "", "trading pair symbol (e.g. BTCUSDT)")
	side := fs.String("side", "", "order side: BUY or SELL")
	orderType := fs.String("type", "", "order type: MARKET or LIMIT")
	quantity := fs.String("quantity", "", "order quantity")
	price := fs.String("price", "", "order price (required for LIMIT)")
	fs.Parse(args)

	cfg, logger, err := setup(*configPath)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if !cfg.HasCredentials() {
		return errors.New("BINANCE_API_KEY and BINANCE_API_SECRET must be set")
	}

	infra.PrintBanner(cfg)

	qty, err := decimal.NewFromString(*quantity)
	if err != nil {
		return fmt.Errorf("invalid -quantity %q: %w", *quantity, err)
	}
	var px *decimal.Decimal
	if *price != "" {
		p, err := decimal.NewFromString(*price)
		if err != nil {
			return fmt.Errorf("invalid -price %q: %w", *price, err)
		}
		px = &p
	}

	printRequestPanel(*symbol, *side, *orderType, qty, px)

	client := binance.NewClient(cfg, logger)
	defer client.Close()

	ctx := context.Background()
	if err := client.Ping(ctx); err != nil {
		return err
	}
	logger.Info("ping successful, connected to exchange")

	svc := orders.NewService(client, logger)
	result, err := svc.PlaceOrder(ctx, *symbol, *side, *orderType, qty, px)
	if err != nil {
		return err
	}

	fmt.Println(result.Format())
	return nil
}

func runPing(args []string) error {
	fs := flag.NewFlagSet("ping", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config.yaml (optional)")
	fs.Parse(args)

	cfg, logger, err := setup(*configPath)
	if err != nil {
		return err
	}
	defer logger.Sync()

	client := binance.NewClient(cfg, logger)
	defer client.Close()

	if err := client.Ping(context.Background()); err != nil {
		return err
	}
	fmt.Println("pong: exchange reachable")
	return nil
}

func runTime(args []string) error {
	fs := flag.NewFlagSet("time", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config.yaml (optional)")
	fs.Parse(args)

	cfg, logger, err := setup(*configPath)
	if err != nil {
		return err
	}
	defer logger.Sync()

	client := binance.NewClient(cfg, logger)
	defer client.Close()

	ts, err := client.ServerTime(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("server time: %s\n", ts.UTC().Format("2006-01-02 15:04:05.000 MST"))
	return nil
}

func runPrice(args []string) error {
	fs := flag.NewFlagSet("price", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config.yaml (optional)")
	symbol := fs.String("symbol", "", "trading pair symbol (e.g. BTCUSDT)")
	fs.Parse(args)

	cfg, logger, err := setup(*configPath)
	if err != nil {
		return err
	}
	defer logger.Sync()

	sym, err := domain.ValidateSymbol(*symbol)
	if err != nil {
		return err
	}

	client := binance.NewClient(cfg, logger)
	defer client.Close()

	price, err := client.TickerPrice(context.Background(), sym)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %s\n", sym, price)
	return nil
}

func runAccount(args []string) error {
	fs := flag.NewFlagSet("account", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config.yaml (optional)")
	fs.Parse(args)

	cfg, logger, err := setup(*configPath)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if !cfg.HasCredentials() {
		return errors.New("BINANCE_API_KEY and BINANCE_API_SECRET must be set")
	}

	client := binance.NewClient(cfg, logger)
	defer client.Close()

	snapshot, err := client.Account(context.Background())
	if err != nil {
		return err
	}

	fmt.Println("Account snapshot:")
	fmt.Printf("  Wallet balance    : %s\n", snapshot.String("totalWalletBalance", orders.Unknown))
	fmt.Printf("  Unrealized PnL    : %s\n", snapshot.String("totalUnrealizedProfit", orders.Unknown))
	fmt.Printf("  Margin balance    : %s\n", snapshot.String("totalMarginBalance", orders.Unknown))
	fmt.Printf("  Available balance : %s\n", snapshot.String("availableBalance", orders.Unknown))
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func printRequestPanel(symbol, side, orderType string, qty decimal.Decimal, price *decimal.Decimal) {
	priceText := "N/A (MARKET)"
	if price != nil {
		priceText = price.String()
	}
	fmt.Println("┌──────────── Order Request ────────────┐")
	fmt.Printf("│  Symbol   : %s\n", symbol)
	fmt.Printf("│  Side     : %s\n", side)
	fmt.Printf("│  Type     : %s\n", orderType)
	fmt.Printf("│  Quantity : %s\n", qty)
	fmt.Printf("│  Price    : %s\n", priceText)
	fmt.Println("└───────────────────────────────────────┘")
}

// renderError labels the failure class so an operator can tell at a glance
// whether the order might exist server-side.
func renderError(err error) string {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return fmt.Sprintf("Validation error: %v", ve)
	}

	var apiErr *binance.APIError
	if errors.As(err, &apiErr) {
		return fmt.Sprintf("API error: %v", apiErr)
	}

	var te *binance.TransportError
	if errors.As(err, &te) {
		if te.Sent {
			return fmt.Sprintf("Transport error: %v\nWARNING: the request may have reached the exchange — check open orders before resubmitting.", te)
		}
		return fmt.Sprintf("Transport error: %v (nothing was sent)", te)
	}

	return fmt.Sprintf("Error: %v", err)
}
