package infra

import (
	"fmt"
	"strings"
)

// ANSI color codes
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorYellow = "\033[33m"
)

// PrintBanner displays the startup banner. Anything other than a testnet
// endpoint gets a loud warning: this tool is meant for play money.
func PrintBanner(cfg *Config) {
	testnet := strings.Contains(cfg.API.Binance.RestURL, "testnet")

	color := ColorYellow
	envDesc := "TESTNET (PLAY MONEY)"
	if !testnet {
		color = ColorRed
		envDesc = "LIVE EXCHANGE"
	}

	fmt.Println()
	fmt.Printf("%s###########################################################%s\n", color, ColorReset)
	fmt.Printf("%s#   %-53s #%s\n", color, cfg.App.Name, ColorReset)
	fmt.Printf("%s#   ENDPOINT: %-43s #%s\n", color, envDesc, ColorReset)
	fmt.Printf("%s#   VERSION:  %-43s #%s\n", color, cfg.App.Version, ColorReset)

	if !testnet {
		fmt.Printf("%s#   WARNING: ORDERS WILL HIT A LIVE EXCHANGE              #%s\n", ColorRed, ColorReset)
	}

	fmt.Printf("%s###########################################################%s\n", color, ColorReset)
	fmt.Println()
}
