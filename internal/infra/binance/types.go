package binance

import "time"

// USDT-M Futures REST endpoints.
const (
	pathPing        = "/fapi/v1/ping"
	pathServerTime  = "/fapi/v1/time"
	pathTickerPrice = "/fapi/v1/ticker/price"
	pathAccount     = "/fapi/v2/account"
	pathOrder       = "/fapi/v1/order"
)

// apiKeyHeader carries the API key on every request, signed or not.
const apiKeyHeader = "X-MBX-APIKEY"

// Stream worker tuning.
const (
	wsHandshakeTimeout = 10 * time.Second
	wsReadTimeout      = 3 * time.Minute // Binance pings every ~3 minutes
	wsMaxRetries       = 10
)

// tickerEvent is the <symbol>@ticker stream frame. Only the fields this
// client consumes are mapped.
type tickerEvent struct {
	EventType string `json:"e"`
	EventTime int64  `json:"E"`
	Symbol    string `json:"s"`
	LastPrice string `json:"c"`
	High      string `json:"h"`
	Low       string `json:"l"`
	Volume    string `json:"v"`
}
