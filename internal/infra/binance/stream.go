package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"futures_go/internal/infra"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PriceUpdate is one parsed ticker frame.
type PriceUpdate struct {
	Symbol    string
	LastPrice decimal.Decimal
	EventTime time.Time
}

// TickerWorker maintains a WebSocket subscription to one symbol's ticker
// stream and delivers parsed updates through a callback. It reconnects
// with exponential backoff until its context is cancelled.
type TickerWorker struct {
	wsURL    string
	symbol   string
	onUpdate func(PriceUpdate)
	logger   *zap.Logger

	conn      *websocket.Conn
	mu        sync.RWMutex
	connected bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// NewTickerWorker creates a worker for one symbol. The callback runs on the
// read loop goroutine and must not block.
func NewTickerWorker(wsURL, symbol string, onUpdate func(PriceUpdate), logger *zap.Logger) *TickerWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TickerWorker{
		wsURL:    strings.TrimRight(wsURL, "/"),
		symbol:   strings.ToUpper(symbol),
		onUpdate: onUpdate,
		logger:   logger.With(zap.String("worker", "binance-ticker"), zap.String("symbol", symbol)),
	}
}

// Connect starts the connection loop with automatic reconnection.
func (w *TickerWorker) Connect(ctx context.Context) error {
	ctx, w.cancel = context.WithCancel(ctx)

	w.wg.Add(1)
	go w.connectionLoop(ctx)

	return nil
}

// Disconnect stops the worker and waits for its goroutine to exit.
func (w *TickerWorker) Disconnect() {
	if w.cancel != nil {
		w.cancel()
	}
	w.closeConnection()
	w.wg.Wait()
}

// IsConnected reports whether a connection is currently established.
func (w *TickerWorker) IsConnected() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.connected
}

func (w *TickerWorker) connectionLoop(ctx context.Context) {
	defer w.wg.Done()

	retryCount := 0
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("ticker connection loop stopped")
			return
		default:
		}

		if err := w.connect(ctx); err != nil {
			delay := infra.CalculateBackoff(retryCount)
			w.logger.Warn("ticker connection failed",
				zap.Error(err),
				zap.Int("retry", retryCount),
				zap.Duration("backoff", delay),
			)

			retryCount++
			if retryCount > wsMaxRetries {
				retryCount = 0
			}

			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
				continue
			}
		}

		retryCount = 0
		w.readLoop(ctx)
	}
}

func (w *TickerWorker) connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: wsHandshakeTimeout}

	// Per-symbol raw stream, e.g. wss://.../ws/btcusdt@ticker
	streamURL := fmt.Sprintf("%s/ws/%s@ticker", w.wsURL, strings.ToLower(w.symbol))
	conn, _, err := dialer.DialContext(ctx, streamURL, nil)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}

	// The server pings periodically; the default handler answers with a
	// pong, we just push the read deadline forward.
	conn.SetPingHandler(func(appData string) error {
		conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		return conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(5*time.Second))
	})

	w.mu.Lock()
	w.conn = conn
	w.connected = true
	w.mu.Unlock()

	w.logger.Info("ticker stream connected")
	return nil
}

func (w *TickerWorker) readLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		w.mu.RLock()
		conn := w.conn
		w.mu.RUnlock()

		if conn == nil {
			return
		}

		conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				w.logger.Warn("ticker read error", zap.Error(err))
			}
			w.closeConnection()
			return
		}

		w.handleMessage(message)
	}
}

// handleMessage parses one ticker frame. Unparseable frames are dropped;
// the stream is advisory, not transactional.
func (w *TickerWorker) handleMessage(message []byte) {
	var ev tickerEvent
	if err := json.Unmarshal(message, &ev); err != nil {
		return
	}
	if ev.EventType != "24hrTicker" || ev.Symbol == "" {
		return
	}

	price, err := decimal.NewFromString(ev.LastPrice)
	if err != nil {
		w.logger.Warn("unparseable ticker price", zap.String("raw", ev.LastPrice))
		return
	}

	if w.onUpdate != nil {
		w.onUpdate(PriceUpdate{
			Symbol:    ev.Symbol,
			LastPrice: price,
			EventTime: time.UnixMilli(ev.EventTime),
		})
	}
}

func (w *TickerWorker) closeConnection() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.conn != nil {
		w.conn.Close()
		w.conn = nil
	}
	w.connected = false
}
