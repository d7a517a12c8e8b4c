package binance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
)

func TestTickerWorker_HandleMessage(t *testing.T) {
	updates := make(chan PriceUpdate, 1)
	w := NewTickerWorker("wss://example", "BTCUSDT", func(u PriceUpdate) {
		updates <- u
	}, nil)

	frame := `{"e":"24hrTicker","E":1704067200000,"s":"BTCUSDT","c":"92000.50","h":"93000","l":"91000","v":"1234.5"}`
	w.handleMessage([]byte(frame))

	select {
	case u := <-updates:
		if u.Symbol != "BTCUSDT" {
			t.Errorf("Symbol = %s, want BTCUSDT", u.Symbol)
		}
		if !u.LastPrice.Equal(decimal.RequireFromString("92000.50")) {
			t.Errorf("LastPrice = %s, want 92000.50", u.LastPrice)
		}
		if u.EventTime.UnixMilli() != 1704067200000 {
			t.Errorf("EventTime = %d", u.EventTime.UnixMilli())
		}
	default:
		t.Fatal("no update delivered")
	}
}

func TestTickerWorker_IgnoresOtherFrames(t *testing.T) {
	updates := make(chan PriceUpdate, 1)
	w := NewTickerWorker("wss://example", "BTCUSDT", func(u PriceUpdate) {
		updates <- u
	}, nil)

	frames := []string{
		`{"result":null,"id":1}`,                               // subscribe ack
		`{"e":"aggTrade","s":"BTCUSDT","p":"1"}`,               // wrong event type
		`{"e":"24hrTicker","E":1,"s":"BTCUSDT","c":"not-a-number"}`, // bad price
		`garbage`,
	}
	for _, f := range frames {
		w.handleMessage([]byte(f))
	}

	select {
	case u := <-updates:
		t.Fatalf("unexpected update: %+v", u)
	default:
	}
}

func newMockTickerServer(t *testing.T, frames []string) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "@ticker") {
			t.Errorf("unexpected stream path: %s", r.URL.Path)
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade error: %v", err)
			return
		}
		defer conn.Close()

		for _, f := range frames {
			conn.WriteMessage(websocket.TextMessage, []byte(f))
			time.Sleep(10 * time.Millisecond)
		}
		time.Sleep(100 * time.Millisecond)
	}))
}

func TestTickerWorker_ConnectAndReceive(t *testing.T) {
	server := newMockTickerServer(t, []string{
		`{"e":"24hrTicker","E":1704067200000,"s":"ETHUSDT","c":"2500.25"}`,
	})
	defer server.Close()

	updates := make(chan PriceUpdate, 1)
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	w := NewTickerWorker(wsURL, "ETHUSDT", func(u PriceUpdate) {
		updates <- u
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := w.Connect(ctx); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer w.Disconnect()

	select {
	case u := <-updates:
		if u.Symbol != "ETHUSDT" {
			t.Errorf("Symbol = %s, want ETHUSDT", u.Symbol)
		}
		if !u.LastPrice.Equal(decimal.RequireFromString("2500.25")) {
			t.Errorf("LastPrice = %s", u.LastPrice)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no update received from mock server")
	}
}
