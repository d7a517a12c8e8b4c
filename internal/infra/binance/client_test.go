package binance

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"futures_go/internal/domain"
	"futures_go/internal/infra"

	"github.com/shopspring/decimal"
)

// MockRoundTripper allows us to mock HTTP responses.
type MockRoundTripper struct {
	Func func(req *http.Request) (*http.Response, error)
}

func (m *MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.Func(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
	}
}

func testConfig() *infra.Config {
	cfg := &infra.Config{}
	cfg.API.Binance.RestURL = "https://testnet.example"
	cfg.API.Binance.APIKey = "test_key"
	cfg.API.Binance.APISecret = "test_secret"
	cfg.API.Binance.RecvWindowMS = 5000
	cfg.API.Binance.TimeoutSec = 5
	return cfg
}

func newTestClient(fn func(req *http.Request) (*http.Response, error)) *Client {
	client := NewClient(testConfig(), nil)
	client.httpClient.Transport = &MockRoundTripper{Func: fn}
	return client
}

func marketOrder(t *testing.T) *domain.OrderRequest {
	t.Helper()
	req, err := domain.ValidateOrder("BTCUSDT", "BUY", "MARKET", decimal.NewFromFloat(0.01), nil)
	if err != nil {
		t.Fatalf("ValidateOrder failed: %v", err)
	}
	return req
}

func TestClient_PlaceOrder_SignedPost(t *testing.T) {
	var gotBody string
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/fapi/v1/order" {
			t.Errorf("unexpected path: %s", req.URL.Path)
		}
		if req.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", req.Method)
		}
		if got := req.Header.Get("X-MBX-APIKEY"); got != "test_key" {
			t.Errorf("X-MBX-APIKEY = %q, want test_key", got)
		}
		if ct := req.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("Content-Type = %q", ct)
		}

		body, _ := io.ReadAll(req.Body)
		gotBody = string(body)

		return jsonResponse(200, `{"orderId":123456,"status":"NEW","symbol":"BTCUSDT"}`), nil
	})

	resp, err := client.PlaceOrder(context.Background(), marketOrder(t))
	if err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}

	if got := resp.String("orderId", "N/A"); got != "123456" {
		t.Errorf("orderId = %s, want 123456", got)
	}

	form, err := url.ParseQuery(gotBody)
	if err != nil {
		t.Fatalf("body is not form-encoded: %v", err)
	}
	for _, key := range []string{"symbol", "side", "type", "quantity", "newClientOrderId", "recvWindow", "timestamp", "signature"} {
		if form.Get(key) == "" {
			t.Errorf("body missing %s: %s", key, gotBody)
		}
	}
	if form.Get("price") != "" || form.Get("timeInForce") != "" {
		t.Errorf("MARKET order must not carry price/timeInForce: %s", gotBody)
	}

	// Signature must cover everything before it.
	if !strings.Contains(gotBody, "&signature=") || strings.Index(gotBody, "signature=") < strings.Index(gotBody, "timestamp=") {
		t.Errorf("signature must be the final parameter: %s", gotBody)
	}
}

func TestClient_PlaceOrder_LimitCarriesPriceAndTIF(t *testing.T) {
	var form url.Values
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		body, _ := io.ReadAll(req.Body)
		form, _ = url.ParseQuery(string(body))
		return jsonResponse(200, `{"orderId":1,"status":"NEW"}`), nil
	})

	price := decimal.RequireFromString("42000.10")
	req, err := domain.ValidateOrder("BTCUSDT", "SELL", "LIMIT", decimal.NewFromInt(1), &price)
	if err != nil {
		t.Fatalf("ValidateOrder failed: %v", err)
	}

	if _, err := client.PlaceOrder(context.Background(), req); err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}

	if got := form.Get("price"); got != "42000.1" {
		t.Errorf("price = %q, want 42000.1", got)
	}
	if got := form.Get("timeInForce"); got != "GTC" {
		t.Errorf("timeInForce = %q, want GTC", got)
	}
}

func TestClient_PlaceOrder_LimitWithoutPrice(t *testing.T) {
	called := false
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		called = true
		return jsonResponse(200, `{}`), nil
	})

	// Bypass the validator deliberately: the client has to hold the line
	// on its own.
	req := &domain.OrderRequest{
		Symbol:   "BTCUSDT",
		Side:     domain.SideBuy,
		Type:     domain.OrderTypeLimit,
		Quantity: decimal.NewFromInt(1),
	}

	_, err := client.PlaceOrder(context.Background(), req)
	if !errors.Is(err, domain.ErrMissingPrice) {
		t.Fatalf("expected ErrMissingPrice, got %v", err)
	}

	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TransportError, got %T", err)
	}
	if te.Sent {
		t.Error("Sent = true for a pre-send rejection")
	}
	if called {
		t.Error("transport was invoked despite the guard")
	}
}

func TestClient_APIErrorClassification(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(429, `{"code": -1021, "msg": "Timestamp out of range"}`), nil
	})

	err := client.Ping(context.Background())

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T (%v)", err, err)
	}
	if apiErr.Code != -1021 {
		t.Errorf("Code = %d, want -1021", apiErr.Code)
	}
	if apiErr.Message != "Timestamp out of range" {
		t.Errorf("Message = %q", apiErr.Message)
	}
	if apiErr.HTTPStatus != 429 {
		t.Errorf("HTTPStatus = %d, want 429", apiErr.HTTPStatus)
	}
}

func TestClient_APIError_MalformedErrorBody(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(502, `<html>Bad Gateway</html>`), nil
	})

	err := client.Ping(context.Background())

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T (%v)", err, err)
	}
	if apiErr.Code != 502 {
		t.Errorf("Code = %d, want HTTP status fallback 502", apiErr.Code)
	}
	if apiErr.Message != "unknown API error" {
		t.Errorf("Message = %q", apiErr.Message)
	}
}

func TestClient_MalformedSuccessBody(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(200, `not json at all`), nil
	})

	_, err := client.Account(context.Background())

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError for malformed body, got %T (%v)", err, err)
	}
	if apiErr.Message != "malformed response body" {
		t.Errorf("Message = %q", apiErr.Message)
	}
}

func TestClient_TransportError(t *testing.T) {
	netErr := errors.New("connection refused")
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		return nil, netErr
	})

	_, err := client.PlaceOrder(context.Background(), marketOrder(t))

	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TransportError, got %T (%v)", err, err)
	}
	// A failure during the round trip leaves the outcome unknown: the
	// caller cannot assume the order was not created.
	if !te.Sent {
		t.Error("Sent = false for an in-flight failure")
	}
	if !errors.Is(err, netErr) {
		t.Errorf("cause not preserved: %v", err)
	}
}

func TestClient_CircuitBreakerOpens(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})

	// Default breaker opens after 5 consecutive failures.
	for i := 0; i < 5; i++ {
		if err := client.Ping(context.Background()); err == nil {
			t.Fatal("expected failure")
		}
	}

	err := client.Ping(context.Background())
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}

	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TransportError, got %T", err)
	}
	if te.Sent {
		t.Error("a breaker rejection never reaches the wire; Sent must be false")
	}
}

func TestClient_UnsignedRequestHasNoSignature(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		q := req.URL.Query()
		if q.Get("signature") != "" || q.Get("timestamp") != "" {
			t.Errorf("unsigned request carries auth params: %s", req.URL.RawQuery)
		}
		if req.Header.Get("X-MBX-APIKEY") != "test_key" {
			t.Error("API key header must be attached to every request")
		}
		return jsonResponse(200, `{"symbol":"BTCUSDT","price":"50123.45"}`), nil
	})

	price, err := client.TickerPrice(context.Background(), "BTCUSDT")
	if err != nil {
		t.Fatalf("TickerPrice failed: %v", err)
	}
	if !price.Equal(decimal.RequireFromString("50123.45")) {
		t.Errorf("price = %s, want 50123.45", price)
	}
}

func TestClient_ServerTime(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/fapi/v1/time" {
			t.Errorf("unexpected path: %s", req.URL.Path)
		}
		return jsonResponse(200, `{"serverTime":1700000000000}`), nil
	})

	ts, err := client.ServerTime(context.Background())
	if err != nil {
		t.Fatalf("ServerTime failed: %v", err)
	}
	if ts.UnixMilli() != 1700000000000 {
		t.Errorf("ServerTime = %d, want 1700000000000", ts.UnixMilli())
	}
}

func TestClient_SignedWithoutCredentials(t *testing.T) {
	cfg := testConfig()
	cfg.API.Binance.APIKey = ""
	cfg.API.Binance.APISecret = ""

	client := NewClient(cfg, nil)
	client.httpClient.Transport = &MockRoundTripper{
		Func: func(req *http.Request) (*http.Response, error) {
			t.Error("transport must not be reached without credentials")
			return jsonResponse(200, `{}`), nil
		},
	}

	_, err := client.Account(context.Background())
	if !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}

	// Unsigned endpoints still work without credentials.
	client.httpClient.Transport = &MockRoundTripper{
		Func: func(req *http.Request) (*http.Response, error) {
			return jsonResponse(200, `{}`), nil
		},
	}
	if err := client.Ping(context.Background()); err != nil {
		t.Errorf("Ping without credentials failed: %v", err)
	}
}

func TestValues_Defensive(t *testing.T) {
	v := Values{
		"orderId":     float64(123),
		"status":      "FILLED",
		"executedQty": "0.01",
		"flag":        true,
		"nested":      map[string]any{"x": 1},
		"null":        nil,
	}

	tests := []struct {
		key      string
		fallback string
		want     string
	}{
		{"orderId", "N/A", "123"},
		{"status", "N/A", "FILLED"},
		{"executedQty", "N/A", "0.01"},
		{"flag", "N/A", "true"},
		{"nested", "N/A", "N/A"},
		{"null", "N/A", "N/A"},
		{"missing", "N/A", "N/A"},
	}
	for _, tt := range tests {
		if got := v.String(tt.key, tt.fallback); got != tt.want {
			t.Errorf("String(%s) = %q, want %q", tt.key, got, tt.want)
		}
	}

	if n, ok := v.Int64("orderId"); !ok || n != 123 {
		t.Errorf("Int64(orderId) = %d, %v", n, ok)
	}
	if _, ok := v.Int64("status"); ok {
		t.Error("Int64(status) should fail for a string")
	}
}
