package binance

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"futures_go/internal/domain"
	"futures_go/internal/infra"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Client talks to the Binance USDT-M Futures REST API. It is bound to one
// base URL and one credential pair for its lifetime and may be shared
// across goroutines: signing happens per call, never cached.
//
// Failures are classified as *TransportError (network, nothing decodable
// came back) or *APIError (the exchange answered and rejected). The client
// performs no retries — order submission is not idempotent, and retry
// policy belongs to the caller.
type Client struct {
	baseURL    string
	apiKey     string
	recvWindow int64
	signer     *Signer
	httpClient *http.Client
	limiter    *infra.RateLimiter
	breaker    *infra.CircuitBreaker
	logger     *zap.Logger
}

// NewClient creates a REST client from config. A nil logger is replaced
// with a no-op logger. Credentials may be empty for unsigned endpoints;
// signed calls then fail pre-send with ErrMissingCredentials.
func NewClient(cfg *infra.Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := cfg.API.Binance

	var signer *Signer
	if b.APISecret != "" {
		signer = NewSigner(b.APISecret)
	}

	return &Client{
		baseURL:    strings.TrimRight(b.RestURL, "/"),
		apiKey:     b.APIKey,
		recvWindow: b.RecvWindowMS,
		signer:     signer,
		httpClient: &http.Client{Timeout: cfg.Timeout()},
		limiter:    infra.NewRequestLimiter(),
		breaker:    infra.NewCircuitBreaker(infra.DefaultCircuitBreakerConfig("binance-rest"), logger),
		logger:     logger.With(zap.String("exchange", "binance-futures")),
	}
}

// Close wipes the signing secret. The client is unusable for signed
// endpoints afterwards.
func (c *Client) Close() {
	c.signer.Wipe()
}

// Ping checks REST connectivity.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.request(ctx, http.MethodGet, pathPing, nil, false)
	return err
}

// ServerTime returns the exchange clock. Useful for diagnosing signature
// rejections caused by local clock skew.
func (c *Client) ServerTime(ctx context.Context) (time.Time, error) {
	resp, err := c.request(ctx, http.MethodGet, pathServerTime, nil, false)
	if err != nil {
		return time.Time{}, err
	}
	ms, ok := resp.Int64("serverTime")
	if !ok {
		return time.Time{}, &APIError{Code: 0, Message: "serverTime missing from response", HTTPStatus: http.StatusOK}
	}
	return time.UnixMilli(ms), nil
}

// TickerPrice returns the latest price for a symbol.
func (c *Client) TickerPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	params := NewParams().Set("symbol", symbol)
	resp, err := c.request(ctx, http.MethodGet, pathTickerPrice, params, false)
	if err != nil {
		return decimal.Zero, err
	}
	price, err := decimal.NewFromString(resp.String("price", ""))
	if err != nil {
		return decimal.Zero, &APIError{Code: 0, Message: fmt.Sprintf("unparseable price for %s", symbol), HTTPStatus: http.StatusOK}
	}
	return price, nil
}

// Account returns the signed account snapshot (balances, positions).
func (c *Client) Account(ctx context.Context) (Values, error) {
	return c.request(ctx, http.MethodGet, pathAccount, nil, true)
}

// PlaceOrder submits a canonical order. A generated client order ID is
// attached so the submission can be found again after an ambiguous
// transport failure.
//
// The LIMIT-price check is repeated here as a second line of defense below
// the validator: the client must be safe to call with a hand-built request.
func (c *Client) PlaceOrder(ctx context.Context, req *domain.OrderRequest) (Values, error) {
	if req.IsLimit() && req.Price == nil {
		return nil, &TransportError{Op: "place order", Err: domain.ErrMissingPrice, Sent: false}
	}

	params := NewParams().
		Set("symbol", req.Symbol).
		Set("side", string(req.Side)).
		Set("type", string(req.Type)).
		Set("quantity", req.Quantity.String())

	if req.IsLimit() {
		params.Set("price", req.Price.String())
		tif := req.TimeInForce
		if tif == "" {
			tif = domain.DefaultTimeInForce
		}
		params.Set("timeInForce", tif)
	}
	params.Set("newClientOrderId", uuid.NewString())

	return c.request(ctx, http.MethodPost, pathOrder, params, true)
}

// request performs one HTTP round trip. When signed is true the parameters
// are stamped and signed immediately before sending; the API key header is
// attached either way.
func (c *Client) request(ctx context.Context, method, path string, params *Params, signed bool) (Values, error) {
	op := fmt.Sprintf("%s %s", method, path)
	if params == nil {
		params = NewParams()
	}

	if !c.breaker.Allow() {
		return nil, &TransportError{Op: op, Err: ErrCircuitOpen, Sent: false}
	}
	c.limiter.Wait()

	if signed {
		if c.signer == nil || c.apiKey == "" {
			return nil, &TransportError{Op: op, Err: ErrMissingCredentials, Sent: false}
		}
		params.Set("recvWindow", strconv.FormatInt(c.recvWindow, 10))
		params = c.signer.Sign(params)
	}
	encoded := params.Encode()

	var (
		req *http.Request
		err error
	)
	if method == http.MethodGet {
		reqURL := c.baseURL + path
		if encoded != "" {
			reqURL += "?" + encoded
		}
		req, err = http.NewRequestWithContext(ctx, method, reqURL, nil)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, strings.NewReader(encoded))
		if req != nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	}
	if err != nil {
		return nil, &TransportError{Op: op, Err: err, Sent: false}
	}
	req.Header.Set(apiKeyHeader, c.apiKey)

	c.logger.Debug("api request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Bool("signed", signed),
		zap.Int("params", params.Len()),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// The request may or may not have reached the exchange.
		c.breaker.RecordFailure()
		return nil, &TransportError{Op: op, Err: err, Sent: true}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.breaker.RecordFailure()
		return nil, &TransportError{Op: op, Err: err, Sent: true}
	}

	c.logger.Debug("api response",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
	)

	if resp.StatusCode >= http.StatusBadRequest {
		// Rate limits and server errors count against the breaker; a
		// plain 4xx means the transport itself is healthy.
		if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
		return nil, apiErrorFromBody(resp.StatusCode, body)
	}

	values, err := decodeValues(body)
	if err != nil {
		c.breaker.RecordSuccess()
		return nil, &APIError{
			Code:       int64(resp.StatusCode),
			Message:    "malformed response body",
			HTTPStatus: resp.StatusCode,
		}
	}

	c.breaker.RecordSuccess()
	return values, nil
}

// apiErrorFromBody extracts the exchange error code and message, falling
// back to the HTTP status when the body is missing or malformed.
func apiErrorFromBody(status int, body []byte) *APIError {
	apiErr := &APIError{
		Code:       int64(status),
		Message:    "unknown API error",
		HTTPStatus: status,
	}

	values, err := decodeValues(body)
	if err != nil {
		return apiErr
	}
	if code, ok := values.Int64("code"); ok {
		apiErr.Code = code
	}
	if msg := values.String("msg", ""); msg != "" {
		apiErr.Message = msg
	}
	return apiErr
}
