// Package orders orchestrates the order pipeline: validate raw inputs,
// submit through the exchange client, interpret the response.
package orders

import (
	"context"
	"fmt"
	"strings"

	"futures_go/internal/domain"
	"futures_go/internal/infra/binance"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Unknown marks a response field the exchange did not return.
const Unknown = "N/A"

// Exchange is the narrow slice of the transport client the service needs.
type Exchange interface {
	PlaceOrder(ctx context.Context, req *domain.OrderRequest) (binance.Values, error)
}

// Result is the interpreted outcome of a successful order placement.
// Fields the exchange omitted hold Unknown.
type Result struct {
	OrderID     string
	Symbol      string
	Side        string
	Type        string
	Status      string
	OrigQty     string
	ExecutedQty string
	AvgPrice    string
	TimeInForce string
}

// Service places orders through an Exchange. It performs no retries: a
// failed submission is surfaced immediately, because blindly resending an
// order risks duplicate execution.
type Service struct {
	exchange Exchange
	logger   *zap.Logger
}

// NewService creates an order service. A nil logger is replaced with a
// no-op logger.
func NewService(exchange Exchange, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{exchange: exchange, logger: logger}
}

// PlaceOrder validates the raw fields and submits the canonical order.
// Errors pass through unchanged: *domain.ValidationError means nothing was
// sent, *binance.APIError means the exchange rejected it, and a
// *binance.TransportError with Sent set means the outcome is unknown.
func (s *Service) PlaceOrder(ctx context.Context, symbol, side, orderType string, quantity decimal.Decimal, price *decimal.Decimal) (*Result, error) {
	req, err := domain.ValidateOrder(symbol, side, orderType, quantity, price)
	if err != nil {
		s.logger.Warn("order rejected by validation", zap.Error(err))
		return nil, err
	}

	s.logger.Info("order request",
		zap.String("symbol", req.Symbol),
		zap.String("side", string(req.Side)),
		zap.String("type", string(req.Type)),
		zap.String("quantity", req.Quantity.String()),
		zap.Stringp("price", priceString(req.Price)),
	)

	resp, err := s.exchange.PlaceOrder(ctx, req)
	if err != nil {
		s.logger.Error("order placement failed", zap.Error(err))
		return nil, err
	}

	result := extractResult(resp)
	s.logger.Info("order response",
		zap.String("orderId", result.OrderID),
		zap.String("status", result.Status),
		zap.String("executedQty", result.ExecutedQty),
		zap.String("avgPrice", result.AvgPrice),
	)
	return result, nil
}

// extractResult pulls the interesting fields out of the open response
// document. Absent fields become Unknown, never an error: a successfully
// placed order must not be reported as a failure because the exchange
// trimmed its response.
func extractResult(resp binance.Values) *Result {
	return &Result{
		OrderID:     resp.String("orderId", Unknown),
		Symbol:      resp.String("symbol", Unknown),
		Side:        resp.String("side", Unknown),
		Type:        resp.String("type", Unknown),
		Status:      resp.String("status", Unknown),
		OrigQty:     resp.String("origQty", Unknown),
		ExecutedQty: resp.String("executedQty", Unknown),
		AvgPrice:    resp.String("avgPrice", Unknown),
		TimeInForce: resp.String("timeInForce", Unknown),
	}
}

// Format renders the result as the boxed text block the CLI prints.
func (r *Result) Format() string {
	lines := []string{
		"┌─────────────── Order Result ───────────────┐",
		fmt.Sprintf("│  Order ID      : %s", r.OrderID),
		fmt.Sprintf("│  Symbol        : %s", r.Symbol),
		fmt.Sprintf("│  Side          : %s", r.Side),
		fmt.Sprintf("│  Type          : %s", r.Type),
		fmt.Sprintf("│  Status        : %s", r.Status),
		fmt.Sprintf("│  Quantity      : %s", r.OrigQty),
		fmt.Sprintf("│  Executed Qty  : %s", r.ExecutedQty),
		fmt.Sprintf("│  Avg Price     : %s", r.AvgPrice),
		fmt.Sprintf("│  Time In Force : %s", r.TimeInForce),
		"└────────────────────────────────────────────┘",
	}
	return strings.Join(lines, "\n")
}

func priceString(p *decimal.Decimal) *string {
	if p == nil {
		return nil
	}
	s := p.String()
	return &s
}
