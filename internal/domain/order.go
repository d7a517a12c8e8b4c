package domain

import (
	"github.com/shopspring/decimal"
)

// Side is the order direction.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// OrderType is the order execution type.
type OrderType string

const (
	OrderTypeMarket OrderType = "MARKET"
	OrderTypeLimit  OrderType = "LIMIT"
)

// DefaultTimeInForce is applied to LIMIT orders when the caller gives none.
const DefaultTimeInForce = "GTC"

// OrderRequest is the canonical, validated order. Build it through
// ValidateOrder; it is immutable afterwards.
// Price is nil unless Type is LIMIT.
type OrderRequest struct {
	Symbol      string
	Side        Side
	Type        OrderType
	Quantity    decimal.Decimal
	Price       *decimal.Decimal
	TimeInForce string
}

// IsLimit reports whether the order requires a price.
func (r *OrderRequest) IsLimit() bool {
	return r.Type == OrderTypeLimit
}
