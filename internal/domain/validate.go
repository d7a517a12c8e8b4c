package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation failure kinds. Wrapped by *ValidationError so callers can
// branch with errors.Is.
var (
	ErrInvalidSymbol    = errors.New("invalid symbol")
	ErrInvalidSide      = errors.New("invalid side")
	ErrInvalidOrderType = errors.New("invalid order type")
	ErrInvalidQuantity  = errors.New("invalid quantity")
	ErrMissingPrice     = errors.New("missing price")
)

// ValidationError reports a single rejected input field. It always happens
// before any network I/O.
type ValidationError struct {
	Field string
	Kind  error
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func (e *ValidationError) Unwrap() error {
	return e.Kind
}

// ValidateOrder normalizes raw order fields into a canonical OrderRequest.
// All checks are pure; the first failing field is reported.
// A price supplied for a MARKET order is dropped, not rejected.
func ValidateOrder(symbol, side, orderType string, quantity decimal.Decimal, price *decimal.Decimal) (*OrderRequest, error) {
	sym, err := ValidateSymbol(symbol)
	if err != nil {
		return nil, err
	}

	sd, err := ValidateSide(side)
	if err != nil {
		return nil, err
	}

	typ, err := ValidateOrderType(orderType)
	if err != nil {
		return nil, err
	}

	if err := ValidateQuantity(quantity); err != nil {
		return nil, err
	}

	px, err := ValidatePrice(price, typ)
	if err != nil {
		return nil, err
	}

	req := &OrderRequest{
		Symbol:   sym,
		Side:     sd,
		Type:     typ,
		Quantity: quantity,
		Price:    px,
	}
	if typ == OrderTypeLimit {
		req.TimeInForce = DefaultTimeInForce
	}
	return req, nil
}

// ValidateSymbol trims and uppercases the symbol. It must be at least two
// characters and purely alphabetic (e.g. BTCUSDT).
func ValidateSymbol(symbol string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if s == "" {
		return "", &ValidationError{Field: "symbol", Kind: ErrInvalidSymbol, Msg: "symbol cannot be empty"}
	}
	if len(s) < 2 || !isAlpha(s) {
		return "", &ValidationError{
			Field: "symbol",
			Kind:  ErrInvalidSymbol,
			Msg:   fmt.Sprintf("invalid symbol %q, must be alphabetic (e.g. BTCUSDT)", s),
		}
	}
	return s, nil
}

// ValidateSide accepts BUY or SELL, case-insensitive.
func ValidateSide(side string) (Side, error) {
	s := strings.ToUpper(strings.TrimSpace(side))
	switch Side(s) {
	case SideBuy, SideSell:
		return Side(s), nil
	}
	return "", &ValidationError{
		Field: "side",
		Kind:  ErrInvalidSide,
		Msg:   fmt.Sprintf("invalid side %q, must be BUY or SELL", s),
	}
}

// ValidateOrderType accepts MARKET or LIMIT, case-insensitive.
func ValidateOrderType(orderType string) (OrderType, error) {
	s := strings.ToUpper(strings.TrimSpace(orderType))
	switch OrderType(s) {
	case OrderTypeMarket, OrderTypeLimit:
		return OrderType(s), nil
	}
	return "", &ValidationError{
		Field: "type",
		Kind:  ErrInvalidOrderType,
		Msg:   fmt.Sprintf("invalid order type %q, must be MARKET or LIMIT", s),
	}
}

// ValidateQuantity requires a strictly positive quantity.
func ValidateQuantity(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return &ValidationError{
			Field: "quantity",
			Kind:  ErrInvalidQuantity,
			Msg:   fmt.Sprintf("invalid quantity %s, must be positive", quantity),
		}
	}
	return nil
}

// ValidatePrice enforces the price invariant: present and positive for LIMIT,
// dropped for MARKET regardless of what was supplied.
func ValidatePrice(price *decimal.Decimal, orderType OrderType) (*decimal.Decimal, error) {
	if orderType != OrderTypeLimit {
		return nil, nil
	}
	if price == nil || price.LessThanOrEqual(decimal.Zero) {
		return nil, &ValidationError{
			Field: "price",
			Kind:  ErrMissingPrice,
			Msg:   "price is required and must be positive for LIMIT orders",
		}
	}
	p := *price
	return &p, nil
}

func isAlpha(s string) bool {
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') {
			return false
		}
	}
	return true
}
