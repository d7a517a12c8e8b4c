package binance

import (
	"encoding/json"
	"strconv"
)

// Values is a decoded JSON object from the exchange. Endpoint payloads vary
// and fields come and go, so extraction is defensive: a missing or
// unexpected field yields the caller's fallback, never a panic.
type Values map[string]any

// decodeValues parses a JSON object body. An empty body decodes to an empty
// object (the ping endpoint returns exactly "{}").
func decodeValues(body []byte) (Values, error) {
	v := Values{}
	if len(body) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// String returns the field rendered as a string, or fallback if absent or
// of a shape it cannot render. JSON numbers print without an exponent, and
// whole numbers without a decimal point, so an orderId of 123 comes back
// as "123".
func (v Values) String(key, fallback string) string {
	raw, ok := v[key]
	if !ok || raw == nil {
		return fallback
	}
	switch t := raw.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return fallback
	}
}

// Int64 returns the field as an int64 if it is a whole JSON number.
func (v Values) Int64(key string) (int64, bool) {
	raw, ok := v[key]
	if !ok {
		return 0, false
	}
	switch t := raw.(type) {
	case float64:
		n := int64(t)
		if float64(n) == t {
			return n, true
		}
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n, true
		}
	}
	return 0, false
}
