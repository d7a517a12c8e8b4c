package binance

import (
	"net/url"
	"strings"
)

// Params is an ordered list of request parameters.
//
// Binance verifies the request signature against the exact byte string the
// client sent, so the encoding must be stable and under our control; a Go
// map would randomize iteration order between calls. Insertion order is
// preserved, and Set on an existing key updates in place.
type Params struct {
	pairs []pair
}

type pair struct {
	key   string
	value string
}

// NewParams creates an empty parameter list.
func NewParams() *Params {
	return &Params{}
}

// Set adds or replaces a parameter, preserving the position of an existing
// key. Returns the receiver for chaining.
func (p *Params) Set(key, value string) *Params {
	for i := range p.pairs {
		if p.pairs[i].key == key {
			p.pairs[i].value = value
			return p
		}
	}
	p.pairs = append(p.pairs, pair{key: key, value: value})
	return p
}

// Get returns the value for key and whether it is present.
func (p *Params) Get(key string) (string, bool) {
	for i := range p.pairs {
		if p.pairs[i].key == key {
			return p.pairs[i].value, true
		}
	}
	return "", false
}

// Len returns the number of parameters.
func (p *Params) Len() int {
	return len(p.pairs)
}

// Keys returns the parameter names in insertion order.
func (p *Params) Keys() []string {
	keys := make([]string, len(p.pairs))
	for i := range p.pairs {
		keys[i] = p.pairs[i].key
	}
	return keys
}

// Clone returns an independent copy.
func (p *Params) Clone() *Params {
	out := &Params{pairs: make([]pair, len(p.pairs))}
	copy(out.pairs, p.pairs)
	return out
}

// Encode renders the parameters as an application/x-www-form-urlencoded
// string in insertion order. This is the byte string that gets signed and
// the byte string that goes on the wire; they must be identical.
func (p *Params) Encode() string {
	var b strings.Builder
	for i := range p.pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.pairs[i].key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.pairs[i].value))
	}
	return b.String()
}
