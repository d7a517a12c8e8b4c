package binance

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"
)

// Signer authenticates Binance SIGNED endpoints: it stamps a request with
// the current epoch milliseconds and an HMAC-SHA256 hex digest over the
// encoded parameter string, keyed by the API secret.
//
// The secret is held as []byte so it can be wiped; it is only ever used as
// an HMAC key and never leaves the process.
type Signer struct {
	secret []byte
	now    func() time.Time
}

// NewSigner creates a signer for the given API secret.
func NewSigner(secret string) *Signer {
	return &Signer{
		secret: []byte(secret),
		now:    time.Now,
	}
}

// Sign returns a copy of params with timestamp and signature appended.
//
// The signature covers every parameter before it, in insertion order, so it
// must be the final parameter. Signatures are never cached or reused: the
// timestamp changes per call and the exchange rejects requests outside its
// clock-skew window, so each request gets a fresh pair.
func (s *Signer) Sign(params *Params) *Params {
	signed := params.Clone()
	signed.Set("timestamp", strconv.FormatInt(s.now().UnixMilli(), 10))
	signed.Set("signature", s.signPayload(signed.Encode()))
	return signed
}

// Wipe clears the secret from memory. The signer is unusable afterwards.
func (s *Signer) Wipe() {
	if s == nil {
		return
	}
	for i := range s.secret {
		s.secret[i] = 0
	}
}

func (s *Signer) signPayload(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
