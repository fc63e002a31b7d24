// Package qrtoken signs and verifies QR credential payloads. The wire format
// is "token.signature" where signature = hex(HMAC-SHA256(secret, token)).
// The token itself is opaque; the signature only proves the QR was issued by
// us, so scanners can refuse guessed or tampered payloads before any lookup.
package qrtoken

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"nightgate/internal/pkg/errs"
)

var (
	ErrUnsigned         = errs.New("qr payload carries no signature")
	ErrInvalidFormat    = errs.New("qr payload is malformed")
	ErrInvalidSignature = errs.New("qr signature does not verify")
)

type Signer struct {
	secret []byte
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

// Sign produces the full QR payload for a credential token.
func (s *Signer) Sign(token string) string {
	return token + "." + s.signature(token)
}

// Verify checks a scanned payload and returns the embedded token.
// Payloads without a separator are treated as unsigned rather than malformed,
// since legacy printed tickets carried the bare token.
func (s *Signer) Verify(payload string) (string, error) {
	if payload == "" {
		return "", ErrInvalidFormat
	}

	idx := strings.LastIndex(payload, ".")
	if idx < 0 {
		return "", ErrUnsigned
	}

	token, sig := payload[:idx], payload[idx+1:]
	if token == "" || sig == "" {
		return "", ErrInvalidFormat
	}

	expected := s.signature(token)
	if !hmac.Equal([]byte(sig), []byte(expected)) {
		return "", ErrInvalidSignature
	}

	return token, nil
}

func (s *Signer) signature(token string) string {
	h := hmac.New(sha256.New, s.secret)
	h.Write([]byte(token))
	return hex.EncodeToString(h.Sum(nil))
}
