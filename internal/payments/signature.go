package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

var ErrInvalidSignature = errors.New("invalid signature")

// Sign computes the hex HMAC-SHA256 of body under secret. The provider signs
// the exact serialized payload it sends, so callers must pass raw bytes, not
// a re-marshalled struct.
func Sign(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a provided hex signature against the expected one
// in constant time.
func VerifySignature(secret, body []byte, provided string) error {
	got, err := hex.DecodeString(provided)
	if err != nil {
		return ErrInvalidSignature
	}
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	if !hmac.Equal(mac.Sum(nil), got) {
		return ErrInvalidSignature
	}
	return nil
}
