package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

// ErrInvalidSignature is returned when a delivery's signature is missing or
// does not match the configured secret.
var ErrInvalidSignature = errors.New("invalid webhook signature")

const signaturePrefix = "sha256="

// Sign returns the X-Hub-Signature-256 header value for body under secret.
func Sign(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return signaturePrefix + hex.EncodeToString(mac.Sum(nil))
}

// Verify checks an X-Hub-Signature-256 header against body.
//
// An empty secret disables verification. Comparison is constant time.
func Verify(secret, body []byte, header string) error {
	if len(secret) == 0 {
		return nil
	}
	if !strings.HasPrefix(header, signaturePrefix) {
		return ErrInvalidSignature
	}
	if !hmac.Equal([]byte(Sign(secret, body)), []byte(header)) {
		return ErrInvalidSignature
	}
	return nil
}
