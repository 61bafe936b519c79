package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SignatureHeader carries the hex-encoded HMAC-SHA256 of the request body,
// keyed with the shared webhook signing secret.
const SignatureHeader = "X-Signature-SHA256"

// VerifySignature reports whether signature is the valid HMAC-SHA256 digest
// of body under secret. Comparison is constant-time.
func VerifySignature(secret string, body []byte, signature string) bool {
	got, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(mac.Sum(nil), got)
}
