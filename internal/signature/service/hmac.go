// Package service computes and compares HMAC-SHA256 body signatures.
package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// SignatureSize is the decoded length of a body signature.
const SignatureSize = sha256.Size

// Sign returns the standard base64 HMAC-SHA256 of body under key.
func Sign(key, body []byte) string {
	return base64.StdEncoding.EncodeToString(mac(key, body))
}

// Verify reports whether signature is the base64 HMAC-SHA256 of body under key.
// Malformed or wrongly sized signatures never match.
func Verify(key, body []byte, signature string) bool {
	presented, err := base64.StdEncoding.DecodeString(signature)
	if err != nil || len(presented) != SignatureSize {
		return false
	}
	return hmac.Equal(mac(key, body), presented)
}

func mac(key, body []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write(body)
	return h.Sum(nil)
}
