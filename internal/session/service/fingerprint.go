package service

import (
	"crypto/sha256"
	"crypto/subtle"
	"strings"

	sessionDomain "github.com/allisson/idcore/internal/session/domain"
)

// Fingerprint derives the device fingerprint of a request. An explicit
// device fingerprint header wins; otherwise the browser characteristics are
// hashed. Returns nil when the request carries none of them.
func Fingerprint(req sessionDomain.RequestFingerprint) []byte {
	if req.DeviceFingerprint != "" {
		sum := sha256.Sum256([]byte("device\x00" + req.DeviceFingerprint))
		return sum[:]
	}
	if req.UserAgent == "" && req.AcceptLanguage == "" && len(req.ClientHints) == 0 {
		return nil
	}

	parts := append([]string{"browser", req.UserAgent, req.AcceptLanguage}, req.ClientHints...)
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return sum[:]
}

// FingerprintsMatch compares two fingerprints in constant time.
func FingerprintsMatch(stored, presented []byte) bool {
	return len(stored) > 0 && subtle.ConstantTimeCompare(stored, presented) == 1
}
