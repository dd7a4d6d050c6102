package validation

import (
	"crypto/sha256"
	"encoding/base64"

	validation "github.com/jellydator/validation"
)

// BodySignature accepts a standard base64 HMAC-SHA256 digest. Empty values
// pass so Required decides whether a signature must be present.
var BodySignature = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_body_signature_type", "must be a string")
	}
	if s == "" {
		return nil
	}
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return validation.NewError("validation_body_signature", "must be valid base64-encoded data")
	}
	if len(raw) != sha256.Size {
		return validation.NewError("validation_body_signature_length", "must encode a 32 byte digest")
	}
	return nil
})
