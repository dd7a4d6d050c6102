package service

import (
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"

	"github.com/lestrrat-go/jwx/v3/jwk"

	apperrors "github.com/allisson/idcore/internal/errors"
)

// CertificateJWK converts a certificate's public key into a JWK. The key id
// is the certificate fingerprint so a client can name it in the assertion header.
func CertificateJWK(cert *x509.Certificate) (jwk.Key, error) {
	key, err := jwk.Import(cert.PublicKey)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to import certificate public key")
	}

	sum := sha256.Sum256(cert.Raw)
	if err := key.Set(jwk.KeyIDKey, hex.EncodeToString(sum[:])); err != nil {
		return nil, err
	}
	if err := key.Set(jwk.KeyUsageKey, "sig"); err != nil {
		return nil, err
	}
	if err := key.Set(jwk.X509CertThumbprintS256Key, base64.RawURLEncoding.EncodeToString(sum[:])); err != nil {
		return nil, err
	}
	if methods := MethodsFor(cert.PublicKey); len(methods) > 0 {
		if err := key.Set(jwk.AlgorithmKey, methods[0]); err != nil {
			return nil, err
		}
	}
	return key, nil
}

// ExportPublicKey returns the raw public key behind a JWK.
func ExportPublicKey(key jwk.Key) (any, error) {
	var raw any
	if err := jwk.Export(key, &raw); err != nil {
		return nil, apperrors.Wrap(err, "failed to export key")
	}
	return raw, nil
}
