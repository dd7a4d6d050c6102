// Package service holds the pure parsing and generation logic behind the
// registry: certificate bundle decoding, fingerprints and secret generation.
package service

import (
	"bytes"
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"

	"software.sslmate.com/src/go-pkcs12"

	registryDomain "github.com/allisson/idcore/internal/registry/domain"
)

// ParsedBundle is the decoded content of an uploaded certificate bundle.
type ParsedBundle struct {
	// Certificates holds the chain, leaf first.
	Certificates []*x509.Certificate
	// PrivateKey is nil for public-key-only bundles.
	PrivateKey crypto.Signer
}

// Leaf returns the first certificate of the chain.
func (b *ParsedBundle) Leaf() *x509.Certificate {
	if len(b.Certificates) == 0 {
		return nil
	}
	return b.Certificates[0]
}

// CertificateParser decodes PEM and PKCS#12 uploads.
type CertificateParser interface {
	Parse(data []byte, password string, certType registryDomain.CertificateType) (*ParsedBundle, error)
}

type certificateParser struct{}

// NewCertificateParser creates a CertificateParser.
func NewCertificateParser() CertificateParser {
	return &certificateParser{}
}

// Parse decodes data as PEM when it contains PEM blocks and as PKCS#12
// otherwise. Organization signing bundles must carry a private key matching
// the leaf certificate; public key bundles drop any key they carry.
func (p *certificateParser) Parse(
	data []byte,
	password string,
	certType registryDomain.CertificateType,
) (*ParsedBundle, error) {
	var bundle *ParsedBundle
	var err error

	if bytes.Contains(data, []byte("-----BEGIN ")) {
		bundle, err = parsePEM(data)
	} else {
		bundle, err = parsePKCS12(data, password, certType)
	}
	if err != nil {
		return nil, err
	}

	if len(bundle.Certificates) == 0 {
		return nil, registryDomain.ErrMissingCertificate
	}

	switch certType {
	case registryDomain.CertificateOrganizationSigning:
		if bundle.PrivateKey == nil {
			return nil, registryDomain.ErrMissingPrivateKey
		}
		if !publicKeysEqual(bundle.PrivateKey.Public(), bundle.Leaf().PublicKey) {
			return nil, registryDomain.ErrKeyMismatch
		}
	case registryDomain.CertificatePublicKey:
		bundle.PrivateKey = nil
	default:
		return nil, registryDomain.ErrInvalidCertificateType
	}

	return bundle, nil
}

func parsePEM(data []byte) (*ParsedBundle, error) {
	bundle := &ParsedBundle{}
	rest := data
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}

		switch block.Type {
		case "CERTIFICATE":
			cert, err := x509.ParseCertificate(block.Bytes)
			if err != nil {
				return nil, registryDomain.ErrInvalidCertificateData
			}
			bundle.Certificates = append(bundle.Certificates, cert)
		case "PRIVATE KEY", "RSA PRIVATE KEY", "EC PRIVATE KEY":
			if bundle.PrivateKey != nil {
				return nil, registryDomain.ErrInvalidCertificateData
			}
			key, err := parsePrivateKey(block)
			if err != nil {
				return nil, err
			}
			bundle.PrivateKey = key
		}
	}
	return bundle, nil
}

func parsePrivateKey(block *pem.Block) (crypto.Signer, error) {
	var key any
	var err error

	switch block.Type {
	case "PRIVATE KEY":
		key, err = x509.ParsePKCS8PrivateKey(block.Bytes)
	case "RSA PRIVATE KEY":
		key, err = x509.ParsePKCS1PrivateKey(block.Bytes)
	case "EC PRIVATE KEY":
		key, err = x509.ParseECPrivateKey(block.Bytes)
	}
	if err != nil {
		return nil, registryDomain.ErrInvalidCertificateData
	}
	return toSigner(key)
}

func parsePKCS12(data []byte, password string, certType registryDomain.CertificateType) (*ParsedBundle, error) {
	if certType == registryDomain.CertificatePublicKey {
		certs, err := pkcs12.DecodeTrustStore(data, password)
		if err == nil {
			return &ParsedBundle{Certificates: certs}, nil
		}
	}

	key, leaf, caCerts, err := pkcs12.DecodeChain(data, password)
	if err != nil {
		return nil, registryDomain.ErrInvalidCertificateData
	}
	signer, err := toSigner(key)
	if err != nil {
		return nil, err
	}
	return &ParsedBundle{
		Certificates: append([]*x509.Certificate{leaf}, caCerts...),
		PrivateKey:   signer,
	}, nil
}

func toSigner(key any) (crypto.Signer, error) {
	switch k := key.(type) {
	case *rsa.PrivateKey:
		return k, nil
	case *ecdsa.PrivateKey:
		return k, nil
	case ed25519.PrivateKey:
		return k, nil
	default:
		return nil, registryDomain.ErrUnsupportedKeyType
	}
}

func publicKeysEqual(a, b crypto.PublicKey) bool {
	type equaler interface {
		Equal(crypto.PublicKey) bool
	}
	e, ok := a.(equaler)
	return ok && e.Equal(b)
}

// Fingerprint returns the hex SHA-256 digest of a certificate's DER encoding.
func Fingerprint(cert *x509.Certificate) string {
	sum := sha256.Sum256(cert.Raw)
	return hex.EncodeToString(sum[:])
}

// MarshalPrivateKey encodes a signer as PKCS#8 DER for storage.
func MarshalPrivateKey(key crypto.Signer) ([]byte, error) {
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, registryDomain.ErrUnsupportedKeyType
	}
	return der, nil
}
