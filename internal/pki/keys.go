package pki

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	cryptorand "crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"

	"github.com/anchorctl/anchorctl/internal/errors"
)

// Key type constants for GenerateKey.
const (
	KeyTypeRSA = "rsa"
	KeyTypeEC  = "ec"
)

// RSAKeyBits is the modulus size for generated RSA keys.
const RSAKeyBits = 2048

const (
	ecPrivateKeyType    = "EC PRIVATE KEY"
	pkcs1PrivateKeyType = "RSA PRIVATE KEY"
	pkcs8PrivateKeyType = "PRIVATE KEY"
)

// GenerateKey creates a new private key of the given type (rsa or ec).
// EC keys use the P-256 curve, RSA keys a 2048-bit modulus.
func GenerateKey(keyType string) (crypto.Signer, error) {
	switch keyType {
	case KeyTypeRSA:
		key, err := rsa.GenerateKey(cryptorand.Reader, RSAKeyBits)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodePKI, "failed to generate RSA key", err)
		}
		return key, nil
	case KeyTypeEC:
		key, err := ecdsa.GenerateKey(elliptic.P256(), cryptorand.Reader)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodePKI, "failed to generate EC key", err)
		}
		return key, nil
	default:
		return nil, errors.Validation(fmt.Sprintf("unsupported key type: %s", keyType))
	}
}

// ParsePEMPrivateKey parses a PEM-encoded private key. PKCS#1, SEC 1, and
// PKCS#8 encodings are accepted.
func ParsePEMPrivateKey(pemData []byte) (crypto.Signer, error) {
	block, _ := pem.Decode(pemData)
	if block == nil {
		return nil, errors.Wrap(errors.ErrCodePKI, "no PEM block found in private key data", nil)
	}

	switch block.Type {
	case pkcs1PrivateKeyType:
		key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodePKI, "failed to parse PKCS#1 private key", err)
		}
		return key, nil
	case ecPrivateKeyType:
		key, err := x509.ParseECPrivateKey(block.Bytes)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodePKI, "failed to parse EC private key", err)
		}
		return key, nil
	case pkcs8PrivateKeyType:
		parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodePKI, "failed to parse PKCS#8 private key", err)
		}
		signer, ok := parsed.(crypto.Signer)
		if !ok {
			return nil, errors.Wrap(errors.ErrCodePKI, fmt.Sprintf("unsupported PKCS#8 key type %T", parsed), nil)
		}
		return signer, nil
	default:
		return nil, errors.Wrap(errors.ErrCodePKI, fmt.Sprintf("unexpected PEM block type %q", block.Type), nil)
	}
}

// EncodePEMPrivateKey encodes the given private key in the PEM format,
// using the type-specific encoding (PKCS#1 for RSA, SEC 1 for EC).
func EncodePEMPrivateKey(key crypto.Signer) ([]byte, error) {
	switch k := key.(type) {
	case *rsa.PrivateKey:
		return pem.EncodeToMemory(&pem.Block{Type: pkcs1PrivateKeyType, Bytes: x509.MarshalPKCS1PrivateKey(k)}), nil
	case *ecdsa.PrivateKey:
		b, err := x509.MarshalECPrivateKey(k)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodePKI, "failed to marshal EC private key", err)
		}
		return pem.EncodeToMemory(&pem.Block{Type: ecPrivateKeyType, Bytes: b}), nil
	default:
		b, err := x509.MarshalPKCS8PrivateKey(k)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodePKI, "failed to marshal PKCS#8 private key", err)
		}
		return pem.EncodeToMemory(&pem.Block{Type: pkcs8PrivateKeyType, Bytes: b}), nil
	}
}

// LoadPrivateKey reads and parses a PEM private key file.
func LoadPrivateKey(path string) (crypto.Signer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ErrKeyNotFound
		}
		return nil, errors.Wrap(errors.ErrCodePKI, "failed to read private key", err)
	}
	return ParsePEMPrivateKey(data)
}

// SavePrivateKey writes a private key to path with owner-only permissions.
// It refuses to overwrite an existing file: keys are never rotated in place.
func SavePrivateKey(path string, key crypto.Signer) error {
	if _, err := os.Stat(path); err == nil {
		return errors.Wrap(errors.ErrCodePKI, fmt.Sprintf("refusing to overwrite existing key %s", path), nil)
	}

	data, err := EncodePEMPrivateKey(key)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return errors.Wrap(errors.ErrCodePKI, "failed to write private key", err)
	}
	return nil
}

// PublicKeysEqual reports whether two public keys are the same key.
func PublicKeysEqual(a, b crypto.PublicKey) bool {
	type equaler interface {
		Equal(crypto.PublicKey) bool
	}
	if ae, ok := a.(equaler); ok {
		return ae.Equal(b)
	}
	return false
}
