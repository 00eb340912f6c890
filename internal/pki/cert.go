package pki

import (
	"bytes"
	"crypto"
	"crypto/x509"
	"encoding/pem"
	"os"
	"time"

	"github.com/anchorctl/anchorctl/internal/errors"
)

const certPEMType = "CERTIFICATE"

// ParsePEMCertificates returns all certificates from the given PEM data.
func ParsePEMCertificates(pemData []byte) ([]*x509.Certificate, error) {
	var certs []*x509.Certificate
	for len(pemData) > 0 {
		var block *pem.Block
		block, pemData = pem.Decode(pemData)
		if block == nil {
			break
		}
		if block.Type != certPEMType || len(block.Headers) != 0 {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodePKI, "failed to parse certificate", err)
		}
		certs = append(certs, cert)
	}
	if len(certs) == 0 {
		return nil, errors.Wrap(errors.ErrCodePKI, "no certificates found in PEM data", nil)
	}
	return certs, nil
}

// ParsePEMCertificate returns the first certificate from the given PEM data.
func ParsePEMCertificate(pemData []byte) (*x509.Certificate, error) {
	certs, err := ParsePEMCertificates(pemData)
	if err != nil {
		return nil, err
	}
	return certs[0], nil
}

// EncodePEMCertificates encodes DER certificate blocks as PEM.
func EncodePEMCertificates(derBlocks ...[]byte) []byte {
	var buf bytes.Buffer
	for _, der := range derBlocks {
		_, _ = buf.Write(pem.EncodeToMemory(&pem.Block{Type: certPEMType, Bytes: der}))
	}
	return buf.Bytes()
}

// LoadCertificate reads and parses the first certificate in a PEM file.
func LoadCertificate(path string) (*x509.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ErrCertNotFound
		}
		return nil, errors.Wrap(errors.ErrCodePKI, "failed to read certificate", err)
	}
	return ParsePEMCertificate(data)
}

// CertificateMatchesKey reports whether the certificate's public key is the
// public half of the given private key.
func CertificateMatchesKey(cert *x509.Certificate, key crypto.Signer) bool {
	return PublicKeysEqual(cert.PublicKey, key.Public())
}

// VerifyChain verifies that the certificate chains to the issuer bundle.
// The last certificate of the bundle is treated as the root; any preceding
// certificates as intermediates.
func VerifyChain(cert *x509.Certificate, chainPEM []byte) error {
	chain, err := ParsePEMCertificates(chainPEM)
	if err != nil {
		return err
	}

	roots := x509.NewCertPool()
	intermediates := x509.NewCertPool()
	roots.AddCert(chain[len(chain)-1])
	for _, c := range chain[:len(chain)-1] {
		intermediates.AddCert(c)
	}

	opts := x509.VerifyOptions{
		Roots:         roots,
		Intermediates: intermediates,
		// Client certs for Roles Anywhere; don't constrain EKU here, the
		// service applies its own checks.
		KeyUsages: []x509.ExtKeyUsage{x509.ExtKeyUsageAny},
	}
	if _, err := cert.Verify(opts); err != nil {
		return errors.Wrap(errors.ErrCodeVerify, "certificate chain verification failed", err)
	}
	return nil
}

// RemainingValidity returns how long the certificate stays valid from now.
// A negative duration means the certificate is already expired.
func RemainingValidity(cert *x509.Certificate, now time.Time) time.Duration {
	return cert.NotAfter.Sub(now)
}

// NeedsRenewal reports whether the remaining validity has dropped below the
// given fraction of the total validity period.
func NeedsRenewal(cert *x509.Certificate, now time.Time, window float64) bool {
	total := cert.NotAfter.Sub(cert.NotBefore)
	remaining := cert.NotAfter.Sub(now)
	if remaining <= 0 {
		return true
	}
	return float64(remaining) < float64(total)*window
}
