package pki

import (
	"crypto"
	cryptorand "crypto/rand"
	"crypto/x509"
	"math/big"
	"os"
	"path/filepath"
	"time"

	"github.com/anchorctl/anchorctl/internal/errors"
)

// File names for the local CA key pair inside its directory.
const (
	CACertFile = "ca.pem"
	CAKeyFile  = "ca-key.pem"
)

// DefaultCAValidity is how long a newly created local CA certificate lives.
const DefaultCAValidity = 10 * 365 * 24 * time.Hour

// serialNumberLimit is the maximum number used as a certificate serial number.
var serialNumberLimit = new(big.Int).Lsh(big.NewInt(1), 128)

// LocalCA is the self-managed certificate authority: a private key and a
// self-signed certificate kept on disk, replacing an OpenSSL-managed CA.
type LocalCA struct {
	Key  crypto.Signer
	Cert *x509.Certificate
}

// CreateLocalCA generates a new CA key pair under dir and writes
// ca-key.pem (0600) and ca.pem. It refuses to overwrite an existing CA.
func CreateLocalCA(dir string, subject Subject, validity time.Duration) (*LocalCA, error) {
	if err := subject.Validate(); err != nil {
		return nil, err
	}

	certPath := filepath.Join(dir, CACertFile)
	keyPath := filepath.Join(dir, CAKeyFile)
	if _, err := os.Stat(keyPath); err == nil {
		return nil, errors.ErrCAExists
	}
	if _, err := os.Stat(certPath); err == nil {
		return nil, errors.ErrCAExists
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, errors.Wrap(errors.ErrCodePKI, "failed to create CA directory", err)
	}

	key, err := GenerateKey(KeyTypeEC)
	if err != nil {
		return nil, err
	}

	serial, err := cryptorand.Int(cryptorand.Reader, serialNumberLimit)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodePKI, "failed to generate serial number", err)
	}

	if validity <= 0 {
		validity = DefaultCAValidity
	}

	now := time.Now()
	template := x509.Certificate{
		SerialNumber:          serial,
		Subject:               subject.Name(),
		NotBefore:             now.Add(-10 * time.Minute),
		NotAfter:              now.Add(validity),
		IsCA:                  true,
		BasicConstraintsValid: true,
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
	}

	der, err := x509.CreateCertificate(cryptorand.Reader, &template, &template, key.Public(), key)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodePKI, "failed to create CA certificate", err)
	}

	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodePKI, "failed to parse created CA certificate", err)
	}

	if err := SavePrivateKey(keyPath, key); err != nil {
		return nil, err
	}
	if err := os.WriteFile(certPath, EncodePEMCertificates(der), 0644); err != nil {
		return nil, errors.Wrap(errors.ErrCodePKI, "failed to write CA certificate", err)
	}

	return &LocalCA{Key: key, Cert: cert}, nil
}

// LoadLocalCA reads the CA key pair from dir.
func LoadLocalCA(dir string) (*LocalCA, error) {
	key, err := LoadPrivateKey(filepath.Join(dir, CAKeyFile))
	if err != nil {
		return nil, err
	}
	cert, err := LoadCertificate(filepath.Join(dir, CACertFile))
	if err != nil {
		return nil, err
	}
	if !CertificateMatchesKey(cert, key) {
		return nil, errors.ErrKeyMismatch
	}
	return &LocalCA{Key: key, Cert: cert}, nil
}

// Sign issues a client certificate for the given PEM CSR, valid for the
// requested duration. The CSR subject is carried over verbatim.
func (ca *LocalCA) Sign(csrPEM []byte, validity time.Duration) ([]byte, error) {
	csr, err := ParsePEMCSR(csrPEM)
	if err != nil {
		return nil, err
	}

	serial, err := cryptorand.Int(cryptorand.Reader, serialNumberLimit)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodePKI, "failed to generate serial number", err)
	}

	now := time.Now()
	template := x509.Certificate{
		SerialNumber:          serial,
		Subject:               csr.Subject,
		NotBefore:             now.Add(-5 * time.Minute),
		NotAfter:              now.Add(validity),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
		BasicConstraintsValid: true,
	}

	der, err := x509.CreateCertificate(cryptorand.Reader, &template, ca.Cert, csr.PublicKey, ca.Key)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIssuance, "failed to sign certificate", err)
	}

	return EncodePEMCertificates(der), nil
}

// BundlePEM returns the CA certificate as a PEM bundle, for trust anchor
// registration and chain verification.
func (ca *LocalCA) BundlePEM() []byte {
	return EncodePEMCertificates(ca.Cert.Raw)
}
