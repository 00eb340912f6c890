package issuer

import (
	"context"
	"time"

	"github.com/anchorctl/anchorctl/internal/config"
	"github.com/anchorctl/anchorctl/internal/errors"
	"github.com/anchorctl/anchorctl/internal/pki"
)

// LocalIssuer signs certificates with the self-managed local CA.
type LocalIssuer struct {
	ca *pki.LocalCA
}

// NewLocalIssuer creates an issuer backed by a loaded local CA.
func NewLocalIssuer(ca *pki.LocalCA) *LocalIssuer {
	return &LocalIssuer{ca: ca}
}

// LoadLocalIssuer loads the CA key pair from dir and wraps it as an issuer.
func LoadLocalIssuer(dir string) (*LocalIssuer, error) {
	ca, err := pki.LoadLocalCA(dir)
	if err != nil {
		return nil, err
	}
	return NewLocalIssuer(ca), nil
}

// Name returns the issuer type.
func (l *LocalIssuer) Name() string {
	return config.IssuerLocal
}

// Issue signs the CSR locally. Signing is synchronous so no polling is
// involved; ctx is honored for interface symmetry.
func (l *LocalIssuer) Issue(ctx context.Context, req Request) (*Certificate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(req.CSR) == 0 {
		return nil, errors.Validation("CSR is empty")
	}
	if req.ValidityDays <= 0 {
		return nil, errors.Validation("validity days must be positive")
	}

	certPEM, err := l.ca.Sign(req.CSR, time.Duration(req.ValidityDays)*24*time.Hour)
	if err != nil {
		return nil, err
	}

	return &Certificate{
		CertPEM:  certPEM,
		ChainPEM: l.ca.BundlePEM(),
	}, nil
}
