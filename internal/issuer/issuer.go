// Package issuer abstracts certificate issuance behind a single interface
// with two implementations: AWS ACM Private CA and the self-managed local
// CA. The renewal workflow issues through this interface and stays agnostic
// of which authority signs.
package issuer

import "context"

// Request is a certificate issuance request.
type Request struct {
	// CSR is the PEM-encoded certificate signing request.
	CSR []byte

	// ValidityDays is the requested certificate validity period.
	ValidityDays int
}

// Certificate is an issued certificate together with the issuer bundle it
// chains to.
type Certificate struct {
	// CertPEM is the PEM-encoded end-entity certificate.
	CertPEM []byte

	// ChainPEM is the PEM-encoded issuer chain, root last.
	ChainPEM []byte
}

// Issuer signs certificate requests.
type Issuer interface {
	// Name identifies the issuer type (acmpca, local).
	Name() string

	// Issue submits the CSR and returns the signed certificate. The call
	// blocks until the certificate is available or ctx expires; pending
	// issuance is polled with backoff, not a fixed sleep.
	Issue(ctx context.Context, req Request) (*Certificate, error)
}

// Mock is an Issuer test double.
type Mock struct {
	NameValue string
	IssueFunc func(ctx context.Context, req Request) (*Certificate, error)
	Calls     []Request
}

// Name returns the configured name, defaulting to "mock".
func (m *Mock) Name() string {
	if m.NameValue != "" {
		return m.NameValue
	}
	return "mock"
}

// Issue records the call and delegates to IssueFunc.
func (m *Mock) Issue(ctx context.Context, req Request) (*Certificate, error) {
	m.Calls = append(m.Calls, req)
	if m.IssueFunc != nil {
		return m.IssueFunc(ctx, req)
	}
	return &Certificate{}, nil
}
