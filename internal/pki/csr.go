package pki

import (
	"crypto"
	cryptorand "crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"

	"github.com/anchorctl/anchorctl/internal/errors"
)

const csrPEMType = "CERTIFICATE REQUEST"

// Subject holds the certificate subject fields used across renewals.
// The subject must stay stable so role trust policies conditioned on
// CN/OU keep matching after every renewal.
type Subject struct {
	CommonName   string
	Organization string
	OrgUnit      string
	Country      string
}

// Validate checks that the subject can be used for issuance.
func (s Subject) Validate() error {
	if s.CommonName == "" {
		return errors.ErrInvalidSubject
	}
	return nil
}

// Name converts the subject to its pkix representation.
func (s Subject) Name() pkix.Name {
	name := pkix.Name{CommonName: s.CommonName}
	if s.Organization != "" {
		name.Organization = []string{s.Organization}
	}
	if s.OrgUnit != "" {
		name.OrganizationalUnit = []string{s.OrgUnit}
	}
	if s.Country != "" {
		name.Country = []string{s.Country}
	}
	return name
}

// SubjectFromCertificate extracts the renewal subject from an existing
// certificate, so the CSR reproduces it exactly.
func SubjectFromCertificate(cert *x509.Certificate) Subject {
	s := Subject{CommonName: cert.Subject.CommonName}
	if len(cert.Subject.Organization) > 0 {
		s.Organization = cert.Subject.Organization[0]
	}
	if len(cert.Subject.OrganizationalUnit) > 0 {
		s.OrgUnit = cert.Subject.OrganizationalUnit[0]
	}
	if len(cert.Subject.Country) > 0 {
		s.Country = cert.Subject.Country[0]
	}
	return s
}

// CreateCSR generates a PEM-encoded certificate signing request for the
// given subject, signed by the existing private key.
func CreateCSR(key crypto.Signer, subject Subject) ([]byte, error) {
	if err := subject.Validate(); err != nil {
		return nil, err
	}

	template := x509.CertificateRequest{
		Subject: subject.Name(),
	}

	der, err := x509.CreateCertificateRequest(cryptorand.Reader, &template, key)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodePKI, "failed to create certificate request", err)
	}

	return pem.EncodeToMemory(&pem.Block{Type: csrPEMType, Bytes: der}), nil
}

// ParsePEMCSR parses a PEM-encoded certificate signing request and checks
// its self-signature.
func ParsePEMCSR(pemData []byte) (*x509.CertificateRequest, error) {
	block, _ := pem.Decode(pemData)
	if block == nil || block.Type != csrPEMType {
		return nil, errors.Wrap(errors.ErrCodePKI, "no certificate request found in PEM data", nil)
	}
	csr, err := x509.ParseCertificateRequest(block.Bytes)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodePKI, "failed to parse certificate request", err)
	}
	if err := csr.CheckSignature(); err != nil {
		return nil, errors.Wrap(errors.ErrCodePKI, "certificate request signature invalid", err)
	}
	return csr, nil
}
