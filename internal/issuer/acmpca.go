package issuer

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/acmpca"
	"github.com/aws/aws-sdk-go-v2/service/acmpca/types"
	"github.com/aws/smithy-go"
	"github.com/cenkalti/backoff/v4"

	"github.com/anchorctl/anchorctl/internal/config"
	"github.com/anchorctl/anchorctl/internal/errors"
	"github.com/anchorctl/anchorctl/internal/logger"
)

// PCAAPI is the subset of the ACM Private CA client the issuer needs.
// Tests provide a mock; production code passes *acmpca.Client.
type PCAAPI interface {
	IssueCertificate(ctx context.Context, params *acmpca.IssueCertificateInput, optFns ...func(*acmpca.Options)) (*acmpca.IssueCertificateOutput, error)
	GetCertificate(ctx context.Context, params *acmpca.GetCertificateInput, optFns ...func(*acmpca.Options)) (*acmpca.GetCertificateOutput, error)
	GetCertificateAuthorityCertificate(ctx context.Context, params *acmpca.GetCertificateAuthorityCertificateInput, optFns ...func(*acmpca.Options)) (*acmpca.GetCertificateAuthorityCertificateOutput, error)
	DescribeCertificateAuthority(ctx context.Context, params *acmpca.DescribeCertificateAuthorityInput, optFns ...func(*acmpca.Options)) (*acmpca.DescribeCertificateAuthorityOutput, error)
}

// Polling parameters for pending issuance. ACM PCA usually issues within
// seconds; the elapsed budget bounds the case where it never completes.
const (
	pollInitialInterval = 500 * time.Millisecond
	pollMaxInterval     = 10 * time.Second
	pollMaxElapsed      = 2 * time.Minute
)

// PCAIssuer issues certificates through AWS ACM Private CA.
type PCAIssuer struct {
	api   PCAAPI
	caArn string

	// signingAlg is resolved from the CA's key algorithm on first use.
	signingAlg types.SigningAlgorithm
}

// NewPCAIssuer creates an issuer for the certificate authority identified
// by caArn.
func NewPCAIssuer(api PCAAPI, caArn string) *PCAIssuer {
	return &PCAIssuer{api: api, caArn: caArn}
}

// Name returns the issuer type.
func (p *PCAIssuer) Name() string {
	return config.IssuerACMPCA
}

// Issue submits the CSR to the private CA and polls for the signed
// certificate with exponential backoff until it is issued, the polling
// budget is exhausted, or ctx is cancelled.
func (p *PCAIssuer) Issue(ctx context.Context, req Request) (*Certificate, error) {
	if len(req.CSR) == 0 {
		return nil, errors.Validation("CSR is empty")
	}
	if req.ValidityDays <= 0 {
		return nil, errors.Validation("validity days must be positive")
	}

	alg, err := p.resolveSigningAlgorithm(ctx)
	if err != nil {
		return nil, err
	}

	issued, err := p.api.IssueCertificate(ctx, &acmpca.IssueCertificateInput{
		CertificateAuthorityArn: aws.String(p.caArn),
		Csr:                     req.CSR,
		SigningAlgorithm:        alg,
		Validity: &types.Validity{
			Type:  types.ValidityPeriodTypeDays,
			Value: aws.Int64(int64(req.ValidityDays)),
		},
		// Same request resubmitted (e.g. SDK retry) must not mint a
		// second certificate.
		IdempotencyToken: aws.String(fmt.Sprintf("anchorctl-%d", time.Now().UnixNano())),
	})
	if err != nil {
		return nil, wrapAPIError("issue certificate", err)
	}

	logger.DebugFields("certificate issuance submitted", map[string]interface{}{
		"certificate_arn": aws.ToString(issued.CertificateArn),
	})

	cert, err := p.waitForCertificate(ctx, aws.ToString(issued.CertificateArn))
	if err != nil {
		return nil, err
	}

	if len(cert.ChainPEM) == 0 {
		// Root CAs issue without a chain; fall back to the CA certificate
		// itself so verification has a bundle to chain to.
		caCert, err := p.api.GetCertificateAuthorityCertificate(ctx, &acmpca.GetCertificateAuthorityCertificateInput{
			CertificateAuthorityArn: aws.String(p.caArn),
		})
		if err != nil {
			return nil, wrapAPIError("get CA certificate", err)
		}
		cert.ChainPEM = []byte(aws.ToString(caCert.Certificate))
		if chain := aws.ToString(caCert.CertificateChain); chain != "" {
			cert.ChainPEM = append(cert.ChainPEM, '\n')
			cert.ChainPEM = append(cert.ChainPEM, []byte(chain)...)
		}
	}

	return cert, nil
}

// waitForCertificate polls GetCertificate until the request leaves the
// in-progress state.
func (p *PCAIssuer) waitForCertificate(ctx context.Context, certArn string) (*Certificate, error) {
	var result *Certificate

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = pollInitialInterval
	policy.MaxInterval = pollMaxInterval
	policy.MaxElapsedTime = pollMaxElapsed

	operation := func() error {
		out, err := p.api.GetCertificate(ctx, &acmpca.GetCertificateInput{
			CertificateAuthorityArn: aws.String(p.caArn),
			CertificateArn:          aws.String(certArn),
		})
		if err != nil {
			var inProgress *types.RequestInProgressException
			if errors.As(err, &inProgress) {
				logger.Debug("certificate %s still pending", certArn)
				return err // retryable
			}
			return backoff.Permanent(wrapAPIError("get certificate", err))
		}
		result = &Certificate{
			CertPEM:  []byte(aws.ToString(out.Certificate)),
			ChainPEM: []byte(aws.ToString(out.CertificateChain)),
		}
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		var inProgress *types.RequestInProgressException
		if errors.As(err, &inProgress) {
			return nil, errors.ErrIssuanceTimeout
		}
		return nil, err
	}
	return result, nil
}

// resolveSigningAlgorithm derives the signing algorithm from the CA's key
// algorithm, caching the answer for subsequent issuances.
func (p *PCAIssuer) resolveSigningAlgorithm(ctx context.Context) (types.SigningAlgorithm, error) {
	if p.signingAlg != "" {
		return p.signingAlg, nil
	}

	out, err := p.api.DescribeCertificateAuthority(ctx, &acmpca.DescribeCertificateAuthorityInput{
		CertificateAuthorityArn: aws.String(p.caArn),
	})
	if err != nil {
		return "", wrapAPIError("describe CA", err)
	}
	if out.CertificateAuthority == nil || out.CertificateAuthority.CertificateAuthorityConfiguration == nil {
		return "", errors.Wrap(errors.ErrCodeIssuance, "CA description missing configuration", nil)
	}

	switch out.CertificateAuthority.CertificateAuthorityConfiguration.KeyAlgorithm {
	case types.KeyAlgorithmEcPrime256v1, types.KeyAlgorithmEcSecp384r1:
		p.signingAlg = types.SigningAlgorithmSha256withecdsa
	default:
		p.signingAlg = types.SigningAlgorithmSha256withrsa
	}
	return p.signingAlg, nil
}

// wrapAPIError converts an AWS API failure into a CertError, keeping the
// service error code in the message when available.
func wrapAPIError(op string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return errors.Wrap(errors.ErrCodeAWS, fmt.Sprintf("%s failed (%s)", op, apiErr.ErrorCode()), err)
	}
	return errors.Wrap(errors.ErrCodeAWS, fmt.Sprintf("%s failed", op), err)
}
