package issuer

import (
	"context"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/acmpca"
	"github.com/aws/aws-sdk-go-v2/service/acmpca/types"

	"github.com/anchorctl/anchorctl/internal/errors"
)

const testCAArn = "arn:aws:acm-pca:us-east-1:111122223333:certificate-authority/11111111-2222-3333-4444-555555555555"

// mockPCA is a PCAAPI test double.
type mockPCA struct {
	issueFunc    func(*acmpca.IssueCertificateInput) (*acmpca.IssueCertificateOutput, error)
	getFunc      func(*acmpca.GetCertificateInput) (*acmpca.GetCertificateOutput, error)
	caCertFunc   func(*acmpca.GetCertificateAuthorityCertificateInput) (*acmpca.GetCertificateAuthorityCertificateOutput, error)
	describeFunc func(*acmpca.DescribeCertificateAuthorityInput) (*acmpca.DescribeCertificateAuthorityOutput, error)

	issueCalls  int
	getCalls    int
	caCertCalls int
}

func (m *mockPCA) IssueCertificate(ctx context.Context, params *acmpca.IssueCertificateInput, optFns ...func(*acmpca.Options)) (*acmpca.IssueCertificateOutput, error) {
	m.issueCalls++
	return m.issueFunc(params)
}

func (m *mockPCA) GetCertificate(ctx context.Context, params *acmpca.GetCertificateInput, optFns ...func(*acmpca.Options)) (*acmpca.GetCertificateOutput, error) {
	m.getCalls++
	return m.getFunc(params)
}

func (m *mockPCA) GetCertificateAuthorityCertificate(ctx context.Context, params *acmpca.GetCertificateAuthorityCertificateInput, optFns ...func(*acmpca.Options)) (*acmpca.GetCertificateAuthorityCertificateOutput, error) {
	m.caCertCalls++
	return m.caCertFunc(params)
}

func (m *mockPCA) DescribeCertificateAuthority(ctx context.Context, params *acmpca.DescribeCertificateAuthorityInput, optFns ...func(*acmpca.Options)) (*acmpca.DescribeCertificateAuthorityOutput, error) {
	if m.describeFunc != nil {
		return m.describeFunc(params)
	}
	return describeWithKeyAlgorithm(types.KeyAlgorithmRsa2048), nil
}

func describeWithKeyAlgorithm(alg types.KeyAlgorithm) *acmpca.DescribeCertificateAuthorityOutput {
	return &acmpca.DescribeCertificateAuthorityOutput{
		CertificateAuthority: &types.CertificateAuthority{
			CertificateAuthorityConfiguration: &types.CertificateAuthorityConfiguration{
				KeyAlgorithm: alg,
			},
		},
	}
}

func TestPCAIssuer_IssueSuccess(t *testing.T) {
	mock := &mockPCA{
		issueFunc: func(in *acmpca.IssueCertificateInput) (*acmpca.IssueCertificateOutput, error) {
			if aws.ToString(in.CertificateAuthorityArn) != testCAArn {
				t.Errorf("CA ARN = %q", aws.ToString(in.CertificateAuthorityArn))
			}
			if in.SigningAlgorithm != types.SigningAlgorithmSha256withrsa {
				t.Errorf("signing algorithm = %q", in.SigningAlgorithm)
			}
			if in.Validity == nil || aws.ToInt64(in.Validity.Value) != 7 {
				t.Errorf("validity = %+v", in.Validity)
			}
			if aws.ToString(in.IdempotencyToken) == "" {
				t.Error("idempotency token should be set")
			}
			return &acmpca.IssueCertificateOutput{
				CertificateArn: aws.String("arn:aws:acm-pca:...:certificate/abc"),
			}, nil
		},
		getFunc: func(in *acmpca.GetCertificateInput) (*acmpca.GetCertificateOutput, error) {
			return &acmpca.GetCertificateOutput{
				Certificate:      aws.String("CERT"),
				CertificateChain: aws.String("CHAIN"),
			}, nil
		},
	}

	iss := NewPCAIssuer(mock, testCAArn)
	cert, err := iss.Issue(context.Background(), Request{CSR: []byte("csr"), ValidityDays: 7})
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if string(cert.CertPEM) != "CERT" {
		t.Errorf("CertPEM = %q", cert.CertPEM)
	}
	if string(cert.ChainPEM) != "CHAIN" {
		t.Errorf("ChainPEM = %q", cert.ChainPEM)
	}
	if mock.caCertCalls != 0 {
		t.Error("CA certificate should not be fetched when a chain is returned")
	}
}

func TestPCAIssuer_IssuePollsWhilePending(t *testing.T) {
	pending := 2
	mock := &mockPCA{
		issueFunc: func(in *acmpca.IssueCertificateInput) (*acmpca.IssueCertificateOutput, error) {
			return &acmpca.IssueCertificateOutput{CertificateArn: aws.String("arn")}, nil
		},
		getFunc: func(in *acmpca.GetCertificateInput) (*acmpca.GetCertificateOutput, error) {
			if pending > 0 {
				pending--
				return nil, &types.RequestInProgressException{Message: aws.String("in progress")}
			}
			return &acmpca.GetCertificateOutput{
				Certificate:      aws.String("CERT"),
				CertificateChain: aws.String("CHAIN"),
			}, nil
		},
	}

	iss := NewPCAIssuer(mock, testCAArn)
	cert, err := iss.Issue(context.Background(), Request{CSR: []byte("csr"), ValidityDays: 1})
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if string(cert.CertPEM) != "CERT" {
		t.Errorf("CertPEM = %q", cert.CertPEM)
	}
	if mock.getCalls != 3 {
		t.Errorf("GetCertificate called %d times, want 3", mock.getCalls)
	}
}

func TestPCAIssuer_IssuePermanentError(t *testing.T) {
	mock := &mockPCA{
		issueFunc: func(in *acmpca.IssueCertificateInput) (*acmpca.IssueCertificateOutput, error) {
			return &acmpca.IssueCertificateOutput{CertificateArn: aws.String("arn")}, nil
		},
		getFunc: func(in *acmpca.GetCertificateInput) (*acmpca.GetCertificateOutput, error) {
			return nil, &types.ResourceNotFoundException{Message: aws.String("no such certificate")}
		},
	}

	iss := NewPCAIssuer(mock, testCAArn)
	_, err := iss.Issue(context.Background(), Request{CSR: []byte("csr"), ValidityDays: 1})
	if err == nil {
		t.Fatal("Issue should fail on a non-retryable error")
	}
	if mock.getCalls != 1 {
		t.Errorf("GetCertificate called %d times, want 1 (no retry on permanent error)", mock.getCalls)
	}

	var certErr *errors.CertError
	if !errors.As(err, &certErr) || certErr.Code != errors.ErrCodeAWS {
		t.Errorf("expected AWS error code, got %v", err)
	}
	if !strings.Contains(err.Error(), "ResourceNotFoundException") {
		t.Errorf("error should carry the API error code: %v", err)
	}
}

func TestPCAIssuer_IssueValidation(t *testing.T) {
	iss := NewPCAIssuer(&mockPCA{}, testCAArn)

	if _, err := iss.Issue(context.Background(), Request{ValidityDays: 7}); err == nil {
		t.Error("empty CSR should be rejected")
	}
	if _, err := iss.Issue(context.Background(), Request{CSR: []byte("csr")}); err == nil {
		t.Error("zero validity should be rejected")
	}
}

func TestPCAIssuer_ChainFallback(t *testing.T) {
	mock := &mockPCA{
		issueFunc: func(in *acmpca.IssueCertificateInput) (*acmpca.IssueCertificateOutput, error) {
			return &acmpca.IssueCertificateOutput{CertificateArn: aws.String("arn")}, nil
		},
		getFunc: func(in *acmpca.GetCertificateInput) (*acmpca.GetCertificateOutput, error) {
			// Root CA: no chain in the response
			return &acmpca.GetCertificateOutput{Certificate: aws.String("CERT")}, nil
		},
		caCertFunc: func(in *acmpca.GetCertificateAuthorityCertificateInput) (*acmpca.GetCertificateAuthorityCertificateOutput, error) {
			return &acmpca.GetCertificateAuthorityCertificateOutput{
				Certificate: aws.String("CACERT"),
			}, nil
		},
	}

	iss := NewPCAIssuer(mock, testCAArn)
	cert, err := iss.Issue(context.Background(), Request{CSR: []byte("csr"), ValidityDays: 1})
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if string(cert.ChainPEM) != "CACERT" {
		t.Errorf("ChainPEM = %q, want CA certificate fallback", cert.ChainPEM)
	}
	if mock.caCertCalls != 1 {
		t.Errorf("CA certificate fetched %d times, want 1", mock.caCertCalls)
	}
}

func TestPCAIssuer_SigningAlgorithmForECCA(t *testing.T) {
	var gotAlg types.SigningAlgorithm
	mock := &mockPCA{
		describeFunc: func(in *acmpca.DescribeCertificateAuthorityInput) (*acmpca.DescribeCertificateAuthorityOutput, error) {
			return describeWithKeyAlgorithm(types.KeyAlgorithmEcPrime256v1), nil
		},
		issueFunc: func(in *acmpca.IssueCertificateInput) (*acmpca.IssueCertificateOutput, error) {
			gotAlg = in.SigningAlgorithm
			return &acmpca.IssueCertificateOutput{CertificateArn: aws.String("arn")}, nil
		},
		getFunc: func(in *acmpca.GetCertificateInput) (*acmpca.GetCertificateOutput, error) {
			return &acmpca.GetCertificateOutput{
				Certificate:      aws.String("CERT"),
				CertificateChain: aws.String("CHAIN"),
			}, nil
		},
	}

	iss := NewPCAIssuer(mock, testCAArn)
	if _, err := iss.Issue(context.Background(), Request{CSR: []byte("csr"), ValidityDays: 1}); err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if gotAlg != types.SigningAlgorithmSha256withecdsa {
		t.Errorf("signing algorithm = %q, want SHA256WITHECDSA for an EC CA", gotAlg)
	}
}

func TestPCAIssuer_Name(t *testing.T) {
	if got := NewPCAIssuer(&mockPCA{}, testCAArn).Name(); got != "acmpca" {
		t.Errorf("Name = %q", got)
	}
}
