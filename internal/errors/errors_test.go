package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestCertError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *CertError
		expected string
	}{
		{
			name: "message only",
			err: &CertError{
				Code:    ErrCodeValidation,
				Message: "invalid input",
			},
			expected: "invalid input",
		},
		{
			name: "with target",
			err: &CertError{
				Code:    ErrCodeNotFound,
				Message: "target not found",
				Target:  "app-prod",
			},
			expected: "target app-prod: target not found",
		},
		{
			name: "with underlying error",
			err: &CertError{
				Code:    ErrCodeConfig,
				Message: "failed to load",
				Err:     fmt.Errorf("file not found"),
			},
			expected: "failed to load: file not found",
		},
		{
			name: "with target and underlying error",
			err: &CertError{
				Code:    ErrCodeIssuance,
				Message: "issuance failed",
				Target:  "batch-worker",
				Err:     fmt.Errorf("access denied"),
			},
			expected: "target batch-worker: issuance failed: access denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.err.Error()
			if result != tt.expected {
				t.Errorf("Error() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestCertError_Unwrap(t *testing.T) {
	underlying := fmt.Errorf("underlying error")
	err := &CertError{
		Code:    ErrCodeConfig,
		Message: "wrapped error",
		Err:     underlying,
	}

	if err.Unwrap() != underlying {
		t.Errorf("Unwrap() did not return underlying error")
	}

	errNoWrap := &CertError{
		Code:    ErrCodeValidation,
		Message: "no underlying",
	}

	if errNoWrap.Unwrap() != nil {
		t.Errorf("Unwrap() should return nil when no underlying error")
	}
}

func TestCertError_Is(t *testing.T) {
	tests := []struct {
		name     string
		err      *CertError
		target   error
		expected bool
	}{
		{
			name:     "matches sentinel error",
			err:      &CertError{Code: ErrCodeNotFound, Message: "custom message"},
			target:   ErrTargetNotFound,
			expected: true,
		},
		{
			name:     "different code",
			err:      &CertError{Code: ErrCodeNotFound},
			target:   ErrTargetExists,
			expected: false,
		},
		{
			name:     "non-CertError target",
			err:      &CertError{Code: ErrCodeNotFound},
			target:   fmt.Errorf("regular error"),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if errors.Is(tt.err, tt.target) != tt.expected {
				t.Errorf("Is() = %v, want %v", !tt.expected, tt.expected)
			}
		})
	}
}

func TestNotFound(t *testing.T) {
	err := NotFound("app-prod")

	var certErr *CertError
	if !errors.As(err, &certErr) {
		t.Fatal("NotFound() should return *CertError")
	}

	if certErr.Code != ErrCodeNotFound {
		t.Errorf("Code = %v, want %v", certErr.Code, ErrCodeNotFound)
	}

	if certErr.Target != "app-prod" {
		t.Errorf("Target = %v, want %v", certErr.Target, "app-prod")
	}

	if !errors.Is(err, ErrTargetNotFound) {
		t.Error("NotFound() should match ErrTargetNotFound")
	}
}

func TestAlreadyExists(t *testing.T) {
	err := AlreadyExists("batch-worker")

	var certErr *CertError
	if !errors.As(err, &certErr) {
		t.Fatal("AlreadyExists() should return *CertError")
	}

	if certErr.Code != ErrCodeAlreadyExists {
		t.Errorf("Code = %v, want %v", certErr.Code, ErrCodeAlreadyExists)
	}

	if certErr.Target != "batch-worker" {
		t.Errorf("Target = %v, want %v", certErr.Target, "batch-worker")
	}

	if !errors.Is(err, ErrTargetExists) {
		t.Error("AlreadyExists() should match ErrTargetExists")
	}
}

func TestValidation(t *testing.T) {
	err := Validation("common name cannot be empty")

	var certErr *CertError
	if !errors.As(err, &certErr) {
		t.Fatal("Validation() should return *CertError")
	}

	if certErr.Code != ErrCodeValidation {
		t.Errorf("Code = %v, want %v", certErr.Code, ErrCodeValidation)
	}

	if certErr.Message != "common name cannot be empty" {
		t.Errorf("Message = %v, want %v", certErr.Message, "common name cannot be empty")
	}
}

func TestWrap(t *testing.T) {
	underlying := fmt.Errorf("file not found")
	err := Wrap(ErrCodeConfig, "failed to load config", underlying)

	var certErr *CertError
	if !errors.As(err, &certErr) {
		t.Fatal("Wrap() should return *CertError")
	}

	if certErr.Code != ErrCodeConfig {
		t.Errorf("Code = %v, want %v", certErr.Code, ErrCodeConfig)
	}

	if certErr.Err != underlying {
		t.Error("Wrap() should preserve underlying error")
	}

	if !errors.Is(err, underlying) {
		t.Error("Wrapped error should contain underlying error in chain")
	}
}

func TestWrapTarget(t *testing.T) {
	underlying := fmt.Errorf("rename failed")
	err := WrapTarget(ErrCodePKI, "app-prod", underlying)

	var certErr *CertError
	if !errors.As(err, &certErr) {
		t.Fatal("WrapTarget() should return *CertError")
	}

	if certErr.Code != ErrCodePKI {
		t.Errorf("Code = %v, want %v", certErr.Code, ErrCodePKI)
	}

	if certErr.Target != "app-prod" {
		t.Errorf("Target = %v, want %v", certErr.Target, "app-prod")
	}

	if certErr.Err != underlying {
		t.Error("WrapTarget() should preserve underlying error")
	}
}

func TestSentinelErrors(t *testing.T) {
	sentinels := []struct {
		name string
		err  *CertError
		code ErrorCode
	}{
		{"ErrTargetNotFound", ErrTargetNotFound, ErrCodeNotFound},
		{"ErrTargetExists", ErrTargetExists, ErrCodeAlreadyExists},
		{"ErrInvalidSubject", ErrInvalidSubject, ErrCodeValidation},
		{"ErrConfigInvalid", ErrConfigInvalid, ErrCodeConfig},
		{"ErrKeyNotFound", ErrKeyNotFound, ErrCodeNotFound},
		{"ErrCertNotFound", ErrCertNotFound, ErrCodeNotFound},
		{"ErrKeyMismatch", ErrKeyMismatch, ErrCodeVerify},
		{"ErrChainVerify", ErrChainVerify, ErrCodeVerify},
		{"ErrRenewLocked", ErrRenewLocked, ErrCodeLocked},
		{"ErrIssuanceTimeout", ErrIssuanceTimeout, ErrCodeIssuance},
		{"ErrCAExists", ErrCAExists, ErrCodeAlreadyExists},
		{"ErrHelperNotInstalled", ErrHelperNotInstalled, ErrCodeHelper},
	}

	for _, tt := range sentinels {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("%s.Code = %v, want %v", tt.name, tt.err.Code, tt.code)
			}
			if tt.err.Message == "" {
				t.Errorf("%s.Message should not be empty", tt.name)
			}
		})
	}
}

func TestErrorChain(t *testing.T) {
	// Create a chain of errors
	root := fmt.Errorf("file not found")
	wrapped := Wrap(ErrCodeConfig, "failed to load", root)
	doubleWrapped := Wrap(ErrCodeInternal, "initialization failed", wrapped)

	// Should be able to unwrap to root
	if !errors.Is(doubleWrapped, root) {
		t.Error("Should be able to find root error in chain")
	}

	// Should match intermediate CertError
	var configErr *CertError
	if !errors.As(doubleWrapped, &configErr) {
		t.Error("Should be able to extract CertError from chain")
	}
}
