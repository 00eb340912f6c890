// Package errors provides standardized error types for the anchorctl CLI tool.
//
// The errors package defines domain-specific error types that enable
// structured error handling and consistent error messages throughout
// the application.
//
// # Error Types
//
// CertError is the primary error type, containing:
//   - Code: Categorizes the error (NOT_FOUND, ISSUANCE, etc.)
//   - Message: Human-readable error description
//   - Target: The certificate target involved (if applicable)
//   - Err: The underlying wrapped error (if any)
//
// # Sentinel Errors
//
// Common error scenarios have pre-defined sentinel errors:
//
//	errors.ErrTargetNotFound     // target doesn't exist
//	errors.ErrTargetExists       // target already exists
//	errors.ErrRenewLocked        // another renewal holds the lock
//	errors.ErrKeyMismatch        // certificate doesn't match the private key
//
// # Usage
//
// Creating domain-specific errors:
//
//	// Target not found
//	return errors.NotFound("app-prod")
//
//	// Target already exists
//	return errors.AlreadyExists("app-prod")
//
//	// Validation error
//	return errors.Validation("common name cannot be empty")
//
//	// Wrapping an underlying error
//	return errors.Wrap(errors.ErrCodeIssuance, "certificate authority rejected request", err)
//
// # Error Checking
//
// Use errors.Is for sentinel error comparison:
//
//	if errors.Is(err, errors.ErrTargetNotFound) {
//	    // Handle not found case
//	}
//
// Use errors.As for type assertion:
//
//	var certErr *errors.CertError
//	if errors.As(err, &certErr) {
//	    fmt.Printf("Error code: %s, Target: %s\n", certErr.Code, certErr.Target)
//	}
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes errors for programmatic handling.
type ErrorCode string

// Error codes for different error categories.
const (
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"      // Resource not found
	ErrCodeAlreadyExists ErrorCode = "ALREADY_EXISTS" // Resource already exists
	ErrCodeValidation    ErrorCode = "VALIDATION"     // Input validation failed
	ErrCodeConfig        ErrorCode = "CONFIG"         // Configuration error
	ErrCodePKI           ErrorCode = "PKI"            // Key/CSR/certificate handling error
	ErrCodeIssuance      ErrorCode = "ISSUANCE"       // Certificate authority issuance error
	ErrCodeVerify        ErrorCode = "VERIFY"         // Issued certificate failed verification
	ErrCodeLocked        ErrorCode = "LOCKED"         // Renewal lock held by another process
	ErrCodeAWS           ErrorCode = "AWS"            // AWS API error
	ErrCodeHelper        ErrorCode = "HELPER"         // Credential helper error
	ErrCodeInternal      ErrorCode = "INTERNAL"       // Internal/unexpected error
)

// CertError represents a structured error with context about the operation.
type CertError struct {
	Code    ErrorCode // Error category
	Message string    // Human-readable message
	Target  string    // Certificate target name (if applicable)
	Err     error     // Underlying error (if any)
}

// Error implements the error interface.
func (e *CertError) Error() string {
	if e.Target != "" && e.Err != nil {
		return fmt.Sprintf("target %s: %s: %v", e.Target, e.Message, e.Err)
	}
	if e.Target != "" {
		return fmt.Sprintf("target %s: %s", e.Target, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for error chain traversal.
func (e *CertError) Unwrap() error {
	return e.Err
}

// Is reports whether target matches this error.
// Comparison is based on error code.
func (e *CertError) Is(target error) bool {
	t, ok := target.(*CertError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Sentinel errors for common error scenarios.
// Use these with errors.Is() for error checking.
var (
	// ErrTargetNotFound indicates the requested target does not exist.
	ErrTargetNotFound = &CertError{Code: ErrCodeNotFound, Message: "target not found"}

	// ErrTargetExists indicates a target with the same name already exists.
	ErrTargetExists = &CertError{Code: ErrCodeAlreadyExists, Message: "target already exists"}

	// ErrInvalidSubject indicates the certificate subject is not valid.
	ErrInvalidSubject = &CertError{Code: ErrCodeValidation, Message: "invalid subject"}

	// ErrConfigInvalid indicates the configuration is invalid or corrupt.
	ErrConfigInvalid = &CertError{Code: ErrCodeConfig, Message: "invalid configuration"}

	// ErrKeyNotFound indicates the private key file is missing.
	ErrKeyNotFound = &CertError{Code: ErrCodeNotFound, Message: "private key not found"}

	// ErrCertNotFound indicates the certificate file is missing.
	ErrCertNotFound = &CertError{Code: ErrCodeNotFound, Message: "certificate not found"}

	// ErrKeyMismatch indicates the certificate public key does not match
	// the private key.
	ErrKeyMismatch = &CertError{Code: ErrCodeVerify, Message: "certificate does not match private key"}

	// ErrChainVerify indicates the certificate does not verify against the
	// issuer chain.
	ErrChainVerify = &CertError{Code: ErrCodeVerify, Message: "certificate chain verification failed"}

	// ErrRenewLocked indicates another renewal holds the target lock.
	ErrRenewLocked = &CertError{Code: ErrCodeLocked, Message: "renewal already in progress"}

	// ErrIssuanceTimeout indicates the certificate authority did not issue
	// the certificate within the polling budget.
	ErrIssuanceTimeout = &CertError{Code: ErrCodeIssuance, Message: "issuance did not complete in time"}

	// ErrCAExists indicates the local certificate authority is already initialized.
	ErrCAExists = &CertError{Code: ErrCodeAlreadyExists, Message: "local CA already initialized"}

	// ErrHelperNotInstalled indicates aws_signing_helper is not installed.
	ErrHelperNotInstalled = &CertError{Code: ErrCodeHelper, Message: "aws_signing_helper not installed"}
)

// NotFound creates an error for a target that doesn't exist.
func NotFound(target string) error {
	return &CertError{
		Code:    ErrCodeNotFound,
		Message: "target not found",
		Target:  target,
	}
}

// AlreadyExists creates an error for a target that already exists.
func AlreadyExists(target string) error {
	return &CertError{
		Code:    ErrCodeAlreadyExists,
		Message: "target already exists",
		Target:  target,
	}
}

// Validation creates a validation error with a custom message.
func Validation(msg string) error {
	return &CertError{
		Code:    ErrCodeValidation,
		Message: msg,
	}
}

// Wrap creates an error with the specified code, message, and underlying error.
func Wrap(code ErrorCode, msg string, err error) error {
	return &CertError{
		Code:    code,
		Message: msg,
		Err:     err,
	}
}

// WrapTarget creates an error with target context and underlying error.
func WrapTarget(code ErrorCode, target string, err error) error {
	return &CertError{
		Code:   code,
		Target: target,
		Err:    err,
	}
}

// Is reports whether any error in err's chain matches target.
// This is a re-export of errors.Is for convenience.
var Is = errors.Is

// As finds the first error in err's chain that matches target.
// This is a re-export of errors.As for convenience.
var As = errors.As
