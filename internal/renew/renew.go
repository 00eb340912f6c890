// Package renew implements the certificate renewal workflow: derive a CSR
// from the existing private key, obtain a signed certificate from the
// issuer, verify it, and swap it into place atomically while preserving
// the previous certificate as a backup.
//
// The workflow holds a per-target lock for its whole duration, verifies
// the issued certificate before touching the active file, and rolls the
// backup rename back if the swap fails partway. A failed renewal therefore
// always leaves the previously active certificate in place, and a
// successful one always leaves the prior certificate byte-for-byte at the
// backup path.
package renew

import (
	"context"
	"crypto"
	"crypto/x509"
	"os"
	"path/filepath"
	"time"

	"github.com/anchorctl/anchorctl/internal/config"
	"github.com/anchorctl/anchorctl/internal/errors"
	"github.com/anchorctl/anchorctl/internal/issuer"
	"github.com/anchorctl/anchorctl/internal/logger"
	"github.com/anchorctl/anchorctl/internal/pki"
)

// Options control a renewal run.
type Options struct {
	// Force renews even when the certificate is not yet inside the
	// renewal window.
	Force bool

	// Window is the fraction of the validity period under which renewal
	// happens (config.DefaultRenewWindow when zero).
	Window float64

	// LockStale overrides the stale-lock threshold (DefaultLockStale
	// when zero).
	LockStale time.Duration
}

// Result describes the outcome of a renewal run.
type Result struct {
	Target        string    `json:"target"`
	Renewed       bool      `json:"renewed"`
	FirstIssuance bool      `json:"first_issuance,omitempty"`
	CertPath      string    `json:"cert_path"`
	BackupPath    string    `json:"backup_path,omitempty"`
	NotAfter      time.Time `json:"not_after"`
}

// Renewer runs renewals against a configured issuer.
type Renewer struct {
	issuer issuer.Issuer

	// now is replaceable in tests.
	now func() time.Time
}

// New creates a Renewer issuing through iss.
func New(iss issuer.Issuer) *Renewer {
	return &Renewer{issuer: iss, now: time.Now}
}

// SetClock overrides the renewer's time source. For tests.
func (r *Renewer) SetClock(now func() time.Time) {
	r.now = now
}

// Renew executes the renewal workflow for one target. The existing private
// key is reused unchanged. When the current certificate is still outside
// the renewal window and opts.Force is false, no issuance happens and the
// result reports Renewed=false.
func (r *Renewer) Renew(ctx context.Context, target *config.Target, validityDays int, opts Options) (*Result, error) {
	window := opts.Window
	if window <= 0 || window >= 1 {
		window = config.DefaultRenewWindow
	}

	if err := os.MkdirAll(filepath.Dir(target.CertPath), 0755); err != nil {
		return nil, errors.WrapTarget(errors.ErrCodePKI, target.Name, err)
	}

	lock, err := AcquireLock(target.LockPath(), opts.LockStale)
	if err != nil {
		if errors.Is(err, errors.ErrRenewLocked) {
			return nil, &errors.CertError{Code: errors.ErrCodeLocked, Message: "renewal already in progress", Target: target.Name}
		}
		return nil, err
	}
	defer func() {
		if releaseErr := lock.Release(); releaseErr != nil {
			logger.LogError(releaseErr, "failed to release renewal lock")
		}
	}()

	key, err := pki.LoadPrivateKey(target.KeyPath)
	if err != nil {
		return nil, errors.WrapTarget(errors.ErrCodePKI, target.Name, err)
	}

	current, err := pki.LoadCertificate(target.CertPath)
	firstIssuance := false
	switch {
	case err == nil:
	case errors.Is(err, errors.ErrCertNotFound):
		firstIssuance = true
	default:
		return nil, errors.WrapTarget(errors.ErrCodePKI, target.Name, err)
	}

	now := r.now()
	if !opts.Force && !firstIssuance && !pki.NeedsRenewal(current, now, window) {
		logger.DebugFields("certificate outside renewal window, skipping", map[string]interface{}{
			"target":    target.Name,
			"not_after": current.NotAfter.Format(time.RFC3339),
		})
		return &Result{
			Target:   target.Name,
			Renewed:  false,
			CertPath: target.CertPath,
			NotAfter: current.NotAfter,
		}, nil
	}

	// The subject must not drift across renewals: role trust policies
	// condition on it.
	var subject pki.Subject
	if firstIssuance {
		subject = pki.Subject{
			CommonName:   target.CommonName,
			Organization: target.Organization,
			OrgUnit:      target.OrgUnit,
			Country:      target.Country,
		}
	} else {
		subject = pki.SubjectFromCertificate(current)
	}

	csr, err := pki.CreateCSR(key, subject)
	if err != nil {
		return nil, errors.WrapTarget(errors.ErrCodePKI, target.Name, err)
	}

	logger.InfoFields("requesting certificate", map[string]interface{}{
		"target": target.Name,
		"issuer": r.issuer.Name(),
		"days":   validityDays,
	})

	issued, err := r.issuer.Issue(ctx, issuer.Request{CSR: csr, ValidityDays: validityDays})
	if err != nil {
		return nil, errors.WrapTarget(errors.ErrCodeIssuance, target.Name, err)
	}

	newCert, err := r.verify(issued, key, subject, now)
	if err != nil {
		return nil, errors.WrapTarget(errors.ErrCodeVerify, target.Name, err)
	}

	if err := r.swap(target, issued, firstIssuance); err != nil {
		return nil, err
	}

	result := &Result{
		Target:        target.Name,
		Renewed:       true,
		FirstIssuance: firstIssuance,
		CertPath:      target.CertPath,
		NotAfter:      newCert.NotAfter,
	}
	if !firstIssuance {
		result.BackupPath = target.BackupPath()
	}

	logger.InfoFields("certificate renewed", map[string]interface{}{
		"target":    target.Name,
		"not_after": newCert.NotAfter.Format(time.RFC3339),
	})
	return result, nil
}

// verify checks the issued certificate before it replaces anything: it must
// parse, belong to our private key, keep the requested subject, chain to
// the issuer bundle, and be currently valid.
func (r *Renewer) verify(issued *issuer.Certificate, key crypto.Signer, subject pki.Subject, now time.Time) (*x509.Certificate, error) {
	cert, err := pki.ParsePEMCertificate(issued.CertPEM)
	if err != nil {
		return nil, err
	}

	if !pki.PublicKeysEqual(cert.PublicKey, key.Public()) {
		return nil, errors.ErrKeyMismatch
	}

	if cert.Subject.CommonName != subject.CommonName {
		return nil, errors.Wrap(errors.ErrCodeVerify, "issued certificate subject drifted", nil)
	}

	if now.Before(cert.NotBefore) || now.After(cert.NotAfter) {
		return nil, errors.Wrap(errors.ErrCodeVerify, "issued certificate is not currently valid", nil)
	}

	if len(issued.ChainPEM) > 0 {
		if err := pki.VerifyChain(cert, issued.ChainPEM); err != nil {
			return nil, err
		}
	}

	return cert, nil
}

// swap stages the new certificate and chain next to the active ones and
// renames them into place, keeping the previous files at their backup
// paths. Nothing live is touched until both staged files are written; on
// failure partway through, the backups are restored.
func (r *Renewer) swap(target *config.Target, issued *issuer.Certificate, firstIssuance bool) error {
	stagedCert := target.CertPath + ".new"
	if err := writeFileSync(stagedCert, issued.CertPEM, 0644); err != nil {
		return errors.WrapTarget(errors.ErrCodePKI, target.Name, err)
	}
	defer os.Remove(stagedCert) // no-op after a successful rename

	writeChain := target.ChainPath != "" && len(issued.ChainPEM) > 0
	stagedChain := target.ChainPath + ".new"
	if writeChain {
		if err := writeFileSync(stagedChain, issued.ChainPEM, 0644); err != nil {
			return errors.WrapTarget(errors.ErrCodePKI, target.Name, err)
		}
		defer os.Remove(stagedChain)
	}

	certBackedUp := false
	restoreCert := func() {
		if !certBackedUp {
			return
		}
		if restoreErr := os.Rename(target.BackupPath(), target.CertPath); restoreErr != nil {
			logger.Error("rollback failed, certificate missing at %s: %v", target.CertPath, restoreErr)
		}
	}

	if !firstIssuance {
		if err := os.Rename(target.CertPath, target.BackupPath()); err != nil {
			return errors.WrapTarget(errors.ErrCodePKI, target.Name, err)
		}
		certBackedUp = true
	}

	chainBackedUp := false
	if writeChain {
		switch err := os.Rename(target.ChainPath, target.ChainBackupPath()); {
		case err == nil:
			chainBackedUp = true
		case os.IsNotExist(err):
			// First issuance, or the chain file was never written.
		default:
			restoreCert()
			return errors.WrapTarget(errors.ErrCodePKI, target.Name, err)
		}
	}
	restoreChain := func() {
		if !chainBackedUp {
			return
		}
		if restoreErr := os.Rename(target.ChainBackupPath(), target.ChainPath); restoreErr != nil {
			logger.Error("rollback failed, chain missing at %s: %v", target.ChainPath, restoreErr)
		}
	}

	if err := os.Rename(stagedCert, target.CertPath); err != nil {
		restoreChain()
		restoreCert()
		return errors.WrapTarget(errors.ErrCodePKI, target.Name, err)
	}

	if writeChain {
		if err := os.Rename(stagedChain, target.ChainPath); err != nil {
			// Undo the cert swap too so the active pair stays consistent.
			if certBackedUp {
				restoreCert()
			} else {
				_ = os.Remove(target.CertPath)
			}
			restoreChain()
			return errors.WrapTarget(errors.ErrCodePKI, target.Name, err)
		}
	}

	return nil
}

// writeFileSync writes data and fsyncs before closing, so a crash cannot
// leave a zero-length or truncated staged file that later gets renamed
// over a good certificate.
func writeFileSync(path string, data []byte, perm os.FileMode) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
