package renew

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/anchorctl/anchorctl/internal/errors"
)

func TestAcquireLockAndRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.pem.lock")

	lock, err := AcquireLock(path, 0)
	if err != nil {
		t.Fatalf("AcquireLock failed: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("lock file not created: %v", err)
	}

	if err := lock.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("lock file still present after Release")
	}
}

func TestAcquireLockHeld(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.pem.lock")

	lock, err := AcquireLock(path, 0)
	if err != nil {
		t.Fatalf("AcquireLock failed: %v", err)
	}
	defer lock.Release()

	_, err = AcquireLock(path, 0)
	if !errors.Is(err, errors.ErrRenewLocked) {
		t.Errorf("expected ErrRenewLocked, got %v", err)
	}
}

func TestAcquireLockBreaksStale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.pem.lock")

	if err := os.WriteFile(path, []byte("12345 2024-01-01T00:00:00Z\n"), 0644); err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatal(err)
	}

	lock, err := AcquireLock(path, 10*time.Minute)
	if err != nil {
		t.Fatalf("expected stale lock to be broken, got %v", err)
	}
	defer lock.Release()

	if _, err := os.Stat(path + ".stale"); !os.IsNotExist(err) {
		t.Error("broken lock left behind at the stale path")
	}
}

func TestAcquireLockStaleAlreadyBroken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.pem.lock")

	// A leftover from a breaker that crashed between rename and remove
	// must not get in the way of the next acquisition.
	if err := os.WriteFile(path+".stale", []byte("12345 2024-01-01T00:00:00Z\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("12345 2024-01-01T00:00:00Z\n"), 0644); err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatal(err)
	}

	lock, err := AcquireLock(path, 10*time.Minute)
	if err != nil {
		t.Fatalf("AcquireLock failed: %v", err)
	}
	defer lock.Release()
}

func TestAcquireLockCreateFailure(t *testing.T) {
	// Parent is a regular file, so the lock file can never be created.
	// That is an I/O problem, not a held lock.
	parent := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(parent, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := AcquireLock(filepath.Join(parent, "app.pem.lock"), 0)
	if err == nil {
		t.Fatal("expected an error")
	}
	if errors.Is(err, errors.ErrRenewLocked) {
		t.Errorf("creation failure reported as a held lock: %v", err)
	}
}

func TestAcquireLockFreshNotBroken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.pem.lock")

	if err := os.WriteFile(path, []byte("12345 2024-01-01T00:00:00Z\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := AcquireLock(path, time.Hour)
	if !errors.Is(err, errors.ErrRenewLocked) {
		t.Errorf("expected ErrRenewLocked for fresh lock, got %v", err)
	}
}

func TestReleaseIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.pem.lock")

	lock, err := AcquireLock(path, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := lock.Release(); err != nil {
		t.Fatal(err)
	}
	if err := lock.Release(); err != nil {
		t.Errorf("second Release should be a no-op, got %v", err)
	}
}
