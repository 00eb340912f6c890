package renew

import (
	"fmt"
	"os"
	"time"

	"github.com/anchorctl/anchorctl/internal/errors"
	"github.com/anchorctl/anchorctl/internal/logger"
)

// DefaultLockStale is how old a lock file must be before it is considered
// abandoned by a crashed renewal and broken.
const DefaultLockStale = 10 * time.Minute

// Lock is a held renewal lock.
type Lock struct {
	path string
}

// AcquireLock takes the renewal lock at path. The lock is a file created
// with O_EXCL, so only one renewal per target can hold it. A lock file
// older than stale is treated as left behind by a crashed process and
// broken with a warning.
func AcquireLock(path string, stale time.Duration) (*Lock, error) {
	if stale <= 0 {
		stale = DefaultLockStale
	}

	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err == nil {
			_, _ = fmt.Fprintf(f, "%d %s\n", os.Getpid(), time.Now().Format(time.RFC3339))
			_ = f.Close()
			return &Lock{path: path}, nil
		}
		if !os.IsExist(err) {
			return nil, errors.Wrap(errors.ErrCodePKI, "failed to create lock file", err)
		}

		info, statErr := os.Stat(path)
		if statErr != nil {
			// Lock vanished between open and stat; try again.
			continue
		}
		if time.Since(info.ModTime()) < stale {
			return nil, errors.ErrRenewLocked
		}

		// Break by renaming rather than removing: the rename is atomic, so
		// when several processes see the same stale lock only one of them
		// actually takes it out of the way, and all of them then compete
		// on the O_EXCL create above.
		logger.Warn("Breaking stale renewal lock %s (age %s)", path, time.Since(info.ModTime()).Round(time.Second))
		staleName := path + ".stale"
		if rnErr := os.Rename(path, staleName); rnErr != nil {
			if os.IsNotExist(rnErr) {
				// Another process broke it first.
				continue
			}
			return nil, errors.Wrap(errors.ErrCodePKI, "failed to break stale lock", rnErr)
		}
		_ = os.Remove(staleName)
	}

	return nil, errors.ErrRenewLocked
}

// Release removes the lock file.
func (l *Lock) Release() error {
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodePKI, "failed to release lock", err)
	}
	return nil
}
