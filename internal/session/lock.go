package session

import (
	"errors"
	"fmt"
	"os"

	"github.com/gofrs/flock"
	"github.com/rs/zerolog/log"
)

// ErrBusy means another live process holds the recording lock. This is a
// user-facing condition, not a bug; callers should not retry blindly.
var ErrBusy = errors.New("another recording is already in progress")

// Locker serializes the start of a recording across independent processes.
type Locker interface {
	// TryAcquire takes the lock without blocking, returning ErrBusy if a
	// live process holds it.
	TryAcquire() error
	// Release drops the lock; safe to call when not held.
	Release() error
	// HeldElsewhere reports whether some other live process holds the lock.
	HeldElsewhere() (bool, error)
}

// Lock is an advisory file lock on a well-known path. The OS ties the lock to
// the holding process, so it is released on any exit including SIGKILL — a
// lock left behind by a crashed holder is reclaimable by the next TryAcquire
// without manual cleanup.
type Lock struct {
	path  string
	flock *flock.Flock
}

func NewLock(path string) *Lock {
	return &Lock{path: path}
}

func (l *Lock) TryAcquire() error {
	fl := flock.New(l.path)
	ok, err := fl.TryLock()
	if err != nil {
		return fmt.Errorf("acquiring recording lock: %w", err)
	}
	if !ok {
		fl.Close()
		log.Debug().Str("path", l.path).Msg("recording lock held by another process")
		return ErrBusy
	}
	log.Debug().Str("path", l.path).Msg("acquired recording lock")
	l.flock = fl
	return nil
}

func (l *Lock) Release() error {
	if l.flock == nil {
		// Not held by us; remove any leftover lock file from a previous
		// session so the path does not accumulate stale state.
		os.Remove(l.path)
		return nil
	}
	err := l.flock.Unlock()
	l.flock = nil
	os.Remove(l.path)
	log.Debug().Str("path", l.path).Msg("released recording lock")
	return err
}

func (l *Lock) HeldElsewhere() (bool, error) {
	if _, err := os.Stat(l.path); errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	fl := flock.New(l.path)
	defer fl.Close()
	ok, err := fl.TryLock()
	if err != nil {
		return false, fmt.Errorf("probing recording lock: %w", err)
	}
	if !ok {
		return true, nil
	}
	// We got it, so nobody held it. Release immediately.
	return false, fl.Unlock()
}

// Stale reports a lock file whose owner is gone: the file exists but the OS
// lock is free because the holding process died.
func (l *Lock) Stale() (bool, error) {
	if _, err := os.Stat(l.path); errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	held, err := l.HeldElsewhere()
	if err != nil {
		return false, err
	}
	return !held, nil
}
