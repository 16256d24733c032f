package lock

import (
	"errors"
	"fmt"
	"time"
)

// Rejections. None of these are failures of the lock itself: the request was
// refused and the controller is unchanged.
var (
	ErrAlreadyLocked      = errors.New("already locked: cannot record a new gesture")
	ErrNotLocked          = errors.New("not locked")
	ErrNoCredential       = errors.New("no gesture enrolled")
	ErrBusy               = errors.New("capture in progress")
	ErrLockedOut          = errors.New("locked out")
	ErrEmptyCapture       = errors.New("captured gesture has no samples")
	ErrDegenerateSequence = errors.New("captured gesture has no motion")
)

// LockedOutError is returned when an unlock is attempted during a lockout.
type LockedOutError struct {
	Remaining time.Duration
}

func (e *LockedOutError) Error() string {
	return fmt.Sprintf("locked out for %d more seconds", int(e.Remaining.Seconds()))
}

// Is makes errors.Is(err, ErrLockedOut) true for any LockedOutError.
func (e *LockedOutError) Is(target error) bool {
	return target == ErrLockedOut
}

// IsRejection reports whether err is a refused request rather than a
// capture failure or cancellation.
func IsRejection(err error) bool {
	for _, r := range []error{
		ErrAlreadyLocked, ErrNotLocked, ErrNoCredential, ErrBusy,
		ErrLockedOut, ErrEmptyCapture, ErrDegenerateSequence,
	} {
		if errors.Is(err, r) {
			return true
		}
	}
	return false
}
