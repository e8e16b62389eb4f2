package c3

import (
	"errors"
	"fmt"
)

// Legality failures. Verdict.Err wraps one of these.
var (
	ErrUnknownComponent = errors.New("unknown component")
	ErrIncompatibleType = errors.New("incompatible network type")
	ErrSelfConnection   = errors.New("pin cannot connect to itself")
	ErrRoleMismatch     = errors.New("roles cannot be linked")
	ErrRoleConflict     = errors.New("unit already linked in another role")
	ErrAlreadyConnected = errors.New("already connected")
	ErrAlreadyMember    = errors.New("already a member of another network")
	ErrCapacityExceeded = errors.New("network capacity exceeded")
	ErrNetworkTooLarge  = errors.New("network unit cap exceeded")
	ErrDepthExceeded    = errors.New("hierarchy depth exceeded")
	ErrHierarchyCycle   = errors.New("hierarchy cycle")
)

// Mutation failures.
var (
	ErrNotConnected    = errors.New("pin is not connected")
	ErrNetworkNotFound = errors.New("network not found")
	ErrMemberNotFound  = errors.New("member not found")
)

// Verdict is the outcome of a legality query.
type Verdict struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
	cause  error
}

func allow() Verdict {
	return Verdict{Valid: true}
}

func reject(cause error, format string, args ...any) Verdict {
	return Verdict{Reason: fmt.Sprintf(format, args...), cause: cause}
}

// Err returns nil for a valid verdict, otherwise an error wrapping the
// sentinel that caused the rejection.
func (v Verdict) Err() error {
	if v.Valid {
		return nil
	}
	if v.cause == nil {
		return errors.New(v.Reason)
	}
	return fmt.Errorf("%w: %s", v.cause, v.Reason)
}
