package services

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an entity or edge does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrAlreadyRegistered is returned when an identity lookup already maps
	// the linked identifier to a profile.
	ErrAlreadyRegistered = errors.New("identifier already registered")

	// ErrInvalidReference is returned for a malformed URI or record key.
	ErrInvalidReference = errors.New("invalid reference")

	// ErrAccountDeleted is returned when an operation targets a profile in
	// the terminal deleted state.
	ErrAccountDeleted = errors.New("account is deleted")

	// ErrStoreUnavailable wraps failures of the underlying key-value store.
	// The core never retries; retry policy belongs to the caller.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrItemExists is the store-level signal that a conditional create lost.
	// Services translate it into a domain error or absorb it as a no-op.
	ErrItemExists = errors.New("item already exists")
)

// Account deletion steps, recorded on DeleteAccountError so an operator knows
// where manual remediation has to pick up.
const (
	DeleteStepProfile  = "profile"
	DeleteStepExternal = "external"
)

// DeleteAccountError reports a partially failed account deletion. The local
// soft-delete may already have committed when this error is returned; callers
// must treat the profile status as authoritative and this error as "cleanup
// incomplete".
type DeleteAccountError struct {
	DID  string
	Step string
	Err  error
}

func (e *DeleteAccountError) Error() string {
	return fmt.Sprintf("delete account %s: step %s failed: %v", e.DID, e.Step, e.Err)
}

func (e *DeleteAccountError) Unwrap() error { return e.Err }

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, op, err)
}
