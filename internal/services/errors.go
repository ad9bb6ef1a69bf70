// Package services defines the business logic for profiles, pairing,
// messages, and the emoto catalog. This file centralizes service-level error
// values so they can be returned consistently by service methods and checked
// by callers.
//
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tbourn/emoto-backend/internal/repo"
)

// Profile and pairing errors.
var (
	// ErrProfileNotFound indicates that no profile exists for the username.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrPairCodeNotFound is returned when no profile was issued the code.
	ErrPairCodeNotFound = errors.New("pair code not found")

	// ErrAlreadyPaired is returned when either side of a pairing already has
	// a different partner.
	ErrAlreadyPaired = errors.New("profile already paired")

	// ErrNotPaired is returned by operations that need a partner when the
	// profile has none.
	ErrNotPaired = errors.New("profile not paired")

	// ErrUsernameTaken is returned by Create when another profile already
	// holds the username. It also matches repo.ErrDuplicate.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrPairCodeExhausted is returned when no unused pair code could be
	// generated within the configured attempts.
	ErrPairCodeExhausted = errors.New("could not allocate a unique pair code")
)

// Catalog and message errors.
var (
	// ErrEmotoNotFound indicates that the referenced emoto does not exist.
	ErrEmotoNotFound = errors.New("emoto not found")

	// ErrEmotoUnavailable is returned when a user selects an emoto that is
	// not currently offered.
	ErrEmotoUnavailable = errors.New("emoto not available")

	// ErrMessageNotFound indicates that the requested message does not exist.
	ErrMessageNotFound = errors.New("message not found")
)

// ErrValidation matches every *ValidationError via errors.Is.
var ErrValidation = errors.New("validation failed")

// ValidationKind classifies a ValidationError.
type ValidationKind string

const (
	KindBlankField    ValidationKind = "blank_field"
	KindOutOfRange    ValidationKind = "out_of_range"
	KindSelfPairing   ValidationKind = "self_pairing"
	KindTooLong       ValidationKind = "too_long"
	KindInvalidFormat ValidationKind = "invalid_format"
)

// ValidationError reports the first rule a record violated. It is returned
// before anything is persisted.
type ValidationError struct {
	Kind   ValidationKind
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrValidation) match any ValidationError.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(kind ValidationKind, field, format string, args ...any) *ValidationError {
	return &ValidationError{Kind: kind, Field: field, Reason: fmt.Sprintf(format, args...)}
}

// isNotFound treats repo-level not found sentinels as "not found".
func isNotFound(err error) bool {
	return errors.Is(err, repo.ErrNotFound)
}

// isDuplicate detects unique-constraint violations, including drivers that
// do not map to repo.ErrDuplicate.
func isDuplicate(err error) bool {
	if errors.Is(err, repo.ErrDuplicate) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}
