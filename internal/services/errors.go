package services

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrUnauthenticated   = errors.New("no caller identity")
	ErrNotAMember        = errors.New("caller is not a participant of this capsule")
	ErrInvalidCode       = errors.New("no pending capsule matches this invite code")
	ErrAlreadyFull       = errors.New("capsule already has two participants")
	ErrAlreadyMember     = errors.New("user is already a participant of this capsule")
	ErrCapsuleNotActive  = errors.New("capsule is not active")
	ErrInvalidTransition = errors.New("operation not allowed in the current status")
	ErrInvalidInput      = errors.New("invalid input")

	ErrNotFound          = errors.New("not found")
	ErrCapsuleNotFound   = fmt.Errorf("capsule %w", ErrNotFound)
	ErrItemNotFound      = fmt.Errorf("item %w", ErrNotFound)
	ErrVaultItemNotFound = fmt.Errorf("vault item %w", ErrNotFound)

	// ErrConcurrencyConflict is returned when the store aborted a statement
	// because of contention. The operation is safe to retry.
	ErrConcurrencyConflict = errors.New("concurrent update conflict, retry")

	ErrStorageNotConfigured = errors.New("payload storage is not configured")
	ErrNotApproved          = errors.New("vault item has not been approved by both participants")
)

const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// translatePgError maps store contention errors to ErrConcurrencyConflict and
// passes everything else through.
func translatePgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected:
			return fmt.Errorf("%w: %s", ErrConcurrencyConflict, pgErr.Message)
		}
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func invalidTransition(op string, status any) error {
	return fmt.Errorf("%w: cannot %s while %v", ErrInvalidTransition, op, status)
}
