package apperr

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
)

// FromStore maps persistence-layer errors into the taxonomy. Errors already
// carrying a kind pass through unchanged.
func FromStore(err error, resource string) error {
	if err == nil {
		return nil
	}

	var ae *Error
	if errors.As(err, &ae) {
		return err
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return Wrap(NotFound, resource+" not found", err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Wrap(Timeout, "deadline exceeded at persistence boundary", err)
	}
	if errors.Is(err, context.Canceled) {
		return Wrap(Timeout, "request cancelled", err)
	}

	errStr := err.Error()
	if strings.Contains(errStr, "duplicate key") || strings.Contains(errStr, "unique constraint") {
		return Wrap(Validation, "uniqueness violation", err)
	}
	if strings.Contains(errStr, "foreign key constraint") {
		return Wrap(IntegrityViolation, resource+" is referenced by other records", err)
	}

	return Wrap(Internal, "store operation failed", err)
}
