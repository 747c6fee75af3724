package aggregates

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	domainagg "github.com/osisteam/catalogue-backend/internal/domain/aggregates"
	"gorm.io/gorm"
)

var (
	// ErrValidation indicates caller input validation failure.
	ErrValidation = errors.New("validation")
	// ErrIllegalTransition indicates a state-machine guard rejection.
	ErrIllegalTransition = errors.New("illegal transition")
	// ErrConcurrent indicates a lost row lock or serialisation failure.
	ErrConcurrent = errors.New("concurrent modification")
	// ErrInUse indicates rows owned elsewhere still reference the target.
	ErrInUse = errors.New("in use")
)

// ValidationError tags an error as validation failure.
func ValidationError(msg string) error {
	return errors.Join(ErrValidation, errors.New(strings.TrimSpace(msg)))
}

// IllegalTransitionError tags an error as a rejected transition.
func IllegalTransitionError(msg string) error {
	return errors.Join(ErrIllegalTransition, errors.New(strings.TrimSpace(msg)))
}

// ConcurrentError tags an error as retryable concurrency failure.
func ConcurrentError(msg string) error {
	return errors.Join(ErrConcurrent, errors.New(strings.TrimSpace(msg)))
}

// InUseError tags an error as blocked by external references.
func InUseError(msg string) error {
	return errors.Join(ErrInUse, errors.New(strings.TrimSpace(msg)))
}

// MapError maps infrastructure failures into engine error codes.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var engineErr *domainagg.Error
	if errors.As(err, &engineErr) {
		return err
	}
	switch {
	case errors.Is(err, ErrValidation):
		return domainagg.Wrap(domainagg.CodeValidation, op, err)
	case errors.Is(err, ErrIllegalTransition):
		return domainagg.Wrap(domainagg.CodeIllegalTransition, op, err)
	case errors.Is(err, ErrConcurrent):
		return domainagg.Wrap(domainagg.CodeConcurrent, op, err)
	case errors.Is(err, ErrInUse):
		return domainagg.Wrap(domainagg.CodeInUse, op, err)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domainagg.Wrap(domainagg.CodeNotFound, op, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return domainagg.Wrap(domainagg.CodeConcurrent, op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505": // unique_violation
			if strings.Contains(pgErr.ConstraintName, "proposal") || strings.Contains(pgErr.TableName, "proposal") {
				return domainagg.Wrap(domainagg.CodeProposalExists, op, err)
			}
			return domainagg.Wrap(domainagg.CodeConcurrent, op, err)
		case "23503": // foreign_key_violation
			return domainagg.Wrap(domainagg.CodeInUse, op, err)
		case "40001", "40P01", "55P03": // serialization/deadlock/lock_not_available
			return domainagg.Wrap(domainagg.CodeConcurrent, op, err)
		}
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "unique constraint failed: proposal"),
		strings.Contains(msg, "duplicate key") && strings.Contains(msg, "proposal"):
		return domainagg.Wrap(domainagg.CodeProposalExists, op, err)
	case strings.Contains(msg, "database is locked"),
		strings.Contains(msg, "busy"),
		strings.Contains(msg, "deadlock"),
		strings.Contains(msg, "serialization"),
		strings.Contains(msg, "could not obtain lock"):
		return domainagg.Wrap(domainagg.CodeConcurrent, op, err)
	default:
		return domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
}
