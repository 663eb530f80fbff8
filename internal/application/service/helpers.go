package service

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	domainRepo "github.com/sangkips/retailpos/internal/domain/repository"
	"github.com/sangkips/retailpos/pkg/apperror"
)

var validate = validator.New()

// validEmail reports whether s is a bare address. Display-name forms are rejected.
func validEmail(s string) bool {
	return validate.Var(s, "email") == nil
}

// Clock returns the current time. Services take one so tests can pin it.
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now()
}

// storageErr passes AppErrors through and wraps anything else from a
// repository as a persistence error for op.
func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if apperror.IsAppError(err) {
		return err
	}
	switch {
	case errors.Is(err, domainRepo.ErrNotFound):
		return apperror.ErrNotFound
	case errors.Is(err, domainRepo.ErrDuplicateBarcode):
		return apperror.NewConflictError("Barcode already exists")
	case errors.Is(err, domainRepo.ErrDuplicateBatch):
		return apperror.NewConflictError("Batch already exists at this location")
	}
	return apperror.NewPersistenceError(op, err)
}

// startOfDay truncates t to midnight in its own location.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
