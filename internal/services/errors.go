package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/zaqqye/gazetrack_backend/internal/repository"
)

// ErrNotFound reports that the requested subject, study or user does not exist.
var ErrNotFound = repository.ErrNotFound

var ErrInvalidCredentials = errors.New("invalid username or password")

// ValidationError carries a message meant to be shown to the caller as is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}

// IsValidation reports whether err is a *ValidationError and returns it.
func IsValidation(err error) (*ValidationError, bool) {
	var v *ValidationError
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}

// inSession runs fn against a fresh unit of work. Everything fn stages is
// committed together when it returns nil and discarded otherwise.
func inSession(ctx context.Context, db *gorm.DB, fn func(s *repository.Session) error) error {
	s := repository.NewSession(db)
	if err := fn(s); err != nil {
		if rbErr := s.Rollback(); rbErr != nil {
			return errors.Join(err, rbErr)
		}
		return err
	}
	return s.Commit()
}
