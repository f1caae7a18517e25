package repositories

import (
	"errors"
	"fmt"

	"yamdb/internal/apperrors"

	"gorm.io/gorm"
)

// translate maps GORM errors onto the application taxonomy; what names the
// record for the message, e.g. "title with ID 42".
func translate(err error, what string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s not found: %w", what, apperrors.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s already exists: %w", what, apperrors.ErrDuplicate)
	}
	return fmt.Errorf("failed to access %s: %w", what, err)
}

func notFound(what string) error {
	return fmt.Errorf("%s not found: %w", what, apperrors.ErrNotFound)
}
