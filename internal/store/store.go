// Package store persists profiles, roadmaps and activity with gorm.
//
// Every method maps gorm.ErrRecordNotFound to a NotFound AppError and any other
// database failure to a StorageError, so callers only deal with pkg/errors kinds.
package store

import (
	"errors"

	apperrors "github.com/pavangundu/ai-helper/pkg/errors"
	"gorm.io/gorm"
)

func wrapErr(err error, notFoundMsg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound(notFoundMsg)
	}
	return apperrors.Storage(err)
}
