package service

import (
	"errors"
	"fmt"
	"tengoku-tracker/internal/domain"
)

// storeError keeps classified store errors as they are and files everything else under
// domain.ErrStoreUnavailable.
func storeError(err error) error {
	if errors.Is(err, domain.ErrUserNotFound) ||
		errors.Is(err, domain.ErrStoreUnavailable) ||
		errors.Is(err, domain.ErrPlayerUpsertFailed) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
}
