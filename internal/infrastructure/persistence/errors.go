package persistence

import (
	"errors"

	"github.com/boutique/backoffice/internal/domain/shared"
)

// wrapStorage turns a driver failure into a shared storage error. Domain
// errors and nil pass through untouched.
func wrapStorage(op string, err error) error {
	if err == nil {
		return nil
	}
	var de *shared.DomainError
	if errors.As(err, &de) {
		return err
	}
	return shared.NewStorageError(op+" failed", err)
}
