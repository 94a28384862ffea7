package repository

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

// Common repository errors
var (
	// ErrNotFound indicates the requested entity was not found
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicateKey indicates a unique constraint violation
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrConditionFailed indicates a conditional write matched no document
	// because the entity was no longer in the expected state
	ErrConditionFailed = errors.New("write condition failed")
)

// TranslateWriteError maps driver errors on writes to the sentinel errors above.
func TranslateWriteError(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
	}
	return err
}
