package study

import (
	"errors"
	"fmt"
)

var ErrPageNotOwned = errors.New("page is not owned by user")
var ErrSnapshotNotFound = errors.New("latest snapshot not found")

// ValidationError reports a rejected plan parameter.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
