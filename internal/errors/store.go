package errors

import (
	stderrors "errors"
	"fmt"
)

// Failure kinds shared by the storage layer, the migration shim and the
// assistant. Match them with errors.Is.
var (
	ErrStoreUnavailable   = stderrors.New("store unavailable")
	ErrDuplicateKey       = stderrors.New("duplicate key")
	ErrTransactionAborted = stderrors.New("transaction aborted")
	ErrAIService          = stderrors.New("assistant request failed")
	ErrMigrationAmbiguous = stderrors.New("record cannot be migrated")
)

// StoreError describes a failed storage operation on a collection.
type StoreError struct {
	Op         string
	Collection string
	Kind       error
	Err        error
}

// NewStoreError wraps err as a failure of op on collection.
func NewStoreError(op, collection string, kind, err error) *StoreError {
	return &StoreError{
		Op:         op,
		Collection: collection,
		Kind:       kind,
		Err:        err,
	}
}

func (e *StoreError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Collection, e.Kind)
	}
	return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Collection, e.Kind, e.Err)
}

func (e *StoreError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// AIServiceError is a failed assistant call. Message is safe to show to the
// user and already localized.
type AIServiceError struct {
	Op      string
	Message string
	Err     error
}

func (e *AIServiceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("assistant %s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("assistant %s: %s: %v", e.Op, e.Message, e.Err)
}

func (e *AIServiceError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrAIService}
	}
	return []error{ErrAIService, e.Err}
}

// IsStorageFailure reports whether err came from the store rather than from
// input validation.
func IsStorageFailure(err error) bool {
	return stderrors.Is(err, ErrTransactionAborted) ||
		stderrors.Is(err, ErrStoreUnavailable) ||
		stderrors.Is(err, ErrDuplicateKey)
}
