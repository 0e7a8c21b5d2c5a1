package complaint

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks input the caller can correct. No store operation
	// has happened when it is returned.
	ErrValidation = errors.New("complaint submission is incomplete")
	// ErrPersistence marks a failure to create the complaint record.
	ErrPersistence = errors.New("complaint could not be saved")
	// ErrNotFound is returned by operator operations on unknown complaints.
	ErrNotFound = errors.New("complaint not found")
)

// ValidationError lists the missing or invalid fields of a request.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %v", ErrValidation, e.Fields)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// PersistenceError wraps the store error that aborted a submission.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%v: %v", ErrPersistence, e.Err)
}

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
