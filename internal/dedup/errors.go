package dedup

import (
	"errors"
	"fmt"
)

// MalformedNameErrorType identifies which caller contract was violated.
type MalformedNameErrorType string

const (
	// MissingExtension indicates a candidate name without a '.'.
	MissingExtension MalformedNameErrorType = "MISSING_EXTENSION"
	// UnparseableNumber indicates a duplicate number that does not fit an int.
	UnparseableNumber MalformedNameErrorType = "UNPARSEABLE_NUMBER"
)

// MalformedNameError reports input the resolver cannot work with. It
// points at a caller bug, so it aborts the current rename only.
type MalformedNameError struct {
	Type MalformedNameErrorType
	Name string
	Err  error
}

func (e *MalformedNameError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Name, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Name)
}

func (e *MalformedNameError) Unwrap() error {
	return e.Err
}

// ListErrorType represents the type of directory listing error.
type ListErrorType string

const (
	// PermissionDenied indicates the directory cannot be read.
	PermissionDenied ListErrorType = "PERMISSION_DENIED"
	// NotADirectory indicates the listed path is a file.
	NotADirectory ListErrorType = "NOT_A_DIRECTORY"
	// ReadFailed covers any other read failure.
	ReadFailed ListErrorType = "READ_FAILED"
)

// ListError is returned when a sibling listing cannot be produced. A
// missing directory is not an error.
type ListError struct {
	Type ListErrorType
	Path string
	Err  error
}

func (e *ListError) Error() string {
	return string(e.Type) + ": " + e.Path
}

func (e *ListError) Unwrap() error {
	return e.Err
}

// ErrOutsideRoot is returned when a name resolves outside its storage root.
var ErrOutsideRoot = errors.New("path escapes storage root")
