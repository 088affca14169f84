package renamer

import (
	"errors"
	"fmt"

	"pasterename/internal/dedup"
	"pasterename/internal/document"
)

// MoveErrorType represents the type of move error.
type MoveErrorType string

const (
	// SourceNotFound indicates the attachment vanished before it was moved.
	SourceNotFound MoveErrorType = "SOURCE_NOT_FOUND"
	// DestinationExists indicates a file appeared at the resolved name
	// after the directory was listed.
	DestinationExists MoveErrorType = "DESTINATION_EXISTS"
	// PermissionDenied indicates insufficient permissions for the operation.
	PermissionDenied MoveErrorType = "PERMISSION_DENIED"
	// ContentChanged indicates a renamed file was modified after the
	// rename, so undoing it would restore different content.
	ContentChanged MoveErrorType = "CONTENT_CHANGED"
)

// MoveError represents an error that occurred while moving an attachment.
type MoveError struct {
	Type MoveErrorType
	Path string
	Err  error
}

func (e *MoveError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Path)
}

func (e *MoveError) Unwrap() error {
	return e.Err
}

// errorType names err for the journal.
func errorType(err error) string {
	var (
		moveErr *MoveError
		nameErr *dedup.MalformedNameError
		listErr *dedup.ListError
		noteErr *document.NoteError
	)
	switch {
	case errors.As(err, &moveErr):
		return string(moveErr.Type)
	case errors.As(err, &nameErr):
		return string(nameErr.Type)
	case errors.As(err, &listErr):
		return string(listErr.Type)
	case errors.As(err, &noteErr):
		return string(noteErr.Type)
	case errors.Is(err, dedup.ErrOutsideRoot):
		return "OUTSIDE_ROOT"
	default:
		return "UNKNOWN"
	}
}
