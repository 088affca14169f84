package document

// NoteErrorType represents the type of note error.
type NoteErrorType string

const (
	// NoteNotFound indicates the note does not exist.
	NoteNotFound NoteErrorType = "NOTE_NOT_FOUND"
	// NoteReadFailed indicates the note could not be read.
	NoteReadFailed NoteErrorType = "NOTE_READ_FAILED"
	// NoteWriteFailed indicates the note could not be saved.
	NoteWriteFailed NoteErrorType = "NOTE_WRITE_FAILED"
	// NoNotes indicates the vault holds no Markdown notes.
	NoNotes NoteErrorType = "NO_NOTES"
)

// NoteError represents an error reading or writing a note.
type NoteError struct {
	Type NoteErrorType
	Path string
	Err  error
}

func (e *NoteError) Error() string {
	if e.Err != nil {
		return string(e.Type) + ": " + e.Path + ": " + e.Err.Error()
	}
	return string(e.Type) + ": " + e.Path
}

func (e *NoteError) Unwrap() error {
	return e.Err
}
