// Package journal keeps an append-only JSON Lines record of every rename,
// skip and failure so past runs can be inspected.
package journal

import "time"

// LogFileName is the name of the journal file inside its directory.
const LogFileName = "renames.jsonl"

// RunID is a unique identifier for each program execution.
type RunID string

// EventType represents the type of journal event.
type EventType string

const (
	// Run lifecycle events
	EventRunStart EventType = "RUN_START"
	EventRunEnd   EventType = "RUN_END"

	// Attachment events
	EventRename EventType = "RENAME"
	EventSkip   EventType = "SKIP"
	EventError  EventType = "ERROR"

	// System events
	EventLogInitialized EventType = "LOG_INITIALIZED"
)

// OperationStatus represents the outcome of an operation.
type OperationStatus string

const (
	StatusSuccess OperationStatus = "SUCCESS"
	StatusFailure OperationStatus = "FAILURE"
	StatusSkipped OperationStatus = "SKIPPED"
)

// ReasonCode explains why an attachment was skipped.
type ReasonCode string

const (
	ReasonNotMeaningful     ReasonCode = "NOT_MEANINGFUL"
	ReasonUnsupportedType   ReasonCode = "UNSUPPORTED_TYPE"
	ReasonLinkTargetMissing ReasonCode = "LINK_TARGET_MISSING"
	ReasonDeclined          ReasonCode = "DECLINED"
	ReasonUnchanged         ReasonCode = "UNCHANGED"
	ReasonContentChanged    ReasonCode = "CONTENT_CHANGED"
	ReasonOccupied          ReasonCode = "DESTINATION_OCCUPIED"
)

// RunStatus represents the status of a run.
type RunStatus string

const (
	RunStatusInProgress  RunStatus = "IN_PROGRESS"
	RunStatusCompleted   RunStatus = "COMPLETED"
	RunStatusFailed      RunStatus = "FAILED"
	RunStatusInterrupted RunStatus = "INTERRUPTED"
)

// RunType represents what started a run.
type RunType string

const (
	RunTypeRename RunType = "RENAME"
	RunTypeBatch  RunType = "BATCH"
	RunTypeWatch  RunType = "WATCH"
	RunTypeUndo   RunType = "UNDO"
)

// ErrorDetails contains detailed information about an error.
type ErrorDetails struct {
	ErrorType    string `json:"errorType"`
	ErrorMessage string `json:"errorMessage"`
	Operation    string `json:"operation"`
}

// Event represents a single journal record.
type Event struct {
	Timestamp       time.Time
	RunID           RunID
	EventType       EventType
	Status          OperationStatus
	SourcePath      string
	DestinationPath string
	NotePath        string
	ReasonCode      ReasonCode
	ErrorDetails    *ErrorDetails
	// FileIdentity is captured for RENAME events so the rename can be
	// undone only while the file is unchanged.
	FileIdentity    *FileIdentity
	Metadata        map[string]string
}

// RunSummary contains statistics for a completed run.
type RunSummary struct {
	Total   int `json:"total"`
	Renamed int `json:"renamed"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// RunInfo contains metadata and summary for a run.
type RunInfo struct {
	RunID     RunID      `json:"runId"`
	StartTime time.Time  `json:"startTime"`
	EndTime   *time.Time `json:"endTime,omitempty"`
	Status    RunStatus  `json:"status"`
	RunType   RunType    `json:"runType"`
	Summary   RunSummary `json:"summary"`
}
