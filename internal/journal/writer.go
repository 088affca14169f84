package journal

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNoActiveRun is returned when an attachment event is recorded outside
// a run.
var ErrNoActiveRun = errors.New("no active run: call StartRun first")

// Writer appends events to the journal. It is safe for concurrent use.
type Writer struct {
	mu         sync.Mutex
	file       *os.File
	writer     *bufio.Writer
	logPath    string
	currentRun *RunID

	// Now supplies event timestamps.
	Now func() time.Time
}

// NewWriter opens the journal in dir for appending, creating the directory
// and file as needed. A new file starts with a LOG_INITIALIZED event.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	logPath := filepath.Join(dir, LogFileName)

	isNewLog := false
	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		isNewLog = true
	}

	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	w := &Writer{
		file:    file,
		writer:  bufio.NewWriter(file),
		logPath: logPath,
		Now:     time.Now,
	}

	if isNewLog {
		event := Event{
			Timestamp: w.Now(),
			EventType: EventLogInitialized,
			Status:    StatusSuccess,
			Metadata:  map[string]string{"logPath": logPath},
		}
		if err := w.writeEventLocked(event); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to write LOG_INITIALIZED event: %w", err)
		}
	}

	return w, nil
}

// GenerateRunID generates a new UUID v4 run ID.
func GenerateRunID() RunID {
	return RunID(uuid.New().String())
}

// StartRun begins a run and writes its RUN_START event.
func (w *Writer) StartRun(runType RunType, metadata map[string]string) (RunID, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	runID := GenerateRunID()
	md := map[string]string{"runType": string(runType)}
	for k, v := range metadata {
		md[k] = v
	}

	event := Event{
		Timestamp: w.Now(),
		RunID:     runID,
		EventType: EventRunStart,
		Status:    StatusSuccess,
		Metadata:  md,
	}
	if err := w.writeEventLocked(event); err != nil {
		return "", fmt.Errorf("failed to write RUN_START event: %w", err)
	}

	w.currentRun = &runID
	return runID, nil
}

// EndRun records the run completion status and summary.
func (w *Writer) EndRun(status RunStatus, summary RunSummary) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.currentRun == nil {
		return ErrNoActiveRun
	}

	opStatus := StatusSuccess
	if status != RunStatusCompleted {
		opStatus = StatusFailure
	}

	event := Event{
		Timestamp: w.Now(),
		RunID:     *w.currentRun,
		EventType: EventRunEnd,
		Status:    opStatus,
		Metadata: map[string]string{
			"status":  string(status),
			"total":   strconv.Itoa(summary.Total),
			"renamed": strconv.Itoa(summary.Renamed),
			"skipped": strconv.Itoa(summary.Skipped),
			"failed":  strconv.Itoa(summary.Failed),
		},
	}
	if err := w.writeEventLocked(event); err != nil {
		return fmt.Errorf("failed to write RUN_END event: %w", err)
	}

	w.currentRun = nil
	return nil
}

// RecordRename records a completed rename of source to dest for the note
// at notePath. id is the identity of the file at dest and may be nil.
func (w *Writer) RecordRename(source, dest, notePath string, id *FileIdentity) error {
	return w.record(Event{
		EventType:       EventRename,
		Status:          StatusSuccess,
		SourcePath:      source,
		DestinationPath: dest,
		NotePath:        notePath,
		FileIdentity:    id,
	})
}

// RecordSkip records an attachment that was left alone.
func (w *Writer) RecordSkip(source string, reason ReasonCode, notePath string) error {
	return w.record(Event{
		EventType:  EventSkip,
		Status:     StatusSkipped,
		SourcePath: source,
		NotePath:   notePath,
		ReasonCode: reason,
	})
}

// RecordError records a failed rename.
func (w *Writer) RecordError(source, errType, errMsg, operation string) error {
	return w.record(Event{
		EventType:  EventError,
		Status:     StatusFailure,
		SourcePath: source,
		ErrorDetails: &ErrorDetails{
			ErrorType:    errType,
			ErrorMessage: errMsg,
			Operation:    operation,
		},
	})
}

func (w *Writer) record(event Event) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.currentRun == nil {
		return ErrNoActiveRun
	}
	event.RunID = *w.currentRun
	event.Timestamp = w.Now()
	return w.writeEventLocked(event)
}

// writeEventLocked marshals the event, appends it as one line and syncs
// it to disk.
func (w *Writer) writeEventLocked(event Event) error {
	data, err := event.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if _, err := w.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	if err := w.writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}
	if err := w.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush event: %w", err)
	}
	if err := w.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync event to disk: %w", err)
	}

	return nil
}

// CurrentRunID returns the current run ID, or "" if no run is active.
func (w *Writer) CurrentRunID() RunID {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.currentRun == nil {
		return ""
	}
	return *w.currentRun
}

// LogPath returns the path to the journal file.
func (w *Writer) LogPath() string {
	return w.logPath
}

// Close flushes any buffered data and closes the journal file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush on close: %w", err)
	}
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("failed to close journal: %w", err)
	}
	return nil
}
