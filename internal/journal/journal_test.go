package journal

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

var uuidV4Regex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

// Property: generated run IDs are unique UUID v4 strings.
func TestGenerateRunID_UniqueAndFormatted(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("run IDs are unique and UUID v4", prop.ForAll(
		func(count int) bool {
			seen := make(map[RunID]bool)
			for i := 0; i < count; i++ {
				id := GenerateRunID()
				if !uuidV4Regex.MatchString(string(id)) || seen[id] {
					t.Logf("bad or duplicate run ID: %s", id)
					return false
				}
				seen[id] = true
			}
			return true
		},
		gen.IntRange(10, 50),
	))

	properties.TestingRun(t)
}

func TestEvent_JSONOmitsEmptyFields(t *testing.T) {
	e := Event{
		Timestamp: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		RunID:     "run",
		EventType: EventSkip,
		Status:    StatusSkipped,
	}

	data, err := e.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON failed: %v", err)
	}
	s := string(data)
	for _, absent := range []string{"sourcePath", "destinationPath", "notePath", "reasonCode", "errorDetails", "fileIdentity", "metadata"} {
		if strings.Contains(s, absent) {
			t.Errorf("expected %q to be omitted from %s", absent, s)
		}
	}
	if !strings.Contains(s, `"timestamp":"2024-01-02T03:04:05Z"`) {
		t.Errorf("unexpected timestamp encoding in %s", s)
	}
}

// Property: events survive a marshal and unmarshal unchanged.
func TestEvent_JSONRoundTrip(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("event round trip", prop.ForAll(
		func(source, dest, note string, nanos int64) bool {
			e := Event{
				Timestamp:       time.Unix(0, nanos).UTC(),
				RunID:           "r",
				EventType:       EventRename,
				Status:          StatusSuccess,
				SourcePath:      source,
				DestinationPath: dest,
				NotePath:        note,
				ReasonCode:      ReasonUnchanged,
			}
			data, err := e.MarshalJSON()
			if err != nil {
				return false
			}
			back, err := UnmarshalJSONLine(data)
			if err != nil {
				return false
			}
			return back.Timestamp.Equal(e.Timestamp) &&
				back.SourcePath == source &&
				back.DestinationPath == dest &&
				back.NotePath == note &&
				back.ReasonCode == ReasonUnchanged
		},
		gen.AnyString(),
		gen.AnyString(),
		gen.AlphaString(),
		gen.Int64Range(0, 4102444800*int64(time.Second)),
	))

	properties.TestingRun(t)
}

func TestWriter_NewLogInitialized(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "journal")

	w, err := NewWriter(dir)
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	events, err := NewReader(dir).Events(EventFilter{})
	if err != nil {
		t.Fatalf("Events failed: %v", err)
	}
	if len(events) != 1 || events[0].EventType != EventLogInitialized {
		t.Fatalf("expected a single LOG_INITIALIZED event, got %+v", events)
	}

	// Reopening an existing journal does not initialize it again.
	w, err = NewWriter(dir)
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}
	w.Close()
	events, _ = NewReader(dir).Events(EventFilter{})
	if len(events) != 1 {
		t.Errorf("expected 1 event after reopen, got %d", len(events))
	}
}

func TestWriter_RecordRequiresRun(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}
	defer w.Close()

	if err := w.RecordRename("a.png", "b.png", "n.md", nil); !errors.Is(err, ErrNoActiveRun) {
		t.Errorf("expected ErrNoActiveRun, got %v", err)
	}
	if err := w.EndRun(RunStatusCompleted, RunSummary{}); !errors.Is(err, ErrNoActiveRun) {
		t.Errorf("expected ErrNoActiveRun, got %v", err)
	}
}

func TestWriterReader_FullRun(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir)
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}

	clock := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	w.Now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	runID, err := w.StartRun(RunTypeBatch, map[string]string{"note": "n.md"})
	if err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}
	if w.CurrentRunID() != runID {
		t.Errorf("CurrentRunID = %q, want %q", w.CurrentRunID(), runID)
	}

	mustNoErr(t, w.RecordRename("Pasted image 1.png", "My Note.png", "n.md", &FileIdentity{ContentHash: "abc", Size: 3}))
	mustNoErr(t, w.RecordSkip("doc.pdf", ReasonUnsupportedType, "n.md"))
	mustNoErr(t, w.RecordError("x.png", "DESTINATION_EXISTS", "boom", "rename"))
	mustNoErr(t, w.EndRun(RunStatusFailed, RunSummary{Total: 3, Renamed: 1, Skipped: 1, Failed: 1}))
	mustNoErr(t, w.Close())

	r := NewReader(dir)

	runEvents, err := r.Events(EventFilter{RunID: runID})
	if err != nil {
		t.Fatalf("Events failed: %v", err)
	}
	if len(runEvents) != 5 {
		t.Fatalf("expected 5 run events, got %d", len(runEvents))
	}
	if runEvents[0].Metadata["note"] != "n.md" || runEvents[0].Metadata["runType"] != string(RunTypeBatch) {
		t.Errorf("unexpected RUN_START metadata: %v", runEvents[0].Metadata)
	}

	renames, err := r.Events(EventFilter{RunID: runID, EventTypes: []EventType{EventRename}})
	if err != nil {
		t.Fatalf("Events failed: %v", err)
	}
	if len(renames) != 1 || renames[0].DestinationPath != "My Note.png" || renames[0].NotePath != "n.md" {
		t.Errorf("unexpected rename events: %+v", renames)
	}
	if id := renames[0].FileIdentity; id == nil || *id != (FileIdentity{ContentHash: "abc", Size: 3}) {
		t.Errorf("unexpected file identity: %+v", id)
	}

	errs, _ := r.Events(EventFilter{EventTypes: []EventType{EventError}})
	if len(errs) != 1 || errs[0].ErrorDetails == nil || errs[0].ErrorDetails.ErrorType != "DESTINATION_EXISTS" {
		t.Errorf("unexpected error events: %+v", errs)
	}

	run, err := r.LatestRun()
	if err != nil {
		t.Fatalf("LatestRun failed: %v", err)
	}
	if run.RunID != runID || run.Status != RunStatusFailed || run.RunType != RunTypeBatch {
		t.Errorf("unexpected run info: %+v", run)
	}
	if run.Summary != (RunSummary{Total: 3, Renamed: 1, Skipped: 1, Failed: 1}) {
		t.Errorf("unexpected summary: %+v", run.Summary)
	}
	if run.EndTime == nil || !run.EndTime.After(run.StartTime) {
		t.Errorf("expected end time after start time: %+v", run)
	}
}

func TestReader_InterruptedRunCountsEvents(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir)
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}
	if _, err := w.StartRun(RunTypeWatch, nil); err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}
	mustNoErr(t, w.RecordRename("a.png", "b.png", "", nil))
	mustNoErr(t, w.RecordRename("c.png", "d.png", "", nil))
	w.Close()

	runs, err := NewReader(dir).ListRuns()
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	if runs[0].Status != RunStatusInProgress || runs[0].Summary.Renamed != 2 {
		t.Errorf("unexpected run info: %+v", runs[0])
	}
}

func TestReader_MissingJournalAndUnknownRun(t *testing.T) {
	r := NewReader(filepath.Join(t.TempDir(), "none"))

	events, err := r.Events(EventFilter{})
	if err != nil || len(events) != 0 {
		t.Errorf("expected no events and no error, got %v, %v", events, err)
	}
	if _, err := r.Events(EventFilter{RunID: "nope"}); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
	if _, err := r.LatestRun(); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}

func TestReader_CorruptLine(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, LogFileName), []byte("{not json\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewReader(dir).Events(EventFilter{}); err == nil {
		t.Error("expected parse error for corrupt journal")
	}
}

func mustNoErr(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestIdentity(t *testing.T) {
	p := filepath.Join(t.TempDir(), "a.png")
	if err := os.WriteFile(p, []byte("png data"), 0o644); err != nil {
		t.Fatal(err)
	}

	id, err := CaptureIdentity(p)
	if err != nil {
		t.Fatalf("CaptureIdentity failed: %v", err)
	}
	if id.Size != 8 || len(id.ContentHash) != 64 {
		t.Fatalf("unexpected identity: %+v", id)
	}

	tests := []struct {
		name    string
		content string
		remove  bool
		want    IdentityMatch
	}{
		{"unchanged", "png data", false, IdentityMatches},
		{"same size different content", "png DATA", false, IdentityHashMismatch},
		{"different size", "png", false, IdentitySizeMismatch},
		{"removed", "", true, IdentityNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.remove {
				os.Remove(p)
			} else if err := os.WriteFile(p, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			got, err := VerifyIdentity(p, *id)
			if err != nil {
				t.Fatalf("VerifyIdentity failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("VerifyIdentity = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := CaptureIdentity(filepath.Dir(p)); err == nil {
		t.Error("expected error for a directory")
	}
}
