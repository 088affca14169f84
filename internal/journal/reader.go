package journal

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"
)

// ErrRunNotFound is returned when no events carry the requested run ID.
var ErrRunNotFound = errors.New("run not found")

// EventFilter defines criteria for filtering journal events.
type EventFilter struct {
	RunID      RunID       // empty = all runs
	EventTypes []EventType // empty = all types
	StartTime  *time.Time  // events at or after this time
	EndTime    *time.Time  // events at or before this time
}

// Reader reads events back from a journal directory.
type Reader struct {
	logDir string
}

// NewReader creates a Reader for the journal in logDir.
func NewReader(logDir string) *Reader {
	return &Reader{logDir: logDir}
}

// LogPath returns the path to the journal file.
func (r *Reader) LogPath() string {
	return filepath.Join(r.logDir, LogFileName)
}

// Events returns the events matching filter in the order they were
// written. A missing journal has no events.
func (r *Reader) Events(filter EventFilter) ([]Event, error) {
	events, err := r.readAllEvents()
	if err != nil {
		return nil, err
	}

	var filtered []Event
	for _, event := range events {
		if matchesFilter(event, filter) {
			filtered = append(filtered, event)
		}
	}
	if filter.RunID != "" && len(filtered) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, filter.RunID)
	}
	return filtered, nil
}

// ListRuns returns all runs with summary information, oldest first.
func (r *Reader) ListRuns() ([]RunInfo, error) {
	events, err := r.readAllEvents()
	if err != nil {
		return nil, err
	}

	byRun := make(map[RunID][]Event)
	for _, event := range events {
		if event.RunID == "" {
			continue
		}
		byRun[event.RunID] = append(byRun[event.RunID], event)
	}

	runs := make([]RunInfo, 0, len(byRun))
	for runID, events := range byRun {
		runs = append(runs, buildRunInfo(runID, events))
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartTime.Before(runs[j].StartTime)
	})
	return runs, nil
}

// LatestRun returns the run with the most recent start time.
func (r *Reader) LatestRun() (*RunInfo, error) {
	runs, err := r.ListRuns()
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, ErrRunNotFound
	}
	return &runs[len(runs)-1], nil
}

func matchesFilter(event Event, filter EventFilter) bool {
	if filter.RunID != "" && event.RunID != filter.RunID {
		return false
	}

	if len(filter.EventTypes) > 0 {
		found := false
		for _, et := range filter.EventTypes {
			if event.EventType == et {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if filter.StartTime != nil && event.Timestamp.Before(*filter.StartTime) {
		return false
	}
	if filter.EndTime != nil && event.Timestamp.After(*filter.EndTime) {
		return false
	}

	return true
}

func (r *Reader) readAllEvents() ([]Event, error) {
	file, err := os.Open(r.LogPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	defer file.Close()

	var events []Event
	scanner := bufio.NewScanner(file)

	// Increase buffer size for potentially long lines
	const maxScanTokenSize = 1024 * 1024
	scanner.Buffer(make([]byte, 64*1024), maxScanTokenSize)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		event, err := UnmarshalJSONLine(line)
		if err != nil {
			return nil, fmt.Errorf("failed to parse journal line %d: %w", lineNum, err)
		}
		events = append(events, *event)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading journal: %w", err)
	}

	return events, nil
}

func buildRunInfo(runID RunID, events []Event) RunInfo {
	info := RunInfo{
		RunID:  runID,
		Status: RunStatusInProgress,
	}

	counted := RunSummary{}
	for _, event := range events {
		switch event.EventType {
		case EventRunStart:
			info.StartTime = event.Timestamp
			info.RunType = RunType(event.Metadata["runType"])

		case EventRunEnd:
			endTime := event.Timestamp
			info.EndTime = &endTime
			if status, ok := event.Metadata["status"]; ok {
				info.Status = RunStatus(status)
			}

		case EventRename:
			counted.Total++
			counted.Renamed++

		case EventSkip:
			counted.Total++
			counted.Skipped++

		case EventError:
			counted.Total++
			counted.Failed++
		}
	}

	info.Summary = counted
	if info.EndTime != nil {
		if s, ok := summaryFromMetadata(events); ok {
			info.Summary = s
		}
	}
	return info
}

// summaryFromMetadata reads the summary recorded in a RUN_END event.
func summaryFromMetadata(events []Event) (RunSummary, bool) {
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].EventType != EventRunEnd {
			continue
		}
		md := events[i].Metadata
		var s RunSummary
		s.Total, _ = strconv.Atoi(md["total"])
		s.Renamed, _ = strconv.Atoi(md["renamed"])
		s.Skipped, _ = strconv.Atoi(md["skipped"])
		s.Failed, _ = strconv.Atoi(md["failed"])
		return s, true
	}
	return RunSummary{}, false
}
