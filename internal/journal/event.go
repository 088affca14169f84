package journal

import (
	"encoding/json"
	"time"
)

// TimestampFormat is the time format used for event timestamps.
const TimestampFormat = time.RFC3339Nano

// eventJSON is the wire form of Event. Optional fields are pointers so
// they can be omitted when empty.
type eventJSON struct {
	Timestamp       string            `json:"timestamp"`
	RunID           RunID             `json:"runId"`
	EventType       EventType         `json:"eventType"`
	Status          OperationStatus   `json:"status"`
	SourcePath      *string           `json:"sourcePath,omitempty"`
	DestinationPath *string           `json:"destinationPath,omitempty"`
	NotePath        *string           `json:"notePath,omitempty"`
	ReasonCode      *ReasonCode       `json:"reasonCode,omitempty"`
	ErrorDetails    *ErrorDetails     `json:"errorDetails,omitempty"`
	FileIdentity    *FileIdentity     `json:"fileIdentity,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// MarshalJSON implements json.Marshaler for Event.
func (e Event) MarshalJSON() ([]byte, error) {
	ej := eventJSON{
		Timestamp:       e.Timestamp.UTC().Format(TimestampFormat),
		RunID:           e.RunID,
		EventType:       e.EventType,
		Status:          e.Status,
		SourcePath:      optional(e.SourcePath),
		DestinationPath: optional(e.DestinationPath),
		NotePath:        optional(e.NotePath),
		ErrorDetails:    e.ErrorDetails,
		FileIdentity:    e.FileIdentity,
		Metadata:        e.Metadata,
	}
	if e.ReasonCode != "" {
		rc := e.ReasonCode
		ej.ReasonCode = &rc
	}

	return json.Marshal(ej)
}

// UnmarshalJSON implements json.Unmarshaler for Event.
func (e *Event) UnmarshalJSON(data []byte) error {
	var ej eventJSON
	if err := json.Unmarshal(data, &ej); err != nil {
		return err
	}

	t, err := time.Parse(TimestampFormat, ej.Timestamp)
	if err != nil {
		return err
	}

	*e = Event{
		Timestamp:    t,
		RunID:        ej.RunID,
		EventType:    ej.EventType,
		Status:       ej.Status,
		ErrorDetails: ej.ErrorDetails,
		FileIdentity: ej.FileIdentity,
		Metadata:     ej.Metadata,
	}
	if ej.SourcePath != nil {
		e.SourcePath = *ej.SourcePath
	}
	if ej.DestinationPath != nil {
		e.DestinationPath = *ej.DestinationPath
	}
	if ej.NotePath != nil {
		e.NotePath = *ej.NotePath
	}
	if ej.ReasonCode != nil {
		e.ReasonCode = *ej.ReasonCode
	}

	return nil
}

// UnmarshalJSONLine unmarshals a JSON line into an Event.
func UnmarshalJSONLine(data []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
