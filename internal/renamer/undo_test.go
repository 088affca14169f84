package renamer

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pasterename/internal/config"
	"pasterename/internal/document"
	"pasterename/internal/journal"
)

// journaledRename renames the pasted image of setupVault with a real
// journal and returns the events of that run.
func journaledRename(t *testing.T, v document.Vault, note *document.Note, settings config.Settings) []journal.Event {
	t.Helper()
	dir := t.TempDir()
	jw, err := journal.NewWriter(dir)
	require.NoError(t, err)
	runID, err := jw.StartRun(journal.RunTypeRename, nil)
	require.NoError(t, err)

	r := New(v, settings)
	r.Journal = jw
	res := r.Rename("notes/Pasted image 1.png", note)
	require.Equal(t, Renamed, res.Outcome)
	require.NoError(t, jw.EndRun(journal.RunStatusCompleted, journal.RunSummary{Total: 1, Renamed: 1}))
	require.NoError(t, jw.Close())

	events, err := journal.NewReader(dir).Events(journal.EventFilter{RunID: runID})
	require.NoError(t, err)
	return events
}

func TestUndo_VaultMode(t *testing.T) {
	v, note := setupVault(t)
	events := journaledRename(t, v, note, autoSettings())
	require.Equal(t, "# Heading\n\nBefore ![[My Note.png]] after\n", readFile(t, v.Root, "notes/My Note.md"))

	rec := &fakeRecorder{}
	r := New(v, autoSettings())
	r.Journal = rec
	summary := r.Undo(events)

	require.Equal(t, 1, summary.Renamed, "results: %+v", summary.Results)
	res := summary.Results[0]
	assert.Equal(t, "notes/My Note.png", res.Source)
	assert.Equal(t, "notes/Pasted image 1.png", res.Destination)
	assert.Equal(t, 1, res.LinksUpdated)
	assert.True(t, exists(v.Root, "notes/Pasted image 1.png"))
	assert.False(t, exists(v.Root, "notes/My Note.png"))
	assert.Equal(t, "# Heading\n\nBefore ![[Pasted image 1.png]] after\n", readFile(t, v.Root, "notes/My Note.md"))

	require.Len(t, rec.events, 1)
	assert.Equal(t, "notes/My Note.png", rec.events[0].source)
	assert.Equal(t, "notes/Pasted image 1.png", rec.events[0].dest)
}

func TestUndo_ContentChanged(t *testing.T) {
	v, note := setupVault(t)
	events := journaledRename(t, v, note, autoSettings())
	writeFile(t, v.Root, "notes/My Note.png", "edited")

	summary := New(v, autoSettings()).Undo(events)

	require.Equal(t, 1, summary.Failed)
	var moveErr *MoveError
	require.True(t, errors.As(summary.Results[0].Err, &moveErr))
	assert.Equal(t, ContentChanged, moveErr.Type)
	assert.True(t, exists(v.Root, "notes/My Note.png"))
}

func TestUndo_OriginalOccupied(t *testing.T) {
	v, note := setupVault(t)
	events := journaledRename(t, v, note, autoSettings())
	writeFile(t, v.Root, "notes/Pasted image 1.png", "new paste")

	summary := New(v, autoSettings()).Undo(events)

	require.Equal(t, 1, summary.Failed)
	var moveErr *MoveError
	require.True(t, errors.As(summary.Results[0].Err, &moveErr))
	assert.Equal(t, DestinationExists, moveErr.Type)
	assert.Equal(t, "new paste", readFile(t, v.Root, "notes/Pasted image 1.png"))
}

func TestUndo_NewestFirst(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "c.png", "png")
	v := document.Vault{Root: root}

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	events := []journal.Event{
		{Timestamp: start, EventType: journal.EventRunStart},
		{Timestamp: start.Add(time.Second), EventType: journal.EventRename, SourcePath: "a.png", DestinationPath: "b.png"},
		{Timestamp: start.Add(2 * time.Second), EventType: journal.EventSkip, SourcePath: "x.png"},
		{Timestamp: start.Add(3 * time.Second), EventType: journal.EventRename, SourcePath: "b.png", DestinationPath: "c.png"},
	}

	summary := New(v, config.Defaults()).Undo(events)

	assert.Equal(t, 2, summary.Renamed)
	assert.Equal(t, "c.png", summary.Results[0].Source)
	assert.True(t, exists(root, "a.png"))
	assert.False(t, exists(root, "b.png"))
	assert.False(t, exists(root, "c.png"))
}

func TestUndo_DryRun(t *testing.T) {
	v, note := setupVault(t)
	events := journaledRename(t, v, note, autoSettings())

	rec := &fakeRecorder{}
	r := New(v, autoSettings())
	r.DryRun = true
	r.Journal = rec
	summary := r.Undo(events)

	require.Equal(t, 1, summary.Renamed)
	assert.True(t, summary.Results[0].DryRun)
	assert.Equal(t, 1, summary.Results[0].LinksUpdated)
	assert.True(t, exists(v.Root, "notes/My Note.png"))
	assert.Empty(t, rec.events)
}

func TestUndo_PhysicalMode(t *testing.T) {
	v, note := setupVault(t)
	physical := t.TempDir()
	settings := autoSettings()
	settings.RootDirPhysical = physical
	settings.RootDirView = "https://cdn.example.com/img/"

	events := journaledRename(t, v, note, settings)
	require.True(t, exists(physical, "My Note.png"))
	require.Equal(t, "# Heading\n\nBefore ![My Note.png](https://cdn.example.com/img/My%20Note.png) after\n",
		readFile(t, v.Root, "notes/My Note.md"))

	summary := New(v, settings).Undo(events)

	require.Equal(t, 1, summary.Renamed, "results: %+v", summary.Results)
	assert.Equal(t, filepath.Join(physical, "My Note.png"), summary.Results[0].Source)
	assert.True(t, exists(v.Root, "notes/Pasted image 1.png"))
	assert.False(t, exists(physical, "My Note.png"))
	assert.Equal(t, "# Heading\n\nBefore ![[notes/Pasted image 1.png]] after\n", readFile(t, v.Root, "notes/My Note.md"))
}
