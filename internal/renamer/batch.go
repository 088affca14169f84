package renamer

import (
	"fmt"
	"regexp"

	"pasterename/internal/document"
	"pasterename/internal/journal"
)

// batchImageExt selects the embeds a batch rename handles.
var batchImageExt = regexp.MustCompile(`(?i)jpe?g|png|gif|tiff|webp`)

// Summary aggregates the results of a batch.
type Summary struct {
	Results []Result
	Total   int
	Renamed int
	Skipped int
	Failed  int
}

// Add counts one result.
func (s *Summary) Add(res Result) {
	s.Results = append(s.Results, res)
	s.Total++
	switch {
	case res.Outcome == Renamed:
		s.Renamed++
	case res.Outcome == Failed:
		s.Failed++
	default:
		s.Skipped++
	}
}

// HasErrors returns true if any attachment failed.
func (s *Summary) HasErrors() bool {
	return s.Failed > 0
}

// String returns a one-line summary.
func (s *Summary) String() string {
	return fmt.Sprintf("Processed %d attachments: %d renamed, %d skipped, %d failed",
		s.Total, s.Renamed, s.Skipped, s.Failed)
}

// RunSummary converts the counts for the journal.
func (s *Summary) RunSummary() journal.RunSummary {
	return journal.RunSummary{Total: s.Total, Renamed: s.Renamed, Skipped: s.Skipped, Failed: s.Failed}
}

type batchItem struct {
	target string
	path   string
	found  bool
}

// Batch renames every image embedded in note using the name pattern.
// Each embedded file is handled once. Items that cannot be renamed are
// skipped or failed individually and never stop the batch.
func (r *Renamer) Batch(note *document.Note) *Summary {
	// Resolve everything first so renames do not change what later embeds
	// point at.
	var items []batchItem
	seen := make(map[string]bool)
	for _, e := range note.Embeds {
		p, _, ok := r.Vault.Resolve(e.Target, note.Path)
		key := p
		if !ok {
			key = "\x00" + e.Target
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		items = append(items, batchItem{target: e.Target, path: p, found: ok})
	}

	r.logger.Info().Str("note", note.Path).Int("attachments", len(items)).Msg("Starting batch rename")

	summary := &Summary{}
	if r.Out != nil {
		r.Out.StartProgress(len(items))
		defer r.Out.EndProgress()
	}
	for i, item := range items {
		if r.Out != nil {
			r.Out.UpdateProgress(i+1, "")
		}
		summary.Add(r.batchOne(item, note))
	}

	r.logger.Info().
		Int("renamed", summary.Renamed).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Msg("Batch rename finished")
	return summary
}

func (r *Renamer) batchOne(item batchItem, note *document.Note) Result {
	if !item.found {
		r.logger.Warn().Str("target", item.target).Msg("Link target not found")
		return r.skip(item.target, note, SkippedMissing)
	}
	if !batchImageExt.MatchString(extension(item.path)) {
		return r.skip(item.path, note, SkippedUnsupported)
	}

	name := r.GenerateName(item.path, note)
	if !name.IsMeaningful {
		return r.skip(item.path, note, SkippedNotMeaningful)
	}
	return r.RenameTo(item.path, note, name.Stem)
}
