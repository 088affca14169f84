package renamer

import (
	"path/filepath"
	"sort"
	"strings"

	"pasterename/internal/dedup"
	"pasterename/internal/document"
	"pasterename/internal/journal"
)

// Undo moves the files renamed in events back to their original paths,
// newest first, and restores the links of the notes they were renamed
// for. A file is restored only while it matches the identity recorded at
// rename time and its original path is free. Events other than RENAME are
// ignored.
func (r *Renamer) Undo(events []journal.Event) *Summary {
	var renames []journal.Event
	for _, e := range events {
		if e.EventType == journal.EventRename {
			renames = append(renames, e)
		}
	}
	sort.SliceStable(renames, func(i, j int) bool {
		return renames[i].Timestamp.After(renames[j].Timestamp)
	})

	r.logger.Info().Int("renames", len(renames)).Msg("Starting undo")
	summary := &Summary{}
	for _, e := range renames {
		summary.Add(r.undoOne(e))
	}
	return summary
}

func (r *Renamer) undoOne(e journal.Event) Result {
	// Physical renames record the absolute destination.
	physical := filepath.IsAbs(e.DestinationPath)
	current := e.DestinationPath
	if !physical {
		current = r.Vault.OSPath(e.DestinationPath)
	}
	original := cleanPath(e.SourcePath)

	if e.FileIdentity != nil {
		match, err := journal.VerifyIdentity(current, *e.FileIdentity)
		if err != nil {
			return r.fail(e.DestinationPath, nil, err, "undo")
		}
		switch match {
		case journal.IdentityNotFound:
			return r.fail(e.DestinationPath, nil, &MoveError{Type: SourceNotFound, Path: current}, "undo")
		case journal.IdentityHashMismatch, journal.IdentitySizeMismatch:
			return r.fail(e.DestinationPath, nil, &MoveError{Type: ContentChanged, Path: current}, "undo")
		}
	}

	var note *document.Note
	if e.NotePath != "" {
		n, err := r.Vault.Load(e.NotePath)
		if err != nil {
			r.logger.Warn().Err(err).Str("note", e.NotePath).Msg("Cannot load note, links left unchanged")
		} else {
			note = n
		}
	}
	var links []pendingLink
	if !physical {
		links = r.linksTo(e.DestinationPath, note)
	}

	ext := extension(original)
	res := Result{
		Source:      e.DestinationPath,
		Outcome:     Renamed,
		Target:      dedup.NameObj{Name: original, Stem: strings.TrimSuffix(original, "."+ext), Extension: ext},
		Destination: original,
		DryRun:      r.DryRun,
	}
	if r.DryRun {
		res.LinksUpdated = len(links)
		r.notice(res)
		return res
	}

	if err := moveFile(current, r.Vault.OSPath(original)); err != nil {
		return r.fail(e.DestinationPath, note, err, "undo")
	}
	r.logger.Info().Str("from", e.DestinationPath).Str("to", original).Msg("Restored attachment")

	if note != nil {
		res.LinksUpdated, res.Err = r.restoreLinks(note, links, e.DestinationPath, original, physical)
		if res.Err != nil {
			r.logger.Error().Err(res.Err).Str("note", note.Path).Msg("Failed to restore links")
		}
	}

	r.record(e.DestinationPath, original, r.Vault.OSPath(original), e.NotePath)
	r.notice(res)
	return res
}

// restoreLinks points the note's links to renamed back at original. Vault
// links keep their style; physical markup becomes a wiki embed.
func (r *Renamer) restoreLinks(note *document.Note, links []pendingLink, renamed, original string, physical bool) (int, error) {
	if physical {
		rel, err := filepath.Rel(r.Settings.RootDirPhysical, renamed)
		if !r.Settings.Physical() || err != nil || strings.HasPrefix(rel, "..") {
			r.logger.Warn().Str("path", renamed).Msg("File is outside the physical root, links left unchanged")
			return 0, nil
		}
		text, ok := r.PhysicalLink(filepath.ToSlash(rel))
		if !ok {
			return 0, nil
		}
		return r.Vault.ReplaceLink(note, text, "![["+original+"]]")
	}

	total := 0
	for _, l := range links {
		n, err := r.Vault.ReplaceLink(note, l.embed.Raw, l.embed.WithTarget(r.Vault.LinkTarget(original, note.Path, l.how)))
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}
