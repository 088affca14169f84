// Package renamer renames attachments after the note they are embedded in
// and keeps the note's links pointing at them.
package renamer

import (
	"fmt"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"pasterename/internal/config"
	"pasterename/internal/dedup"
	"pasterename/internal/document"
	"pasterename/internal/journal"
	"pasterename/internal/logging"
	"pasterename/internal/naming"
	"pasterename/internal/output"
	"pasterename/internal/prompt"
)

// Outcome is what happened to one attachment.
type Outcome string

const (
	Renamed              Outcome = "RENAMED"
	SkippedNotMeaningful Outcome = "SKIPPED_NOT_MEANINGFUL"
	SkippedUnsupported   Outcome = "SKIPPED_UNSUPPORTED"
	SkippedMissing       Outcome = "SKIPPED_MISSING"
	SkippedDeclined      Outcome = "SKIPPED_DECLINED"
	SkippedUnchanged     Outcome = "SKIPPED_UNCHANGED"
	Failed               Outcome = "FAILED"
)

// Skipped reports whether the attachment was left alone on purpose.
func (o Outcome) Skipped() bool {
	return o != Renamed && o != Failed
}

func (o Outcome) reason() journal.ReasonCode {
	switch o {
	case SkippedNotMeaningful:
		return journal.ReasonNotMeaningful
	case SkippedUnsupported:
		return journal.ReasonUnsupportedType
	case SkippedMissing:
		return journal.ReasonLinkTargetMissing
	case SkippedUnchanged:
		return journal.ReasonUnchanged
	default:
		return journal.ReasonDeclined
	}
}

var (
	imageExts = []string{"jpg", "jpeg", "png", "gif", "bmp", "svg"}
	videoExts = []string{"mpg", "avi", "mov", "mkv", "mp4"}
)

// Result describes the handling of one attachment.
type Result struct {
	Source  string // vault-relative path before the rename
	Outcome Outcome

	// Target is the resolved name relative to the vault, or to the
	// physical root when attachments are moved out of the vault.
	Target dedup.NameObj
	// Destination is Target.Name in vault mode and the absolute path
	// under the physical root otherwise.
	Destination  string
	LinksUpdated int
	DryRun       bool

	// Err is set for Failed results, and for renames whose link rewrite
	// failed after the file was moved.
	Err error
}

// Confirmer asks for the stem to rename an attachment to.
type Confirmer interface {
	ConfirmName(req prompt.Request) (stem string, ok bool, err error)
}

// Recorder receives every rename, skip and failure.
type Recorder interface {
	RecordRename(source, dest, notePath string, id *journal.FileIdentity) error
	RecordSkip(source string, reason journal.ReasonCode, notePath string) error
	RecordError(source, errType, errMsg, operation string) error
}

type storage interface {
	dedup.Storage
	OSPath(p string) string
}

// Renamer renames attachments of a vault. Build one with New.
type Renamer struct {
	Vault     document.Vault
	Settings  config.Settings
	Generator naming.Generator

	// Confirmer is consulted when a name needs confirmation. Without one
	// such attachments are skipped.
	Confirmer Confirmer
	// Journal, when set, receives every outcome except in dry runs.
	Journal Recorder
	// Out, when set, receives rename notices.
	Out *output.Output
	// DryRun resolves names without touching any file.
	DryRun bool

	storage  storage
	resolver *dedup.Resolver
	logger   zerolog.Logger
}

// New creates a Renamer for the vault with the given settings.
func New(vault document.Vault, settings config.Settings) *Renamer {
	var s storage = dedup.VaultStorage{Root: vault.Root}
	if settings.Physical() {
		s = dedup.NewPhysicalStorage(settings.RootDirPhysical)
	}
	return &Renamer{
		Vault:    vault,
		Settings: settings,
		Generator: naming.Generator{
			Pattern:   settings.ImageNamePattern,
			Delimiter: settings.DupNumberDelimiter,
		},
		storage:  s,
		resolver: dedup.NewResolver(s, settings.Policy()),
		logger:   logging.GetLogger("renamer"),
	}
}

// GenerateName renders the name pattern for attachment as embedded in
// note. note may be nil, leaving every note variable empty.
func (r *Renamer) GenerateName(attachment string, note *document.Note) naming.RenderedName {
	if note == nil {
		return r.Generator.Generate(nil, nil, extension(attachment))
	}
	return r.Generator.Generate(note.Variables(), note.Frontmatter, extension(attachment))
}

// Rename renames a newly added attachment. A meaningful name is used
// directly when AutoRename is on; otherwise the Confirmer decides, seeing
// the proposed stem only when it is meaningful.
func (r *Renamer) Rename(attachment string, note *document.Note) Result {
	attachment = cleanPath(attachment)
	name := r.GenerateName(attachment, note)
	r.logger.Debug().
		Str("attachment", attachment).
		Str("stem", name.Stem).
		Bool("meaningful", name.IsMeaningful).
		Msg("Generated name")

	if name.IsMeaningful && r.Settings.AutoRename {
		return r.RenameTo(attachment, note, name.Stem)
	}

	if r.Confirmer == nil {
		if !name.IsMeaningful {
			return r.skip(attachment, note, SkippedNotMeaningful)
		}
		return r.skip(attachment, note, SkippedDeclined)
	}

	proposed := ""
	if name.IsMeaningful {
		proposed = name.Stem
	}
	stem, ok, err := r.Confirmer.ConfirmName(prompt.Request{
		Original:  attachment,
		Proposed:  proposed,
		Extension: extension(attachment),
		Physical:  r.Settings.Physical(),
	})
	if err != nil {
		return r.fail(attachment, note, err, "confirm")
	}
	if !ok {
		return r.skip(attachment, note, SkippedDeclined)
	}
	return r.RenameTo(attachment, note, stem)
}

// RenameTo renames attachment to stem plus its own extension, numbering
// the name when it is taken, and rewrites the note's embeds of it.
func (r *Renamer) RenameTo(attachment string, note *document.Note, stem string) Result {
	attachment = cleanPath(attachment)
	ext := extension(attachment)
	if ext == "" {
		return r.fail(attachment, note, &dedup.MalformedNameError{Type: dedup.MissingExtension, Name: path.Base(attachment)}, "deduplicate")
	}

	candidate := stem + "." + ext
	targetDir := ""
	if !r.Settings.Physical() {
		targetDir = parentDir(attachment)
		if path.Join(targetDir, candidate) == attachment {
			return r.skip(attachment, note, SkippedUnchanged)
		}
	}

	target, err := r.resolver.Deduplicate(candidate, targetDir)
	if err != nil {
		return r.fail(attachment, note, err, "deduplicate")
	}

	res := Result{
		Source:      attachment,
		Outcome:     Renamed,
		Target:      target,
		Destination: target.Name,
		DryRun:      r.DryRun,
	}
	dest := r.storage.OSPath(target.Name)
	if r.Settings.Physical() {
		res.Destination = dest
	}

	links := r.linksTo(attachment, note)
	if r.DryRun {
		res.LinksUpdated = len(links)
		r.notice(res)
		return res
	}

	if err := moveFile(r.Vault.OSPath(attachment), dest); err != nil {
		return r.fail(attachment, note, err, "move")
	}
	r.logger.Info().Str("from", attachment).Str("to", res.Destination).Msg("Renamed attachment")

	res.LinksUpdated, res.Err = r.rewriteLinks(note, links, target.Name)
	if res.Err != nil {
		r.logger.Error().Err(res.Err).Str("note", note.Path).Msg("Failed to update links")
	}

	r.record(attachment, res.Destination, dest, notePath(note))
	r.notice(res)
	return res
}

// record journals a completed move with the identity of the file now at
// osPath.
func (r *Renamer) record(source, dest, osPath, notePath string) {
	if r.Journal == nil {
		return
	}
	id, err := journal.CaptureIdentity(osPath)
	if err != nil {
		r.logger.Warn().Err(err).Str("path", osPath).Msg("Cannot capture file identity")
	}
	if err := r.Journal.RecordRename(source, dest, notePath, id); err != nil {
		r.logger.Warn().Err(err).Msg("Failed to journal rename")
	}
}

type pendingLink struct {
	embed document.Embed
	how   document.Resolution
}

// linksTo returns the distinct embeds in note that resolve to attachment.
func (r *Renamer) linksTo(attachment string, note *document.Note) []pendingLink {
	if note == nil {
		return nil
	}
	var links []pendingLink
	seen := make(map[string]bool)
	for _, e := range note.Embeds {
		if seen[e.Raw] {
			continue
		}
		p, how, ok := r.Vault.Resolve(e.Target, note.Path)
		if !ok || p != attachment {
			continue
		}
		seen[e.Raw] = true
		links = append(links, pendingLink{embed: e, how: how})
	}
	return links
}

func (r *Renamer) rewriteLinks(note *document.Note, links []pendingLink, name string) (int, error) {
	total := 0
	for _, l := range links {
		var newText string
		if r.Settings.Physical() {
			text, ok := r.PhysicalLink(name)
			if !ok {
				r.logger.Warn().Str("name", name).Msg("Unhandled attachment type, link left unchanged")
				continue
			}
			newText = text
		} else {
			newText = l.embed.WithTarget(r.Vault.LinkTarget(name, note.Path, l.how))
		}

		n, err := r.Vault.ReplaceLink(note, l.embed.Raw, newText)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// PhysicalLink returns the markup embedding name from the physical root,
// or false for types that have no markup.
func (r *Renamer) PhysicalLink(name string) (string, bool) {
	ext := strings.ToLower(extension(name))
	view := naming.Link(joinView(r.Settings.RootDirView, name))
	switch {
	case slices.Contains(imageExts, ext):
		return fmt.Sprintf("![%s](%s)", path.Base(name), view), true
	case slices.Contains(videoExts, ext):
		return fmt.Sprintf(`<video controls src="%s" />`, view), true
	default:
		return "", false
	}
}

func (r *Renamer) skip(attachment string, note *document.Note, outcome Outcome) Result {
	r.logger.Info().Str("attachment", attachment).Str("outcome", string(outcome)).Msg("Skipped attachment")
	if r.Journal != nil && !r.DryRun {
		if err := r.Journal.RecordSkip(attachment, outcome.reason(), notePath(note)); err != nil {
			r.logger.Warn().Err(err).Msg("Failed to journal skip")
		}
	}
	return Result{Source: attachment, Outcome: outcome, DryRun: r.DryRun}
}

func (r *Renamer) fail(attachment string, note *document.Note, err error, operation string) Result {
	r.logger.Error().Err(err).Str("attachment", attachment).Str("operation", operation).Msg("Rename failed")
	if r.Journal != nil && !r.DryRun {
		if jerr := r.Journal.RecordError(attachment, errorType(err), err.Error(), operation); jerr != nil {
			r.logger.Warn().Err(jerr).Msg("Failed to journal error")
		}
	}
	return Result{Source: attachment, Outcome: Failed, Err: err, DryRun: r.DryRun}
}

func (r *Renamer) notice(res Result) {
	if r.Out == nil || r.Settings.DisableRenameNotice {
		return
	}
	status := output.StatusRenamed
	if res.DryRun {
		status = output.StatusDryRun
	}
	r.Out.Status(status, "%s -> %s", res.Source, res.Destination)
}

func notePath(note *document.Note) string {
	if note == nil {
		return ""
	}
	return note.Path
}

// cleanPath normalizes a vault-relative path to forward slashes.
func cleanPath(p string) string {
	return strings.TrimPrefix(path.Clean(filepath.ToSlash(p)), "/")
}

func parentDir(p string) string {
	dir := path.Dir(p)
	if dir == "." {
		return ""
	}
	return dir
}

// extension returns the text after the last '.' of p's base name.
func extension(p string) string {
	base := path.Base(p)
	if i := strings.LastIndexByte(base, '.'); i >= 0 {
		return base[i+1:]
	}
	return ""
}

func joinView(view, name string) string {
	if view == "" {
		return name
	}
	return strings.TrimSuffix(view, "/") + "/" + name
}
