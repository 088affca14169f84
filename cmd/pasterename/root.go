package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"pasterename/internal/config"
	"pasterename/internal/document"
	"pasterename/internal/journal"
	"pasterename/internal/logging"
	"pasterename/internal/output"
	"pasterename/internal/prompt"
	"pasterename/internal/renamer"
)

type options struct {
	configPath string
	vaultDir   string
	verbosity  int
	dryRun     bool
}

// app holds what every command needs once flags are parsed.
type app struct {
	opts        options
	stdin       io.Reader
	interactive func() bool

	settings *config.Settings
	vault    document.Vault
	out      *output.Output
	logger   zerolog.Logger
}

func newApp(stdin io.Reader) *app {
	return &app{
		stdin:       stdin,
		interactive: prompt.IsInteractive,
	}
}

func (a *app) rootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pasterename",
		Short: "Rename pasted attachments after the note they are embedded in",
		Long: `pasterename gives pasted images and other attachments meaningful names.

Names come from a pattern such as "{{fileName}}-{{DATE:YYYYMMDD}}" rendered
against the note the attachment is embedded in. Taken names get a duplicate
number ("My Note-1.png"), and the note's links are updated to match.

Commands:
  preview   Show the name an attachment would get
  rename    Rename one attachment
  batch     Rename every image embedded in a note
  watch     Rename new attachments as they appear in the vault
  history   Show past renames
  undo      Reverse the renames of a past run
  init      Write a settings file with the defaults

Examples:
  # Preview the name for a pasted image
  pasterename --vault ~/notes preview "Pasted image 20240101.png"

  # Rename all images of the most recently edited note
  pasterename --vault ~/notes batch --dry-run
  pasterename --vault ~/notes batch

  # Keep renaming while you write
  pasterename --vault ~/notes watch`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&a.opts.configPath, "config", "", "Settings file (default "+config.DefaultPath()+")")
	cmd.PersistentFlags().StringVar(&a.opts.vaultDir, "vault", ".", "Vault directory")
	cmd.PersistentFlags().CountVarP(&a.opts.verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	cmd.PersistentFlags().BoolVar(&a.opts.dryRun, "dry-run", false, "Show what would be done without making changes")

	cmd.AddCommand(
		a.previewCommand(),
		a.renameCommand(),
		a.batchCommand(),
		a.watchCommand(),
		a.historyCommand(),
		a.undoCommand(),
		a.initCommand(),
	)
	return cmd
}

// setup configures logging and output, then loads settings and the vault
// for commands that work on one.
func (a *app) setup(cmd *cobra.Command) error {
	logging.Setup(a.opts.verbosity, cmd.ErrOrStderr())
	a.logger = logging.GetLogger("cli")
	a.logger.Debug().Str("command", cmd.Name()).Msg("Command started")

	a.out = output.New(output.Config{
		Verbose:   a.opts.verbosity > 0,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		IsTTY:     isTerminal(cmd.OutOrStdout()),
	})

	if cmd.Name() == "init" {
		return nil
	}

	var err error
	if a.opts.configPath == "" {
		a.settings, err = config.LoadOrDefault(config.DefaultPath())
	} else {
		a.settings, err = config.Load(a.opts.configPath)
	}
	if err != nil {
		return err
	}
	for _, w := range a.settings.Warnings() {
		a.logger.Warn().Str("field", w.Field).Msg(w.Message)
	}

	root, err := validateAndResolvePath(a.opts.vaultDir)
	if err != nil {
		return err
	}
	a.vault = document.Vault{Root: root}
	return nil
}

func validateAndResolvePath(dir string) (string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("cannot access vault: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", dir)
	}
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("cannot resolve path: %w", err)
	}
	return absPath, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// activeNote loads the note named by notePath, or the most recently
// modified note when notePath is empty.
func (a *app) activeNote(notePath string) (*document.Note, error) {
	if notePath == "" {
		latest, err := a.vault.LatestNote()
		if err != nil {
			return nil, err
		}
		a.logger.Info().Str("note", latest).Msg("Using most recently modified note")
		notePath = latest
	}
	return a.vault.Load(a.vaultPath(notePath))
}

// vaultPath converts a path given on the command line to a vault-relative
// one. Paths outside the vault are returned unchanged and fail later.
func (a *app) vaultPath(p string) string {
	if filepath.IsAbs(p) {
		if rel, err := filepath.Rel(a.vault.Root, p); err == nil {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(p)
}

// newRenamer builds a Renamer with the prompt attached when stdin is a
// terminal.
func (a *app) newRenamer() *renamer.Renamer {
	r := renamer.New(a.vault, *a.settings)
	r.Out = a.out
	r.DryRun = a.opts.dryRun
	if a.interactive() {
		r.Confirmer = prompt.NewPrompter(a.stdin, a.out.Writer())
	}
	return r
}

// startRun opens the journal and starts a run. Dry runs are not
// journaled; the returned writer is nil then.
func (a *app) startRun(r *renamer.Renamer, runType journal.RunType, metadata map[string]string) (*journal.Writer, error) {
	if a.opts.dryRun {
		return nil, nil
	}
	w, err := journal.NewWriter(a.settings.JournalDir)
	if err != nil {
		return nil, err
	}
	if _, err := w.StartRun(runType, metadata); err != nil {
		w.Close()
		return nil, err
	}
	r.Journal = w
	return w, nil
}

func (a *app) endRun(w *journal.Writer, status journal.RunStatus, summary journal.RunSummary) {
	if w == nil {
		return
	}
	if err := w.EndRun(status, summary); err != nil {
		a.logger.Warn().Err(err).Msg("Failed to end journal run")
	}
	if err := w.Close(); err != nil {
		a.logger.Warn().Err(err).Msg("Failed to close journal")
	}
}

// printResult reports results the renamer does not announce itself.
func (a *app) printResult(res renamer.Result) {
	switch {
	case res.Outcome == renamer.Failed:
		a.out.Status(output.StatusFailed, "%s: %v", res.Source, res.Err)
	case res.Outcome.Skipped():
		a.out.Status(output.StatusSkipped, "%s (%s)", res.Source, skipReason(res.Outcome))
	case res.Err != nil:
		a.out.Error("Renamed %s but could not update links: %v", res.Source, res.Err)
	}
}

func skipReason(o renamer.Outcome) string {
	switch o {
	case renamer.SkippedNotMeaningful:
		return "generated name is not meaningful"
	case renamer.SkippedUnsupported:
		return "not an image"
	case renamer.SkippedMissing:
		return "link target not found"
	case renamer.SkippedUnchanged:
		return "already named"
	default:
		return "declined"
	}
}

func (a *app) printDryRunHint() {
	if a.opts.dryRun {
		a.out.Info("\nRun without --dry-run to apply changes.")
	}
}

// noteOrNone is activeNote for commands that can work without a note: an
// empty vault yields a nil note.
func (a *app) noteOrNone(notePath string) (*document.Note, error) {
	note, err := a.activeNote(notePath)
	var noteErr *document.NoteError
	if notePath == "" && errors.As(err, &noteErr) && noteErr.Type == document.NoNotes {
		a.logger.Warn().Msg("Vault has no notes, note variables are empty")
		return nil, nil
	}
	return note, err
}

func notePathOf(note *document.Note) string {
	if note == nil {
		return ""
	}
	return note.Path
}
