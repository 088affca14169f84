package main

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"pasterename/internal/journal"
	"pasterename/internal/renamer"
	"pasterename/internal/watcher"
)

func (a *app) watchCommand() *cobra.Command {
	var notePath string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Rename new attachments as they appear in the vault",
		Long: `Watch the vault and rename attachments as soon as they are added.

Files named "Pasted image ..." are always handled; with handleAllAttachments
every new non-Markdown file is, minus extensions matching
excludeExtensionPattern. Each attachment is named after the note given with
--note, or else the most recently modified note at the time it appears.

Only files modified in the last second count as new. A file moved into the
vault with mv keeps its old modification time and is ignored; rename it with
"rename" or "batch" instead.

Press Ctrl+C to stop.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.watch(ctx, notePath)
		},
	}

	cmd.Flags().StringVar(&notePath, "note", "", "Note to name attachments after")
	return cmd
}

func (a *app) watch(ctx context.Context, notePath string) error {
	exclude, err := a.settings.ExcludeRegexp()
	if err != nil {
		return err
	}

	r := a.newRenamer()
	jw, err := a.startRun(r, journal.RunTypeWatch, map[string]string{"vault": a.vault.Root})
	if err != nil {
		return err
	}

	cfg := watcher.DefaultWatchConfig()
	cfg.Debounce = a.settings.Debounce()
	if len(a.settings.IgnorePatterns) > 0 {
		cfg.IgnorePatterns = a.settings.IgnorePatterns
	}
	cfg.Attachments = watcher.AttachmentPolicy{
		HandleAll: a.settings.HandleAllAttachments,
		Exclude:   exclude,
	}

	summary := &renamer.Summary{}
	var w *watcher.Watcher
	w = watcher.New(cfg, func(osPath string) (bool, error) {
		rel, err := filepath.Rel(a.vault.Root, osPath)
		if err != nil {
			return false, err
		}
		note, err := a.noteOrNone(notePath)
		if err != nil {
			return false, err
		}

		res := r.Rename(rel, note)
		summary.Add(res)
		a.printResult(res)
		if res.Outcome == renamer.Failed {
			return false, res.Err
		}
		if res.Outcome == renamer.Renamed && !a.settings.Physical() && !res.DryRun {
			w.Suppress(a.vault.OSPath(res.Destination))
		}
		return res.Outcome == renamer.Renamed, nil
	})

	if err := w.Start([]string{a.vault.Root}); err != nil {
		a.endRun(jw, journal.RunStatusFailed, summary.RunSummary())
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	a.out.Info("Watching %s (Ctrl+C to stop)", a.vault.Root)

	<-ctx.Done()
	ws := w.Stop()
	a.out.Info("\nStopped after %s: %d renamed, %d skipped, %d failed",
		ws.Duration.Round(time.Second), ws.FilesRenamed, ws.FilesSkipped, ws.FilesFailed)
	a.endRun(jw, journal.RunStatusInterrupted, summary.RunSummary())
	return nil
}
