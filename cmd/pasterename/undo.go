package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pasterename/internal/journal"
	"pasterename/internal/logging"
)

func (a *app) undoCommand() *cobra.Command {
	var runID string

	cmd := &cobra.Command{
		Use:   "undo",
		Short: "Reverse the renames of a past run",
		Long: `Move the attachments renamed by a run back to their original paths and
restore the links to them, newest rename first.

A file is left alone when its content changed since the rename or when
something else now occupies its original path. The run defaults to the
latest one.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reader := journal.NewReader(a.settings.JournalDir)
			target, err := a.undoTarget(reader, runID)
			if err != nil {
				return err
			}
			if target.RunType == journal.RunTypeUndo {
				return fmt.Errorf("run %s is itself an undo; undo the original run instead", target.RunID)
			}
			events, err := reader.Events(journal.EventFilter{RunID: target.RunID})
			if err != nil {
				return err
			}

			if a.opts.dryRun {
				a.out.Info("=== DRY RUN - no changes will be made ===\n")
			}

			r := a.newRenamer()
			r.Confirmer = nil
			jw, err := a.startRun(r, journal.RunTypeUndo, map[string]string{"targetRun": string(target.RunID)})
			if err != nil {
				return err
			}

			done := logging.LogOperationStart(a.logger, "undo")
			summary := r.Undo(events)
			done()
			for _, res := range summary.Results {
				a.printResult(res)
			}
			a.out.Info("\nUndid run %s: %d restored, %d failed", target.RunID, summary.Renamed, summary.Failed)
			a.printDryRunHint()

			if summary.HasErrors() {
				a.endRun(jw, journal.RunStatusFailed, summary.RunSummary())
				return fmt.Errorf("%d of %d renames could not be undone", summary.Failed, summary.Total)
			}
			a.endRun(jw, journal.RunStatusCompleted, summary.RunSummary())
			return nil
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Run to undo (default: latest)")
	return cmd
}

func (a *app) undoTarget(reader *journal.Reader, runID string) (*journal.RunInfo, error) {
	if runID == "" {
		run, err := reader.LatestRun()
		if err != nil {
			return nil, fmt.Errorf("nothing to undo: %w", err)
		}
		return run, nil
	}
	runs, err := reader.ListRuns()
	if err != nil {
		return nil, err
	}
	for i := range runs {
		if string(runs[i].RunID) == runID {
			return &runs[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", journal.ErrRunNotFound, runID)
}
