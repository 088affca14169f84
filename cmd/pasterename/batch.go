package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pasterename/internal/journal"
	"pasterename/internal/logging"
)

func (a *app) batchCommand() *cobra.Command {
	var notePath string

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Rename every image embedded in a note",
		Long: `Rename all jpg, png, gif, tiff and webp images embedded in a note using
the name pattern, and update the note's links.

Images whose generated name is not meaningful are skipped. A failed image
does not stop the others. The note defaults to the most recently modified
one.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			note, err := a.activeNote(notePath)
			if err != nil {
				return err
			}

			if a.opts.dryRun {
				a.out.Info("=== DRY RUN - no changes will be made ===\n")
			}

			r := a.newRenamer()
			// Batch never asks for names.
			r.Confirmer = nil
			jw, err := a.startRun(r, journal.RunTypeBatch, map[string]string{"note": note.Path})
			if err != nil {
				return err
			}

			done := logging.LogOperationStart(a.logger, "batch")
			summary := r.Batch(note)
			done()
			for _, res := range summary.Results {
				a.printResult(res)
			}
			a.out.Info("\n%s", summary)
			a.printDryRunHint()

			if summary.HasErrors() {
				a.endRun(jw, journal.RunStatusFailed, summary.RunSummary())
				return fmt.Errorf("%d of %d attachments failed", summary.Failed, summary.Total)
			}
			a.endRun(jw, journal.RunStatusCompleted, summary.RunSummary())
			return nil
		},
	}

	cmd.Flags().StringVar(&notePath, "note", "", "Note whose images to rename")
	return cmd
}

