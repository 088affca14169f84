package main

import (
	"time"

	"github.com/spf13/cobra"

	"pasterename/internal/journal"
)

func (a *app) historyCommand() *cobra.Command {
	var runID string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past renames",
		Long: `List past runs from the journal, or with --run show every rename, skip
and failure of one run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reader := journal.NewReader(a.settings.JournalDir)
			if runID == "" {
				return a.listRuns(reader)
			}
			return a.showRun(reader, journal.RunID(runID))
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Show the events of this run")
	return cmd
}

func (a *app) listRuns(reader *journal.Reader) error {
	runs, err := reader.ListRuns()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		a.out.Info("No runs recorded in %s", reader.LogPath())
		return nil
	}
	for _, run := range runs {
		a.out.Info("%s  %s  %-6s  %-11s  %d renamed, %d skipped, %d failed",
			run.RunID,
			run.StartTime.Local().Format(time.DateTime),
			run.RunType,
			run.Status,
			run.Summary.Renamed, run.Summary.Skipped, run.Summary.Failed)
	}
	return nil
}

func (a *app) showRun(reader *journal.Reader, runID journal.RunID) error {
	events, err := reader.Events(journal.EventFilter{
		RunID:      runID,
		EventTypes: []journal.EventType{journal.EventRename, journal.EventSkip, journal.EventError},
	})
	if err != nil {
		return err
	}
	for _, e := range events {
		switch e.EventType {
		case journal.EventRename:
			a.out.Info("RENAMED  %s -> %s", e.SourcePath, e.DestinationPath)
		case journal.EventSkip:
			a.out.Info("SKIPPED  %s (%s)", e.SourcePath, e.ReasonCode)
		case journal.EventError:
			a.out.Info("FAILED   %s: %s", e.SourcePath, e.ErrorDetails.ErrorMessage)
		}
	}
	return nil
}
