package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pasterename/internal/journal"
	"pasterename/internal/naming"
	"pasterename/internal/renamer"
)

func (a *app) renameCommand() *cobra.Command {
	var (
		notePath string
		newName  string
	)

	cmd := &cobra.Command{
		Use:   "rename <attachment>",
		Short: "Rename one attachment",
		Long: `Rename an attachment after the note it is embedded in and update the
note's links to it.

A meaningful generated name is used directly when autoRename is on. Otherwise
you are asked to confirm or edit the name when running in a terminal; without
a terminal the attachment is left alone. --name skips generation entirely.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			note, err := a.noteOrNone(notePath)
			if err != nil {
				return err
			}

			r := a.newRenamer()
			jw, err := a.startRun(r, journal.RunTypeRename, map[string]string{"note": notePathOf(note)})
			if err != nil {
				return err
			}

			attachment := a.vaultPath(args[0])
			var res renamer.Result
			if cmd.Flags().Changed("name") {
				stem := naming.Filename(newName)
				if a.settings.Physical() {
					stem = naming.FSFilename(newName)
				}
				if stem == "" {
					a.endRun(jw, journal.RunStatusFailed, journal.RunSummary{})
					return fmt.Errorf("--name %q is empty after removing unsafe characters", newName)
				}
				res = r.RenameTo(attachment, note, stem)
			} else {
				res = r.Rename(attachment, note)
			}

			summary := &renamer.Summary{}
			summary.Add(res)
			a.printResult(res)
			a.printDryRunHint()

			if res.Outcome == renamer.Failed {
				a.endRun(jw, journal.RunStatusFailed, summary.RunSummary())
				return fmt.Errorf("rename of %s failed", res.Source)
			}
			a.endRun(jw, journal.RunStatusCompleted, summary.RunSummary())
			return nil
		},
	}

	cmd.Flags().StringVar(&notePath, "note", "", "Note the attachment is embedded in")
	cmd.Flags().StringVar(&newName, "name", "", "Rename to this name instead of the generated one")
	return cmd
}
