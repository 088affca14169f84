package main

import (
	"github.com/spf13/cobra"

	"pasterename/internal/renamer"
)

func (a *app) previewCommand() *cobra.Command {
	var notePath string

	cmd := &cobra.Command{
		Use:   "preview <attachment>",
		Short: "Show the name an attachment would get",
		Long: `Render the name pattern for an attachment and resolve duplicates,
without renaming anything.

The attachment path is relative to the vault. The note defaults to the most
recently modified one.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			note, err := a.noteOrNone(notePath)
			if err != nil {
				return err
			}

			r := renamer.New(a.vault, *a.settings)
			r.DryRun = true
			attachment := a.vaultPath(args[0])
			name := r.GenerateName(attachment, note)

			a.out.Info("Stem:       %s", name.Stem)
			a.out.Info("Meaningful: %t", name.IsMeaningful)
			if name.Stem == "" {
				return nil
			}

			res := r.RenameTo(attachment, note, name.Stem)
			switch res.Outcome {
			case renamer.Failed:
				return res.Err
			case renamer.SkippedUnchanged:
				a.out.Info("Name:       %s (unchanged)", attachment)
				return nil
			}
			a.out.Info("Name:       %s", res.Target.Name)
			a.out.Info("Path:       %s", res.Destination)
			a.out.Info("Links:      %d", res.LinksUpdated)
			if a.settings.Physical() {
				if link, ok := r.PhysicalLink(res.Target.Name); ok {
					a.out.Info("Link:       %s", link)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&notePath, "note", "", "Note the attachment is embedded in")
	return cmd
}
