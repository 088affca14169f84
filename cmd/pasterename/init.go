package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"pasterename/internal/config"
)

func (a *app) initCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a settings file with the defaults",
		Long: `Write the default settings as JSON to --config, or to the default
settings path. An existing file is kept unless --force is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := a.opts.configPath
			if p == "" {
				p = config.DefaultPath()
			}
			if _, err := os.Stat(p); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", p)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}

			defaults := config.Defaults()
			if err := config.Save(&defaults, p); err != nil {
				return err
			}
			a.out.Info("Wrote %s", p)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing settings file")
	return cmd
}
