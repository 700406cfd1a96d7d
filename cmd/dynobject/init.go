package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/dynobject/internal/paths"
	"github.com/mesh-intelligence/dynobject/internal/sqlite"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the configuration and data directories",
		Long:  "Write a default config.yaml if missing and create the run journal in the data directory.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			written, err := writeConfigIfMissing(a.configDir, a.flags.dataDir)
			if err != nil {
				return sysError("write config: %w", err)
			}

			j, err := sqlite.Open(a.dataDir)
			if err != nil {
				return sysError("initialize journal: %w", err)
			}
			if err := j.Close(); err != nil {
				return sysError("finalize journal: %w", err)
			}

			a.log.Debug().Str("config_dir", a.configDir).Str("data_dir", a.dataDir).Bool("config_written", written).Msg("initialized")

			out := cmd.OutOrStdout()
			if written {
				fmt.Fprintf(out, "Wrote %s\n", paths.ConfigFile(a.configDir))
			}
			fmt.Fprintf(out, "Journal at %s\n", j.Path())
			return nil
		},
	}
}
