package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/dynobject/pkg/dynobject"
)

const modulePath = "github.com/mesh-intelligence/dynobject"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the dynobject version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "dynobject v%s\nmodule: %s\n", dynobject.Version, modulePath)
			return nil
		},
	}
}
