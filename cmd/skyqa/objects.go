package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newObjectsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "objects",
		Short: "List the known sky objects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(cmd.Context(), opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.close()

			names, err := a.names.ListNames(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list objects: %w", err)
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
