package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewDeleteCommand creates the delete command
func NewDeleteCommand() *cobra.Command {
	var paramFlags []string

	cmd := &cobra.Command{
		Use:   "delete TARGET [CONNECTION]",
		Short: "Delete an object or one of its connections",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseParams(paramFlags)
			if err != nil {
				return err
			}

			client, err := newAuthenticatedClient()
			if err != nil {
				return err
			}

			if len(args) == 1 {
				if err := client.DeleteObject(cmd.Context(), args[0]); err != nil {
					return err
				}

				fmt.Fprintf(os.Stdout, "Deleted %s\n", args[0])

				return nil
			}

			if err := client.DeleteConnection(cmd.Context(), args[0], args[1], params); err != nil {
				return err
			}

			fmt.Fprintf(os.Stdout, "Deleted %s/%s\n", args[0], args[1])

			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&paramFlags, "param", "p", nil, "call parameter as key=value (repeatable)")

	return cmd
}
