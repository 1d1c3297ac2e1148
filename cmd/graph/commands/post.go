package commands

import (
	"github.com/spf13/cobra"
)

// NewPostCommand creates the post command
func NewPostCommand() *cobra.Command {
	var (
		paramFlags []string
		message    string
	)

	cmd := &cobra.Command{
		Use:   "post TARGET CONNECTION",
		Short: "Write to a connection of an object",
		Long: `Write to a connection of a graph object, for example a feed post:

  graph post me feed --message "Hello, world"

Arbitrary parameters can be supplied with repeated --param flags.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseParams(paramFlags)
			if err != nil {
				return err
			}

			if message != "" {
				if params == nil {
					params = map[string]interface{}{}
				}

				params["message"] = message
			}

			client, err := newAuthenticatedClient()
			if err != nil {
				return err
			}

			result, err := client.PutConnection(cmd.Context(), args[0], args[1], params)
			if err != nil {
				return err
			}

			return renderResult(result)
		},
	}

	cmd.Flags().StringArrayVarP(&paramFlags, "param", "p", nil, "call parameter as key=value (repeatable)")
	cmd.Flags().StringVarP(&message, "message", "m", "", "message parameter shorthand")

	return cmd
}
