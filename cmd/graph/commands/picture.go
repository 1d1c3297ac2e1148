package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/noverloop/koala/pkg/graph"
)

// NewPictureCommand creates the picture command
func NewPictureCommand() *cobra.Command {
	var pictureType string

	cmd := &cobra.Command{
		Use:   "picture TARGET",
		Short: "Resolve the picture URL of an object",
		Long: `Resolve the picture connection of an object to its CDN location. The
service answers with a redirect; the command prints the redirect target.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}

			var params graph.Params
			if pictureType != "" {
				params = graph.Params{"type": pictureType}
			}

			location, err := client.GetPicture(cmd.Context(), args[0], params)
			if err != nil {
				return err
			}

			fmt.Fprintln(os.Stdout, location)

			return nil
		},
	}

	cmd.Flags().StringVar(&pictureType, "type", "", "picture size (square, small, normal, large)")

	return cmd
}
