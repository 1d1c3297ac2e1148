package commands

import (
	"github.com/spf13/cobra"

	"github.com/noverloop/koala/pkg/graph"
)

// NewGetCommand creates the get command
func NewGetCommand() *cobra.Command {
	var (
		paramFlags []string
		fetchAll   bool
		maxPages   int
	)

	cmd := &cobra.Command{
		Use:   "get TARGET [CONNECTION]",
		Short: "Fetch an object or one of its connections",
		Long: `Fetch a graph object by id or path, or a connection of it.

With a CONNECTION argument the result is a page of items; --all follows the
paging cursors and prints every reachable item.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseParams(paramFlags)
			if err != nil {
				return err
			}

			client, err := newClient()
			if err != nil {
				return err
			}

			if len(args) == 1 {
				object, err := client.GetObject(cmd.Context(), args[0], params)
				if err != nil {
					return err
				}

				return renderResult(object)
			}

			page, err := client.GetConnection(cmd.Context(), args[0], args[1], params)
			if err != nil {
				return err
			}

			if fetchAll {
				items, err := graph.FetchAllPages(cmd.Context(), page, maxPages)
				if err != nil {
					return err
				}

				return renderResult(items)
			}

			return renderPage(page)
		},
	}

	cmd.Flags().StringArrayVarP(&paramFlags, "param", "p", nil, "call parameter as key=value (repeatable)")
	cmd.Flags().BoolVar(&fetchAll, "all", false, "follow paging cursors and fetch every page")
	cmd.Flags().IntVar(&maxPages, "max-pages", 0, "page cap for --all (0 uses the default)")

	return cmd
}
