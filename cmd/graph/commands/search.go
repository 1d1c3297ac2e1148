package commands

import (
	"github.com/spf13/cobra"

	"github.com/noverloop/koala/pkg/graph"
)

// NewSearchCommand creates the search command
func NewSearchCommand() *cobra.Command {
	var (
		objectType string
		paramFlags []string
		fetchAll   bool
		maxPages   int
	)

	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Search the graph",
		Long: `Search the graph for objects matching a query, optionally filtered by
object type:

  graph search coffee --type place --param center=37.76,-122.42`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == "" {
				return ErrEmptyQuery
			}

			params, err := parseParams(paramFlags)
			if err != nil {
				return err
			}

			client, err := newAuthenticatedClient()
			if err != nil {
				return err
			}

			page, err := client.Search(cmd.Context(), args[0], objectType, params)
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

	cmd.Flags().StringVar(&objectType, "type", "", "result object type (e.g. page, place)")
	cmd.Flags().StringArrayVarP(&paramFlags, "param", "p", nil, "call parameter as key=value (repeatable)")
	cmd.Flags().BoolVar(&fetchAll, "all", false, "follow paging cursors and fetch every page")
	cmd.Flags().IntVar(&maxPages, "max-pages", 0, "page cap for --all (0 uses the default)")

	return cmd
}
