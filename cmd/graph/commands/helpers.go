// Package commands implements the graph CLI commands.
package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/noverloop/koala/internal/constants"
	"github.com/noverloop/koala/pkg/graph"
	"github.com/noverloop/koala/pkg/graphclient"
	"github.com/noverloop/koala/pkg/logging"
)

// Common static errors used throughout the commands package.
var (
	ErrAccessTokenRequired = errors.New("access token is required (use --token, GRAPH_TOKEN, or login)")
	ErrInvalidParamFormat  = errors.New("invalid parameter format, expected key=value")
	ErrInvalidBatchFile    = errors.New("invalid batch file")
	ErrEmptyQuery          = errors.New("search query is required")
)

// newClient builds a graph client from the resolved CLI configuration.
func newClient() (*graph.Client, error) {
	config := &graph.Config{
		APIEndpoint: viper.GetString("api"),
		AccessToken: viper.GetString("token"),
		AppSecret:   viper.GetString("app_secret"),
		APIVersion:  viper.GetString("api_version"),
		Debug:       viper.GetBool("debug"),
	}

	if config.Debug {
		logging.Setup(logging.Config{
			Level:  logging.LevelDebug,
			Pretty: true,
			Output: os.Stderr,
		})

		config.Logger = logging.NewComponentAdapter("cli")
	}

	client, err := graphclient.New(config)
	if err != nil {
		return nil, fmt.Errorf("creating client: %w", err)
	}

	return client, nil
}

// newAuthenticatedClient is newClient plus a credential check, for commands
// that always need a token.
func newAuthenticatedClient() (*graph.Client, error) {
	client, err := newClient()
	if err != nil {
		return nil, err
	}

	if client.AccessToken() == "" {
		return nil, ErrAccessTokenRequired
	}

	return client, nil
}

// parseParams turns repeated key=value flags into call arguments.
func parseParams(pairs []string) (graph.Params, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	params := graph.Params{}

	for _, pair := range pairs {
		parts := strings.SplitN(pair, "=", constants.KeyValueSplitParts)
		if len(parts) != constants.KeyValueSplitParts || parts[0] == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidParamFormat, pair)
		}

		params[parts[0]] = parts[1]
	}

	return params, nil
}

// renderResult prints a decoded object in the configured output format.
func renderResult(result interface{}) error {
	switch viper.GetString("output") {
	case constants.FormatJSON:
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		if err := encoder.Encode(result); err != nil {
			return fmt.Errorf("encoding result: %w", err)
		}

		return nil

	case constants.FormatYAML:
		encoder := yaml.NewEncoder(os.Stdout)

		if err := encoder.Encode(result); err != nil {
			return fmt.Errorf("encoding result: %w", err)
		}

		return nil

	default:
		return renderTable(result)
	}
}

// renderTable flattens an object (or list of objects) into a property table.
func renderTable(result interface{}) error {
	table := tablewriter.NewWriter(os.Stdout)

	switch typed := result.(type) {
	case map[string]interface{}:
		table.Header("Field", "Value")

		for _, key := range sortedKeys(typed) {
			_ = table.Append(key, formatValue(typed[key]))
		}

	case []interface{}:
		table.Header("#", "Value")

		for i, item := range typed {
			_ = table.Append(fmt.Sprintf("%d", i), formatValue(item))
		}

	default:
		table.Header("Value")
		_ = table.Append(formatValue(typed))
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// renderPage prints the items of a page plus its paging state.
func renderPage(page *graph.Page) error {
	if err := renderResult(page.Items()); err != nil {
		return err
	}

	if page.HasNext() {
		fmt.Fprintln(os.Stderr, "More results available; rerun with --all to fetch every page.")
	}

	return nil
}

func formatValue(value interface{}) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case float64:
		return fmt.Sprintf("%v", typed)
	case bool:
		return fmt.Sprintf("%t", typed)
	default:
		encoded, err := json.Marshal(typed)
		if err != nil {
			return fmt.Sprintf("%v", typed)
		}

		return string(encoded)
	}
}

func sortedKeys(object map[string]interface{}) []string {
	keys := make([]string, 0, len(object))
	for key := range object {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}
