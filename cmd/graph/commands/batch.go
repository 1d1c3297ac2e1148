package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/noverloop/koala/pkg/graph"
)

// batchFileOp is one call description in a batch file.
type batchFileOp struct {
	Method     string            `yaml:"method"`
	Target     string            `yaml:"target"`
	Connection string            `yaml:"connection"`
	Name       string            `yaml:"name"`
	Omit       bool              `yaml:"omit_response"`
	Params     map[string]string `yaml:"params"`
}

// NewBatchCommand creates the batch command
func NewBatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch FILE",
		Short: "Execute a batch of calls from a YAML file",
		Long: `Execute several calls as one request. FILE holds a YAML list of
operations:

  - target: me
  - method: POST
    target: me
    connection: feed
    name: create-post
    params:
      message: "Hello, world"
  - target: "{result=create-post:$.id}"
    connection: comments
    method: POST
    params:
      message: "first"

Results are printed in operation order; a failing operation never aborts
its siblings.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			operations, err := readBatchFile(args[0])
			if err != nil {
				return err
			}

			client, err := newAuthenticatedClient()
			if err != nil {
				return err
			}

			batch := client.NewBatch()

			for _, op := range operations {
				batch = registerBatchOp(batch, op)
			}

			results, err := batch.Execute(cmd.Context(), nil)
			if err != nil {
				return err
			}

			return renderBatchResults(results)
		},
	}

	return cmd
}

func readBatchFile(path string) ([]batchFileOp, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading batch file: %w", err)
	}

	var operations []batchFileOp
	if err := yaml.Unmarshal(payload, &operations); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBatchFile, err)
	}

	if len(operations) == 0 {
		return nil, fmt.Errorf("%w: no operations", ErrInvalidBatchFile)
	}

	for i, op := range operations {
		if op.Target == "" {
			return nil, fmt.Errorf("%w: operation %d has no target", ErrInvalidBatchFile, i)
		}
	}

	return operations, nil
}

func registerBatchOp(batch *graph.Batch, op batchFileOp) *graph.Batch {
	verb := graph.VerbGet
	if op.Method != "" {
		verb = graph.Verb(strings.ToUpper(op.Method))
	}

	call := graph.Call{
		Target:     op.Target,
		Connection: op.Connection,
		Verb:       verb,
		Args:       stringParams(op.Params),
	}

	switch {
	case op.Omit:
		return batch.AddOmitted(op.Name, call)
	case op.Name != "":
		return batch.AddNamed(op.Name, call)
	default:
		return batch.Add(call)
	}
}

func stringParams(params map[string]string) graph.Params {
	if len(params) == 0 {
		return nil
	}

	args := graph.Params{}
	for key, value := range params {
		args[key] = value
	}

	return args
}

func renderBatchResults(results []graph.BatchResult) error {
	type batchOutcome struct {
		Name    string      `json:"name,omitempty" yaml:"name,omitempty"`
		Success bool        `json:"success" yaml:"success"`
		Data    interface{} `json:"data,omitempty" yaml:"data,omitempty"`
		Error   string      `json:"error,omitempty" yaml:"error,omitempty"`
	}

	outcomes := make([]interface{}, 0, len(results))

	for _, result := range results {
		outcome := batchOutcome{
			Name:    result.Name,
			Success: result.Success,
		}

		if page, ok := result.Data.(*graph.Page); ok {
			outcome.Data = page.Items()
		} else {
			outcome.Data = result.Data
		}

		if result.Error != nil {
			outcome.Error = result.Error.Error()
		}

		outcomes = append(outcomes, outcome)
	}

	return renderResult(outcomes)
}
