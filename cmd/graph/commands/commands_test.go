package commands_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noverloop/koala/cmd/graph/commands"
)

func TestNewGetCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewGetCommand()
	assert.Equal(t, "get TARGET [CONNECTION]", cmd.Use)
	assert.Equal(t, "Fetch an object or one of its connections", cmd.Short)
	assert.NotNil(t, cmd.RunE)

	assert.NotNil(t, cmd.Flags().Lookup("param"))
	assert.NotNil(t, cmd.Flags().Lookup("all"))
	assert.NotNil(t, cmd.Flags().Lookup("max-pages"))

	allFlag := cmd.Flags().Lookup("all")
	assert.Equal(t, "false", allFlag.DefValue)

	maxPagesFlag := cmd.Flags().Lookup("max-pages")
	assert.Equal(t, "0", maxPagesFlag.DefValue)
}

func TestNewPostCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewPostCommand()
	assert.Equal(t, "post TARGET CONNECTION", cmd.Use)
	assert.NotNil(t, cmd.RunE)
	assert.NotNil(t, cmd.Flags().Lookup("param"))
	assert.NotNil(t, cmd.Flags().Lookup("message"))
}

func TestNewDeleteCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewDeleteCommand()
	assert.Equal(t, "delete TARGET [CONNECTION]", cmd.Use)
	assert.NotNil(t, cmd.RunE)
	assert.NotNil(t, cmd.Flags().Lookup("param"))
}

func TestNewSearchCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewSearchCommand()
	assert.Equal(t, "search QUERY", cmd.Use)
	assert.NotNil(t, cmd.RunE)
	assert.NotNil(t, cmd.Flags().Lookup("type"))
	assert.NotNil(t, cmd.Flags().Lookup("all"))
}

func TestNewPictureCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewPictureCommand()
	assert.Equal(t, "picture TARGET", cmd.Use)
	assert.NotNil(t, cmd.RunE)
	assert.NotNil(t, cmd.Flags().Lookup("type"))
}

func TestNewUploadCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewUploadCommand()
	assert.Equal(t, "upload SOURCE", cmd.Use)
	assert.NotNil(t, cmd.RunE)
	assert.NotNil(t, cmd.Flags().Lookup("target"))
	assert.NotNil(t, cmd.Flags().Lookup("content-type"))
	assert.NotNil(t, cmd.Flags().Lookup("caption"))
	assert.NotNil(t, cmd.Flags().Lookup("video"))

	videoFlag := cmd.Flags().Lookup("video")
	assert.Equal(t, "false", videoFlag.DefValue)
}

func TestNewBatchCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewBatchCommand()
	assert.Equal(t, "batch FILE", cmd.Use)
	assert.NotNil(t, cmd.RunE)
}

func TestNewLoginCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewLoginCommand()
	assert.Equal(t, "login", cmd.Use)
	assert.NotNil(t, cmd.RunE)
	assert.NotNil(t, cmd.Flags().Lookup("with-token"))
	assert.NotNil(t, cmd.Flags().Lookup("with-app-secret"))
}

func TestNewVersionCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewVersionCommand("1.0.0", "abc123", "2026-01-01")
	assert.Equal(t, "version", cmd.Use)
	assert.Equal(t, "Display version information", cmd.Short)
	assert.NotNil(t, cmd.RunE)
}
