package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezero/bookmark-bar-switcher/internal/backup"
	bbserrors "github.com/trezero/bookmark-bar-switcher/internal/errors"
	"github.com/trezero/bookmark-bar-switcher/internal/switcher"
)

func TestBarCreateCommand_Metadata(t *testing.T) {
	assert.Equal(t, "create <title>", barCreateCmd.Use)
	assert.NotEmpty(t, barCreateCmd.Short)
	assert.Error(t, barCreateCmd.Args(barCreateCmd, nil), "title is required")
}

func TestRunBarCreateWithWriter(t *testing.T) {
	env := newTestEnv(t, "")

	var buf bytes.Buffer
	require.NoError(t, runBarCreateWithWriter(t.Context(), env.app, &buf, "Work"))
	assert.Contains(t, buf.String(), `Created bar "Work"`)

	_, err := env.app.Engine.FindBar(t.Context(), "Work")
	require.NoError(t, err)
}

func TestBarCreateCommand_ReservedTitle(t *testing.T) {
	newTestEnv(t, "")

	_, err := execute(t, "bar", "create", backup.PrimaryBarTitle)
	assert.ErrorIs(t, err, switcher.ErrInvalidTitle)
	assert.Equal(t, bbserrors.ExitUser, bbserrors.ExitCode(err))
}
