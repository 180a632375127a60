package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezero/bookmark-bar-switcher/internal/state"
)

func TestDriveAutoCommand_Metadata(t *testing.T) {
	assert.Equal(t, []string{"on", "off"}, driveAutoCmd.ValidArgs)
	assert.Error(t, driveAutoCmd.Args(driveAutoCmd, []string{"maybe"}))
}

func TestRunDriveAutoWithWriter(t *testing.T) {
	t.Run("requires a connection", func(t *testing.T) {
		env := newTestEnv(t, "")

		err := runDriveAutoWithWriter(t.Context(), env.app, &bytes.Buffer{}, []string{"on"})
		assert.Error(t, err)
	})

	t.Run("toggles the flag", func(t *testing.T) {
		env := newTestEnv(t, "ya29.test-token")
		ctx := t.Context()

		var buf bytes.Buffer
		require.NoError(t, runDriveAutoWithWriter(ctx, env.app, &buf, []string{"on"}))
		on, err := state.GetBool(ctx, env.app.State, state.KeyDriveAutoBackup)
		require.NoError(t, err)
		assert.True(t, on)

		require.NoError(t, runDriveAutoWithWriter(ctx, env.app, &buf, []string{"off"}))
		on, err = state.GetBool(ctx, env.app.State, state.KeyDriveAutoBackup)
		require.NoError(t, err)
		assert.False(t, on)

		buf.Reset()
		require.NoError(t, runDriveAutoWithWriter(ctx, env.app, &buf, nil))
		assert.Contains(t, buf.String(), "Auto-backup:")
	})
}
