package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezero/bookmark-bar-switcher/internal/bookmarks"
)

func TestRunBackupCreateWithWriter(t *testing.T) {
	env := newTestEnv(t, "")
	env.link(t, bookmarks.BarID, "news")

	var buf bytes.Buffer
	require.NoError(t, runBackupCreateWithWriter(t.Context(), env.app, &buf))
	assert.Contains(t, buf.String(), "Backed up 2 bars (1 links")

	history, err := env.app.Backups.History(t.Context())
	require.NoError(t, err)
	assert.Len(t, history, 1)
}
