package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezero/bookmark-bar-switcher/internal/backup"
)

func TestRunBackupExport_Formats(t *testing.T) {
	env := newTestEnv(t, "")
	b, err := env.app.Engine.CreateBackup(t.Context())
	require.NoError(t, err)
	t.Cleanup(func() { backupExportFormat = "" })

	for _, format := range backup.Formats() {
		backupExportFormat = string(format)
		var buf bytes.Buffer
		require.NoError(t, runBackupExport(&buf, b), format)

		got, err := backup.Import(&buf, format)
		require.NoError(t, err, format)
		assert.Equal(t, b.Timestamp, got.Timestamp)
	}

	backupExportFormat = "xml"
	assert.ErrorIs(t, runBackupExport(&bytes.Buffer{}, b), backup.ErrUnknownFormat)
}
