package commands

import (
	"bytes"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/trezero/bookmark-bar-switcher/internal/app"
	"github.com/trezero/bookmark-bar-switcher/internal/backup"
	"github.com/trezero/bookmark-bar-switcher/internal/errors"
	"github.com/trezero/bookmark-bar-switcher/pkg/fileutil"
)

var (
	backupExportFormat string
	backupExportOutput string
)

func init() {
	backupExportCmd.Flags().StringVar(&backupExportFormat, "format", "",
		"output format: json, yaml, toml (default: from --output extension, else json)")
	backupExportCmd.Flags().StringVarP(&backupExportOutput, "output", "o", "",
		"write to file instead of stdout")
	backupCmd.AddCommand(backupExportCmd)
}

var backupExportCmd = &cobra.Command{
	Use:   "export [index]",
	Short: "Write a backup as JSON, YAML or TOML",
	Example: `  bbs backup export > bars.json
  bbs backup export 1 --format yaml
  bbs backup export -o bars.toml`,
	Args: cobra.MaximumNArgs(1),
	RunE: withApp(func(cmd *cobra.Command, a *app.App, args []string) error {
		b, err := historyEntry(cmd.Context(), a, args)
		if err != nil {
			return err
		}
		return runBackupExport(cmd.OutOrStdout(), b)
	}),
}

func runBackupExport(w io.Writer, b backup.BookmarkBackup) error {
	name := backupExportFormat
	if name == "" && backupExportOutput != "" {
		name = string(backup.FormatFromPath(backupExportOutput))
	}
	format, err := backup.ParseFormat(name)
	if err != nil {
		return errors.NewUserError(err, "Use --format json, yaml or toml")
	}

	if backupExportOutput == "" {
		return backup.Export(w, b, format)
	}

	var buf bytes.Buffer
	if err := backup.Export(&buf, b, format); err != nil {
		return err
	}
	if err := fileutil.AtomicWriteFile(backupExportOutput, buf.Bytes(), 0o600); err != nil {
		return errors.Wrapf(err, "writing %s", backupExportOutput)
	}
	fmt.Fprintf(w, "Exported backup to %s\n", backupExportOutput)
	return nil
}
