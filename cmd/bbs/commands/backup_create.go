package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/trezero/bookmark-bar-switcher/internal/app"
)

func init() {
	backupCmd.AddCommand(backupCreateCmd)
}

var backupCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Back up all bars now",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *app.App, _ []string) error {
		return runBackupCreateWithWriter(cmd.Context(), a, cmd.OutOrStdout())
	}),
}

func runBackupCreateWithWriter(ctx context.Context, a *app.App, w io.Writer) error {
	b, err := a.Engine.BackupNow(ctx)
	if err != nil {
		return err
	}
	bars, links, folders := b.Stats()
	fmt.Fprintf(w, "Backed up %d bars (%d links, %d folders)\n", bars, links, folders)
	return nil
}
