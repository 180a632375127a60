package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/trezero/bookmark-bar-switcher/internal/app"
)

func init() {
	driveCmd.AddCommand(driveUploadCmd)
}

var driveUploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload a backup of all bars now",
	Long: `Upload a backup of all bars now. Uploads closer together than
drive.upload_cooldown are skipped.`,
	Args: cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *app.App, _ []string) error {
		return runDriveUploadWithWriter(cmd.Context(), a, cmd.OutOrStdout())
	}),
}

func runDriveUploadWithWriter(ctx context.Context, a *app.App, w io.Writer) error {
	b, err := a.Engine.CreateBackup(ctx)
	if err != nil {
		return err
	}
	meta, err := a.Drive.Upload(ctx, b)
	if err != nil {
		return err
	}
	if meta == nil {
		fmt.Fprintln(w, styleWarn("Skipped: a backup was uploaded recently"))
		return nil
	}
	fmt.Fprintf(w, "Uploaded %s\n", meta.Name)
	return nil
}
