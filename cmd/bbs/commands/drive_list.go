package commands

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/trezero/bookmark-bar-switcher/internal/app"
)

var driveListJSON bool

func init() {
	driveListCmd.Flags().BoolVar(&driveListJSON, "json", false, "Output in JSON format")
	driveCmd.AddCommand(driveListCmd)
}

var driveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List backups stored in Drive",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *app.App, _ []string) error {
		return runDriveListWithWriter(cmd.Context(), a, cmd.OutOrStdout())
	}),
}

func runDriveListWithWriter(ctx context.Context, a *app.App, w io.Writer) error {
	backups, err := a.Drive.List(ctx)
	if err != nil {
		return err
	}
	if driveListJSON {
		return writeJSON(w, backups)
	}
	if len(backups) == 0 {
		fmt.Fprintln(w, "No backups in Google Drive")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\n", styleHeader("ID"), styleHeader("NAME"), styleHeader("MODIFIED"))
	for _, m := range backups {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", m.ID, m.Name, m.ModifiedTime)
	}
	return tw.Flush()
}
