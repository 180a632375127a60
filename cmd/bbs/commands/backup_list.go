package commands

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/trezero/bookmark-bar-switcher/internal/app"
)

var backupListJSON bool

func init() {
	backupListCmd.Flags().BoolVar(&backupListJSON, "json", false, "Output in JSON format")
	backupCmd.AddCommand(backupListCmd)
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List backups in local history",
	Long:  `List backups in local history, most recent first.`,
	Example: `  bbs backup list
  bbs backup list --json`,
	Args: cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *app.App, _ []string) error {
		return runBackupListWithWriter(cmd.Context(), a, cmd.OutOrStdout())
	}),
}

type backupOutput struct {
	Index     int    `json:"index"`
	Timestamp int64  `json:"timestamp"`
	Taken     string `json:"taken"`
	Version   string `json:"extensionVersion"`
	Bars      int    `json:"bars"`
	Links     int    `json:"links"`
	Folders   int    `json:"folders"`
}

func runBackupListWithWriter(ctx context.Context, a *app.App, w io.Writer) error {
	history, err := a.Backups.History(ctx)
	if err != nil {
		return err
	}

	out := make([]backupOutput, 0, len(history))
	for i, b := range history {
		bars, links, folders := b.Stats()
		out = append(out, backupOutput{
			Index:     i,
			Timestamp: b.Timestamp,
			Taken:     b.Time().Local().Format("2006-01-02 15:04:05"),
			Version:   b.ExtensionVersion,
			Bars:      bars,
			Links:     links,
			Folders:   folders,
		})
	}

	if backupListJSON {
		return writeJSON(w, out)
	}

	if len(out) == 0 {
		fmt.Fprintln(w, "No backups available")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Backups are created automatically before every bar switch.")
		fmt.Fprintln(w, "You can also create a backup manually with: bbs backup create")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
		styleHeader("INDEX"), styleHeader("TAKEN"), styleHeader("BARS"), styleHeader("LINKS"), styleHeader("VERSION"))
	for _, b := range out {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%s\n", b.Index, b.Taken, b.Bars, b.Links, styleMuted(b.Version))
	}
	return tw.Flush()
}
