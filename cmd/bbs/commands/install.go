package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/trezero/bookmark-bar-switcher/internal/app"
)

func init() {
	rootCmd.AddCommand(installCmd)
}

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Prepare the bookmark tree for bar switching",
	Long: `Create the "Bookmark Bars" container folder and a folder for the bar
currently shown in the bookmarks bar. Running it again changes nothing.`,
	Example: `  bbs install

  See Also: bbs bar list`,
	Args: cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *app.App, _ []string) error {
		return runInstallWithWriter(cmd.Context(), a, cmd.OutOrStdout())
	}),
}

func runInstallWithWriter(ctx context.Context, a *app.App, w io.Writer) error {
	bar, err := a.Engine.Install(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Bar container ready under %q\n", a.Engine.Layout().ContainerTitle)
	fmt.Fprintf(w, "Active bar: %s\n", styleActive(bar.Title))
	return nil
}
