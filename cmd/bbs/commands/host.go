package commands

import (
	"github.com/spf13/cobra"

	"github.com/trezero/bookmark-bar-switcher/internal/app"
	"github.com/trezero/bookmark-bar-switcher/internal/host"
)

func init() {
	rootCmd.AddCommand(hostCmd)
}

var hostCmd = &cobra.Command{
	Use:   "host [origin]",
	Short: "Run as a browser native messaging host",
	Long: `Answer requests from the browser extension on stdin and stdout using the
native messaging protocol. The browser starts this command itself and
passes the calling extension's origin as an argument; logs go to stderr.
Signing in to Drive needs a terminal: run "bbs drive connect" first.`,
	Args:   cobra.ArbitraryArgs,
	Hidden: true,
	RunE: withApp(func(cmd *cobra.Command, a *app.App, _ []string) error {
		return a.Host(host.WithInteractive(false)).Serve(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
	}),
}
