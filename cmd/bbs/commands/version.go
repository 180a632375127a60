package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/trezero/bookmark-bar-switcher/cmd"
)

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	Long:  `Print the version, commit, and build date of bbs.`,
	Run: func(_ *cobra.Command, _ []string) {
		runVersionWithWriter(os.Stdout)
	},
}

func runVersionWithWriter(w io.Writer) {
	fmt.Fprintf(w, "bbs version %s\n", cmd.Version)
	fmt.Fprintf(w, "  commit: %s\n", cmd.Commit)
	fmt.Fprintf(w, "  built:  %s\n", cmd.Date)
}
