package commands

import "github.com/spf13/cobra"

func init() {
	rootCmd.AddCommand(barCmd)
}

var barCmd = &cobra.Command{
	Use:   "bar",
	Short: "Manage bookmark bars",
	Long: `Create, rename, remove, reorder and switch bookmark bars.

Bars are named by folder id or by exact title.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}
