package commands

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/trezero/bookmark-bar-switcher/internal/app"
	"github.com/trezero/bookmark-bar-switcher/internal/errors"
	"github.com/trezero/bookmark-bar-switcher/internal/snapshot"
)

var barListJSON bool

func init() {
	barListCmd.Flags().BoolVar(&barListJSON, "json", false, "Output in JSON format")
	barCmd.AddCommand(barListCmd)
}

var barListCmd = &cobra.Command{
	Use:   "list",
	Short: "List bars",
	Example: `  bbs bar list
  bbs bar list --json`,
	Args: cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *app.App, _ []string) error {
		return runBarListWithWriter(cmd.Context(), a, cmd.OutOrStdout())
	}),
}

type barOutput struct {
	Position int    `json:"position"`
	ID       string `json:"id"`
	Title    string `json:"title"`
	Active   bool   `json:"active"`
	Links    int    `json:"links"`
	Folders  int    `json:"folders"`
}

func runBarListWithWriter(ctx context.Context, a *app.App, w io.Writer) error {
	active, err := a.Engine.ActiveBar(ctx)
	if err != nil {
		return err
	}
	bars, err := a.Engine.Bars(ctx)
	if err != nil {
		return err
	}

	out := make([]barOutput, 0, len(bars))
	for i, b := range bars {
		// The active bar's bookmarks sit in the primary slot.
		folder := b.ID
		if b.ID == active.ID {
			folder = a.Engine.Layout().PrimaryID
		}
		list, err := snapshot.Serialize(ctx, a.Tree, folder)
		if err != nil {
			return errors.Wrapf(err, "reading bar %q", b.Title)
		}
		links, folders := list.Stats()
		out = append(out, barOutput{
			Position: i + 1,
			ID:       b.ID,
			Title:    b.Title,
			Active:   b.ID == active.ID,
			Links:    links,
			Folders:  folders,
		})
	}

	if barListJSON {
		return writeJSON(w, out)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", styleHeader("#"), styleHeader("TITLE"), styleHeader("ID"), styleHeader("LINKS"))
	for _, b := range out {
		marker, title := " ", truncate(b.Title, 40)
		if b.Active {
			marker, title = "*", styleActive(title)
		}
		fmt.Fprintf(tw, "%s %d\t%s\t%s\t%d\n", marker, b.Position, title, styleMuted(b.ID), b.Links)
	}
	return tw.Flush()
}
