package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"

	"github.com/trezero/bookmark-bar-switcher/internal/app"
	"github.com/trezero/bookmark-bar-switcher/internal/errors"
	"github.com/trezero/bookmark-bar-switcher/internal/logging"
	"github.com/trezero/bookmark-bar-switcher/internal/switcher"
)

// pickBar asks the user to choose a bar. Tests replace it.
var pickBar = func(bars []switcher.Bar, active string) (int, error) {
	if !logging.IsTTY(os.Stdin) || !logging.IsTTY(os.Stdout) {
		return 0, errors.NewUserError(errors.New("no bar given"), "Name the bar: bbs bar switch <bar>")
	}
	return fuzzyfinder.Find(bars,
		func(i int) string {
			if bars[i].ID == active {
				return bars[i].Title + " (active)"
			}
			return bars[i].Title
		},
		fuzzyfinder.WithPromptString("bar> "),
	)
}

func init() {
	barCmd.AddCommand(barSwitchCmd)
}

var barSwitchCmd = &cobra.Command{
	Use:   "switch [bar]",
	Short: "Show a bar in the bookmarks bar",
	Long: `Move the visible bar's bookmarks back into its folder and the chosen bar's
bookmarks into the bookmarks bar. Without an argument, pick the bar
interactively.`,
	Example: `  bbs bar switch Work
  bbs bar switch`,
	Args: cobra.MaximumNArgs(1),
	RunE: withApp(func(cmd *cobra.Command, a *app.App, args []string) error {
		target := ""
		if len(args) == 1 {
			target = args[0]
		}
		return runBarSwitchWithWriter(cmd.Context(), a, cmd.OutOrStdout(), target)
	}),
}

func runBarSwitchWithWriter(ctx context.Context, a *app.App, w io.Writer, target string) error {
	active, err := a.Engine.ActiveBar(ctx)
	if err != nil {
		return err
	}

	var bar switcher.Bar
	if target == "" {
		bars, err := a.Engine.Bars(ctx)
		if err != nil {
			return err
		}
		i, err := pickBar(bars, active.ID)
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return nil
		}
		if err != nil {
			return err
		}
		bar = bars[i]
	} else if bar, err = a.Engine.FindBar(ctx, target); err != nil {
		return err
	}

	if bar.ID == active.ID {
		fmt.Fprintf(w, "%q is already active\n", bar.Title)
		return nil
	}
	if err := a.Engine.SwitchTo(ctx, bar.ID); err != nil {
		return err
	}
	fmt.Fprintf(w, "Switched from %q to %s\n", active.Title, styleActive(strconv.Quote(bar.Title)))
	return nil
}
