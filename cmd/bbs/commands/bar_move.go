package commands

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/trezero/bookmark-bar-switcher/internal/app"
	"github.com/trezero/bookmark-bar-switcher/internal/errors"
)

func init() {
	barCmd.AddCommand(barMoveCmd)
}

var barMoveCmd = &cobra.Command{
	Use:     "move <bar> <position>",
	Short:   "Move a bar to a position (1 is first)",
	Example: `  bbs bar move Work 1`,
	Args:    cobra.ExactArgs(2),
	RunE: withApp(func(cmd *cobra.Command, a *app.App, args []string) error {
		to, err := strconv.Atoi(args[1])
		if err != nil {
			return errors.NewUserError(errors.Wrap(errors.ErrInvalidArgument, args[1]), "Position must be a number")
		}
		return runBarMoveWithWriter(cmd.Context(), a, cmd.OutOrStdout(), args[0], to)
	}),
}

func runBarMoveWithWriter(ctx context.Context, a *app.App, w io.Writer, name string, to int) error {
	bars, err := a.Engine.Bars(ctx)
	if err != nil {
		return err
	}
	bar, err := a.Engine.FindBar(ctx, name)
	if err != nil {
		return err
	}
	if to < 1 || to > len(bars) {
		return errors.NewUserError(errors.Wrapf(errors.ErrInvalidArgument, "position %d", to),
			fmt.Sprintf("Position must be between 1 and %d", len(bars)))
	}
	from := 0
	for i, b := range bars {
		if b.ID == bar.ID {
			from = i
		}
	}

	if _, err := a.Engine.ReorderBars(ctx, from, to-1); err != nil {
		return err
	}
	fmt.Fprintf(w, "Moved %q to position %d\n", bar.Title, to)
	return nil
}
