package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/taigrr/bricklayer/pkg/errors"
	"github.com/taigrr/bricklayer/pkg/voxel"
)

func (c *CLI) historyCommand() *cobra.Command {
	var (
		limit     int
		olderThan time.Duration
	)
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List past conversions, or show one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db := c.openLedger()
			if db == nil {
				return errors.New(errors.ErrCodeIO, "history ledger unavailable")
			}
			defer db.Close()
			ctx := cmd.Context()
			w := stdout(cmd)

			if olderThan > 0 {
				n, err := db.Prune(ctx, time.Now().Add(-olderThan))
				if err != nil {
					return err
				}
				printSuccess(w, "removed %d runs", n)
				return nil
			}

			if len(args) == 1 {
				r, err := db.Get(ctx, args[0])
				if err != nil {
					return err
				}
				printTitle(w, r.ID)
				printKeyValue(w, "input", r.Input)
				printKeyValue(w, "started", r.StartedAt.Format(time.RFC3339))
				printKeyValue(w, "duration", r.Duration.String())
				if !r.Succeeded() {
					printKeyValue(w, "error", r.Err)
					return nil
				}
				printKeyValue(w, "grid", fmt.Sprintf("%d×%d×%d (%s)", r.Dims[0], r.Dims[1], r.Dims[2], voxel.Permutation(r.Axes).Label()))
				printKeyValue(w, "bricks", fmt.Sprint(r.Bricks))
				printKeyValue(w, "unfilled", fmt.Sprint(r.Unfilled))
				printKeyValue(w, "options", string(r.Options))
				return nil
			}

			runs, err := db.List(ctx, limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				printInfo(w, "no runs recorded yet")
				return nil
			}
			for _, r := range runs {
				status := styleIconSuccess.Render(iconSuccess)
				detail := fmt.Sprintf("%d bricks, %d unfilled", r.Bricks, r.Unfilled)
				if !r.Succeeded() {
					status = styleIconError.Render(iconError)
					detail = r.Err
				}
				fmt.Fprintf(w, "%s %s  %-24s %s\n", status,
					styleDim.Render(r.StartedAt.Format("2006-01-02 15:04")),
					r.Input, styleDim.Render(detail))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to list (0 = all)")
	cmd.Flags().DurationVar(&olderThan, "prune", 0, "delete runs older than this duration instead of listing")
	return cmd
}
