package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/taigrr/bricklayer/pkg/brick"
	"github.com/taigrr/bricklayer/pkg/export"
	"github.com/taigrr/bricklayer/pkg/run"
	"github.com/taigrr/bricklayer/pkg/voxel"
)

func (c *CLI) packCommand() *cobra.Command {
	var (
		flags  runFlags
		output string
	)
	cmd := &cobra.Command{
		Use:   "pack <grid.json|grid.zst>",
		Short: "Pack a voxel grid written by voxelize",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.options(cmd, &flags)
			if err != nil {
				return err
			}
			g, err := readGrid(args[0])
			if err != nil {
				return err
			}
			occ, err := g.Permute(voxel.Permutation(opts.Permutation))
			if err != nil {
				return err
			}
			catalog, err := opts.LoadCatalog()
			if err != nil {
				return err
			}
			packer, err := opts.Packer(catalog)
			if err != nil {
				return err
			}

			var progress run.ProgressFunc
			if !c.quiet {
				bar := newProgressBar(stderr(cmd))
				defer bar.Finish()
				progress = bar.Report
			}
			res, err := packer.Pack(run.New(progress, c.Logger), occ)
			if err != nil {
				return err
			}
			if err := brick.Verify(occ, res.Placements, packer.Support); err != nil {
				return err
			}

			if output == "" {
				output = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".bricks.json"
			}
			if err := export.SavePlacements(output, res.Placements); err != nil {
				return err
			}
			w := stdout(cmd)
			s := res.Stats
			printSuccess(w, "%s bricks, %d of %d solid cells filled", styleNumber.Render(fmt.Sprint(s.Bricks)), s.Filled, s.Solid)
			printFile(w, output)
			return nil
		},
	}
	addRunFlags(cmd, &flags)
	cmd.Flags().StringVarP(&output, "output", "o", "", "placement list path (default <grid>.bricks.json)")
	return cmd
}
