package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/taigrr/bricklayer/pkg/brick"
	"github.com/taigrr/bricklayer/pkg/export"
	"github.com/taigrr/bricklayer/pkg/render"
	"github.com/taigrr/bricklayer/pkg/voxel"
)

type previewFlags struct {
	layer int
	cell  int
	cols  int
}

func addPreviewFlags(cmd *cobra.Command, f *previewFlags) {
	cmd.Flags().IntVar(&f.layer, "layer", -1, "show only this layer (default all)")
	cmd.Flags().IntVar(&f.cell, "cell", 2, "pixels per cell")
	cmd.Flags().IntVar(&f.cols, "cols", 4, "layers per row when showing all")
}

func (c *CLI) previewCommand() *cobra.Command {
	var (
		flags      runFlags
		pf         previewFlags
		placements string
	)
	cmd := &cobra.Command{
		Use:   "preview <mesh | grid.json --placements bricks.json>",
		Short: "Draw packed layers in the terminal",
		Long: `Converts the mesh and draws each layer with half-block characters. With
--placements, the argument is a grid written by voxelize and the bricks are read
from the placement file instead of being packed again.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.options(cmd, &flags)
			if err != nil {
				return err
			}
			var (
				occ *voxel.Grid
				pl  []brick.Placement
			)
			if placements != "" {
				g, err := readGrid(args[0])
				if err != nil {
					return err
				}
				if occ, err = g.Permute(voxel.Permutation(opts.Permutation)); err != nil {
					return err
				}
				if pl, err = export.LoadPlacements(placements); err != nil {
					return err
				}
			} else {
				r, _, cleanup, err := c.newRunner(stderr(cmd))
				if err != nil {
					return err
				}
				res, err := r.RunFile(cmd.Context(), args[0], opts)
				cleanup()
				if err != nil {
					return err
				}
				occ, pl = res.Remapped, res.Pack.Placements
			}
			drawLayers(stdout(cmd), occ, pl, pf)
			return nil
		},
	}
	addRunFlags(cmd, &flags)
	addPreviewFlags(cmd, &pf)
	cmd.Flags().StringVar(&placements, "placements", "", "placement list to draw over a grid file")
	return cmd
}

func drawLayers(w io.Writer, occ *voxel.Grid, pl []brick.Placement, f previewFlags) {
	v := render.NewLayerView(occ, pl)
	v.Cell = f.cell
	if f.layer >= 0 {
		printTitle(w, fmt.Sprintf("layer %d of %d", f.layer, v.Layers()))
		fmt.Fprintln(w, v.Layer(f.layer).Render())
		return
	}
	printTitle(w, fmt.Sprintf("%d layers, bottom first", v.Layers()))
	fmt.Fprintln(w, v.Sheet(f.cols).Render())
}
