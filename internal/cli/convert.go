package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/taigrr/bricklayer/pkg/export"
	"github.com/taigrr/bricklayer/pkg/pipeline"
	"github.com/taigrr/bricklayer/pkg/render"
)

func (c *CLI) convertCommand() *cobra.Command {
	var (
		flags   runFlags
		output  string
		gridOut string
		pngOut  string
	)
	cmd := &cobra.Command{
		Use:   "convert <mesh.stl|mesh.glb>",
		Short: "Voxelize a mesh and pack it into bricks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.options(cmd, &flags)
			if err != nil {
				return err
			}
			r, _, cleanup, err := c.newRunner(stderr(cmd))
			if err != nil {
				return err
			}
			res, err := r.RunFile(cmd.Context(), args[0], opts)
			cleanup()
			if err != nil {
				return err
			}

			w := stdout(cmd)
			if output == "" {
				output = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".bricks.json"
			}
			if err := export.SavePlacements(output, res.Pack.Placements); err != nil {
				return err
			}
			printSummary(w, args[0], res)
			printFile(w, output)
			if gridOut != "" {
				if err := export.SaveGrid(gridOut, res.Remapped); err != nil {
					return err
				}
				printFile(w, gridOut)
			}
			if pngOut != "" {
				sheet := render.NewLayerView(res.Remapped, res.Pack.Placements)
				sheet.Cell = 6
				if err := sheet.Sheet(8).SavePNG(pngOut); err != nil {
					return fmt.Errorf("save png: %w", err)
				}
				printFile(w, pngOut)
			}
			return nil
		},
	}
	addRunFlags(cmd, &flags)
	cmd.Flags().StringVarP(&output, "output", "o", "", "placement list path (default <mesh>.bricks.json)")
	cmd.Flags().StringVar(&gridOut, "grid", "", "also write the packer's occupancy grid as JSON")
	cmd.Flags().StringVar(&pngOut, "png", "", "also write a PNG sheet of every layer")
	return cmd
}

func printSummary(w io.Writer, input string, res *pipeline.Result) {
	s := res.Pack.Stats
	printSuccess(w, "packed %s into %s bricks", input, styleNumber.Render(fmt.Sprint(s.Bricks)))
	d := res.Remapped.Dims()
	printKeyValue(w, "grid", fmt.Sprintf("%d×%d×%d (%s)", d[0], d[1], d[2], res.Permutation.Label()))
	printKeyValue(w, "scale", fmt.Sprintf("%.4g", res.Scale))
	printKeyValue(w, "solid", fmt.Sprint(s.Solid))
	printKeyValue(w, "filled", fmt.Sprintf("%d (%.1f%%)", s.Filled, 100*s.FillRatio()))
	if s.Unfilled > 0 {
		printWarning(w, "%d solid cells could not be supported", s.Unfilled)
	}
	for _, row := range s.Breakdown() {
		attr, _ := res.Catalog.Attribute(row.Shape)
		printKeyValue(w, row.Shape.String(), fmt.Sprintf("%d %s", row.Count, styleDim.Render(attr)))
	}
	var total time.Duration
	for _, d := range res.Timings {
		total += d
	}
	status := "fresh"
	if res.CacheHit {
		status = "cached voxels"
	}
	fmt.Fprintln(w, "  "+styleDim.Render(fmt.Sprintf("%s · %s", total.Round(time.Millisecond), status)))
	if res.RunID != "" {
		printKeyValue(w, "run", styleDim.Render(res.RunID))
	}
}
