package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/taigrr/bricklayer/pkg/errors"
	"github.com/taigrr/bricklayer/pkg/export"
	"github.com/taigrr/bricklayer/pkg/models"
	"github.com/taigrr/bricklayer/pkg/run"
	"github.com/taigrr/bricklayer/pkg/voxel"
)

func (c *CLI) voxelizeCommand() *cobra.Command {
	var (
		flags   runFlags
		output  string
		surface bool
	)
	cmd := &cobra.Command{
		Use:   "voxelize <mesh>",
		Short: "Classify mesh cells as solid and write the grid",
		Long: `Writes the voxelizer's (x, y, z) grid. A .json output holds nested boolean
arrays; .zst holds the compact cache encoding.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.options(cmd, &flags)
			if err != nil {
				return err
			}
			mesh, err := models.Load(args[0])
			if err != nil {
				return err
			}
			if _, err := opts.Place(mesh); err != nil {
				return err
			}

			var progress run.ProgressFunc
			if !c.quiet {
				bar := newProgressBar(stderr(cmd))
				defer bar.Finish()
				progress = bar.Report
			}
			g, err := voxel.Voxelize(run.New(progress, c.Logger), mesh, opts.VoxelConfig())
			if err != nil {
				return err
			}
			if err := cmd.Context().Err(); err != nil {
				return err
			}
			if surface {
				g = voxel.Surface(g)
			}

			if output == "" {
				output = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".voxels.json"
			}
			if err := writeGrid(output, g); err != nil {
				return err
			}
			w := stdout(cmd)
			d := g.Dims()
			printSuccess(w, "%d of %d cells solid", g.Count(), g.Len())
			printKeyValue(w, "grid", fmt.Sprintf("%d×%d×%d (x×y×z)", d[0], d[1], d[2]))
			printFile(w, output)
			return nil
		},
	}
	addRunFlags(cmd, &flags)
	cmd.Flags().StringVarP(&output, "output", "o", "", "grid path, .json or .zst (default <mesh>.voxels.json)")
	cmd.Flags().BoolVar(&surface, "surface", false, "keep only solid cells with an empty neighbour")
	return cmd
}

func writeGrid(path string, g *voxel.Grid) error {
	if strings.EqualFold(filepath.Ext(path), ".zst") {
		f, err := os.Create(path)
		if err != nil {
			return errors.Wrap(errors.ErrCodeIO, err, "create %s", path)
		}
		if err := voxel.Encode(f, g); err != nil {
			f.Close()
			return errors.Wrap(errors.ErrCodeIO, err, "encode %s", path)
		}
		return f.Close()
	}
	return export.SaveGrid(path, g)
}

func readGrid(path string) (*voxel.Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "open %s", path)
	}
	defer f.Close()
	if strings.EqualFold(filepath.Ext(path), ".zst") {
		g, _, err := voxel.Decode(f)
		return g, err
	}
	return export.ReadGrid(f)
}
