package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/taigrr/bricklayer/pkg/errors"
	"github.com/taigrr/bricklayer/pkg/math3d"
	"github.com/taigrr/bricklayer/pkg/models"
)

// demoShapes builds the procedural meshes offered by the demo command, in
// millimetres before scaling.
var demoShapes = map[string]func(cells int) (*models.Mesh, error){
	"box": func(cells int) (*models.Mesh, error) {
		return models.Box(math3d.V3(40, 30, 20), cells)
	},
	"cylinder": func(cells int) (*models.Mesh, error) {
		return models.Cylinder(40, 16, cells)
	},
	"capsule": func(cells int) (*models.Mesh, error) {
		return models.Capsule(50, 14, cells)
	},
	"tube": func(cells int) (*models.Mesh, error) {
		return models.Tube(36, 18, 10, cells)
	},
}

func (c *CLI) demoCommand() *cobra.Command {
	var (
		flags  runFlags
		pf     previewFlags
		cells  int
		stlOut string
	)
	cmd := &cobra.Command{
		Use:       "demo [box|cylinder|capsule|tube]",
		Short:     "Convert a built-in solid and preview it",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"box", "cylinder", "capsule", "tube"},
		RunE: func(cmd *cobra.Command, args []string) error {
			name := "capsule"
			if len(args) == 1 {
				name = args[0]
			}
			build, ok := demoShapes[name]
			if !ok {
				return errors.New(errors.ErrCodeInvalidParameter, "unknown demo shape %q", name)
			}
			opts, err := c.options(cmd, &flags)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("height") && !cmd.Flags().Changed("scale") {
				opts.HeightBricks = 8
			}

			mesh, err := build(cells)
			if err != nil {
				return err
			}
			mesh.Name = name
			if stlOut != "" {
				if err := saveSTL(stlOut, mesh); err != nil {
					return err
				}
			}

			r, _, cleanup, err := c.newRunner(stderr(cmd))
			if err != nil {
				return err
			}
			res, err := r.Run(cmd.Context(), mesh, opts)
			cleanup()
			if err != nil {
				return err
			}
			w := stdout(cmd)
			printSummary(w, name, res)
			if stlOut != "" {
				printFile(w, stlOut)
			}
			drawLayers(w, res.Remapped, res.Pack.Placements, pf)
			return nil
		},
	}
	addRunFlags(cmd, &flags)
	addPreviewFlags(cmd, &pf)
	cmd.Flags().IntVar(&cells, "mesh-cells", models.DefaultMeshCells, "marching cubes resolution for the solid")
	cmd.Flags().StringVar(&stlOut, "stl", "", "also write the generated mesh as binary STL")
	return cmd
}

func saveSTL(path string, m *models.Mesh) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "create %s", path)
	}
	if err := models.WriteSTL(f, m); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
