package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/taigrr/bricklayer/pkg/pipeline"
	"github.com/taigrr/bricklayer/pkg/render"
)

func (c *CLI) catalogCommand() *cobra.Command {
	var (
		name   string
		asTOML bool
	)
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Show the expanded brick catalog in packing order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := pipeline.DefaultOptions()
			opts.Catalog = name
			catalog, err := opts.LoadCatalog()
			if err != nil {
				return err
			}
			w := stdout(cmd)
			if asTOML {
				data, err := catalog.MarshalTOML()
				if err != nil {
					return err
				}
				_, err = w.Write(data)
				return err
			}

			printTitle(w, fmt.Sprintf("%d shapes", catalog.Len()))
			for _, e := range catalog.BySize() {
				col := render.AttributeColor(e.Attribute)
				swatch := lipgloss.NewStyle().
					Foreground(lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", col.R, col.G, col.B))).
					Render("██")
				printKeyValue(w, e.Shape.String(), fmt.Sprintf("%s %2d cells  %s", swatch, e.Shape.Volume(), styleDim.Render(e.Attribute)))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "catalog", pipeline.CatalogDefault, "brick set: default, basic or a TOML/YAML file")
	cmd.Flags().BoolVar(&asTOML, "toml", false, "print the expanded catalog as a TOML catalog file")
	return cmd
}
