package main

import (
	"fmt"
	"os"

	"github.com/benoitkugler/svglayer/svgdraw"
	"github.com/benoitkugler/svglayer/svgicon"
	"github.com/benoitkugler/svglayer/svglayer"
	"github.com/spf13/cobra"
)

func newDumpCmd(s *settings) *cobra.Command {
	var noCost bool
	cmd := &cobra.Command{
		Use:   "dump [file.svg]",
		Short: "Print the drawing commands of an SVG file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			doc, err := svgicon.ReadIconStream(f, s.errorMode())
			if err != nil {
				return err
			}
			layer := svglayer.Compile(doc, svglayer.Options{Width: s.width, Height: s.height})
			opts := svgdraw.Options{Outliner: svgdraw.DefaultOutliner()}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, svgdraw.Dump(layer, opts))
			if !noCost {
				cost := svgdraw.EstimateCost(layer, opts)
				fmt.Fprintf(out, "# commands: %d, points: %d, pixels: %d, layers: %d\n",
					cost.Commands, cost.Points, cost.Pixels, cost.Layers)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&noCost, "no-cost", false, "Do not print the cost estimate")
	return cmd
}
