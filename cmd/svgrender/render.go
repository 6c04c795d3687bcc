package main

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/benoitkugler/svglayer/svgcanvas"
	"github.com/benoitkugler/svglayer/svgdraw"
	"github.com/benoitkugler/svglayer/svglayer"
	"github.com/benoitkugler/svglayer/svgpdf"
	"github.com/benoitkugler/svglayer/svgraster"
	"github.com/spf13/cobra"
)

func newRenderCmd(s *settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render [file.svg]",
		Short: "Render an SVG file to PNG or PDF",
		Long: `Render an SVG file with one of the backends: raster and canvas write PNG
images, pdf writes a one page PDF document. When no backend is given, it is
chosen from the output extension.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, s, args[0])
		},
	}
	cmd.Flags().StringVarP(&s.output, "output", "o", "", "Output file (default: the input file with a .png or .pdf extension)")
	cmd.Flags().StringVarP(&s.backend, "backend", "b", "", "Rendering backend: raster, canvas or pdf")
	return cmd
}

// resolveOutput returns the backend and the output file.
func resolveOutput(input, output, backend string) (string, string, error) {
	if err := checkBackend(backend); err != nil {
		return "", "", err
	}
	isPDF := strings.EqualFold(filepath.Ext(output), ".pdf")
	if backend == "" {
		backend = backendRaster
		if isPDF {
			backend = backendPDF
		}
	}
	if output == "" {
		ext := ".png"
		if backend == backendPDF {
			ext = ".pdf"
		}
		return backend, strings.TrimSuffix(input, filepath.Ext(input)) + ext, nil
	}
	if isPDF != (backend == backendPDF) {
		return "", "", fmt.Errorf("backend %s can't write %s", backend, output)
	}
	return backend, output, nil
}

func runRender(cmd *cobra.Command, s *settings, input string) error {
	backend, output, err := resolveOutput(input, s.output, s.backend)
	if err != nil {
		return err
	}
	f, err := os.Open(input)
	if err != nil {
		return err
	}
	defer f.Close()

	layerOpts := svglayer.Options{
		Width:         s.width,
		Height:        s.height,
		ImageResolver: svglayer.DirResolver(filepath.Dir(input)),
	}
	outliner := svgdraw.DefaultOutliner()

	var img image.Image
	switch backend {
	case backendPDF:
		err = svgpdf.RenderSVGIconToPDF(f, output, &svgpdf.Options{Options: layerOpts, ErrorMode: s.errorMode(), Outliner: outliner})
	case backendCanvas:
		img, err = svgcanvas.RenderSVGIcon(f, &svgcanvas.Options{Options: layerOpts, ErrorMode: s.errorMode(), Outliner: outliner})
	default:
		img, err = svgraster.RasterSVGIconToImage(f, &svgraster.Options{Options: layerOpts, ErrorMode: s.errorMode(), Outliner: outliner})
	}
	if err != nil {
		return fmt.Errorf("rendering %s: %w", input, err)
	}
	if img != nil {
		if err := writePNG(output, img); err != nil {
			return err
		}
	}
	cmd.Printf("%s written (%s)\n", output, backend)
	return nil
}

func writePNG(path string, img image.Image) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(out, img); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
