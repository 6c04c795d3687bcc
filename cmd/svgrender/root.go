package main

import (
	"log/slog"

	"github.com/benoitkugler/svglayer/svgicon"
	"github.com/gogpu/gg"
	"github.com/spf13/cobra"
)

// settings are the options shared by the commands, resolved
// from the flags and the configuration file.
type settings struct {
	configPath string
	verbose    bool
	strict     bool
	width      float64
	height     float64
	backend    string
	output     string
}

func newRootCmd() *cobra.Command {
	var s settings
	rootCmd := &cobra.Command{
		Use:          "svgrender",
		Short:        "Render SVG files",
		Long:         `Render SVG files to PNG or PDF, and inspect the drawing commands they produce.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return s.load(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&s.configPath, "config", "", "TOML file providing default values")
	flags.BoolVarP(&s.verbose, "verbose", "v", false, "Log warnings and skipped content")
	flags.BoolVar(&s.strict, "strict", false, "Fail on the first invalid element or attribute")
	flags.Float64Var(&s.width, "width", 0, "Output width (default: document width)")
	flags.Float64Var(&s.height, "height", 0, "Output height (default: document height)")

	rootCmd.AddCommand(newRenderCmd(&s))
	rootCmd.AddCommand(newDumpCmd(&s))
	return rootCmd
}

// load completes the flags not given on the command line
// with the configuration file, and installs the logger.
func (s *settings) load(cmd *cobra.Command) error {
	cfg, err := loadConfig(s.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if !flags.Changed("width") {
		s.width = cfg.Width
	}
	if !flags.Changed("height") {
		s.height = cfg.Height
	}
	if !flags.Changed("strict") {
		s.strict = cfg.Strict
	}
	if !flags.Changed("verbose") {
		s.verbose = cfg.Verbose
	}
	if !flags.Changed("backend") && cfg.Backend != "" {
		s.backend = cfg.Backend
	}

	if s.verbose {
		logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
		svgicon.SetLogger(logger)
		gg.SetLogger(logger)
	}
	return nil
}

func (s *settings) errorMode() svgicon.ErrorMode {
	if s.strict {
		return svgicon.StrictErrorMode
	}
	return svgicon.WarnErrorMode
}
