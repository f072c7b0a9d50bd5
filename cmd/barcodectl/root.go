package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	barcodex "github.com/kailas-cloud/barcodex/pkg/sdk"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	workDir     string
	concurrency int
	noFallback  bool
	verbose     bool
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "barcodectl",
		Short:         "Render EAN-13 and ITF-14 barcodes",
		Long:          "barcodectl renders EAN-13 and ITF-14 barcodes as PNG, SVG or EPS and packs batches into zip archives.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetHelpCommand(&cobra.Command{Hidden: true})

	pf := root.PersistentFlags()
	pf.StringVar(&g.workDir, "workdir", filepath.Join(os.TempDir(), "barcodex"), "directory for transient files")
	pf.IntVarP(&g.concurrency, "concurrency", "c", 0, "codes rendered at once (0 = 2x CPUs)")
	pf.BoolVar(&g.noFallback, "no-fallback", false, "disable the Code 128 PNG fallback")
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "log every operation to stderr")

	root.AddCommand(
		newGenerateCmd(g),
		newRenderCmd(g),
		newPreviewCmd(g),
		newSymbologiesCmd(g),
	)
	return root
}

// client builds an SDK client from the global flags.
func (g *globalFlags) client(extra ...barcodex.Option) (*barcodex.Client, error) {
	opts := []barcodex.Option{
		barcodex.WithWorkDir(g.workDir),
		barcodex.WithConcurrency(g.concurrency),
	}
	opts = append(opts, extra...)
	if g.noFallback {
		opts = append(opts, barcodex.WithoutFallback())
	}
	if g.verbose {
		opts = append(opts, barcodex.WithLogger(slog.New(slog.NewTextHandler(os.Stderr,
			&slog.HandlerOptions{Level: slog.LevelDebug}))))
	}
	return barcodex.New(opts...)
}

// renderFlags are the per-call render options.
type renderFlags struct {
	heightMM float64
	widthMM  float64
	format   string
}

func (f *renderFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.heightMM, "height", 0, "bar height in mm (default 32, max 200)")
	cmd.Flags().Float64Var(&f.widthMM, "width", 0, "module width in mm (default 2, max 10)")
	cmd.Flags().StringVarP(&f.format, "format", "f", "png", "output format: png, svg, eps")
}

func (f *renderFlags) options() barcodex.Options {
	return barcodex.Options{
		HeightMM: f.heightMM,
		WidthMM:  f.widthMM,
		Format:   barcodex.Format(f.format),
	}
}
