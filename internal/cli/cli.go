// Package cli implements the tubeclamp command-line interface.
//
// Builder commands (straight, stacked, round) take tube parameters as flags
// and write one part. The run command evaluates a part script, which can
// define several parts; validate checks a script without building it.
//
// All commands support --verbose (-v) for debug logging. The logger travels
// in the command context.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/chazu/tubeclamp/pkg/config"
	"github.com/chazu/tubeclamp/pkg/export"
	"github.com/chazu/tubeclamp/pkg/kernel"
	"github.com/chazu/tubeclamp/pkg/kernel/scad"
	"github.com/chazu/tubeclamp/pkg/kernel/sdfx"
)

var version = "dev"

// SetVersion sets the version shown by --version.
func SetVersion(v string) {
	version = v
}

// options holds the persistent flags shared by every command.
type options struct {
	configPath string
	strict     bool
	kernel     string
	verbose    bool

	cfg config.Config
}

// Execute runs the tubeclamp CLI.
func Execute(ctx context.Context) error {
	return newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx)
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "tubeclamp",
		Short:         "tubeclamp generates printable clamps for electrical tubing",
		Long:          `tubeclamp builds 3D-printable mounting hardware for conduit: straight and stacked clamps, 90° corner fasteners and tees, written as STL meshes, OpenSCAD source or 1:1 drilling templates.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := charmlog.InfoLevel
			if opts.verbose {
				level = charmlog.DebugLevel
			}
			logger := newLogger(errOut, level)
			cmd.SetContext(withLogger(cmd.Context(), logger))
			return opts.load(logger)
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "TOML file with part settings")
	pf.BoolVar(&opts.strict, "strict", false, "treat overlap warnings as errors")
	pf.StringVar(&opts.kernel, "kernel", "", "geometry kernel: sdfx or scad (default: chosen by output format)")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newStraightCmd(opts))
	root.AddCommand(newStackedCmd(opts))
	root.AddCommand(newRoundCmd(opts))
	root.AddCommand(newRunCmd(opts))
	root.AddCommand(newValidateCmd(opts))
	root.AddCommand(newExamplesCmd(opts))
	return root
}

func (o *options) load(logger *charmlog.Logger) error {
	o.cfg = config.Default()
	if o.configPath != "" {
		cfg, err := config.Load(o.configPath)
		if err != nil {
			return err
		}
		o.cfg = cfg
		logger.Debug("loaded config", "path", o.configPath)
	}
	if o.strict {
		o.cfg.Strict = true
	}
	switch o.kernel {
	case "", "sdfx", "scad":
	default:
		return fmt.Errorf("unknown kernel %q, want sdfx or scad", o.kernel)
	}
	return nil
}

// kernelFor picks the kernel for writing path with cfg.
func (o *options) kernelFor(path string, cfg config.Config) kernel.Kernel {
	switch o.kernel {
	case "sdfx":
		return sdfx.NewWithCells(cfg.MeshCells)
	case "scad":
		return scad.New()
	}
	return export.KernelFor(path, cfg)
}
