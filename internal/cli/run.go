package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chazu/tubeclamp/examples"
	"github.com/chazu/tubeclamp/pkg/clamp"
)

func readScript(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading script: %w", err)
	}
	return string(data), nil
}

// scriptError turns the blocking findings of a report into an error after
// logging each of them.
func scriptError(cmd *cobra.Command, r report) error {
	logger := loggerFromContext(cmd.Context())
	for _, f := range r.Errors {
		logger.Error(f.String())
	}
	return fmt.Errorf("%d errors in script: %w", len(r.Errors), clamp.ErrInvalid)
}

func newRunCmd(o *options) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "run FILE",
		Short: "Build every part defined by a script",
		Long: `Evaluates a part script and writes each part it defines. With several
parts the part name is appended to the output name, so -o rack.stl writes
rack-left.stl, rack-right.stl and so on.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := readScript(args[0])
			if err != nil {
				return err
			}
			d, r := evaluate(cmd.Context(), source, o.cfg)
			if d == nil {
				return scriptError(cmd, r)
			}
			parts, err := o.produce(cmd.Context(), d, output)
			if err != nil {
				return err
			}
			report{Parts: parts}.print(cmd.OutOrStdout())
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "part.stl", "output file (.stl, .scad, .dxf, .pdf)")
	return cmd
}

func newValidateCmd(o *options) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "validate FILE",
		Short: "Check a script without writing any files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := readScript(args[0])
			if err != nil {
				return err
			}
			d, r := evaluate(cmd.Context(), source, o.cfg)
			if d != nil && r.ok() {
				parts, err := preview(cmd.Context(), d)
				if err != nil {
					r.Errors = append(r.Errors, finding{Message: err.Error()})
				} else {
					r.Parts = parts
				}
			}

			w := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				if err := enc.Encode(r); err != nil {
					return err
				}
			} else {
				r.print(w)
			}
			if !r.ok() {
				return fmt.Errorf("%d errors in script: %w", len(r.Errors), clamp.ErrInvalid)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

func newExamplesCmd(o *options) *cobra.Command {
	var (
		dir    string
		format string
		all    bool
	)
	cmd := &cobra.Command{
		Use:   "examples [NAME...]",
		Short: "List or build the bundled example scripts",
		Example: `  tubeclamp examples
  tubeclamp examples corner -o out --format .scad
  tubeclamp examples --all -o out`,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			names := args
			if all {
				names = examples.Names()
			}
			if len(names) == 0 {
				for _, n := range examples.Names() {
					fmt.Fprintln(w, n)
				}
				return nil
			}

			if !strings.HasPrefix(format, ".") {
				format = "." + format
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
			for _, name := range names {
				source, err := examples.Source(name)
				if err != nil {
					return err
				}
				d, r := evaluate(cmd.Context(), source, o.cfg)
				if d == nil {
					return scriptError(cmd, r)
				}
				parts, err := o.produce(cmd.Context(), d, filepath.Join(dir, name+format))
				if err != nil {
					return fmt.Errorf("example %s: %w", name, err)
				}
				report{Parts: parts}.print(w)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "output", "o", ".", "output directory")
	cmd.Flags().StringVar(&format, "format", ".stl", "output format: .stl, .scad, .dxf or .pdf")
	cmd.Flags().BoolVar(&all, "all", false, "build every example")
	return cmd
}
