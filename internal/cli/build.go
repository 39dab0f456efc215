package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chazu/tubeclamp/pkg/clamp"
	"github.com/chazu/tubeclamp/pkg/design"
	"github.com/chazu/tubeclamp/pkg/kernel"
	"github.com/chazu/tubeclamp/pkg/layout"
)

// builderFlags are the flags every builder command shares.
type builderFlags struct {
	fit    float64
	kind   string
	mirror string
	output string
}

func (f *builderFlags) register(cmd *cobra.Command, name string) {
	cmd.Flags().Float64Var(&f.fit, "fit", 0, "extra bore diameter (default from config)")
	cmd.Flags().StringVar(&f.kind, "kind", "full", "part kind: full, support, tubes, bridge, no-champfer")
	cmd.Flags().StringVar(&f.mirror, "mirror", "", "mirror the part across x or y")
	cmd.Flags().StringVarP(&f.output, "output", "o", name+".stl", "output file (.stl, .scad, .dxf, .pdf)")
}

func (f *builderFlags) partKind() (clamp.PartKind, error) {
	return clamp.ParsePartKind(f.kind)
}

func (f *builderFlags) mirrorAxis() (*kernel.Axis, error) {
	var a kernel.Axis
	switch strings.ToLower(f.mirror) {
	case "":
		return nil, nil
	case "x":
		a = kernel.AxisX
	case "y":
		a = kernel.AxisY
	default:
		return nil, fmt.Errorf("--mirror: want x or y, got %q", f.mirror)
	}
	return &a, nil
}

// spacingOf turns a flag value into a Spacing: one value is applied between
// every pair of tubes, several are taken as a list.
func spacingOf(v []float64) layout.Spacing {
	switch len(v) {
	case 0:
		return layout.Spacing{}
	case 1:
		return layout.Scalar(v[0])
	}
	return layout.List(v...)
}

// parseFloats reads a comma separated list such as "16,20,16".
func parseFloats(s string) ([]float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", p)
		}
		out[i] = v
	}
	return out, nil
}

// buildOne wraps req into a single-part design and writes it.
func (o *options) buildOne(cmd *cobra.Command, name string, req clamp.Request, f *builderFlags) error {
	mirror, err := f.mirrorAxis()
	if err != nil {
		return err
	}
	d := design.New(o.cfg)
	if _, err := d.Define(name, req, mirror); err != nil {
		return err
	}
	parts, err := o.produce(cmd.Context(), d, f.output)
	if err != nil {
		return err
	}
	report{Parts: parts}.print(cmd.OutOrStdout())
	return nil
}

func newStraightCmd(o *options) *cobra.Command {
	var (
		f         builderFlags
		p         clamp.StraightParams
		spacing   []float64
		diameters []float64
	)
	cmd := &cobra.Command{
		Use:   "straight",
		Short: "Clamp for parallel tubes",
		Example: `  tubeclamp straight --width 20 --diameters 16,20,16 --spacing 25,35 -o clip.stl
  tubeclamp straight --width 12 --diameters 16,16 --spacing 25 --kind bridge -o bridge.scad`,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := f.partKind()
			if err != nil {
				return err
			}
			p.Diameters, p.Spacing, p.Fit, p.Kind = diameters, spacingOf(spacing), f.fit, kind
			return o.buildOne(cmd, "straight", p, &f)
		},
	}
	cmd.Flags().Float64Var(&p.Width, "width", 20, "plate extent along the tubes")
	cmd.Flags().Float64SliceVar(&diameters, "diameters", nil, "tube diameters")
	cmd.Flags().Float64SliceVar(&spacing, "spacing", nil, "gaps between tube centers; one value applies to every gap")
	cmd.Flags().BoolVar(&p.ThickHull, "thick-hull", false, "hull all tube bodies together")
	f.register(cmd, "straight")
	_ = cmd.MarkFlagRequired("diameters")
	return cmd
}

func newStackedCmd(o *options) *cobra.Command {
	var (
		f        builderFlags
		width    float64
		rows     []string
		spacings []string
		gaps     []string
	)
	cmd := &cobra.Command{
		Use:     "stacked",
		Short:   "Clamp for several rows of tubes on top of each other",
		Example: `  tubeclamp stacked --row 16,16 --row 20 --spacing 25 --gap auto -o stack.stl`,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := f.partKind()
			if err != nil {
				return err
			}
			p := clamp.StackedParams{Width: width, Fit: f.fit, Kind: kind}
			for i, r := range rows {
				diams, err := parseFloats(r)
				if err != nil {
					return fmt.Errorf("--row %d: %w", i, err)
				}
				p.Rows = append(p.Rows, diams)
			}
			for i, s := range spacings {
				v, err := parseFloats(s)
				if err != nil {
					return fmt.Errorf("--spacing %d: %w", i, err)
				}
				p.Spacings = append(p.Spacings, spacingOf(v))
			}
			for i, g := range gaps {
				if strings.EqualFold(strings.TrimSpace(g), "auto") {
					p.SpacingsZ = append(p.SpacingsZ, layout.Undefined())
					continue
				}
				v, err := strconv.ParseFloat(strings.TrimSpace(g), 64)
				if err != nil {
					return fmt.Errorf("--gap %d: %q is not a number or auto", i, g)
				}
				p.SpacingsZ = append(p.SpacingsZ, v)
			}
			return o.buildOne(cmd, "stacked", p, &f)
		},
	}
	cmd.Flags().Float64Var(&width, "width", 20, "plate extent along the tubes")
	cmd.Flags().StringArrayVar(&rows, "row", nil, "diameters of one row, bottom first; repeat per row")
	cmd.Flags().StringArrayVar(&spacings, "spacing", nil, "gaps of one row; repeat per row")
	cmd.Flags().StringArrayVar(&gaps, "gap", nil, "vertical gap above each row but the last, or auto")
	f.register(cmd, "stacked")
	_ = cmd.MarkFlagRequired("row")
	return cmd
}

func newRoundCmd(o *options) *cobra.Command {
	var (
		f         builderFlags
		diameters []float64
		spacingsX []float64
		spacingsY []float64
	)
	cmd := &cobra.Command{
		Use:   "round",
		Short: "Corner fastener for tubes turning 90°",
		Example: `  tubeclamp round --diameters 16,16 --spacings-x 30 -o left.stl
  tubeclamp round --diameters 16,16 --spacings-x 30 --mirror x -o right.stl`,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := f.partKind()
			if err != nil {
				return err
			}
			p := clamp.RoundParams{
				Diameters: diameters,
				SpacingsX: spacingOf(spacingsX),
				Fit:       f.fit,
				Kind:      kind,
			}
			if len(spacingsY) > 0 {
				p.SpacingsY = spacingOf(spacingsY)
			}
			return o.buildOne(cmd, "round", p, &f)
		},
	}
	cmd.Flags().Float64SliceVar(&diameters, "diameters", nil, "tube diameters")
	cmd.Flags().Float64SliceVar(&spacingsX, "spacings-x", nil, "gaps between the outlets along X")
	cmd.Flags().Float64SliceVar(&spacingsY, "spacings-y", nil, "gaps between the inlets along Y (default: same as X)")
	f.register(cmd, "round")
	_ = cmd.MarkFlagRequired("diameters")
	return cmd
}
