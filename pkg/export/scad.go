package export

import (
	"fmt"
	"os"

	"github.com/chazu/tubeclamp/pkg/kernel"
	"github.com/chazu/tubeclamp/pkg/kernel/scad"
)

// WriteSCAD writes the OpenSCAD source of s. The solid must come from the
// scad kernel.
func WriteSCAD(path, name string, s kernel.Solid) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("scad: %w", err)
	}
	if name != "" {
		fmt.Fprintf(f, "// %s\n", name)
	}
	if err := scad.Write(f, s); err != nil {
		f.Close()
		return fmt.Errorf("scad: %w", err)
	}
	return f.Close()
}
