// Package export writes built parts to files: STL meshes, OpenSCAD
// source, and 1:1 drilling templates as DXF or PDF.
package export

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/chazu/tubeclamp/pkg/config"
	"github.com/chazu/tubeclamp/pkg/kernel"
	"github.com/chazu/tubeclamp/pkg/kernel/scad"
	"github.com/chazu/tubeclamp/pkg/kernel/sdfx"
	"github.com/chazu/tubeclamp/pkg/tessellate"
)

// ErrUnknownFormat is returned for file extensions no writer handles.
var ErrUnknownFormat = errors.New("export: unknown format")

// Formats lists the supported file extensions.
var Formats = []string{".stl", ".scad", ".dxf", ".pdf"}

func format(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// KernelFor returns the kernel that can produce path: STL needs a mesher,
// everything else is cheapest on the scad kernel.
func KernelFor(path string, cfg config.Config) kernel.Kernel {
	if format(path) == ".stl" {
		return sdfx.NewWithCells(cfg.MeshCells)
	}
	return scad.New()
}

// Write exports b to path, choosing the writer from the extension. b must
// have been built on k.
func Write(path string, b tessellate.Built, k kernel.Kernel, cfg config.Config) error {
	switch format(path) {
	case ".stl":
		m, err := k.ToMesh(b.Result.Solid)
		if err != nil {
			return fmt.Errorf("part %q: %w", b.Name, err)
		}
		m.PartName = b.Name
		return WriteSTL(path, m)
	case ".scad":
		return WriteSCAD(path, b.Name, b.Result.Solid)
	case ".dxf":
		return WriteDXF(path, b.Name, b.Result, cfg)
	case ".pdf":
		return WritePDF(path, b.Name, b.Result, cfg)
	}
	return fmt.Errorf("%w %q, want one of %s", ErrUnknownFormat, filepath.Ext(path), strings.Join(Formats, " "))
}

// PartPath derives the output file of one part. A single part writes to
// path itself; several parts get their name appended to the base name.
func PartPath(path, name string, parts int) string {
	if parts <= 1 {
		return path
	}
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "-" + name + ext
}
