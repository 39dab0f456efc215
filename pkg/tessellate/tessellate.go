// Package tessellate builds every part of a design and turns the solids
// into triangle meshes.
package tessellate

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/chazu/tubeclamp/pkg/clamp"
	"github.com/chazu/tubeclamp/pkg/design"
	"github.com/chazu/tubeclamp/pkg/kernel"
)

// Built is one design part after its builder ran. Result is already
// mirrored when the part asks for it.
type Built struct {
	Name   string
	Part   *design.Part
	Result *clamp.Result
}

// Build runs the builder of every part of d on k. Parts are independent and
// built in parallel; the output keeps definition order. The first failing
// part cancels the others.
func Build(ctx context.Context, d *design.Design, k kernel.Kernel) ([]Built, error) {
	out := make([]Built, len(d.Parts))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, p := range d.Parts {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := p.Request.Build(k, d.Config)
			if err != nil {
				return fmt.Errorf("part %q: %w", p.Name, err)
			}
			if p.Mirror != nil {
				res = res.Mirrored(k, *p.Mirror)
			}
			out[i] = Built{Name: p.Name, Part: p, Result: res}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Meshes converts built parts to meshes, in order, each tagged with its
// part name.
func Meshes(ctx context.Context, built []Built, k kernel.Kernel) ([]*kernel.Mesh, error) {
	out := make([]*kernel.Mesh, len(built))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, b := range built {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			m, err := k.ToMesh(b.Result.Solid)
			if err != nil {
				return fmt.Errorf("part %q: %w", b.Name, err)
			}
			m.PartName = b.Name
			out[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Tessellate builds d and meshes every part.
func Tessellate(ctx context.Context, d *design.Design, k kernel.Kernel) ([]*kernel.Mesh, error) {
	built, err := Build(ctx, d, k)
	if err != nil {
		return nil, err
	}
	return Meshes(ctx, built, k)
}
