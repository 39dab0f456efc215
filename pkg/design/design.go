// Package design holds the ordered set of named parts produced by one
// script evaluation.
package design

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/chazu/tubeclamp/pkg/clamp"
	"github.com/chazu/tubeclamp/pkg/config"
	"github.com/chazu/tubeclamp/pkg/kernel"
)

// PartID is a content-addressed identifier derived from the part name.
type PartID string

// NewPartID hashes name into a PartID.
func NewPartID(name string) PartID {
	sum := sha256.Sum256([]byte("defpart/" + name))
	return PartID(hex.EncodeToString(sum[:]))
}

// Short returns the first 8 hex digits, for messages.
func (id PartID) Short() string {
	if len(id) <= 8 {
		return string(id)
	}
	return string(id[:8])
}

// IsZero reports whether id is unset.
func (id PartID) IsZero() bool { return id == "" }

// Part is one named clamp in a design.
type Part struct {
	ID      PartID
	Name    string
	Request clamp.Request
	// Mirror, when set, reflects the built part across the plane normal to
	// the axis and moves it back to positive coordinates.
	Mirror *kernel.Axis
}

// Design is the data structure produced by script evaluation. Each
// evaluation produces a new Design; it is not shared between runs.
type Design struct {
	Parts     []*Part
	NameIndex map[string]PartID
	Config    config.Config
	Version   uint64
}

// New creates an empty Design using cfg for every part.
func New(cfg config.Config) *Design {
	return &Design{
		NameIndex: make(map[string]PartID),
		Config:    cfg,
	}
}

// Define adds a named part. Names must be unique within a design.
func (d *Design) Define(name string, req clamp.Request, mirror *kernel.Axis) (*Part, error) {
	if name == "" {
		return nil, fmt.Errorf("design: part name is empty")
	}
	if req == nil {
		return nil, fmt.Errorf("design: part %q has no parameters", name)
	}
	if _, exists := d.NameIndex[name]; exists {
		return nil, fmt.Errorf("design: part name %q already defined", name)
	}
	p := &Part{ID: NewPartID(name), Name: name, Request: req, Mirror: mirror}
	d.Add(p)
	return p, nil
}

// Add appends p without checking for duplicates.
func (d *Design) Add(p *Part) {
	d.Parts = append(d.Parts, p)
	if p.Name != "" {
		d.NameIndex[p.Name] = p.ID
	}
}

// Lookup returns the part with the given name, or nil.
func (d *Design) Lookup(name string) *Part {
	id, ok := d.NameIndex[name]
	if !ok {
		return nil
	}
	for _, p := range d.Parts {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// MustLookup returns the part with the given name, or panics.
func (d *Design) MustLookup(name string) *Part {
	p := d.Lookup(name)
	if p == nil {
		panic(fmt.Sprintf("design: no part named %q", name))
	}
	return p
}

// Names returns the part names in definition order.
func (d *Design) Names() []string {
	names := make([]string, len(d.Parts))
	for i, p := range d.Parts {
		names[i] = p.Name
	}
	return names
}

// Len returns the number of parts.
func (d *Design) Len() int { return len(d.Parts) }
