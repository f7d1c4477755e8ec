package layout

import (
	"errors"
	"fmt"
)

// Configurer applies geometry to a protocol window.
type Configurer interface {
	Configure(win uint32, r Rect, border int) error
}

// Placement is a single geometry change for a window. Rect excludes borders.
type Placement struct {
	Window uint32 `json:"window"`
	Rect   Rect   `json:"rect"`
	Border int    `json:"border"`
}

// Plan is an ordered collection of placements produced by one arrange pass.
type Plan struct {
	Placements []Placement
}

// Add appends a placement.
func (p *Plan) Add(win uint32, r Rect, border int) {
	p.Placements = append(p.Placements, Placement{Window: win, Rect: r, Border: border})
}

// Merge merges other plan into this one.
func (p *Plan) Merge(other Plan) {
	p.Placements = append(p.Placements, other.Placements...)
}

// Len returns the number of placements.
func (p Plan) Len() int { return len(p.Placements) }

// Execute applies every placement. A window that vanished mid-pass must not
// abort the rest, so failures are collected and returned together.
func (p Plan) Execute(c Configurer) error {
	var errs []error
	for _, pl := range p.Placements {
		if err := c.Configure(pl.Window, pl.Rect, pl.Border); err != nil {
			errs = append(errs, fmt.Errorf("configure %#x: %w", pl.Window, err))
		}
	}
	return errors.Join(errs...)
}
