package layout

import (
	"fmt"
	"strings"
)

// Position is one of the nine reference points of a work area.
type Position int

const (
	PosNone Position = iota
	PosNorth
	PosNorthEast
	PosEast
	PosSouthEast
	PosSouth
	PosSouthWest
	PosWest
	PosNorthWest
	PosCenter
)

var positionNames = map[string]Position{
	"":          PosNone,
	"none":      PosNone,
	"n":         PosNorth,
	"north":     PosNorth,
	"ne":        PosNorthEast,
	"northeast": PosNorthEast,
	"e":         PosEast,
	"east":      PosEast,
	"se":        PosSouthEast,
	"southeast": PosSouthEast,
	"s":         PosSouth,
	"south":     PosSouth,
	"sw":        PosSouthWest,
	"southwest": PosSouthWest,
	"w":         PosWest,
	"west":      PosWest,
	"nw":        PosNorthWest,
	"northwest": PosNorthWest,
	"c":         PosCenter,
	"center":    PosCenter,
}

// ParsePosition accepts compass abbreviations and full names.
func ParsePosition(s string) (Position, error) {
	if p, ok := positionNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return p, nil
	}
	return PosNone, fmt.Errorf("unknown position %q", s)
}

func (p Position) String() string {
	switch p {
	case PosNorth:
		return "n"
	case PosNorthEast:
		return "ne"
	case PosEast:
		return "e"
	case PosSouthEast:
		return "se"
	case PosSouth:
		return "s"
	case PosSouthWest:
		return "sw"
	case PosWest:
		return "w"
	case PosNorthWest:
		return "nw"
	case PosCenter:
		return "center"
	default:
		return "none"
	}
}

// Throw returns the new top-left corner for a client rectangle c (borders
// excluded) thrown towards pos. Axes the position does not name keep the
// client's current coordinate.
func Throw(pos Position, work Rect, gap, border int, c Rect) (x, y int, ok bool) {
	x, y = c.X, c.Y
	left := work.X + gap
	right := work.Right() - c.Width - 2*border - gap
	top := work.Y + gap
	bottom := work.Bottom() - c.Height - 2*border - gap
	switch pos {
	case PosNorth:
		y = top
	case PosNorthEast:
		x, y = right, top
	case PosEast:
		x = right
	case PosSouthEast:
		x, y = right, bottom
	case PosSouth:
		y = bottom
	case PosSouthWest:
		x, y = left, bottom
	case PosWest:
		x = left
	case PosNorthWest:
		x, y = left, top
	case PosCenter:
		x = work.X + (work.Width-c.Width-2*border)/2
		y = work.Y + (work.Height-c.Height-2*border)/2
	default:
		return c.X, c.Y, false
	}
	return x, y, true
}

// MarshalText renders the position by name.
func (p Position) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText parses a position name.
func (p *Position) UnmarshalText(text []byte) error {
	parsed, err := ParsePosition(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
