package layout

import (
	"fmt"
	"strings"
)

// Kind identifies an arrange algorithm.
type Kind int

const (
	KindTile Kind = iota
	KindMonocle
	KindSpiral
	KindDwindle
	KindGrid
	// KindFloat leaves every client where it is.
	KindFloat
)

var kindNames = map[Kind]string{
	KindTile:    "tile",
	KindMonocle: "monocle",
	KindSpiral:  "spiral",
	KindDwindle: "dwindle",
	KindGrid:    "grid",
	KindFloat:   "float",
}

var kindSymbols = map[Kind]string{
	KindTile:    "[]=",
	KindMonocle: "[M]",
	KindSpiral:  "[@]",
	KindDwindle: "[\\]",
	KindGrid:    "HHH",
	KindFloat:   "><>",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// DefaultSymbol returns the bar symbol used when the config does not name one.
func (k Kind) DefaultSymbol() string {
	return kindSymbols[k]
}

// Arranges reports whether the kind positions tiled clients at all.
func (k Kind) Arranges() bool {
	return k != KindFloat
}

// ParseKind resolves a layout name from configuration.
func ParseKind(name string) (Kind, error) {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "fibonacci" {
		return KindSpiral, nil
	}
	for k, n := range kindNames {
		if n == lower {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown layout %q", name)
}

// Compute returns the outer rectangle (borders included) of each of n tiled
// clients in list order.
func Compute(k Kind, p Params, n int) []Rect {
	if n <= 0 {
		return nil
	}
	switch k {
	case KindTile:
		return Tile(p, n)
	case KindMonocle:
		return Monocle(p, n)
	case KindSpiral:
		return Fibonacci(p, n, false)
	case KindDwindle:
		return Fibonacci(p, n, true)
	case KindGrid:
		return Grid(p, n)
	case KindFloat:
		return nil
	default:
		return nil
	}
}
