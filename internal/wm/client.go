package wm

import "github.com/tilewm/tilewm/internal/layout"

// Client is one managed top-level window.
type Client struct {
	handle Handle
	win    Window
	mon    *Monitor

	name     string
	class    string
	instance string

	geom    layout.Rect
	oldGeom layout.Rect
	bw      int
	oldBW   int
	// ruleBW is the rule border override, -1 when unset.
	ruleBW int
	hints  layout.SizeHints

	tags       uint32
	floating   bool
	forceTile  bool
	behind     bool
	urgent     bool
	fullscreen bool
	neverFocus bool
	warp       bool
	panel      bool
}

// Window returns the protocol window id.
func (c *Client) Window() Window { return c.win }

// Handle returns the arena handle.
func (c *Client) Handle() Handle { return c.handle }

// Monitor returns the owning monitor.
func (c *Client) Monitor() *Monitor { return c.mon }

// Name returns the window title.
func (c *Client) Name() string { return c.name }

// Class returns the WM_CLASS class part.
func (c *Client) Class() string { return c.class }

// Instance returns the WM_CLASS instance part.
func (c *Client) Instance() string { return c.instance }

// Geometry returns the client rectangle, borders excluded.
func (c *Client) Geometry() layout.Rect { return c.geom }

// Border returns the configured border width.
func (c *Client) Border() int { return c.bw }

// Tags returns the tag bitmask.
func (c *Client) Tags() uint32 { return c.tags }

// Floating reports whether the client floats.
func (c *Client) Floating() bool { return c.floating }

// ForceTile reports whether the client is exempt from the floating singleton.
func (c *Client) ForceTile() bool { return c.forceTile }

// Fullscreen reports the _NET_WM_STATE_FULLSCREEN annotation.
func (c *Client) Fullscreen() bool { return c.fullscreen }

// Panel reports whether the client is a designated utility window.
func (c *Client) Panel() bool { return c.panel }

// Urgent reports the urgency hint.
func (c *Client) Urgent() bool { return c.urgent }

// Behind reports whether the floating client stays below tiled windows.
func (c *Client) Behind() bool { return c.behind }

// participant reports whether the floating singleton policy governs c.
func (c *Client) participant() bool {
	return !c.panel && !c.forceTile
}

// outerWidth is the width including both borders.
func (c *Client) outerWidth() int { return c.geom.Width + 2*c.bw }

func (c *Client) outerHeight() int { return c.geom.Height + 2*c.bw }

func (c *Client) visible() bool {
	return c.mon != nil && c.tags&c.mon.tagset[c.mon.seltags] != 0
}

func (c *Client) visibleOnTags(tags uint32) bool {
	return c.tags&tags != 0
}

// effectiveBorder is the border sent to the display.
func (c *Client) effectiveBorder() int {
	if c.ruleBW >= 0 && !c.fullscreen {
		return c.ruleBW
	}
	return c.bw
}
