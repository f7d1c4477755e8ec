package x11

import (
	"github.com/jezek/xgb/randr"
	"github.com/jezek/xgbutil/xinerama"
	"github.com/jezek/xgbutil/xrect"
	"github.com/jezek/xgbutil/xwindow"

	"github.com/tilewm/tilewm/internal/layout"
)

// Heads returns the physical monitor rectangles. RandR outputs are used when
// the extension is present, Xinerama otherwise, and the root window as a
// last resort.
func (c *Conn) Heads() []layout.Rect {
	if c.randr {
		if heads, err := c.randrHeads(); err == nil && len(heads) > 0 {
			return heads
		} else if err != nil {
			c.logger.Debugf("randr heads: %v", err)
		}
	}
	if c.xinerama {
		if heads, err := xinerama.PhysicalHeads(c.xu); err == nil && len(heads) > 0 {
			return fromRects(heads)
		}
	}
	geom, err := xwindow.New(c.xu, c.root).Geometry()
	if err != nil {
		w, h := c.Screen()
		return []layout.Rect{{Width: w, Height: h}}
	}
	return fromRects([]xrect.Rect{geom})
}

func (c *Conn) randrHeads() ([]layout.Rect, error) {
	conn := c.xu.Conn()
	resources, err := randr.GetScreenResources(conn, c.root).Reply()
	if err != nil {
		return nil, err
	}
	primary, err := randr.GetOutputPrimary(conn, c.root).Reply()
	if err != nil {
		return nil, err
	}
	var heads []layout.Rect
	seen := make(map[randr.Crtc]bool)
	for _, output := range resources.Outputs {
		info, err := randr.GetOutputInfo(conn, output, 0).Reply()
		if err != nil {
			return nil, err
		}
		if info.Connection != randr.ConnectionConnected || info.Crtc == 0 || seen[info.Crtc] {
			continue
		}
		seen[info.Crtc] = true
		crtc, err := randr.GetCrtcInfo(conn, info.Crtc, 0).Reply()
		if err != nil {
			return nil, err
		}
		head := layout.Rect{X: int(crtc.X), Y: int(crtc.Y), Width: int(crtc.Width), Height: int(crtc.Height)}
		if output == primary.Output {
			heads = append([]layout.Rect{head}, heads...)
			continue
		}
		heads = append(heads, head)
	}
	return heads, nil
}

func fromRects(rects []xrect.Rect) []layout.Rect {
	out := make([]layout.Rect, 0, len(rects))
	for _, r := range rects {
		out = append(out, layout.Rect{X: r.X(), Y: r.Y(), Width: r.Width(), Height: r.Height()})
	}
	return out
}
