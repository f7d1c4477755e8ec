package x11

import (
	"github.com/jezek/xgb/xproto"
	"github.com/jezek/xgbutil/icccm"

	"github.com/tilewm/tilewm/internal/wm"
)

// ScanCandidates lists the top-level windows that existed before the window
// manager started. Transient windows are returned separately so they can be
// adopted after their parents.
func (c *Conn) ScanCandidates() (normal, transient []wm.Window) {
	conn := c.xu.Conn()
	tree, err := xproto.QueryTree(conn, c.root).Reply()
	if err != nil {
		c.logger.Warnf("query tree: %v", err)
		return nil, nil
	}
	cookies := make([]xproto.GetWindowAttributesCookie, len(tree.Children))
	for i, child := range tree.Children {
		cookies[i] = xproto.GetWindowAttributes(conn, child)
	}
	for i, child := range tree.Children {
		attrs, err := cookies[i].Reply()
		if err != nil || attrs.OverrideRedirect {
			continue
		}
		visible := attrs.MapState == xproto.MapStateViewable || c.iconic(child)
		if !visible {
			continue
		}
		if _, err := icccm.WmTransientForGet(c.xu, child); err == nil {
			transient = append(transient, uint32(child))
			continue
		}
		normal = append(normal, uint32(child))
	}
	return normal, transient
}

func (c *Conn) iconic(win xproto.Window) bool {
	st, err := icccm.WmStateGet(c.xu, win)
	return err == nil && st.State == icccm.StateIconic
}
