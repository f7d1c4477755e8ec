package x11

import (
	"errors"
	"fmt"
	"slices"

	"github.com/jezek/xgb/xproto"
	"github.com/jezek/xgbutil/ewmh"
	"github.com/jezek/xgbutil/icccm"
	"github.com/jezek/xgbutil/mousebind"
	"github.com/jezek/xgbutil/xprop"

	"github.com/tilewm/tilewm/internal/layout"
	"github.com/tilewm/tilewm/internal/wm"
)

var _ wm.Display = (*Conn)(nil)

// QueryWindow reads what the core needs to adopt win and subscribes to the
// window's crossing, focus, property and structure events.
func (c *Conn) QueryWindow(win wm.Window) (wm.WindowInfo, error) {
	conn := c.xu.Conn()
	w := xproto.Window(win)
	geom, err := xproto.GetGeometry(conn, xproto.Drawable(w)).Reply()
	if err != nil {
		return wm.WindowInfo{}, fmt.Errorf("get geometry: %w", err)
	}
	xproto.ChangeWindowAttributes(conn, w, xproto.CwEventMask, []uint32{clientEventMask})

	info := wm.WindowInfo{
		Geometry: layout.Rect{
			X:      int(geom.X),
			Y:      int(geom.Y),
			Width:  int(geom.Width),
			Height: int(geom.Height),
		},
		BorderWidth:  int(geom.BorderWidth),
		Name:         c.Name(win),
		TransientFor: c.TransientFor(win),
		Hints:        c.SizeHints(win),
	}
	if class, err := icccm.WmClassGet(c.xu, w); err == nil {
		info.Class, info.Instance = class.Class, class.Instance
	}
	info.Dialog, info.Fullscreen = c.WindowType(win)
	info.Urgent, info.NeverFocus = c.WMHints(win)
	return info, nil
}

// Name prefers _NET_WM_NAME over WM_NAME.
func (c *Conn) Name(win wm.Window) string {
	if name, err := ewmh.WmNameGet(c.xu, xproto.Window(win)); err == nil && name != "" {
		return name
	}
	name, _ := icccm.WmNameGet(c.xu, xproto.Window(win))
	return name
}

func (c *Conn) SizeHints(win wm.Window) layout.SizeHints {
	nh, err := icccm.WmNormalHintsGet(c.xu, xproto.Window(win))
	if err != nil {
		return layout.SizeHints{}
	}
	return sizeHints(nh)
}

// sizeHints converts WM_NORMAL_HINTS. A missing base size falls back to the
// minimum size and vice versa.
func sizeHints(nh *icccm.NormalHints) layout.SizeHints {
	var h layout.SizeHints
	switch {
	case nh.Flags&icccm.SizeHintPBaseSize != 0:
		h.BaseW, h.BaseH = int(nh.BaseWidth), int(nh.BaseHeight)
	case nh.Flags&icccm.SizeHintPMinSize != 0:
		h.BaseW, h.BaseH = int(nh.MinWidth), int(nh.MinHeight)
	}
	if nh.Flags&icccm.SizeHintPResizeInc != 0 {
		h.IncW, h.IncH = int(nh.WidthInc), int(nh.HeightInc)
	}
	if nh.Flags&icccm.SizeHintPMaxSize != 0 {
		h.MaxW, h.MaxH = int(nh.MaxWidth), int(nh.MaxHeight)
	}
	switch {
	case nh.Flags&icccm.SizeHintPMinSize != 0:
		h.MinW, h.MinH = int(nh.MinWidth), int(nh.MinHeight)
	case nh.Flags&icccm.SizeHintPBaseSize != 0:
		h.MinW, h.MinH = int(nh.BaseWidth), int(nh.BaseHeight)
	}
	if nh.Flags&icccm.SizeHintPAspect != 0 && nh.MinAspectNum > 0 && nh.MaxAspectDen > 0 {
		h.MinAspect = float64(nh.MinAspectDen) / float64(nh.MinAspectNum)
		h.MaxAspect = float64(nh.MaxAspectNum) / float64(nh.MaxAspectDen)
	}
	return h
}

func (c *Conn) WMHints(win wm.Window) (urgent, neverFocus bool) {
	hints, err := icccm.WmHintsGet(c.xu, xproto.Window(win))
	if err != nil {
		return false, false
	}
	urgent = hints.Flags&icccm.HintUrgency != 0
	neverFocus = hints.Flags&icccm.HintInput != 0 && hints.Input == 0
	return urgent, neverFocus
}

func (c *Conn) TransientFor(win wm.Window) wm.Window {
	parent, err := icccm.WmTransientForGet(c.xu, xproto.Window(win))
	if err != nil {
		return 0
	}
	return uint32(parent)
}

func (c *Conn) WindowType(win wm.Window) (dialog, fullscreen bool) {
	if states, err := ewmh.WmStateGet(c.xu, xproto.Window(win)); err == nil {
		fullscreen = slices.Contains(states, "_NET_WM_STATE_FULLSCREEN")
	}
	if types, err := ewmh.WmWindowTypeGet(c.xu, xproto.Window(win)); err == nil {
		dialog = slices.Contains(types, "_NET_WM_WINDOW_TYPE_DIALOG")
	}
	return dialog, fullscreen
}

// Configure moves and resizes win and tells the client about it.
func (c *Conn) Configure(win uint32, r layout.Rect, border int) error {
	mask := uint16(xproto.ConfigWindowX | xproto.ConfigWindowY | xproto.ConfigWindowWidth |
		xproto.ConfigWindowHeight | xproto.ConfigWindowBorderWidth)
	values := []uint32{uint32(r.X), uint32(r.Y), uint32(r.Width), uint32(r.Height), uint32(border)}
	xproto.ConfigureWindow(c.xu.Conn(), xproto.Window(win), mask, values)
	return c.SendConfigureNotify(win, r, border)
}

// SendConfigureNotify sends the synthetic ConfigureNotify ICCCM requires
// when a configure request is answered without a real change.
func (c *Conn) SendConfigureNotify(win wm.Window, r layout.Rect, border int) error {
	ev := xproto.ConfigureNotifyEvent{
		Event:       xproto.Window(win),
		Window:      xproto.Window(win),
		X:           int16(r.X),
		Y:           int16(r.Y),
		Width:       uint16(r.Width),
		Height:      uint16(r.Height),
		BorderWidth: uint16(border),
	}
	return xproto.SendEventChecked(c.xu.Conn(), false, xproto.Window(win),
		xproto.EventMaskStructureNotify, string(ev.Bytes())).Check()
}

func (c *Conn) ForwardConfigure(win wm.Window, req wm.ConfigureRequest) error {
	mask, values := configureValues(req)
	xproto.ConfigureWindow(c.xu.Conn(), xproto.Window(win), mask, values)
	return nil
}

// configureValues builds the value list of a ConfigureWindow request in
// mask bit order.
func configureValues(req wm.ConfigureRequest) (uint16, []uint32) {
	var values []uint32
	if req.Mask&wm.ConfigX != 0 {
		values = append(values, uint32(req.X))
	}
	if req.Mask&wm.ConfigY != 0 {
		values = append(values, uint32(req.Y))
	}
	if req.Mask&wm.ConfigWidth != 0 {
		values = append(values, uint32(req.Width))
	}
	if req.Mask&wm.ConfigHeight != 0 {
		values = append(values, uint32(req.Height))
	}
	if req.Mask&wm.ConfigBorder != 0 {
		values = append(values, uint32(req.Border))
	}
	if req.Mask&wm.ConfigSibling != 0 {
		values = append(values, req.Sibling)
	}
	if req.Mask&wm.ConfigStackMode != 0 {
		values = append(values, uint32(req.StackMode))
	}
	return uint16(req.Mask), values
}

func (c *Conn) Move(win wm.Window, x, y int) error {
	xproto.ConfigureWindow(c.xu.Conn(), xproto.Window(win),
		xproto.ConfigWindowX|xproto.ConfigWindowY, []uint32{uint32(x), uint32(y)})
	return nil
}

func (c *Conn) SetBorderWidth(win wm.Window, border int) error {
	xproto.ConfigureWindow(c.xu.Conn(), xproto.Window(win),
		xproto.ConfigWindowBorderWidth, []uint32{uint32(border)})
	return nil
}

func (c *Conn) SetBorderColor(win wm.Window, focused bool) error {
	c.mu.Lock()
	pixel := c.normPix
	if focused {
		pixel = c.selPix
	}
	c.mu.Unlock()
	xproto.ChangeWindowAttributes(c.xu.Conn(), xproto.Window(win), xproto.CwBorderPixel, []uint32{pixel})
	return nil
}

func (c *Conn) Map(win wm.Window) error {
	xproto.MapWindow(c.xu.Conn(), xproto.Window(win))
	return nil
}

// Unmap hides win without the resulting UnmapNotify reaching the event
// loop, where it would unmanage the client.
func (c *Conn) Unmap(win wm.Window) error {
	conn := c.xu.Conn()
	w := xproto.Window(win)
	xproto.GrabServer(conn)
	xproto.ChangeWindowAttributes(conn, c.root, xproto.CwEventMask,
		[]uint32{rootEventMask &^ xproto.EventMaskSubstructureNotify})
	xproto.ChangeWindowAttributes(conn, w, xproto.CwEventMask,
		[]uint32{clientEventMask &^ xproto.EventMaskStructureNotify})
	xproto.UnmapWindow(conn, w)
	xproto.ChangeWindowAttributes(conn, c.root, xproto.CwEventMask, []uint32{rootEventMask})
	xproto.ChangeWindowAttributes(conn, w, xproto.CwEventMask, []uint32{clientEventMask})
	xproto.UngrabServer(conn)
	return nil
}

func (c *Conn) Raise(win wm.Window) error {
	xproto.ConfigureWindow(c.xu.Conn(), xproto.Window(win),
		xproto.ConfigWindowStackMode, []uint32{xproto.StackModeAbove})
	return nil
}

func (c *Conn) Lower(win wm.Window) error {
	xproto.ConfigureWindow(c.xu.Conn(), xproto.Window(win),
		xproto.ConfigWindowStackMode, []uint32{xproto.StackModeBelow})
	return nil
}

// StackTiled sends order to the bottom of the stack, first window on top.
func (c *Conn) StackTiled(order []wm.Window) error {
	conn := c.xu.Conn()
	for i, win := range order {
		if i == 0 {
			xproto.ConfigureWindow(conn, xproto.Window(win),
				xproto.ConfigWindowStackMode, []uint32{xproto.StackModeBelow})
			continue
		}
		xproto.ConfigureWindow(conn, xproto.Window(win),
			xproto.ConfigWindowSibling|xproto.ConfigWindowStackMode,
			[]uint32{order[i-1], xproto.StackModeBelow})
	}
	return nil
}

func (c *Conn) State(win wm.Window) wm.ClientState {
	st, err := icccm.WmStateGet(c.xu, xproto.Window(win))
	if err != nil {
		return wm.StateWithdrawn
	}
	return wm.ClientState(st.State)
}

func (c *Conn) SetState(win wm.Window, state wm.ClientState) error {
	return icccm.WmStateSet(c.xu, xproto.Window(win), &icccm.WmState{State: uint(state)})
}

func (c *Conn) SetFullscreen(win wm.Window, on bool) error {
	states := []string{}
	if on {
		states = append(states, "_NET_WM_STATE_FULLSCREEN")
	}
	return ewmh.WmStateSet(c.xu, xproto.Window(win), states)
}

func (c *Conn) SetUrgent(win wm.Window, on bool) error {
	hints, err := icccm.WmHintsGet(c.xu, xproto.Window(win))
	if err != nil {
		return err
	}
	if on {
		hints.Flags |= icccm.HintUrgency
	} else {
		hints.Flags &^= icccm.HintUrgency
	}
	return icccm.WmHintsSet(c.xu, xproto.Window(win), hints)
}

// SetActiveWindow publishes _NET_ACTIVE_WINDOW; zero removes it.
func (c *Conn) SetActiveWindow(win wm.Window) error {
	if win == 0 {
		return xproto.DeletePropertyChecked(c.xu.Conn(), c.root, c.atoms.activeWindow).Check()
	}
	return ewmh.ActiveWindowSet(c.xu, xproto.Window(win))
}

func (c *Conn) SetClientList(wins []wm.Window) error {
	list := make([]xproto.Window, len(wins))
	for i, win := range wins {
		list[i] = xproto.Window(win)
	}
	return ewmh.ClientListSet(c.xu, list)
}

func (c *Conn) SetInputFocus(win wm.Window) error {
	xproto.SetInputFocus(c.xu.Conn(), xproto.InputFocusPointerRoot, xproto.Window(win), xproto.TimeCurrentTime)
	return nil
}

func (c *Conn) FocusRoot() error {
	xproto.SetInputFocus(c.xu.Conn(), xproto.InputFocusPointerRoot, c.root, xproto.TimeCurrentTime)
	return c.SetActiveWindow(0)
}

// SendProtocol delivers a WM_PROTOCOLS message if win advertises proto. It
// reports whether the client supports the protocol.
func (c *Conn) SendProtocol(win wm.Window, proto string) (bool, error) {
	protocols, err := icccm.WmProtocolsGet(c.xu, xproto.Window(win))
	if err != nil || !slices.Contains(protocols, proto) {
		return false, nil
	}
	atom, err := xprop.Atm(c.xu, proto)
	if err != nil {
		return false, err
	}
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: xproto.Window(win),
		Type:   c.atoms.protocols,
		Data: xproto.ClientMessageDataUnionData32New([]uint32{
			uint32(atom),
			uint32(xproto.TimeCurrentTime),
			0, 0, 0,
		}),
	}
	err = xproto.SendEventChecked(c.xu.Conn(), false, xproto.Window(win),
		xproto.EventMaskNoEvent, string(ev.Bytes())).Check()
	return true, err
}

// KillClient disconnects the client owning win.
func (c *Conn) KillClient(win wm.Window) error {
	conn := c.xu.Conn()
	xproto.GrabServer(conn)
	xproto.SetCloseDownMode(conn, xproto.CloseDownDestroyAll)
	err := xproto.KillClientChecked(conn, win).Check()
	xproto.UngrabServer(conn)
	return err
}

func (c *Conn) WarpPointer(win wm.Window, x, y int) error {
	xproto.WarpPointer(c.xu.Conn(), xproto.WindowNone, xproto.Window(win), 0, 0, 0, 0, int16(x), int16(y))
	return nil
}

func (c *Conn) QueryPointer() (x, y int, ok bool) {
	reply, err := xproto.QueryPointer(c.xu.Conn(), c.root).Reply()
	if err != nil {
		return 0, 0, false
	}
	return int(reply.RootX), int(reply.RootY), true
}

func (c *Conn) GrabPointer(cursor wm.Cursor) error {
	ok, err := mousebind.GrabPointer(c.xu, c.root, xproto.WindowNone, c.cursors[cursor])
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("pointer is grabbed by another client")
	}
	return nil
}

func (c *Conn) UngrabPointer() error {
	mousebind.UngrabPointer(c.xu)
	return nil
}

// DiscardEnterEvents drops every EnterNotify the server generated before
// this call. Restacking and moving windows under the pointer would
// otherwise steal focus.
func (c *Conn) DiscardEnterEvents() {
	cookie := xproto.GetInputFocus(c.xu.Conn())
	if _, err := cookie.Reply(); err != nil {
		return
	}
	c.discard.Store(uint32(cookie.Sequence))
	c.discards.Store(true)
}

// Stale reports whether ev was generated before the last call to
// DiscardEnterEvents.
func (c *Conn) Stale(ev wm.Event) bool {
	if ev.Kind != wm.EventEnterNotify || !c.discards.Load() {
		return false
	}
	return seqNotAfter(ev.Serial, uint16(c.discard.Load()))
}

// seqNotAfter compares 16-bit request sequence numbers with wrap-around.
func seqNotAfter(a, b uint16) bool {
	return int16(a-b) <= 0
}
