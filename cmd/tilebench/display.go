package main

import (
	"fmt"

	"github.com/tilewm/tilewm/internal/layout"
	"github.com/tilewm/tilewm/internal/wm"
)

const benchRoot wm.Window = 1

type benchWindow struct {
	info    wm.WindowInfo
	state   wm.ClientState
	deletes bool
}

// recordingDisplay stands in for the X server during replay. It keeps just
// enough window state for the window manager's queries and counts every
// request that would have been sent.
type recordingDisplay struct {
	windows  map[wm.Window]*benchWindow
	requests int
	pointerX int
	pointerY int
}

func newRecordingDisplay(windows []fixtureWindow) *recordingDisplay {
	d := &recordingDisplay{windows: make(map[wm.Window]*benchWindow, len(windows))}
	for _, fw := range windows {
		d.windows[fw.ID] = &benchWindow{info: fw.info(), deletes: fw.Deletes}
	}
	return d
}

func (d *recordingDisplay) Requests() int { return d.requests }

func (d *recordingDisplay) forget(win wm.Window) { delete(d.windows, win) }

func (d *recordingDisplay) request(win wm.Window) (*benchWindow, error) {
	d.requests++
	bw, ok := d.windows[win]
	if !ok {
		return nil, fmt.Errorf("bad window %#x", win)
	}
	return bw, nil
}

func (d *recordingDisplay) Configure(win uint32, r layout.Rect, border int) error {
	bw, err := d.request(win)
	if err != nil {
		return err
	}
	bw.info.Geometry = r
	bw.info.BorderWidth = border
	return nil
}

func (d *recordingDisplay) Root() wm.Window { return benchRoot }

func (d *recordingDisplay) QueryWindow(win wm.Window) (wm.WindowInfo, error) {
	bw, err := d.request(win)
	if err != nil {
		return wm.WindowInfo{}, err
	}
	return bw.info, nil
}

func (d *recordingDisplay) Name(win wm.Window) string {
	if bw, err := d.request(win); err == nil {
		return bw.info.Name
	}
	return ""
}

func (d *recordingDisplay) SizeHints(win wm.Window) layout.SizeHints {
	if bw, err := d.request(win); err == nil {
		return bw.info.Hints
	}
	return layout.SizeHints{}
}

func (d *recordingDisplay) WMHints(win wm.Window) (bool, bool) {
	if bw, err := d.request(win); err == nil {
		return bw.info.Urgent, bw.info.NeverFocus
	}
	return false, false
}

func (d *recordingDisplay) TransientFor(win wm.Window) wm.Window {
	if bw, err := d.request(win); err == nil {
		return bw.info.TransientFor
	}
	return 0
}

func (d *recordingDisplay) WindowType(win wm.Window) (bool, bool) {
	if bw, err := d.request(win); err == nil {
		return bw.info.Dialog, bw.info.Fullscreen
	}
	return false, false
}

func (d *recordingDisplay) SendConfigureNotify(win wm.Window, _ layout.Rect, _ int) error {
	_, err := d.request(win)
	return err
}

func (d *recordingDisplay) ForwardConfigure(win wm.Window, req wm.ConfigureRequest) error {
	bw, err := d.request(win)
	if err != nil {
		return err
	}
	g := &bw.info.Geometry
	if req.Mask&wm.ConfigX != 0 {
		g.X = req.X
	}
	if req.Mask&wm.ConfigY != 0 {
		g.Y = req.Y
	}
	if req.Mask&wm.ConfigWidth != 0 {
		g.Width = req.Width
	}
	if req.Mask&wm.ConfigHeight != 0 {
		g.Height = req.Height
	}
	return nil
}

func (d *recordingDisplay) Move(win wm.Window, x, y int) error {
	bw, err := d.request(win)
	if err != nil {
		return err
	}
	bw.info.Geometry.X, bw.info.Geometry.Y = x, y
	return nil
}

func (d *recordingDisplay) SetBorderWidth(win wm.Window, border int) error {
	bw, err := d.request(win)
	if err != nil {
		return err
	}
	bw.info.BorderWidth = border
	return nil
}

func (d *recordingDisplay) SetState(win wm.Window, state wm.ClientState) error {
	bw, err := d.request(win)
	if err != nil {
		return err
	}
	bw.state = state
	return nil
}

func (d *recordingDisplay) State(win wm.Window) wm.ClientState {
	if bw, ok := d.windows[win]; ok {
		return bw.state
	}
	return wm.StateWithdrawn
}

func (d *recordingDisplay) SendProtocol(win wm.Window, proto string) (bool, error) {
	bw, err := d.request(win)
	if err != nil {
		return false, err
	}
	return proto == wm.ProtoDelete && bw.deletes, nil
}

func (d *recordingDisplay) KillClient(win wm.Window) error {
	_, err := d.request(win)
	return err
}

func (d *recordingDisplay) SetBorderColor(win wm.Window, _ bool) error {
	_, err := d.request(win)
	return err
}

func (d *recordingDisplay) Map(win wm.Window) error {
	_, err := d.request(win)
	return err
}

func (d *recordingDisplay) Unmap(win wm.Window) error {
	_, err := d.request(win)
	return err
}

func (d *recordingDisplay) Raise(win wm.Window) error {
	_, err := d.request(win)
	return err
}

func (d *recordingDisplay) Lower(win wm.Window) error {
	_, err := d.request(win)
	return err
}

func (d *recordingDisplay) StackTiled(order []wm.Window) error {
	d.requests += len(order)
	return nil
}

func (d *recordingDisplay) SetFullscreen(win wm.Window, _ bool) error {
	_, err := d.request(win)
	return err
}

func (d *recordingDisplay) SetUrgent(win wm.Window, _ bool) error {
	_, err := d.request(win)
	return err
}

func (d *recordingDisplay) SetInputFocus(win wm.Window) error {
	_, err := d.request(win)
	return err
}

func (d *recordingDisplay) GrabButtons(win wm.Window, _ bool) error {
	_, err := d.request(win)
	return err
}

func (d *recordingDisplay) UngrabButtons(win wm.Window) error {
	_, err := d.request(win)
	return err
}

func (d *recordingDisplay) WarpPointer(_ wm.Window, x, y int) error {
	d.requests++
	d.pointerX, d.pointerY = x, y
	return nil
}

func (d *recordingDisplay) QueryPointer() (int, int, bool) {
	d.requests++
	return d.pointerX, d.pointerY, true
}

func (d *recordingDisplay) SetActiveWindow(wm.Window) error { return d.count() }
func (d *recordingDisplay) SetClientList([]wm.Window) error { return d.count() }
func (d *recordingDisplay) FocusRoot() error                 { return d.count() }
func (d *recordingDisplay) GrabPointer(wm.Cursor) error      { return d.count() }
func (d *recordingDisplay) UngrabPointer() error             { return d.count() }
func (d *recordingDisplay) DiscardEnterEvents()              { d.requests++ }

func (d *recordingDisplay) count() error {
	d.requests++
	return nil
}
