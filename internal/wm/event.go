package wm

import (
	"fmt"

	"github.com/tilewm/tilewm/internal/config"
	"github.com/tilewm/tilewm/internal/layout"
)

// EventKind enumerates the display events the window manager reacts to.
type EventKind int

const (
	EventMapRequest EventKind = iota
	EventConfigureRequest
	EventConfigureNotify
	EventDestroyNotify
	EventUnmapNotify
	EventEnterNotify
	EventFocusIn
	EventPropertyNotify
	EventClientMessage
	EventKeyPress
	EventButtonPress
	EventButtonRelease
	EventMotionNotify
	EventMappingNotify
	EventScreenChange
)

var eventNames = [...]string{
	EventMapRequest:       "map-request",
	EventConfigureRequest: "configure-request",
	EventConfigureNotify:  "configure-notify",
	EventDestroyNotify:    "destroy-notify",
	EventUnmapNotify:      "unmap-notify",
	EventEnterNotify:      "enter-notify",
	EventFocusIn:          "focus-in",
	EventPropertyNotify:   "property-notify",
	EventClientMessage:    "client-message",
	EventKeyPress:         "key-press",
	EventButtonPress:      "button-press",
	EventButtonRelease:    "button-release",
	EventMotionNotify:     "motion-notify",
	EventMappingNotify:    "mapping-notify",
	EventScreenChange:     "screen-change",
}

func (k EventKind) String() string {
	if int(k) >= 0 && int(k) < len(eventNames) {
		return eventNames[k]
	}
	return "unknown"
}

// ParseEventKind is the inverse of EventKind.String.
func ParseEventKind(name string) (EventKind, error) {
	for k, n := range eventNames {
		if n == name {
			return EventKind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown event kind %q", name)
}

// Property identifies the window properties whose changes matter.
type Property int

const (
	PropOther Property = iota
	PropName
	PropTransientFor
	PropNormalHints
	PropWMHints
	PropWindowType
)

// Message identifies client messages.
type Message int

const (
	MsgOther Message = iota
	MsgFullscreen
	MsgActiveWindow
)

// _NET_WM_STATE actions.
const (
	StateRemove = 0
	StateAdd    = 1
	StateToggle = 2
)

// Crossing modes and details of enter events.
const (
	NotifyNormal   = 0
	NotifyInferior = 2
)

// ConfigMask mirrors the X11 configure value mask bits.
type ConfigMask uint16

const (
	ConfigX ConfigMask = 1 << iota
	ConfigY
	ConfigWidth
	ConfigHeight
	ConfigBorder
	ConfigSibling
	ConfigStackMode
)

// ConfigureRequest is the payload of a configure request.
type ConfigureRequest struct {
	Mask      ConfigMask
	X, Y      int
	Width     int
	Height    int
	Border    int
	Sibling   Window
	StackMode uint8
}

// Event is a decoded display event. Only the fields relevant to Kind are set.
type Event struct {
	Kind   EventKind
	Window Window
	Time   uint32
	// Serial is the last request sequence number the server had processed
	// when it generated the event.
	Serial uint16

	// Pointer position in root coordinates.
	RootX, RootY int

	// Map requests.
	OverrideRedirect bool
	// Unmap notifications sent by clients rather than the server.
	Synthetic bool

	Configure ConfigureRequest

	// Crossing events.
	Mode, Detail int

	// Property changes.
	Property Property
	Deleted  bool

	// Client messages.
	Message     Message
	StateAction int

	// Key and button events carry canonical modifiers.
	Chord  string
	Mods   string
	Button int

	// Screen changes.
	Screen layout.Rect
	Heads  []layout.Rect
}

// Dispatch routes one event to its handler.
func (w *WM) Dispatch(ev Event) {
	w.metrics.RecordEvent(ev.Kind.String())
	switch ev.Kind {
	case EventMapRequest:
		w.mapRequest(ev)
	case EventConfigureRequest:
		w.configureRequest(ev)
	case EventConfigureNotify:
		w.configureNotify(ev)
	case EventDestroyNotify:
		if c := w.ClientOf(ev.Window); c != nil {
			w.Unmanage(c, true)
		}
	case EventUnmapNotify:
		w.unmapNotify(ev)
	case EventEnterNotify:
		w.enterNotify(ev)
	case EventFocusIn:
		if sel := w.Selected(); sel != nil && ev.Window != sel.win {
			w.setFocus(sel)
		}
	case EventPropertyNotify:
		w.propertyNotify(ev)
	case EventClientMessage:
		w.clientMessage(ev)
	case EventKeyPress:
		if act, ok := w.keys[ev.Chord]; ok {
			act.Run(w)
		}
	case EventButtonPress:
		w.buttonPress(ev)
	case EventButtonRelease:
		if w.drag != nil {
			w.EndDrag()
		}
	case EventMotionNotify:
		if w.drag != nil {
			w.DragMotion(ev.RootX, ev.RootY, ev.Time)
			return
		}
		w.motionNotify(ev)
	case EventMappingNotify:
		// Keyboard remapping is handled by the display adapter.
	case EventScreenChange:
		w.configureNotify(Event{Window: w.dpy.Root(), Screen: ev.Screen, Heads: ev.Heads})
	}
}

func (w *WM) mapRequest(ev Event) {
	if ev.OverrideRedirect || w.ClientOf(ev.Window) != nil {
		return
	}
	if err := w.Manage(ev.Window); err != nil {
		w.logger.Debugf("manage %#x: %v", ev.Window, err)
	}
}

func (w *WM) configureRequest(ev Event) {
	req := ev.Configure
	c := w.ClientOf(ev.Window)
	if c == nil {
		w.ignore("forward configure", w.dpy.ForwardConfigure(ev.Window, req))
		return
	}
	switch {
	case req.Mask&ConfigBorder != 0:
		c.bw = req.Border
	case c.floating || !w.layoutOf(w.selmon).kind.Arranges():
		m := c.mon
		if req.Mask&ConfigX != 0 {
			c.oldGeom.X = c.geom.X
			c.geom.X = m.screen.X + req.X
		}
		if req.Mask&ConfigY != 0 {
			c.oldGeom.Y = c.geom.Y
			c.geom.Y = m.screen.Y + req.Y
		}
		if req.Mask&ConfigWidth != 0 {
			c.oldGeom.Width = c.geom.Width
			c.geom.Width = req.Width
		}
		if req.Mask&ConfigHeight != 0 {
			c.oldGeom.Height = c.geom.Height
			c.geom.Height = req.Height
		}
		if c.geom.X+c.geom.Width > m.screen.Right() && c.floating {
			c.geom.X = m.screen.X + (m.screen.Width/2 - c.outerWidth()/2)
		}
		if c.geom.Y+c.geom.Height > m.screen.Bottom() && c.floating {
			c.geom.Y = m.screen.Y + (m.screen.Height/2 - c.outerHeight()/2)
		}
		if req.Mask&(ConfigX|ConfigY) != 0 && req.Mask&(ConfigWidth|ConfigHeight) == 0 {
			w.sendConfigure(c)
		}
		if c.visible() {
			w.ignore("configure", w.dpy.Configure(c.win, c.geom, c.effectiveBorder()))
		}
	default:
		w.sendConfigure(c)
	}
}

func (w *WM) configureNotify(ev Event) {
	if ev.Window != w.dpy.Root() {
		return
	}
	heads := ev.Heads
	if len(heads) == 0 {
		heads = []layout.Rect{ev.Screen}
	}
	if w.UpdateGeometry(ev.Screen, heads) {
		w.focus(nil)
		w.arrange(nil)
	}
}

func (w *WM) unmapNotify(ev Event) {
	c := w.ClientOf(ev.Window)
	if c == nil {
		return
	}
	if ev.Synthetic {
		w.ignore("set state", w.dpy.SetState(c.win, StateWithdrawn))
		return
	}
	w.Unmanage(c, false)
}

func (w *WM) enterNotify(ev Event) {
	root := w.dpy.Root()
	if (ev.Mode != NotifyNormal || ev.Detail == NotifyInferior) && ev.Window != root {
		return
	}
	c := w.ClientOf(ev.Window)
	m := w.wintomon(ev.Window)
	if c != nil {
		m = c.mon
	}
	if m != w.selmon {
		w.unfocus(w.Selected(), true)
		w.selmon = m
	} else if c == nil || c == w.Selected() {
		return
	}
	w.focus(c)
}

func (w *WM) motionNotify(ev Event) {
	if ev.Window != w.dpy.Root() {
		return
	}
	m := w.recttomon(layout.Rect{X: ev.RootX, Y: ev.RootY, Width: 1, Height: 1})
	if m != w.lastPointMon && w.lastPointMon != nil {
		w.unfocus(w.Selected(), true)
		w.selmon = m
		w.focus(nil)
	}
	w.lastPointMon = m
}

func (w *WM) propertyNotify(ev Event) {
	if ev.Deleted {
		return
	}
	c := w.ClientOf(ev.Window)
	if c == nil {
		return
	}
	switch ev.Property {
	case PropTransientFor:
		if !c.floating {
			if t := w.ClientOf(w.dpy.TransientFor(c.win)); t != nil {
				c.floating = true
				w.arrange(c.mon)
			}
		}
	case PropNormalHints:
		c.hints = w.dpy.SizeHints(c.win)
	case PropWMHints:
		w.updateWMHints(c)
	case PropName:
		c.name = orBroken(w.dpy.Name(c.win))
		c.panel = w.isPanel(c)
	case PropWindowType:
		w.updateWindowType(c)
	}
}

func (w *WM) clientMessage(ev Event) {
	c := w.ClientOf(ev.Window)
	if c == nil {
		return
	}
	switch ev.Message {
	case MsgFullscreen:
		switch ev.StateAction {
		case StateAdd:
			w.setFullscreen(c, true)
		case StateRemove:
			w.setFullscreen(c, false)
		case StateToggle:
			w.setFullscreen(c, !c.fullscreen)
		}
	case MsgActiveWindow:
		if c != w.Selected() && !c.urgent {
			w.setUrgent(c, true)
		}
	}
}

func (w *WM) buttonPress(ev Event) {
	click := config.ClickRootWin
	if m := w.wintomon(ev.Window); m != nil && m != w.selmon {
		w.unfocus(w.Selected(), true)
		w.selmon = m
		w.focus(nil)
	}
	if c := w.ClientOf(ev.Window); c != nil {
		w.focus(c)
		w.restack(w.selmon)
		click = config.ClickClientWin
	}
	for _, b := range w.buttons {
		if b.click == click && b.button == ev.Button && b.mods == ev.Mods {
			b.action.Run(w)
		}
	}
}

func (w *WM) updateWMHints(c *Client) {
	urgent, neverFocus := w.dpy.WMHints(c.win)
	if urgent && c == w.Selected() {
		w.ignore("clear urgency", w.dpy.SetUrgent(c.win, false))
	} else {
		c.urgent = urgent
	}
	c.neverFocus = neverFocus
}

func (w *WM) updateWindowType(c *Client) {
	dialog, fullscreen := w.dpy.WindowType(c.win)
	if fullscreen {
		w.setFullscreen(c, true)
	}
	if dialog {
		c.floating = true
	}
}

// setFullscreen only records the protocol state; geometry is untouched.
func (w *WM) setFullscreen(c *Client, on bool) {
	if on == c.fullscreen {
		return
	}
	w.ignore("set fullscreen", w.dpy.SetFullscreen(c.win, on))
	c.fullscreen = on
}

func (w *WM) setUrgent(c *Client, on bool) {
	c.urgent = on
	w.ignore("set urgency", w.dpy.SetUrgent(c.win, on))
}
