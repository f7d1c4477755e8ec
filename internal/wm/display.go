package wm

import "github.com/tilewm/tilewm/internal/layout"

// Window is a protocol window id.
type Window = uint32

// ClientState is the ICCCM WM_STATE value.
type ClientState int

const (
	StateWithdrawn ClientState = 0
	StateNormal    ClientState = 1
	StateIconic    ClientState = 3
)

// Cursor selects the pointer shape used while a drag is in progress.
type Cursor int

const (
	CursorNormal Cursor = iota
	CursorMove
	CursorResize
)

// Protocols a client may advertise in WM_PROTOCOLS.
const (
	ProtoDelete    = "WM_DELETE_WINDOW"
	ProtoTakeFocus = "WM_TAKE_FOCUS"
)

// WindowInfo is everything read from a window when it is first managed.
type WindowInfo struct {
	Geometry     layout.Rect
	BorderWidth  int
	Name         string
	Class        string
	Instance     string
	TransientFor Window
	Hints        layout.SizeHints
	Dialog       bool
	Fullscreen   bool
	Urgent       bool
	NeverFocus   bool
}

// Display is the geometry and protocol surface the window manager drives.
// Implementations must treat operations on windows that vanished as benign.
type Display interface {
	layout.Configurer

	Root() Window
	QueryWindow(win Window) (WindowInfo, error)
	Name(win Window) string
	SizeHints(win Window) layout.SizeHints
	WMHints(win Window) (urgent, neverFocus bool)
	TransientFor(win Window) Window
	WindowType(win Window) (dialog, fullscreen bool)

	SendConfigureNotify(win Window, r layout.Rect, border int) error
	// ForwardConfigure applies a configure request of an unmanaged window
	// verbatim.
	ForwardConfigure(win Window, req ConfigureRequest) error
	Move(win Window, x, y int) error
	SetBorderWidth(win Window, border int) error
	SetBorderColor(win Window, focused bool) error
	Map(win Window) error
	Unmap(win Window) error
	Raise(win Window) error
	Lower(win Window) error
	StackTiled(order []Window) error

	State(win Window) ClientState
	SetState(win Window, state ClientState) error
	SetFullscreen(win Window, on bool) error
	SetUrgent(win Window, on bool) error
	SetActiveWindow(win Window) error
	SetClientList(wins []Window) error

	SetInputFocus(win Window) error
	FocusRoot() error
	SendProtocol(win Window, proto string) (bool, error)
	KillClient(win Window) error
	GrabButtons(win Window, focused bool) error
	UngrabButtons(win Window) error

	WarpPointer(win Window, x, y int) error
	QueryPointer() (x, y int, ok bool)
	GrabPointer(cursor Cursor) error
	UngrabPointer() error
	DiscardEnterEvents()
}
