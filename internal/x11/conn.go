// Package x11 drives a real X server on behalf of the window manager core.
package x11

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/jezek/xgb/randr"
	xinext "github.com/jezek/xgb/xinerama"
	"github.com/jezek/xgb/xproto"
	"github.com/jezek/xgbutil"
	"github.com/jezek/xgbutil/ewmh"
	"github.com/jezek/xgbutil/keybind"
	"github.com/jezek/xgbutil/xcursor"
	"github.com/jezek/xgbutil/xprop"
	"github.com/jezek/xgbutil/xwindow"

	"github.com/tilewm/tilewm/internal/config"
	"github.com/tilewm/tilewm/internal/util"
	"github.com/tilewm/tilewm/internal/wm"
)

// ErrOtherWM is returned by Open when another window manager owns the root.
var ErrOtherWM = errors.New("another window manager is already running")

const wmName = "tilewm"

const rootEventMask = xproto.EventMaskSubstructureRedirect |
	xproto.EventMaskSubstructureNotify |
	xproto.EventMaskButtonPress |
	xproto.EventMaskPointerMotion |
	xproto.EventMaskEnterWindow |
	xproto.EventMaskLeaveWindow |
	xproto.EventMaskStructureNotify |
	xproto.EventMaskPropertyChange

const clientEventMask = xproto.EventMaskEnterWindow |
	xproto.EventMaskFocusChange |
	xproto.EventMaskPropertyChange |
	xproto.EventMaskStructureNotify

var supported = []string{
	"_NET_SUPPORTED",
	"_NET_WM_NAME",
	"_NET_WM_STATE",
	"_NET_WM_STATE_FULLSCREEN",
	"_NET_SUPPORTING_WM_CHECK",
	"_NET_ACTIVE_WINDOW",
	"_NET_WM_WINDOW_TYPE",
	"_NET_WM_WINDOW_TYPE_DIALOG",
	"_NET_CLIENT_LIST",
}

// Conn is the connection to the X server. It implements wm.Display and is
// the event source of the engine.
type Conn struct {
	xu     *xgbutil.XUtil
	root   xproto.Window
	logger *util.Logger

	check    *xwindow.Window
	cursors  map[wm.Cursor]xproto.Cursor
	atoms    atoms
	randr    bool
	xinerama bool

	mu       sync.Mutex
	normPix  uint32
	selPix   uint32
	modKey   string
	keys     []string
	buttons  []config.ButtonBinding
	grabbed  []keyGrab
	discard  atomic.Uint32
	discards atomic.Bool
}

type keyGrab struct {
	mods uint16
	code xproto.Keycode
}

// Open connects to display (empty means $DISPLAY), takes over the root
// window and advertises EWMH support.
func Open(display string, logger *util.Logger) (*Conn, error) {
	xu, err := xgbutil.NewConnDisplay(display)
	if err != nil {
		return nil, fmt.Errorf("connect to X display: %w", err)
	}
	c := &Conn{
		xu:      xu,
		root:    xu.RootWin(),
		logger:  logger,
		cursors: make(map[wm.Cursor]xproto.Cursor),
		normPix: 0x444444,
		selPix:  0x005577,
	}
	if err := c.setup(); err != nil {
		xu.Conn().Close()
		return nil, err
	}
	return c, nil
}

func (c *Conn) setup() error {
	err := xproto.ChangeWindowAttributesChecked(c.xu.Conn(), c.root, xproto.CwEventMask,
		[]uint32{rootEventMask}).Check()
	if err != nil {
		if _, ok := err.(xproto.AccessError); ok {
			return ErrOtherWM
		}
		return fmt.Errorf("select root events: %w", err)
	}
	keybind.Initialize(c.xu)
	if err := c.atoms.intern(c.xu); err != nil {
		return err
	}
	for kind, shape := range map[wm.Cursor]uint16{
		wm.CursorNormal: xcursor.LeftPtr,
		wm.CursorMove:   xcursor.Fleur,
		wm.CursorResize: xcursor.Sizing,
	} {
		cur, err := xcursor.CreateCursor(c.xu, shape)
		if err != nil {
			return fmt.Errorf("create cursor: %w", err)
		}
		c.cursors[kind] = cur
	}
	xproto.ChangeWindowAttributes(c.xu.Conn(), c.root, xproto.CwCursor,
		[]uint32{uint32(c.cursors[wm.CursorNormal])})

	if err := randr.Init(c.xu.Conn()); err != nil {
		c.logger.Debugf("randr unavailable: %v", err)
	} else if err := randr.SelectInputChecked(c.xu.Conn(), c.root,
		randr.NotifyMaskScreenChange|randr.NotifyMaskOutputChange).Check(); err != nil {
		c.logger.Debugf("randr select input: %v", err)
	} else {
		c.randr = true
	}
	if err := xinext.Init(c.xu.Conn()); err != nil {
		c.logger.Debugf("xinerama unavailable: %v", err)
	} else {
		c.xinerama = true
	}
	return c.advertise()
}

func (c *Conn) advertise() error {
	check, err := xwindow.Create(c.xu, c.root)
	if err != nil {
		return fmt.Errorf("create supporting window: %w", err)
	}
	c.check = check
	if err := ewmh.SupportingWmCheckSet(c.xu, c.root, check.Id); err != nil {
		return fmt.Errorf("set supporting wm check: %w", err)
	}
	if err := ewmh.SupportingWmCheckSet(c.xu, check.Id, check.Id); err != nil {
		return fmt.Errorf("set supporting wm check: %w", err)
	}
	if err := ewmh.WmNameSet(c.xu, check.Id, wmName); err != nil {
		return fmt.Errorf("set wm name: %w", err)
	}
	if err := ewmh.SupportedSet(c.xu, supported); err != nil {
		return fmt.Errorf("set supported hints: %w", err)
	}
	return ewmh.ClientListSet(c.xu, nil)
}

// Bind installs the border colors and the key and button bindings of cfg.
// It is called at startup and after every accepted reload.
func (c *Conn) Bind(cfg *config.Config, chords []string) error {
	norm, err := config.ParseColor(cfg.NormBorder)
	if err != nil {
		return err
	}
	sel, err := config.ParseColor(cfg.SelBorder)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.normPix, c.selPix = norm, sel
	c.modKey = cfg.ModKey
	c.keys = append([]string(nil), chords...)
	c.buttons = append([]config.ButtonBinding(nil), cfg.Buttons...)
	c.mu.Unlock()
	c.grabKeys()
	return nil
}

// Root returns the root window of the default screen.
func (c *Conn) Root() wm.Window { return uint32(c.root) }

// Screen returns the size of the root window.
func (c *Conn) Screen() (int, int) {
	s := c.xu.Screen()
	return int(s.WidthInPixels), int(s.HeightInPixels)
}

// Close releases the grabs, withdraws the EWMH advertisement and hands
// focus back to the pointer root before disconnecting.
func (c *Conn) Close() error {
	conn := c.xu.Conn()
	xproto.UngrabKey(conn, xproto.GrabAny, c.root, xproto.ModMaskAny)
	if c.check != nil {
		c.check.Destroy()
	}
	xproto.SetInputFocus(conn, xproto.InputFocusPointerRoot, xproto.InputFocusPointerRoot, xproto.TimeCurrentTime)
	if atom, err := xprop.Atm(c.xu, "_NET_ACTIVE_WINDOW"); err == nil {
		xproto.DeleteProperty(conn, c.root, atom)
	}
	conn.Close()
	return nil
}
