package x11

import (
	"strings"

	"github.com/jezek/xgb/xproto"
	"github.com/jezek/xgbutil/keybind"
	"github.com/jezek/xgbutil/xevent"

	"github.com/tilewm/tilewm/internal/config"
	"github.com/tilewm/tilewm/internal/wm"
)

// modBits lists the core modifier masks in the canonical chord order.
var modBits = []struct {
	name string
	mask uint16
}{
	{"shift", xproto.ModMaskShift},
	{"lock", xproto.ModMaskLock},
	{"control", xproto.ModMaskControl},
	{"mod1", xproto.ModMask1},
	{"mod2", xproto.ModMask2},
	{"mod3", xproto.ModMask3},
	{"mod4", xproto.ModMask4},
	{"mod5", xproto.ModMask5},
}

const buttonMask = xproto.EventMaskButtonPress | xproto.EventMaskButtonRelease

// cleanMods drops pointer button state and the lock modifiers that must not
// influence binding lookup.
func cleanMods(state uint16) uint16 {
	var all uint16
	for _, b := range modBits {
		all |= b.mask
	}
	state &= all
	for _, ignored := range xevent.IgnoreMods {
		state &^= ignored
	}
	return state
}

// modNames renders a modifier mask as canonical "-" separated names.
func modNames(state uint16) string {
	var names []string
	for _, b := range modBits {
		if state&b.mask != 0 {
			names = append(names, b.name)
		}
	}
	return strings.Join(names, "-")
}

// modMask is the inverse of modNames for canonical modifier lists.
func modMask(mods string) uint16 {
	var mask uint16
	for _, name := range strings.Split(mods, "-") {
		for _, b := range modBits {
			if b.name == name {
				mask |= b.mask
			}
		}
	}
	return mask
}

func chord(state uint16, keysym string) string {
	mods := modNames(cleanMods(state))
	if mods == "" {
		return keysym
	}
	return mods + "-" + keysym
}

// grabKeys replaces the root key grabs with the current bindings.
func (c *Conn) grabKeys() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, g := range c.grabbed {
		keybind.Ungrab(c.xu, c.root, g.mods, g.code)
	}
	c.grabbed = c.grabbed[:0]
	for _, chord := range c.keys {
		mods, keysym := config.SplitChord(chord, c.modKey)
		mask := modMask(mods)
		codes := keybind.StrToKeycodes(c.xu, keysym)
		if len(codes) == 0 {
			c.logger.Warnf("no keycode for %q", chord)
			continue
		}
		for _, code := range codes {
			if err := keybind.GrabChecked(c.xu, c.root, mask, code); err != nil {
				c.logger.Warnf("grab %q: %v", chord, err)
				continue
			}
			c.grabbed = append(c.grabbed, keyGrab{mods: mask, code: code})
		}
	}
}

// GrabButtons grabs the client-window bindings on win. Unfocused clients
// additionally grab every button so a click focuses them.
func (c *Conn) GrabButtons(win wm.Window, focused bool) error {
	conn := c.xu.Conn()
	w := xproto.Window(win)
	xproto.UngrabButton(conn, xproto.ButtonIndexAny, w, xproto.ModMaskAny)
	if !focused {
		xproto.GrabButton(conn, false, w, buttonMask, xproto.GrabModeSync, xproto.GrabModeSync,
			xproto.WindowNone, xproto.CursorNone, xproto.ButtonIndexAny, xproto.ModMaskAny)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, b := range c.buttons {
		if b.Click != config.ClickClientWin {
			continue
		}
		mask := modMask(config.CanonicalMods(b.Mods, c.modKey))
		for _, ignored := range xevent.IgnoreMods {
			xproto.GrabButton(conn, false, w, buttonMask, xproto.GrabModeAsync, xproto.GrabModeSync,
				xproto.WindowNone, xproto.CursorNone, byte(b.Button), mask|ignored)
		}
	}
	return nil
}

func (c *Conn) UngrabButtons(win wm.Window) error {
	xproto.UngrabButton(c.xu.Conn(), xproto.ButtonIndexAny, xproto.Window(win), xproto.ModMaskAny)
	return nil
}
