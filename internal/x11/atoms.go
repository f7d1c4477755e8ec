package x11

import (
	"fmt"

	"github.com/jezek/xgb/xproto"
	"github.com/jezek/xgbutil"
	"github.com/jezek/xgbutil/xprop"

	"github.com/tilewm/tilewm/internal/wm"
)

type atoms struct {
	protocols    xproto.Atom
	netState     xproto.Atom
	fullscreen   xproto.Atom
	activeWindow xproto.Atom
	props        map[xproto.Atom]wm.Property
}

var propertyAtoms = map[string]wm.Property{
	"WM_NAME":             wm.PropName,
	"_NET_WM_NAME":        wm.PropName,
	"WM_TRANSIENT_FOR":    wm.PropTransientFor,
	"WM_NORMAL_HINTS":     wm.PropNormalHints,
	"WM_HINTS":            wm.PropWMHints,
	"_NET_WM_WINDOW_TYPE": wm.PropWindowType,
}

func (a *atoms) intern(xu *xgbutil.XUtil) error {
	get := func(name string) (xproto.Atom, error) {
		atom, err := xprop.Atm(xu, name)
		if err != nil {
			return 0, fmt.Errorf("intern %s: %w", name, err)
		}
		return atom, nil
	}
	var err error
	if a.protocols, err = get("WM_PROTOCOLS"); err != nil {
		return err
	}
	if a.netState, err = get("_NET_WM_STATE"); err != nil {
		return err
	}
	if a.fullscreen, err = get("_NET_WM_STATE_FULLSCREEN"); err != nil {
		return err
	}
	if a.activeWindow, err = get("_NET_ACTIVE_WINDOW"); err != nil {
		return err
	}
	a.props = make(map[xproto.Atom]wm.Property, len(propertyAtoms))
	for name, prop := range propertyAtoms {
		atom, err := get(name)
		if err != nil {
			return err
		}
		a.props[atom] = prop
	}
	return nil
}

func (a *atoms) property(atom xproto.Atom) wm.Property {
	if prop, ok := a.props[atom]; ok {
		return prop
	}
	return wm.PropOther
}

// message classifies a client message. Only fullscreen state changes and
// activation requests are of interest.
func (a *atoms) message(ev xproto.ClientMessageEvent) (wm.Message, int) {
	switch ev.Type {
	case a.netState:
		data := ev.Data.Data32
		if len(data) >= 3 && (xproto.Atom(data[1]) == a.fullscreen || xproto.Atom(data[2]) == a.fullscreen) {
			return wm.MsgFullscreen, int(data[0])
		}
	case a.activeWindow:
		return wm.MsgActiveWindow, 0
	}
	return wm.MsgOther, 0
}
