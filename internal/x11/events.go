package x11

import (
	"context"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/randr"
	"github.com/jezek/xgb/xproto"
	"github.com/jezek/xgbutil/keybind"

	"github.com/tilewm/tilewm/internal/layout"
	"github.com/tilewm/tilewm/internal/util"
	"github.com/tilewm/tilewm/internal/wm"
)

// Events reads the X event queue until the connection closes or ctx ends
// and delivers the events the core understands.
func (c *Conn) Events(ctx context.Context) (<-chan wm.Event, error) {
	out := make(chan wm.Event)
	go func() {
		defer close(out)
		for {
			xev, xerr := c.xu.Conn().WaitForEvent()
			if xev == nil && xerr == nil {
				c.logger.Infof("X connection closed")
				return
			}
			if xerr != nil {
				c.logError(xerr)
				continue
			}
			ev, ok := c.translate(xev)
			if !ok {
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (c *Conn) logError(err xgb.Error) {
	if IsBenign(err) {
		c.logger.Debugf("ignored X error: %v", err)
		return
	}
	c.logger.WithFields(util.LevelWarn, util.Fields{
		"sequence": err.SequenceId(),
		"resource": err.BadId(),
	}, "X error: "+err.Error())
}

func (c *Conn) translate(xev xgb.Event) (wm.Event, bool) {
	switch e := xev.(type) {
	case xproto.MapRequestEvent:
		attrs, err := xproto.GetWindowAttributes(c.xu.Conn(), e.Window).Reply()
		if err != nil {
			return wm.Event{}, false
		}
		return wm.Event{
			Kind:             wm.EventMapRequest,
			Window:           uint32(e.Window),
			Serial:           e.Sequence,
			OverrideRedirect: attrs.OverrideRedirect,
		}, true
	case xproto.ConfigureRequestEvent:
		return wm.Event{
			Kind:      wm.EventConfigureRequest,
			Window:    uint32(e.Window),
			Serial:    e.Sequence,
			Configure: configureRequest(e),
		}, true
	case xproto.ConfigureNotifyEvent:
		ev := wm.Event{Kind: wm.EventConfigureNotify, Window: uint32(e.Window), Serial: e.Sequence}
		if e.Window == c.root {
			ev.Screen = layout.Rect{Width: int(e.Width), Height: int(e.Height)}
			ev.Heads = c.Heads()
		}
		return ev, true
	case xproto.DestroyNotifyEvent:
		return wm.Event{Kind: wm.EventDestroyNotify, Window: uint32(e.Window), Serial: e.Sequence}, true
	case xproto.UnmapNotifyEvent:
		return wm.Event{Kind: wm.EventUnmapNotify, Window: uint32(e.Window), Serial: e.Sequence}, true
	case xproto.EnterNotifyEvent:
		return wm.Event{
			Kind:   wm.EventEnterNotify,
			Window: uint32(e.Event),
			Serial: e.Sequence,
			Time:   uint32(e.Time),
			RootX:  int(e.RootX),
			RootY:  int(e.RootY),
			Mode:   int(e.Mode),
			Detail: int(e.Detail),
		}, true
	case xproto.FocusInEvent:
		return wm.Event{Kind: wm.EventFocusIn, Window: uint32(e.Event), Serial: e.Sequence}, true
	case xproto.PropertyNotifyEvent:
		return wm.Event{
			Kind:     wm.EventPropertyNotify,
			Window:   uint32(e.Window),
			Serial:   e.Sequence,
			Time:     uint32(e.Time),
			Property: c.atoms.property(e.Atom),
			Deleted:  e.State == xproto.PropertyDelete,
		}, true
	case xproto.ClientMessageEvent:
		msg, action := c.atoms.message(e)
		return wm.Event{
			Kind:        wm.EventClientMessage,
			Window:      uint32(e.Window),
			Serial:      e.Sequence,
			Message:     msg,
			StateAction: action,
		}, true
	case xproto.KeyPressEvent:
		keysym := keybind.LookupString(c.xu, 0, e.Detail)
		if keysym == "" {
			return wm.Event{}, false
		}
		return wm.Event{
			Kind:   wm.EventKeyPress,
			Window: uint32(e.Event),
			Serial: e.Sequence,
			Time:   uint32(e.Time),
			Chord:  chord(e.State, keysym),
		}, true
	case xproto.ButtonPressEvent:
		// Clicks on unfocused clients are grabbed synchronously so they
		// can focus the client; let the client see them too.
		xproto.AllowEvents(c.xu.Conn(), xproto.AllowReplayPointer, xproto.TimeCurrentTime)
		return wm.Event{
			Kind:   wm.EventButtonPress,
			Window: uint32(e.Event),
			Serial: e.Sequence,
			Time:   uint32(e.Time),
			RootX:  int(e.RootX),
			RootY:  int(e.RootY),
			Button: int(e.Detail),
			Mods:   modNames(cleanMods(e.State)),
		}, true
	case xproto.ButtonReleaseEvent:
		return wm.Event{
			Kind:   wm.EventButtonRelease,
			Window: uint32(e.Event),
			Serial: e.Sequence,
			Time:   uint32(e.Time),
			RootX:  int(e.RootX),
			RootY:  int(e.RootY),
			Button: int(e.Detail),
		}, true
	case xproto.MotionNotifyEvent:
		return wm.Event{
			Kind:   wm.EventMotionNotify,
			Window: uint32(e.Event),
			Serial: e.Sequence,
			Time:   uint32(e.Time),
			RootX:  int(e.RootX),
			RootY:  int(e.RootY),
		}, true
	case xproto.MappingNotifyEvent:
		if e.Request == xproto.MappingKeyboard || e.Request == xproto.MappingModifier {
			keyMap, modMap := keybind.MapsGet(c.xu)
			keybind.KeyMapSet(c.xu, keyMap)
			keybind.ModMapSet(c.xu, modMap)
			c.grabKeys()
		}
		return wm.Event{Kind: wm.EventMappingNotify, Serial: e.Sequence}, true
	case randr.ScreenChangeNotifyEvent:
		return wm.Event{
			Kind:   wm.EventScreenChange,
			Window: uint32(e.Root),
			Serial: e.Sequence,
			Screen: layout.Rect{Width: int(e.Width), Height: int(e.Height)},
			Heads:  c.Heads(),
		}, true
	}
	return wm.Event{}, false
}

func configureRequest(e xproto.ConfigureRequestEvent) wm.ConfigureRequest {
	return wm.ConfigureRequest{
		Mask:      wm.ConfigMask(e.ValueMask),
		X:         int(e.X),
		Y:         int(e.Y),
		Width:     int(e.Width),
		Height:    int(e.Height),
		Border:    int(e.BorderWidth),
		Sibling:   uint32(e.Sibling),
		StackMode: e.StackMode,
	}
}
