package x11

import (
	"errors"

	"github.com/jezek/xgb/xproto"
)

// IsBenign reports whether err is a protocol error a window manager races
// into routinely, such as a request on a window that was already destroyed
// or a grab held by another client.
func IsBenign(err error) bool {
	var (
		window   xproto.WindowError
		match    xproto.MatchError
		drawable xproto.DrawableError
		access   xproto.AccessError
	)
	return errors.As(err, &window) ||
		errors.As(err, &match) ||
		errors.As(err, &drawable) ||
		errors.As(err, &access)
}
