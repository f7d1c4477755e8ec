package state

import "github.com/tilewm/tilewm/internal/layout"

// Client describes a managed window.
type Client struct {
	Window     uint32      `json:"window"`
	Class      string      `json:"class"`
	Instance   string      `json:"instance"`
	Title      string      `json:"title"`
	Monitor    int         `json:"monitor"`
	Tags       uint32      `json:"tags"`
	Geometry   layout.Rect `json:"geometry"`
	Border     int         `json:"border"`
	Floating   bool        `json:"floating"`
	ForceTile  bool        `json:"forceTile"`
	Fullscreen bool        `json:"fullscreen"`
	Hidden     bool        `json:"hidden"`
	Urgent     bool        `json:"urgent"`
	Panel      bool        `json:"panel"`
	Behind     bool        `json:"behind"`
	Focused    bool        `json:"focused"`
}

// Monitor describes a monitor and its tag state.
type Monitor struct {
	Num          int         `json:"num"`
	Screen       layout.Rect `json:"screen"`
	Work         layout.Rect `json:"work"`
	TagSet       uint32      `json:"tagset"`
	Layout       string      `json:"layout"`
	LayoutSymbol string      `json:"layoutSymbol"`
	MFact        float64     `json:"mfact"`
	NMaster      int         `json:"nmaster"`
	Gap          int         `json:"gap"`
	RMaster      bool        `json:"rmaster"`
	ShowBar      bool        `json:"showbar"`
	CurTag       int         `json:"curtag"`
	Selected     uint32      `json:"selected,omitempty"`
	// Clients lists windows in tiling order; Stack in focus order.
	Clients []uint32 `json:"clients"`
	Stack   []uint32 `json:"stack"`
}

// World is a point-in-time snapshot of the window manager.
type World struct {
	Clients         []Client  `json:"clients"`
	Monitors        []Monitor `json:"monitors"`
	Tags            []string  `json:"tags"`
	SelectedMonitor int       `json:"selectedMonitor"`
	ActiveWindow    uint32    `json:"activeWindow,omitempty"`
}

// FindClient returns the client managing window, or nil.
func (w *World) FindClient(window uint32) *Client {
	for i := range w.Clients {
		if w.Clients[i].Window == window {
			return &w.Clients[i]
		}
	}
	return nil
}

// ActiveClient returns the focused client if present.
func (w *World) ActiveClient() *Client {
	if w.ActiveWindow == 0 {
		return nil
	}
	return w.FindClient(w.ActiveWindow)
}

// MonitorByNum finds a monitor by ordinal.
func (w *World) MonitorByNum(num int) *Monitor {
	for i := range w.Monitors {
		if w.Monitors[i].Num == num {
			return &w.Monitors[i]
		}
	}
	return nil
}

// ClientsOn returns the clients of monitor num in tiling order.
func (w *World) ClientsOn(num int) []Client {
	mon := w.MonitorByNum(num)
	if mon == nil {
		return nil
	}
	out := make([]Client, 0, len(mon.Clients))
	for _, win := range mon.Clients {
		if c := w.FindClient(win); c != nil {
			out = append(out, *c)
		}
	}
	return out
}

// TagNames renders a tag mask with the configured names.
func (w *World) TagNames(mask uint32) []string {
	var out []string
	for i, name := range w.Tags {
		if mask&(1<<uint(i)) != 0 {
			out = append(out, name)
		}
	}
	return out
}

// CloneWorld returns a deep copy of the provided world snapshot.
func CloneWorld(src *World) *World {
	if src == nil {
		return nil
	}
	copyWorld := *src
	if len(src.Clients) > 0 {
		copyWorld.Clients = append([]Client(nil), src.Clients...)
	}
	if len(src.Tags) > 0 {
		copyWorld.Tags = append([]string(nil), src.Tags...)
	}
	if len(src.Monitors) > 0 {
		copyWorld.Monitors = make([]Monitor, len(src.Monitors))
		for i, m := range src.Monitors {
			m.Clients = append([]uint32(nil), m.Clients...)
			m.Stack = append([]uint32(nil), m.Stack...)
			copyWorld.Monitors[i] = m
		}
	}
	return &copyWorld
}
