package wm

import "github.com/tilewm/tilewm/internal/layout"

// Pertag is layout memory per tag. Slot 0 stands for the all-tags view and
// slot i for tag i.
type Pertag struct {
	curTag, prevTag int
	nmasters        []int
	mfacts          []float64
	sellts          []int
	ltidxs          [][2]int
	showbars        []bool
}

func newPertag(ntags int, m *Monitor) *Pertag {
	p := &Pertag{
		curTag:   1,
		prevTag:  1,
		nmasters: make([]int, ntags+1),
		mfacts:   make([]float64, ntags+1),
		sellts:   make([]int, ntags+1),
		ltidxs:   make([][2]int, ntags+1),
		showbars: make([]bool, ntags+1),
	}
	for i := 0; i <= ntags; i++ {
		p.nmasters[i] = m.nmaster
		p.mfacts[i] = m.mfact
		p.ltidxs[i] = m.lt
		p.sellts[i] = m.sellt
		p.showbars[i] = m.showbar
	}
	return p
}

// CurTag returns the pertag slot in use.
func (p *Pertag) CurTag() int { return p.curTag }

// PrevTag returns the slot that was active before the last view change.
func (p *Pertag) PrevTag() int { return p.prevTag }

// Monitor is one display region with its own clients and tag state.
type Monitor struct {
	num     int
	screen  layout.Rect
	work    layout.Rect
	barY    int
	gap     int
	mfact   float64
	nmaster int
	rmaster bool
	showbar bool
	topbar  bool

	sellt   int
	lt      [2]int
	seltags int
	tagset  [2]uint32
	pertag  *Pertag

	clients []Handle
	stack   []Handle
	sel     Handle
	hidsel  bool
}

// Num returns the ordinal, 0 being the primary monitor.
func (m *Monitor) Num() int { return m.num }

// Screen returns the full monitor rectangle.
func (m *Monitor) Screen() layout.Rect { return m.screen }

// Work returns the usable area.
func (m *Monitor) Work() layout.Rect { return m.work }

// TagSet returns the visible tags.
func (m *Monitor) TagSet() uint32 { return m.tagset[m.seltags] }

// MFact returns the master fraction.
func (m *Monitor) MFact() float64 { return m.mfact }

// NMaster returns the master count.
func (m *Monitor) NMaster() int { return m.nmaster }

// Gap returns the gap in pixels.
func (m *Monitor) Gap() int { return m.gap }

// RMaster reports whether the master column is on the right.
func (m *Monitor) RMaster() bool { return m.rmaster }

// ShowBar reports bar visibility.
func (m *Monitor) ShowBar() bool { return m.showbar }

// Pertag returns the per-tag memory.
func (m *Monitor) Pertag() *Pertag { return m.pertag }

// Layout returns the index of the active layout.
func (m *Monitor) Layout() int { return m.lt[m.sellt] }

func (w *WM) createMonitor() *Monitor {
	m := &Monitor{
		tagset:  [2]uint32{1, 1},
		mfact:   w.cfg.MFact,
		nmaster: w.cfg.NMaster,
		rmaster: w.cfg.RMaster,
		showbar: w.cfg.ShowBar,
		topbar:  w.cfg.TopBar,
		gap:     w.cfg.GapPx,
		lt:      [2]int{0, 1 % len(w.layouts)},
	}
	m.pertag = newPertag(len(w.cfg.Tags), m)
	return m
}

// updateBarPos recomputes the work area. Only the primary monitor reserves
// room for the bar.
func (w *WM) updateBarPos(m *Monitor) {
	m.work = m.screen
	bh := w.cfg.BarHeight
	if m.num == 0 && m.showbar {
		m.work.Height -= bh
		if m.topbar {
			m.barY = m.work.Y
			m.work.Y += bh
		} else {
			m.barY = m.work.Y + m.work.Height
		}
		return
	}
	m.barY = -bh
}

func (w *WM) layoutOf(m *Monitor) layoutEntry {
	return w.layouts[m.lt[m.sellt]]
}

// restorePertag loads nmaster, mfact and layouts for the current slot.
func (w *WM) restorePertag(m *Monitor) {
	p := m.pertag
	m.nmaster = p.nmasters[p.curTag]
	m.mfact = p.mfacts[p.curTag]
	m.sellt = p.sellts[p.curTag]
	m.lt = p.ltidxs[p.curTag]
	if m.showbar != p.showbars[p.curTag] {
		w.setBar(m, p.showbars[p.curTag])
	}
}
