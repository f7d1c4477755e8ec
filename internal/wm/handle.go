package wm

import "fmt"

// Handle addresses a client slot. A handle whose client was unmanaged never
// resolves again, even after the slot is reused.
type Handle struct {
	index uint32
	gen   uint32
}

// Valid reports whether the handle was ever issued.
func (h Handle) Valid() bool { return h.gen != 0 }

func (h Handle) String() string {
	if !h.Valid() {
		return "handle(nil)"
	}
	return fmt.Sprintf("handle(%d.%d)", h.index, h.gen)
}

type slot struct {
	gen    uint32
	client *Client
}

type arena struct {
	slots []slot
	free  []uint32
}

func (a *arena) alloc(c *Client) Handle {
	var idx uint32
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		a.slots = append(a.slots, slot{})
		idx = uint32(len(a.slots) - 1)
	}
	s := &a.slots[idx]
	s.gen++
	s.client = c
	h := Handle{index: idx, gen: s.gen}
	c.handle = h
	return h
}

func (a *arena) get(h Handle) *Client {
	if !h.Valid() || int(h.index) >= len(a.slots) {
		return nil
	}
	s := a.slots[h.index]
	if s.gen != h.gen {
		return nil
	}
	return s.client
}

func (a *arena) release(h Handle) {
	if a.get(h) == nil {
		return
	}
	s := &a.slots[h.index]
	s.client = nil
	s.gen++
	a.free = append(a.free, h.index)
}

func (a *arena) len() int {
	return len(a.slots) - len(a.free)
}
