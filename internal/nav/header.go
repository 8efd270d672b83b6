package nav

import (
	"sync"
	"time"
)

// Defaults for a new Header.
const (
	DefaultCloseDelay      = 300 * time.Millisecond
	DefaultScrollThreshold = 100.0
)

// Snapshot is the renderable header state. Empty IDs mean no menu.
type Snapshot struct {
	Visible    bool
	Active     MenuID
	Exiting    MenuID
	MobileOpen bool
}

// Open reports whether id's dropdown panel is rendered.
func (s Snapshot) Open(id MenuID) bool {
	return id != "" && s.Active == id
}

// Header tracks header visibility, the open dropdown and the mobile menu.
// It is safe for concurrent use; timer callbacks run on their own goroutine.
type Header struct {
	mu sync.Mutex

	sched           Scheduler
	closeDelay      time.Duration
	scrollThreshold float64
	dropdowns       map[MenuID]bool

	visible    bool
	lastScroll float64
	active     MenuID
	exiting    MenuID
	mobileOpen bool

	pending    Timer
	pendingFor MenuID
	// generation is bumped whenever the pending timer is replaced or
	// cancelled. A callback whose generation is stale does nothing.
	generation uint64
	closed     bool
}

// Option configures a Header.
type Option func(*Header)

// WithScheduler replaces the runtime timer.
func WithScheduler(s Scheduler) Option {
	return func(h *Header) {
		if s != nil {
			h.sched = s
		}
	}
}

// WithCloseDelay sets how long a dropdown lingers after the pointer leaves.
func WithCloseDelay(d time.Duration) Option {
	return func(h *Header) {
		if d > 0 {
			h.closeDelay = d
		}
	}
}

// WithScrollThreshold sets the offset below which the header always shows.
func WithScrollThreshold(px float64) Option {
	return func(h *Header) {
		if px >= 0 {
			h.scrollThreshold = px
		}
	}
}

// WithMenus sets the menus the header manages. Defaults to Menus().
func WithMenus(menus []Menu) Option {
	return func(h *Header) {
		h.dropdowns = dropdownSet(menus)
	}
}

// NewHeader returns a visible header with nothing open.
func NewHeader(opts ...Option) *Header {
	h := &Header{
		sched:           RealScheduler{},
		closeDelay:      DefaultCloseDelay,
		scrollThreshold: DefaultScrollThreshold,
		dropdowns:       dropdownSet(Menus()),
		visible:         true,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func dropdownSet(menus []Menu) map[MenuID]bool {
	set := make(map[MenuID]bool, len(menus))
	for _, m := range menus {
		set[m.ID] = m.Dropdown != nil
	}
	return set
}

// Scroll records a new scroll offset and returns the header visibility.
func (h *Header) Scroll(offset float64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch {
	case offset < h.scrollThreshold:
		h.visible = true
	case offset > h.lastScroll:
		h.visible = false
	case offset < h.lastScroll:
		h.visible = true
	}
	h.lastScroll = offset
	return h.visible
}

// PointerEnter opens id's dropdown, cancelling any pending close.
func (h *Header) PointerEnter(id MenuID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed || !h.dropdowns[id] {
		return
	}
	h.cancelPendingLocked()
	h.exiting = ""
	h.active = id
}

// PointerLeave starts closing id's dropdown after the close delay.
func (h *Header) PointerLeave(id MenuID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed || !h.dropdowns[id] {
		return
	}
	// Leaving a menu other than the open one must not mark a second menu.
	if h.active != "" && h.active != id {
		return
	}

	h.exiting = id
	h.cancelPendingLocked()

	gen := h.generation
	h.pendingFor = id
	h.pending = h.sched.AfterFunc(h.closeDelay, func() {
		h.fireClose(id, gen)
	})
}

func (h *Header) fireClose(id MenuID, gen uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed || gen != h.generation {
		return
	}
	if h.active == id {
		h.active = ""
	}
	if h.exiting == id {
		h.exiting = ""
	}
	h.pending = nil
	h.pendingFor = ""
}

// Select closes every panel immediately and returns href for navigation.
func (h *Header) Select(href string) string {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.cancelPendingLocked()
	h.active = ""
	h.exiting = ""
	h.mobileOpen = false
	return href
}

// ToggleMobile flips the mobile menu and returns its new state.
func (h *Header) ToggleMobile() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.mobileOpen = !h.mobileOpen
	return h.mobileOpen
}

// CloseMobile closes the mobile menu.
func (h *Header) CloseMobile() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.mobileOpen = false
}

// Close cancels any outstanding timer. Later callbacks and pointer events
// are ignored.
func (h *Header) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.cancelPendingLocked()
	h.closed = true
}

// Pending reports the menu with an armed close timer, if any.
func (h *Header) Pending() (MenuID, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.pendingFor, h.pending != nil
}

// CloseDelay returns how long a dropdown lingers after the pointer leaves.
func (h *Header) CloseDelay() time.Duration {
	return h.closeDelay
}

// ScrollThreshold returns the offset below which the header always shows.
func (h *Header) ScrollThreshold() float64 {
	return h.scrollThreshold
}

// Snapshot returns the current state.
func (h *Header) Snapshot() Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()

	return Snapshot{
		Visible:    h.visible,
		Active:     h.active,
		Exiting:    h.exiting,
		MobileOpen: h.mobileOpen,
	}
}

func (h *Header) cancelPendingLocked() {
	h.generation++
	if h.pending != nil {
		h.pending.Stop()
	}
	h.pending = nil
	h.pendingFor = ""
}
