package browser

import (
	"sync"
	"sync/atomic"

	"github.com/kahvecikaan/catalog-browser/internal/events"
)

// DefaultBreakpoint is the widest viewport, in pixels, still considered narrow
const DefaultBreakpoint = 768

// Visibility holds whether the list pane is shown. It starts visible and is
// only written by the explicit toggle or by a selection on a narrow viewport.
type Visibility struct {
	mu        sync.Mutex
	visible   bool
	sessionID string
	pub       Publisher
}

func NewVisibility(sessionID string, pub Publisher) *Visibility {
	return &Visibility{visible: true, sessionID: sessionID, pub: publisherOrDiscard(pub)}
}

func (v *Visibility) Visible() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.visible
}

// Toggle flips the list visibility and returns the new value
func (v *Visibility) Toggle() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.visible = !v.visible
	v.pub.Publish(events.VisibilityChanged{SessionID: v.sessionID, Visible: v.visible})
	return v.visible
}

// Collapse hides the list. It never shows it.
func (v *Visibility) Collapse() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.visible = false
	v.pub.Publish(events.VisibilityChanged{SessionID: v.sessionID, Visible: false})
}

// Viewport remembers the last width reported by the client. A width of 0
// means no report has arrived yet, which is never narrow.
type Viewport struct {
	breakpoint int
	width      atomic.Int64
}

func NewViewport(breakpoint int) *Viewport {
	if breakpoint <= 0 {
		breakpoint = DefaultBreakpoint
	}
	return &Viewport{breakpoint: breakpoint}
}

// Resize records a reported width. Non-positive widths are ignored.
func (v *Viewport) Resize(width int) {
	if width <= 0 {
		return
	}
	v.width.Store(int64(width))
}

func (v *Viewport) Width() int      { return int(v.width.Load()) }
func (v *Viewport) Breakpoint() int { return v.breakpoint }

// Narrow reports whether the last reported width is at or below the breakpoint
func (v *Viewport) Narrow() bool {
	return v.IsNarrow(v.Width())
}

func (v *Viewport) IsNarrow(width int) bool {
	return width > 0 && width <= v.breakpoint
}
