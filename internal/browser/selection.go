package browser

import "github.com/kahvecikaan/catalog-browser/internal/events"

// Bridge turns the activation of a list item into a navigation. On a narrow
// viewport the list is collapsed before the navigation target is returned.
type Bridge struct {
	viewport   *Viewport
	visibility *Visibility
	sessionID  string
	pub        Publisher
}

func NewBridge(sessionID string, viewport *Viewport, visibility *Visibility, pub Publisher) *Bridge {
	return &Bridge{
		viewport:   viewport,
		visibility: visibility,
		sessionID:  sessionID,
		pub:        publisherOrDiscard(pub),
	}
}

// Select handles the activation of product id at the given viewport width.
// A width of 0 falls back to the last reported width. It returns the
// location to navigate to.
func (b *Bridge) Select(id string, width int) string {
	if width > 0 {
		b.viewport.Resize(width)
	} else {
		width = b.viewport.Width()
	}

	collapsed := false
	if b.viewport.IsNarrow(width) {
		b.visibility.Collapse()
		collapsed = true
	}

	location := ProductPath(id)
	b.pub.Publish(events.ProductSelected{
		SessionID: b.sessionID,
		ProductID: id,
		Location:  location,
		Collapsed: collapsed,
	})
	return location
}
