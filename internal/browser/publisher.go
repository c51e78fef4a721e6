// Package browser holds the per-session state of the two pane catalog
// browser: the paginated list, the detail loader, list visibility and the
// selection bridge between them.
package browser

// Publisher receives browser events. *events.EventBus[any] satisfies it.
type Publisher interface {
	Publish(event any)
}

type discardPublisher struct{}

func (discardPublisher) Publish(any) {}

func publisherOrDiscard(p Publisher) Publisher {
	if p == nil {
		return discardPublisher{}
	}
	return p
}
