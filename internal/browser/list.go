package browser

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/kahvecikaan/catalog-browser/internal/domain"
	"github.com/kahvecikaan/catalog-browser/internal/events"
)

type ListStatus string

const (
	ListLoading ListStatus = "loading"
	ListReady   ListStatus = "ready"
)

// CollectionFetchFunc fetches the whole product collection
type CollectionFetchFunc func(ctx context.Context) (domain.Products, error)

// PageView is the visible page of the list pane
// swagger:model
type PageView struct {
	// products on the current page
	Items domain.Products `json:"items"`

	// 1-indexed current page
	Page int `json:"page"`

	TotalPages int  `json:"total_pages"`
	TotalItems int  `json:"total_items"`
	HasPrev    bool `json:"has_prev"`
	HasNext    bool `json:"has_next"`

	// loading until the collection fetch resolves
	Status ListStatus `json:"status"`

	// true when the collection could not be fetched
	Failed bool `json:"failed"`
}

// Empty reports whether the list has nothing to show once ready
func (pv PageView) Empty() bool {
	return pv.Status == ListReady && pv.TotalItems == 0
}

// ListPane owns the product collection and its paginator
type ListPane struct {
	log       hclog.Logger
	fetch     CollectionFetchFunc
	enricher  *domain.Enricher
	timeout   time.Duration
	sessionID string
	pub       Publisher

	mu sync.RWMutex
	// closed when the running mount resolves; nil before the first mount
	ready     chan struct{}
	loading   bool
	status    ListStatus
	failed    bool
	products  domain.Products
	paginator *Paginator
}

func NewListPane(log hclog.Logger, sessionID string, fetch CollectionFetchFunc, enricher *domain.Enricher, pageSize int, timeout time.Duration, pub Publisher) *ListPane {
	if enricher == nil {
		enricher = domain.NewEnricher(nil)
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &ListPane{
		log:       log,
		fetch:     fetch,
		enricher:  enricher,
		timeout:   timeout,
		sessionID: sessionID,
		pub:       publisherOrDiscard(pub),
		status:    ListLoading,
		products:  domain.Products{},
		paginator: NewPaginator(pageSize),
	}
}

// Mount fetches and enriches the collection in the background. It starts a
// fetch only when the list was never fetched or the last fetch failed, and
// reports whether it did.
func (l *ListPane) Mount(ctx context.Context) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.loading || (l.ready != nil && !l.failed) {
		return false
	}

	l.loading = true
	l.status = ListLoading
	l.failed = false
	l.ready = make(chan struct{})
	go l.load(context.WithoutCancel(ctx), l.ready)
	return true
}

func (l *ListPane) load(ctx context.Context, ready chan struct{}) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	products, err := l.fetch(ctx)

	l.mu.Lock()
	if err != nil {
		l.log.Error("Unable to load product list", "error", err)
		l.failed = true
		l.products = domain.Products{}
	} else {
		l.products = l.enricher.EnrichAll(products)
	}
	l.status = ListReady
	l.loading = false
	count, failed := len(l.products), l.failed
	l.mu.Unlock()

	l.log.Debug("Product list ready", "count", count, "failed", failed)
	l.pub.Publish(events.ListLoaded{SessionID: l.sessionID, Count: count, Failed: failed})
	close(ready)
}

// Ready blocks until the latest mount has resolved or ctx ends. It returns
// at once when the list was never mounted.
func (l *ListPane) Ready(ctx context.Context) error {
	l.mu.RLock()
	ready := l.ready
	l.mu.RUnlock()
	if ready == nil {
		return nil
	}

	select {
	case <-ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Page returns the current page of the list
func (l *ListPane) Page() PageView {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.viewLocked()
}

// Next moves to the following page if there is one
func (l *ListPane) Next() (PageView, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	moved := l.paginator.Next(len(l.products))
	return l.afterMoveLocked(moved)
}

// Prev moves to the preceding page if there is one
func (l *ListPane) Prev() (PageView, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	moved := l.paginator.Prev()
	return l.afterMoveLocked(moved)
}

func (l *ListPane) afterMoveLocked(moved bool) (PageView, bool) {
	view := l.viewLocked()
	if moved {
		l.pub.Publish(events.PageChanged{SessionID: l.sessionID, Page: view.Page, TotalPages: view.TotalPages})
	}
	return view, moved
}

func (l *ListPane) viewLocked() PageView {
	total := len(l.products)
	return PageView{
		Items:      CurrentSlice(l.paginator, l.products),
		Page:       l.paginator.Page(),
		TotalPages: l.paginator.TotalPages(total),
		TotalItems: total,
		HasPrev:    l.paginator.HasPrev(),
		HasNext:    l.paginator.HasNext(total),
		Status:     l.status,
		Failed:     l.failed,
	}
}
