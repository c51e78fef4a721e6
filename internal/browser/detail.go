package browser

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/kahvecikaan/catalog-browser/internal/domain"
	"github.com/kahvecikaan/catalog-browser/internal/events"
	"github.com/kahvecikaan/catalog-browser/internal/metrics"
)

type DetailStatus string

const (
	DetailIdle        DetailStatus = "idle"
	DetailLoading     DetailStatus = "loading"
	DetailLoaded      DetailStatus = "loaded"
	DetailUnavailable DetailStatus = "unavailable"
)

// DetailFetchFunc fetches the full record of one product
type DetailFetchFunc func(ctx context.Context, id string) (*domain.ProductDetail, error)

// DetailSnapshot is a consistent read of the detail pane
// swagger:model
type DetailSnapshot struct {
	// the selected product id, empty when idle
	ProductID string `json:"product_id,omitempty"`

	// one of idle, loading, loaded, unavailable
	Status DetailStatus `json:"status"`

	// generation of the selection this snapshot belongs to
	Generation uint64 `json:"generation"`

	// the loaded product, only set when status is loaded
	Product *domain.ProductDetail `json:"product,omitempty"`
}

// DetailLoader drives the detail pane: idle -> loading -> loaded|unavailable.
// Every selection change bumps a generation counter and a fetch result is
// applied only while its generation is still current.
type DetailLoader struct {
	log       hclog.Logger
	fetch     DetailFetchFunc
	timeout   time.Duration
	sessionID string
	pub       Publisher

	mu         sync.Mutex
	id         string
	status     DetailStatus
	entity     *domain.ProductDetail
	generation uint64
	// closed when the current generation settles or is superseded
	settled chan struct{}
}

func NewDetailLoader(log hclog.Logger, sessionID string, fetch DetailFetchFunc, timeout time.Duration, pub Publisher) *DetailLoader {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &DetailLoader{
		log:       log,
		fetch:     fetch,
		timeout:   timeout,
		sessionID: sessionID,
		pub:       publisherOrDiscard(pub),
		status:    DetailIdle,
	}
}

// Load selects product id. Selecting the id that is already current is not a
// change and returns the current generation without refetching. Otherwise the
// previous entity is discarded and a fetch starts on its own goroutine.
// The fetch outlives ctx's cancellation but not the loader timeout.
func (l *DetailLoader) Load(ctx context.Context, id string) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.status != DetailIdle && l.id == id {
		return l.generation
	}

	l.supersedeLocked()
	l.id = id
	l.status = DetailLoading
	l.entity = nil
	l.settled = make(chan struct{})
	gen := l.generation
	l.publishLocked()

	l.log.Debug("Loading product detail", "id", id, "generation", gen)
	go l.run(context.WithoutCancel(ctx), gen, id)
	return gen
}

// Clear deselects the current product. In-flight fetches are discarded.
func (l *DetailLoader) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.status == DetailIdle {
		return
	}

	l.supersedeLocked()
	l.id = ""
	l.status = DetailIdle
	l.entity = nil
	l.publishLocked()
}

// Snapshot returns the current state of the detail pane
func (l *DetailLoader) Snapshot() DetailSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

// Await blocks until generation gen has settled or has been superseded and
// returns the snapshot at that point. If ctx ends first the snapshot is
// returned together with ctx's error.
func (l *DetailLoader) Await(ctx context.Context, gen uint64) (DetailSnapshot, error) {
	l.mu.Lock()
	if gen != l.generation || l.status != DetailLoading {
		snap := l.snapshotLocked()
		l.mu.Unlock()
		return snap, nil
	}
	settled := l.settled
	l.mu.Unlock()

	select {
	case <-settled:
		return l.Snapshot(), nil
	case <-ctx.Done():
		return l.Snapshot(), ctx.Err()
	}
}

func (l *DetailLoader) run(ctx context.Context, gen uint64, id string) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	product, err := l.fetch(ctx, id)

	l.mu.Lock()
	defer l.mu.Unlock()

	if gen != l.generation {
		metrics.DetailStaleResponsesTotal.Inc()
		l.log.Debug("Discarding stale product detail", "id", id, "generation", gen, "current", l.generation)
		return
	}

	if err != nil || product == nil {
		l.log.Debug("Product detail unavailable", "id", id, "error", err)
		l.status = DetailUnavailable
		l.entity = nil
	} else {
		l.status = DetailLoaded
		l.entity = product
	}

	close(l.settled)
	l.settled = nil
	l.publishLocked()
}

// supersedeLocked starts a new generation and releases waiters of the old one
func (l *DetailLoader) supersedeLocked() {
	if l.settled != nil {
		close(l.settled)
		l.settled = nil
	}
	l.generation++
}

func (l *DetailLoader) snapshotLocked() DetailSnapshot {
	return DetailSnapshot{
		ProductID:  l.id,
		Status:     l.status,
		Generation: l.generation,
		Product:    l.entity,
	}
}

func (l *DetailLoader) publishLocked() {
	l.pub.Publish(events.DetailStateChanged{
		SessionID:  l.sessionID,
		ProductID:  l.id,
		Status:     string(l.status),
		Generation: l.generation,
	})
}
