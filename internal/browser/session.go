package browser

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/kahvecikaan/catalog-browser/internal/domain"
)

// Catalog is the read side of the remote catalog used by a session
type Catalog interface {
	FetchCollection(ctx context.Context) (domain.Products, error)
	FetchDetail(ctx context.Context, id string) (*domain.ProductDetail, error)
}

// Config sizes the components of a session
type Config struct {
	PageSize     int
	Breakpoint   int
	FetchTimeout time.Duration
}

// Session is the UI state of one browser: both panes, the list visibility
// and the last reported viewport
type Session struct {
	ID         string
	List       *ListPane
	Detail     *DetailLoader
	Visibility *Visibility
	Viewport   *Viewport
	Bridge     *Bridge

	created  time.Time
	lastSeen atomic.Int64
}

// State is a read of everything a page render needs
// swagger:model
type State struct {
	SessionID string `json:"session_id"`

	// the visible page of the list pane
	List PageView `json:"list"`

	// the detail pane
	Detail DetailSnapshot `json:"detail"`

	ListVisible   bool `json:"list_visible"`
	Narrow        bool `json:"narrow"`
	ViewportWidth int  `json:"viewport_width"`
	Breakpoint    int  `json:"breakpoint"`
}

func NewSession(log hclog.Logger, id string, catalog Catalog, enricher *domain.Enricher, pub Publisher, cfg Config) *Session {
	if enricher == nil {
		enricher = domain.NewEnricher(nil)
	}

	detailFetch := func(ctx context.Context, productID string) (*domain.ProductDetail, error) {
		p, err := catalog.FetchDetail(ctx, productID)
		if err != nil {
			return nil, err
		}
		enriched := enricher.EnrichDetail(*p)
		return &enriched, nil
	}

	log = log.With("session", id)
	viewport := NewViewport(cfg.Breakpoint)
	visibility := NewVisibility(id, pub)

	s := &Session{
		ID:         id,
		List:       NewListPane(log, id, catalog.FetchCollection, enricher, cfg.PageSize, cfg.FetchTimeout, pub),
		Detail:     NewDetailLoader(log, id, detailFetch, cfg.FetchTimeout, pub),
		Visibility: visibility,
		Viewport:   viewport,
		Bridge:     NewBridge(id, viewport, visibility, pub),
		created:    time.Now(),
	}
	s.Touch()
	return s
}

// Touch marks the session as used now
func (s *Session) Touch() {
	s.lastSeen.Store(time.Now().UnixNano())
}

func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

func (s *Session) Created() time.Time {
	return s.created
}

// State returns the session state
func (s *Session) State() State {
	return State{
		SessionID:     s.ID,
		List:          s.List.Page(),
		Detail:        s.Detail.Snapshot(),
		ListVisible:   s.Visibility.Visible(),
		Narrow:        s.Viewport.Narrow(),
		ViewportWidth: s.Viewport.Width(),
		Breakpoint:    s.Viewport.Breakpoint(),
	}
}

type contextKey struct{}

// WithSession returns a copy of ctx carrying session
func WithSession(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, session)
}

// SessionFromContext returns the session stored by WithSession
func SessionFromContext(ctx context.Context) (*Session, bool) {
	session, ok := ctx.Value(contextKey{}).(*Session)
	return session, ok && session != nil
}
