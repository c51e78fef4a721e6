package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/kahvecikaan/catalog-browser/internal/browser"
	"github.com/kahvecikaan/catalog-browser/internal/domain"
	"github.com/kahvecikaan/catalog-browser/internal/events"
	"github.com/kahvecikaan/catalog-browser/internal/repository"
)

type BrowserService interface {
	// OpenSession returns the session with the given id, creating a new one
	// when the id is empty or unknown
	OpenSession(ctx context.Context, id string) (*browser.Session, error)
	// MountList starts the collection fetch for a full page load. A list that
	// loaded fine is kept; one that was never fetched or failed is fetched.
	MountList(ctx context.Context, sessionID string) error
	ListPage(ctx context.Context, sessionID string) (browser.PageView, error)
	NextPage(ctx context.Context, sessionID string) (browser.PageView, error)
	PrevPage(ctx context.Context, sessionID string) (browser.PageView, error)
	ToggleList(ctx context.Context, sessionID string) (bool, error)
	ResizeViewport(ctx context.Context, sessionID string, width int) error
	// Select activates a product and returns the location to navigate to
	Select(ctx context.Context, sessionID, productID string, width int) (string, error)
	// ShowProduct makes productID the selected product and waits, bounded by
	// ctx and the settle timeout, for its detail to resolve
	ShowProduct(ctx context.Context, sessionID, productID string) (browser.DetailSnapshot, error)
	ClearProduct(ctx context.Context, sessionID string) error
	State(ctx context.Context, sessionID string) (browser.State, error)
	Close() error
}

type Config struct {
	Session browser.Config

	// idle time after which a session is dropped
	SessionTTL time.Duration

	// how often idle sessions are collected; defaults to a quarter of the TTL
	JanitorInterval time.Duration

	// upper bound a page render waits for pending fetches
	SettleTimeout time.Duration
}

type browserService struct {
	repo     repository.SessionRepository
	catalog  browser.Catalog
	enricher *domain.Enricher
	eventBus *events.EventBus[any]
	logger   hclog.Logger
	cfg      Config

	closeCh chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

func NewBrowserService(
	repo repository.SessionRepository,
	catalog browser.Catalog,
	enricher *domain.Enricher,
	eventBus *events.EventBus[any],
	logger hclog.Logger,
	cfg Config) BrowserService {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 30 * time.Minute
	}
	if cfg.JanitorInterval <= 0 {
		cfg.JanitorInterval = cfg.SessionTTL / 4
	}
	if cfg.SettleTimeout <= 0 {
		cfg.SettleTimeout = 5 * time.Second
	}
	if eventBus == nil {
		eventBus = events.NewEventBus[any]()
	}

	bs := &browserService{
		repo:     repo,
		catalog:  catalog,
		enricher: enricher,
		eventBus: eventBus,
		logger:   logger,
		cfg:      cfg,
		closeCh:  make(chan struct{}),
	}

	bs.wg.Add(1)
	go bs.expireSessions()

	return bs
}

func (s *browserService) expireSessions() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.JanitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pruned, err := s.repo.PruneIdle(context.Background(), time.Now().Add(-s.cfg.SessionTTL))
			if err != nil {
				s.logger.Error("Unable to expire idle sessions", "error", err)
				continue
			}
			if len(pruned) > 0 {
				s.logger.Debug("Expired idle sessions", "count", len(pruned), "active", s.repo.Count())
			}
		case <-s.closeCh:
			return
		}
	}
}

func (s *browserService) OpenSession(ctx context.Context, id string) (*browser.Session, error) {
	if id != "" {
		session, err := s.repo.GetByID(ctx, id)
		if err == nil {
			session.Touch()
			return session, nil
		}
		if !errors.Is(err, domain.ErrSessionNotFound) {
			s.logger.Error("Unable to get session", "session", id, "error", err)
			return nil, err
		}
		s.logger.Debug("Unknown session, starting a new one", "session", id)
	}

	session := browser.NewSession(s.logger, uuid.NewString(), s.catalog, s.enricher, s.eventBus, s.cfg.Session)
	if err := s.repo.Add(ctx, session); err != nil {
		s.logger.Error("Unable to store session", "session", session.ID, "error", err)
		return nil, err
	}

	s.logger.Debug("Opened session", "session", session.ID)
	return session, nil
}

func (s *browserService) MountList(ctx context.Context, sessionID string) error {
	session, err := s.session(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.List.Mount(ctx) {
		s.logger.Debug("Fetching product list", "session", sessionID)
	}
	return nil
}

func (s *browserService) ListPage(ctx context.Context, sessionID string) (browser.PageView, error) {
	s.logger.Debug("Getting list page", "session", sessionID)

	session, err := s.session(ctx, sessionID)
	if err != nil {
		return browser.PageView{}, err
	}

	s.awaitList(ctx, session)
	return session.List.Page(), nil
}

func (s *browserService) NextPage(ctx context.Context, sessionID string) (browser.PageView, error) {
	s.logger.Debug("Moving to next page", "session", sessionID)

	session, err := s.session(ctx, sessionID)
	if err != nil {
		return browser.PageView{}, err
	}

	s.awaitList(ctx, session)
	page, _ := session.List.Next()
	return page, nil
}

func (s *browserService) PrevPage(ctx context.Context, sessionID string) (browser.PageView, error) {
	s.logger.Debug("Moving to previous page", "session", sessionID)

	session, err := s.session(ctx, sessionID)
	if err != nil {
		return browser.PageView{}, err
	}

	s.awaitList(ctx, session)
	page, _ := session.List.Prev()
	return page, nil
}

func (s *browserService) ToggleList(ctx context.Context, sessionID string) (bool, error) {
	s.logger.Debug("Toggling list visibility", "session", sessionID)

	session, err := s.session(ctx, sessionID)
	if err != nil {
		return false, err
	}
	return session.Visibility.Toggle(), nil
}

func (s *browserService) ResizeViewport(ctx context.Context, sessionID string, width int) error {
	s.logger.Trace("Viewport resized", "session", sessionID, "width", width)

	session, err := s.session(ctx, sessionID)
	if err != nil {
		return err
	}
	session.Viewport.Resize(width)
	return nil
}

func (s *browserService) Select(ctx context.Context, sessionID, productID string, width int) (string, error) {
	s.logger.Debug("Selecting product", "session", sessionID, "id", productID, "width", width)

	session, err := s.session(ctx, sessionID)
	if err != nil {
		return "", err
	}
	return session.Bridge.Select(productID, width), nil
}

func (s *browserService) ShowProduct(ctx context.Context, sessionID, productID string) (browser.DetailSnapshot, error) {
	s.logger.Debug("Showing product", "session", sessionID, "id", productID)

	session, err := s.session(ctx, sessionID)
	if err != nil {
		return browser.DetailSnapshot{}, err
	}

	gen := session.Detail.Load(ctx, productID)

	ctx, cancel := context.WithTimeout(ctx, s.cfg.SettleTimeout)
	defer cancel()
	snap, err := session.Detail.Await(ctx, gen)
	if err != nil {
		// still loading; the page renders the loading state
		s.logger.Debug("Product detail not settled in time", "session", sessionID, "id", productID)
	}
	return snap, nil
}

func (s *browserService) ClearProduct(ctx context.Context, sessionID string) error {
	s.logger.Debug("Clearing product selection", "session", sessionID)

	session, err := s.session(ctx, sessionID)
	if err != nil {
		return err
	}
	session.Detail.Clear()
	return nil
}

func (s *browserService) State(ctx context.Context, sessionID string) (browser.State, error) {
	session, err := s.session(ctx, sessionID)
	if err != nil {
		return browser.State{}, err
	}

	s.awaitList(ctx, session)
	return session.State(), nil
}

func (s *browserService) Close() error {
	s.once.Do(func() {
		s.logger.Info("Shutting down BrowserService...")

		close(s.closeCh)
		s.wg.Wait()

		s.logger.Info("BrowserService shutdown complete.")
	})

	return nil
}

func (s *browserService) session(ctx context.Context, id string) (*browser.Session, error) {
	session, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Debug("Unable to get session", "session", id, "error", err)
		return nil, err
	}
	session.Touch()
	return session, nil
}

// awaitList waits, bounded by the settle timeout, for the list to resolve.
// A list that is still loading afterwards renders as loading.
func (s *browserService) awaitList(ctx context.Context, session *browser.Session) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.SettleTimeout)
	defer cancel()
	if err := session.List.Ready(ctx); err != nil {
		s.logger.Debug("Product list not ready in time", "session", session.ID)
	}
}
