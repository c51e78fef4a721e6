package repository

import (
	"context"
	"sync"
	"time"

	"github.com/kahvecikaan/catalog-browser/internal/browser"
	"github.com/kahvecikaan/catalog-browser/internal/domain"
	"github.com/kahvecikaan/catalog-browser/internal/metrics"
)

type SessionRepository interface {
	GetByID(ctx context.Context, id string) (*browser.Session, error)
	Add(ctx context.Context, session *browser.Session) error
	Delete(ctx context.Context, id string) error
	// PruneIdle removes sessions not seen since cutoff and returns their ids
	PruneIdle(ctx context.Context, cutoff time.Time) ([]string, error)
	Count() int
}

type memorySessionRepository struct {
	sessions map[string]*browser.Session
	mutex    sync.RWMutex
}

func NewMemorySessionRepository() SessionRepository {
	return &memorySessionRepository{
		sessions: make(map[string]*browser.Session),
	}
}

func (r *memorySessionRepository) GetByID(ctx context.Context, id string) (*browser.Session, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// Add stores a session. An existing session with the same id is kept.
func (r *memorySessionRepository) Add(ctx context.Context, session *browser.Session) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.sessions[session.ID]; ok {
		return nil
	}
	r.sessions[session.ID] = session
	metrics.SessionsActive.Set(float64(len(r.sessions)))
	return nil
}

func (r *memorySessionRepository) Delete(ctx context.Context, id string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return domain.ErrSessionNotFound
	}
	delete(r.sessions, id)
	metrics.SessionsActive.Set(float64(len(r.sessions)))
	return nil
}

func (r *memorySessionRepository) PruneIdle(ctx context.Context, cutoff time.Time) ([]string, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var pruned []string
	for id, session := range r.sessions {
		if session.LastSeen().Before(cutoff) {
			delete(r.sessions, id)
			pruned = append(pruned, id)
		}
	}
	metrics.SessionsActive.Set(float64(len(r.sessions)))
	return pruned, nil
}

func (r *memorySessionRepository) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.sessions)
}
