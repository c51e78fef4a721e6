package browser

import (
	"context"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/kahvecikaan/catalog-browser/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	products domain.Products
	details  map[string]*domain.ProductDetail
}

func (f *fakeCatalog) FetchCollection(ctx context.Context) (domain.Products, error) {
	return f.products, nil
}

func (f *fakeCatalog) FetchDetail(ctx context.Context, id string) (*domain.ProductDetail, error) {
	d, ok := f.details[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return d, nil
}

func newTestSession(t *testing.T) *Session {
	t.Helper()
	catalog := &fakeCatalog{
		products: makeProducts(23),
		details:  map[string]*domain.ProductDetail{"1": detail(1, "One")},
	}
	s := NewSession(hclog.NewNullLogger(), "s1", catalog, domain.NewEnricher(nil), nil, Config{
		PageSize:     10,
		Breakpoint:   768,
		FetchTimeout: time.Second,
	})
	s.List.Mount(context.Background())
	require.NoError(t, s.List.Ready(context.Background()))
	return s
}

func TestSessionNotFoundLeavesListUntouched(t *testing.T) {
	s := newTestSession(t)
	s.List.Next()
	before := s.List.Page()

	snap := settle(t, s.Detail, s.Detail.Load(context.Background(), "9999"))

	assert.Equal(t, DetailUnavailable, snap.Status)
	assert.Equal(t, before, s.List.Page())
	assert.True(t, s.Visibility.Visible())
}

func TestSessionEnrichesDetail(t *testing.T) {
	s := newTestSession(t)

	snap := settle(t, s.Detail, s.Detail.Load(context.Background(), "1"))

	require.Equal(t, DetailLoaded, snap.Status)
	assert.Equal(t, domain.AvailabilityOutOfStock, snap.Product.AvailabilityStatus)
	assert.Equal(t, domain.HashQuantity(snap.Product.Product), snap.Product.MinimumOrderQuantity)
	assert.Equal(t, "75.00", snap.Product.DiscountedPrice())
	assert.Equal(t, "100.00", snap.Product.OriginalPrice())
}

func TestSessionState(t *testing.T) {
	s := newTestSession(t)
	s.Viewport.Resize(375)
	s.Bridge.Select("1", 0)

	state := s.State()

	assert.Equal(t, "s1", state.SessionID)
	assert.False(t, state.ListVisible)
	assert.True(t, state.Narrow)
	assert.Equal(t, 375, state.ViewportWidth)
	assert.Equal(t, 768, state.Breakpoint)
	assert.Equal(t, 1, state.List.Page)
	assert.Equal(t, DetailIdle, state.Detail.Status, "selection navigates, it does not load")
}

func TestSessionTouch(t *testing.T) {
	s := newTestSession(t)
	first := s.LastSeen()

	time.Sleep(2 * time.Millisecond)
	s.Touch()

	assert.True(t, s.LastSeen().After(first))
	assert.False(t, s.Created().After(first))
}
