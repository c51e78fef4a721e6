package browser

import (
	"context"
	"strconv"
	"sync"

	"github.com/kahvecikaan/catalog-browser/internal/domain"
)

// recorder collects published events
type recorder struct {
	mu     sync.Mutex
	events []any
}

func (r *recorder) Publish(event any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder) all() []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]any(nil), r.events...)
}

func makeProducts(n int) domain.Products {
	ps := make(domain.Products, n)
	for i := range ps {
		ps[i] = domain.Product{
			ID:       i + 1,
			Title:    "Product " + strconv.Itoa(i+1),
			Brand:    "Brand",
			Category: "misc",
			Price:    10,
			Stock:    i % 3,
		}
	}
	return ps
}

type fetchResult struct {
	product *domain.ProductDetail
	err     error
}

// gatedFetcher blocks every detail fetch until the test releases it
type gatedFetcher struct {
	mu    sync.Mutex
	gates map[string][]chan fetchResult
	calls map[string]int
	start chan string
}

func newGatedFetcher() *gatedFetcher {
	return &gatedFetcher{
		gates: map[string][]chan fetchResult{},
		calls: map[string]int{},
		start: make(chan string, 16),
	}
}

func (g *gatedFetcher) fetch(ctx context.Context, id string) (*domain.ProductDetail, error) {
	ch := make(chan fetchResult, 1)
	g.mu.Lock()
	g.gates[id] = append(g.gates[id], ch)
	g.calls[id]++
	g.mu.Unlock()
	g.start <- id

	select {
	case r := <-ch:
		return r.product, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// release answers the oldest pending fetch of id
func (g *gatedFetcher) release(id string, r fetchResult) {
	g.mu.Lock()
	ch := g.gates[id][0]
	g.gates[id] = g.gates[id][1:]
	g.mu.Unlock()
	ch <- r
}

func (g *gatedFetcher) callCount(id string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[id]
}

func detail(id int, title string) *domain.ProductDetail {
	return &domain.ProductDetail{
		Product:     domain.Product{ID: id, Title: title, Brand: "Brand", Category: "misc", Price: 100, DiscountPercentage: 25},
		Description: "About " + title,
	}
}
