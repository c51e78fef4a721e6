package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/kahvecikaan/catalog-browser/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const collectionBody = `{
  "products": [
    {"id": 1, "title": "Essence Mascara Lash Princess", "price": 9.99, "discountPercentage": 7.17,
     "rating": 4.94, "stock": 5, "brand": "Essence", "category": "beauty",
     "thumbnail": "https://cdn.dummyjson.com/1/thumbnail.png", "availabilityStatus": "Low Stock",
     "minimumOrderQuantity": 24},
    {"id": 2, "title": "", "price": 19.99, "discountPercentage": 5, "rating": 3.2, "stock": 0,
     "category": "beauty", "thumbnail": ""},
    {"title": "orphan without id", "price": 1}
  ],
  "total": 3, "skip": 0, "limit": 3
}`

const detailBody = `{
  "id": 1, "title": "Essence Mascara Lash Princess", "description": "A popular mascara.",
  "price": 100, "discountPercentage": 25, "rating": 4.5, "stock": 5, "brand": "Essence",
  "category": "beauty", "thumbnail": "https://cdn.dummyjson.com/1/thumbnail.png",
  "images": ["https://cdn.dummyjson.com/1/1.png", "https://cdn.dummyjson.com/1/2.png"],
  "sku": "RCH45Q1A", "weight": 2, "dimensions": {"width": 23.17, "height": 14.43, "depth": 28.01},
  "warrantyInformation": "1 month warranty", "shippingInformation": "Ships in 1 month",
  "returnPolicy": "30 days return policy",
  "reviews": [{"rating": 2, "comment": "Very unhappy with my purchase!", "date": "2024-05-23T08:56:21.618Z", "reviewerName": "John Doe"}]
}`

func newTestClient(t *testing.T, baseURL string, breaker BreakerConfig) Client {
	t.Helper()
	c, err := NewHTTPClient(hclog.NewNullLogger(), Config{
		BaseURL: baseURL,
		Timeout: 2 * time.Second,
		Breaker: breaker,
	}, domain.NewValidation())
	require.NoError(t, err)
	return c
}

func TestFetchCollection(t *testing.T) {
	var gotQuery atomic.Value
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products", r.URL.Path)
		gotQuery.Store(r.URL.RawQuery)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, collectionBody)
	}))
	defer backend.Close()

	c := newTestClient(t, backend.URL, DefaultBreakerConfig(t.Name()))

	products, err := c.FetchCollection(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "limit=0", gotQuery.Load())
	require.Len(t, products, 2, "record without id is dropped")
	assert.Equal(t, 1, products[0].ID)
	assert.Equal(t, "Essence", products[0].Brand)
	assert.Equal(t, domain.PlaceholderTitle, products[1].Title)
	assert.Equal(t, domain.PlaceholderBrand, products[1].Brand)
}

func TestFetchCollectionServerError(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer backend.Close()

	c := newTestClient(t, backend.URL, DefaultBreakerConfig(t.Name()))

	products, err := c.FetchCollection(context.Background())

	assert.Error(t, err)
	assert.Empty(t, products)
}

func TestFetchCollectionMalformedBody(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{"Not JSON", "<html>oops</html>"},
		{"Missing products field", `{"items": []}`},
		{"Wrong id type", `{"products": [{"id": "one"}]}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tc.body)
			}))
			defer backend.Close()

			c := newTestClient(t, backend.URL, DefaultBreakerConfig(t.Name()))

			_, err := c.FetchCollection(context.Background())
			assert.Error(t, err)
		})
	}
}

func TestFetchDetail(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/1", r.URL.Path)
		fmt.Fprint(w, detailBody)
	}))
	defer backend.Close()

	c := newTestClient(t, backend.URL, DefaultBreakerConfig(t.Name()))

	p, err := c.FetchDetail(context.Background(), "1")

	require.NoError(t, err)
	assert.Equal(t, 1, p.ID)
	assert.Equal(t, "RCH45Q1A", p.SKU)
	assert.Len(t, p.Images, 2)
	assert.Equal(t, 28.01, p.Dimensions.Depth)
	require.Len(t, p.Reviews, 1)
	assert.Equal(t, "John Doe", p.Reviews[0].ReviewerName)
}

func TestFetchDetailNotFound(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message": "Product with id '9999' not found"}`)
	}))
	defer backend.Close()

	c := newTestClient(t, backend.URL, DefaultBreakerConfig(t.Name()))

	p, err := c.FetchDetail(context.Background(), "9999")

	assert.Nil(t, p)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestFetchDetailBodyWithoutIDIsNotFound(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"message": "nothing here"}`)
	}))
	defer backend.Close()

	c := newTestClient(t, backend.URL, DefaultBreakerConfig(t.Name()))

	_, err := c.FetchDetail(context.Background(), "abc")

	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestFetchDetailEscapesIdentifier(t *testing.T) {
	var rawPath atomic.Value
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawPath.Store(r.URL.EscapedPath())
		w.WriteHeader(http.StatusNotFound)
	}))
	defer backend.Close()

	c := newTestClient(t, backend.URL, DefaultBreakerConfig(t.Name()))

	_, err := c.FetchDetail(context.Background(), "a b")

	assert.ErrorIs(t, err, domain.ErrProductNotFound)
	assert.Equal(t, "/products/a%20b", rawPath.Load())
}

func TestNotFoundDoesNotTripBreaker(t *testing.T) {
	var calls atomic.Int32
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer backend.Close()

	cfg := DefaultBreakerConfig(t.Name())
	cfg.MinRequests = 1
	c := newTestClient(t, backend.URL, cfg)

	for i := 0; i < 5; i++ {
		_, err := c.FetchDetail(context.Background(), "9999")
		assert.ErrorIs(t, err, domain.ErrProductNotFound)
	}
	assert.Equal(t, int32(5), calls.Load())
}

func TestOpenBreakerFailsFast(t *testing.T) {
	var calls atomic.Int32
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer backend.Close()

	cfg := DefaultBreakerConfig(t.Name())
	cfg.MinRequests = 1
	cfg.Timeout = time.Minute
	c := newTestClient(t, backend.URL, cfg)

	_, err := c.FetchCollection(context.Background())
	require.Error(t, err)

	_, err = c.FetchCollection(context.Background())
	assert.ErrorIs(t, err, domain.ErrCatalogUnavailable)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDetailFailuresLeaveCollectionWorking(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/products" {
			fmt.Fprint(w, collectionBody)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer backend.Close()

	cfg := DefaultBreakerConfig(t.Name())
	cfg.Timeout = time.Minute
	c := newTestClient(t, backend.URL, cfg)

	for i := 0; i < 5; i++ {
		_, err := c.FetchDetail(context.Background(), "9999")
		require.Error(t, err)
	}
	_, err := c.FetchDetail(context.Background(), "9999")
	assert.ErrorIs(t, err, domain.ErrCatalogUnavailable, "the detail breaker is open")

	products, err := c.FetchCollection(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 2)
}

func TestNewHTTPClientRejectsBadURL(t *testing.T) {
	_, err := NewHTTPClient(hclog.NewNullLogger(), Config{BaseURL: "dummyjson.com"}, domain.NewValidation())
	assert.Error(t, err)
}
