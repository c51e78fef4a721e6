// Package catalog talks to the remote, read-only product catalog.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/kahvecikaan/catalog-browser/internal/domain"
	"github.com/kahvecikaan/catalog-browser/internal/metrics"
	"github.com/sony/gobreaker/v2"
)

const (
	opCollection = "collection"
	opDetail     = "detail"

	// upper bound for a single response body
	maxBodyBytes = 8 << 20
)

// Client is the read contract of the remote catalog
type Client interface {
	FetchCollection(ctx context.Context) (domain.Products, error)
	FetchDetail(ctx context.Context, id string) (*domain.ProductDetail, error)
}

// Config for the HTTP catalog client
type Config struct {
	BaseURL string
	Timeout time.Duration
	Breaker BreakerConfig
}

type httpClient struct {
	log        hclog.Logger
	baseURL    *url.URL
	client     *http.Client
	breakers   map[string]*gobreaker.CircuitBreaker[[]byte]
	validation *domain.Validation
}

type collectionResponse struct {
	Products *domain.Products `json:"products"`
}

// NewHTTPClient creates a catalog client for a DummyJSON compatible API.
// Every call is a single attempt guarded by a circuit breaker. Collection
// and detail calls trip separate breakers, so failing product lookups never
// take the list down with them.
func NewHTTPClient(logger hclog.Logger, cfg Config, validation *domain.Validation) (Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid catalog url %q: %w", cfg.BaseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid catalog url %q: scheme and host are required", cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.Breaker.Name == "" {
		cfg.Breaker = DefaultBreakerConfig("catalog")
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: cfg.Timeout,
	}

	return &httpClient{
		log:        logger,
		baseURL:    base,
		client:     &http.Client{Transport: transport, Timeout: cfg.Timeout},
		breakers:   newBreakers(logger, cfg.Breaker, opCollection, opDetail),
		validation: validation,
	}, nil
}

func (c *httpClient) FetchCollection(ctx context.Context) (domain.Products, error) {
	c.log.Debug("Fetching product collection")

	u := c.baseURL.JoinPath("products")
	u.RawQuery = url.Values{"limit": {"0"}}.Encode()

	body, err := c.get(ctx, opCollection, u)
	if err != nil {
		c.log.Error("Unable to fetch product collection", "error", err)
		return nil, err
	}

	var resp collectionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.log.Error("Failed to decode product collection", "error", err)
		return nil, fmt.Errorf("decode collection: %w", err)
	}
	if resp.Products == nil {
		c.log.Error("Product collection response has no products field")
		return nil, errors.New("decode collection: missing products field")
	}

	products := make(domain.Products, 0, len(*resp.Products))
	for _, p := range *resp.Products {
		normalized, errs := c.validation.NormalizeProduct(p)
		if errs.Has("ID") {
			c.log.Warn("Dropping product without a usable id", "title", p.Title)
			continue
		}
		if len(errs) > 0 {
			c.log.Debug("Defaulted malformed product fields", "id", p.ID, "fields", errs.Fields())
		}
		products = append(products, normalized)
	}

	c.log.Debug("Fetched product collection", "count", len(products))
	return products, nil
}

func (c *httpClient) FetchDetail(ctx context.Context, id string) (*domain.ProductDetail, error) {
	c.log.Debug("Fetching product", "id", id)

	if strings.TrimSpace(id) == "" || id == "." || id == ".." {
		return nil, domain.ErrProductNotFound
	}

	body, err := c.get(ctx, opDetail, c.baseURL.JoinPath("products", url.PathEscape(id)))
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			c.log.Debug("Product not found", "id", id)
		} else {
			c.log.Error("Unable to fetch product", "id", id, "error", err)
		}
		return nil, err
	}

	var detail domain.ProductDetail
	if err := json.Unmarshal(body, &detail); err != nil {
		c.log.Error("Failed to decode product", "id", id, "error", err)
		return nil, fmt.Errorf("decode product %s: %w", id, err)
	}

	normalized, errs := c.validation.NormalizeDetail(detail)
	if errs.Has("ID") {
		// a 2xx body without an id is how some catalogs signal a miss
		return nil, domain.ErrProductNotFound
	}
	if len(errs) > 0 {
		c.log.Debug("Defaulted malformed product fields", "id", id, "fields", errs.Fields())
	}

	return &normalized, nil
}

// get performs a single GET through the breaker and returns the body
func (c *httpClient) get(ctx context.Context, op string, u *url.URL) ([]byte, error) {
	start := time.Now()
	body, err := c.breakers[op].Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("create GET request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("catalog request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
			return nil, domain.ErrProductNotFound
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return nil, fmt.Errorf("catalog returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
		}

		return io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	})
	metrics.CatalogRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		metrics.CatalogRequestsTotal.WithLabelValues(op, metrics.OutcomeSuccess).Inc()
		return body, nil
	case errors.Is(err, domain.ErrProductNotFound):
		metrics.CatalogRequestsTotal.WithLabelValues(op, metrics.OutcomeNotFound).Inc()
		return nil, err
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CatalogRequestsTotal.WithLabelValues(op, metrics.OutcomeOpen).Inc()
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	default:
		metrics.CatalogRequestsTotal.WithLabelValues(op, metrics.OutcomeError).Inc()
		return nil, err
	}
}
