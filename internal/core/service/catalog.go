package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/strogholod/catalog/internal/core/domain"
	"github.com/strogholod/catalog/internal/core/port"
	"github.com/strogholod/catalog/pkg/retry"
)

var _ port.CatalogView = (*Catalog)(nil)

type catalogBackend interface {
	port.ProductsLister
	port.ProductWriter
	port.ProductDeleter
}

type CatalogOpt func(*catalogOpts) error

type catalogOpts struct {
	backend    catalogBackend
	fetchRetry retry.RetryConfig
}

func CatalogBackendOpt(b catalogBackend) CatalogOpt {
	return func(opts *catalogOpts) error {
		if b == nil {
			return errors.New("backend is nil")
		}
		opts.backend = b
		return nil
	}
}

// CatalogFetchRetryOpt retries a failed list fetch up to attempts times.
func CatalogFetchRetryOpt(attempts int, delay time.Duration) CatalogOpt {
	return func(opts *catalogOpts) error {
		if attempts < 1 {
			return fmt.Errorf("invalid fetch attempts: %d", attempts)
		}
		opts.fetchRetry = retry.RetryConfig{
			MaxAttempts: attempts,
			Backoff:     retry.LinearBackoff(delay),
			ShouldRetry: retry.NotCanceled,
		}
		return nil
	}
}

// A Catalog owns the local snapshot of the product catalog.
//
// The snapshot is only written under mu; backend calls run outside of it.
type Catalog struct {
	backend    catalogBackend
	fetchRetry retry.RetryConfig

	mu          sync.Mutex
	activation  chan struct{}
	activateErr error
	products    []domain.Product
	cards       map[int]domain.CardState
	// generation counts confirmed mutations; a fetch started at an
	// older generation must not overwrite the snapshot.
	generation uint64
	fetchSeq   uint64
	appliedSeq uint64
}

func NewCatalog(opts ...CatalogOpt) (*Catalog, error) {
	const op = "NewCatalog"

	options := catalogOpts{
		fetchRetry: retry.RetryConfig{MaxAttempts: 1},
	}
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	if options.backend == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrTooFewOpts)
	}

	return &Catalog{
		backend:    options.backend,
		fetchRetry: options.fetchRetry,
		cards:      make(map[int]domain.CardState),
	}, nil
}

// Activate fetches the catalog on the first call only. Callers that
// arrive while the first fetch runs wait for it and share its error;
// once it has finished Activate is a no-op.
func (c *Catalog) Activate(ctx context.Context) error {
	const op = "Catalog.Activate"

	c.mu.Lock()
	done := c.activation
	if done == nil {
		done = make(chan struct{})
		c.activation = done
		c.mu.Unlock()

		err := c.Refresh(ctx)

		c.mu.Lock()
		c.activateErr = err
		c.mu.Unlock()
		close(done)
		return err
	}
	c.mu.Unlock()

	select {
	case <-done:
		return nil
	default:
	}

	select {
	case <-done:
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activateErr
}

// Refresh replaces the snapshot with the backend list. On failure the
// previous snapshot stays in place. A list fetched before a confirmed
// mutation, or overtaken by a later fetch, is dropped.
func (c *Catalog) Refresh(ctx context.Context) error {
	const op = "Catalog.Refresh"
	log := slog.With("op", op)

	c.mu.Lock()
	c.fetchSeq++
	seq, generation := c.fetchSeq, c.generation
	c.mu.Unlock()

	products, err := retry.DoWithResult(ctx, c.fetchRetry,
		func() ([]domain.Product, error) {
			return c.backend.ListProducts(ctx)
		},
	)
	if err != nil {
		log.Error("failed to fetch products", "err", err)
		return fmt.Errorf("%s: %w", op, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if generation != c.generation || seq < c.appliedSeq {
		log.Warn("dropped stale product list",
			"nProducts", len(products), "generation", generation)
		return nil
	}
	c.products = slices.Clone(products)
	c.appliedSeq = seq

	log.Info("catalog refreshed", "nProducts", len(products))
	return nil
}

func (c *Catalog) Products() []domain.Product {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.products)
}

func (c *Catalog) Get(id int) (domain.Product, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(id)
	if i < 0 {
		return domain.Product{}, false
	}
	return c.products[i], true
}

// Filter returns the view for a filter label. The recently changed filter
// orders every product by the last price change, newest first; a category
// label keeps that category only; an unknown label keeps everything.
func (c *Catalog) Filter(label string) []domain.Product {
	products := c.Products()

	if label == domain.RecentlyChangedFilter {
		sortByPriceUpdate(products)
		return products
	}

	code := domain.CodeFor(label)
	if code == "" {
		return products
	}

	filtered := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if p.Category == code {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

func (c *Catalog) CardState(id int) domain.CardState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cards[id]
}

// Delete removes the product from the snapshot once the backend confirms it.
func (c *Catalog) Delete(
	ctx context.Context, id int,
) (domain.ServerResponse, error) {
	const op = "Catalog.Delete"
	log := slog.With("op", op)

	p, err := c.begin(id, domain.CardPendingDelete)
	if err != nil {
		return domain.ServerResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.backend.DeleteProduct(ctx, p.ID, p.Photo)

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.cards, id)

	if err != nil {
		log.Error("failed to delete product", "productID", id, "err", err)
		return domain.ServerResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	if !resp.Success {
		log.Warn("delete rejected", "productID", id, "msg", resp.Message)
		return resp, nil
	}

	if i := c.indexOf(id); i >= 0 {
		c.products = slices.Delete(c.products, i, i+1)
	}
	c.generation++
	log.Info("product deleted", "productID", id)
	return resp, nil
}

// ClearPriceHistory sets the old price to the current one and, once the
// backend confirms it, replaces the snapshot entry with the sent product.
func (c *Catalog) ClearPriceHistory(
	ctx context.Context, id int,
) (domain.ServerResponse, error) {
	const op = "Catalog.ClearPriceHistory"
	log := slog.With("op", op)

	p, err := c.begin(id, domain.CardPendingHistoryClear)
	if err != nil {
		return domain.ServerResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	updated := p
	updated.OldPrice = p.Price

	resp, err := c.backend.UpdateProduct(ctx, updated)

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.cards, id)

	if err != nil {
		log.Error("failed to clear price history", "productID", id, "err", err)
		return domain.ServerResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	if !resp.Success {
		log.Warn("clear price history rejected", "productID", id, "msg", resp.Message)
		return resp, nil
	}

	if i := c.indexOf(id); i >= 0 {
		c.products[i] = updated
	}
	c.generation++
	log.Info("price history cleared", "productID", id)
	return resp, nil
}

// begin moves an idle card into state and returns a copy of its product.
func (c *Catalog) begin(id int, state domain.CardState) (domain.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return domain.Product{}, ErrNotFound
	}

	if c.cards[id] != domain.CardIdle {
		return domain.Product{}, ErrCardBusy
	}

	c.cards[id] = state
	return c.products[i], nil
}

// indexOf must be called with mu held.
func (c *Catalog) indexOf(id int) int {
	return slices.IndexFunc(c.products, func(p domain.Product) bool {
		return p.ID == id
	})
}

// sortByPriceUpdate sorts newest first; unparseable timestamps go last.
func sortByPriceUpdate(products []domain.Product) {
	slices.SortStableFunc(products, func(a, b domain.Product) int {
		at, aok := a.PriceUpdateTime()
		bt, bok := b.PriceUpdateTime()
		switch {
		case !aok && !bok:
			return 0
		case !aok:
			return 1
		case !bok:
			return -1
		default:
			return bt.Compare(at)
		}
	})
}
