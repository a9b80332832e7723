package catalog

import (
	"context"
	"log/slog"
	"sync"

	"github.com/damkaswim/storefront/internal/domain"
)

// DefaultPageSize is the number of products materialized per load-more step.
const DefaultPageSize = 12

// ProductSource provides the full active product set for filtering.
type ProductSource interface {
	ActiveProducts(ctx context.Context) ([]domain.Product, error)
}

// View is a snapshot of the controller state returned by every operation.
type View struct {
	Products []domain.Product `json:"products"`
	Total    int              `json:"total"`
	HasMore  bool             `json:"has_more"`
	Criteria Criteria         `json:"criteria"`
	Failed   bool             `json:"failed"`
}

// Controller is the catalog browsing state machine for one session: current
// filter criteria, the filtered and sorted product set, and the visible
// window that grows page by page.
//
// Refreshes carry a monotonically increasing sequence token; a refresh that
// finishes after a newer one began is discarded, so a slow response can never
// overwrite the state of a later filter change. On source failure the
// previous view is retained and Failed is set; there is no automatic retry.
type Controller struct {
	source   ProductSource
	logger   *slog.Logger
	pageSize int

	mu       sync.Mutex
	criteria Criteria
	filtered []domain.Product
	visible  int
	loaded   bool
	failed   bool
	seq      uint64
}

// NewController creates a controller with the given page size
// (DefaultPageSize when size <= 0).
func NewController(source ProductSource, pageSize int, logger *slog.Logger) *Controller {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Controller{
		source:   source,
		logger:   logger,
		pageSize: pageSize,
		criteria: DefaultCriteria(),
	}
}

// Current returns the current view, loading the first page on first use.
func (c *Controller) Current(ctx context.Context) (View, error) {
	c.mu.Lock()
	if c.loaded {
		v := c.viewLocked()
		c.mu.Unlock()
		return v, nil
	}
	c.visible = c.pageSize
	c.mu.Unlock()
	return c.refresh(ctx)
}

// SetFilter merges a partial criteria update, resets the visible window to
// the first page, and refreshes.
func (c *Controller) SetFilter(ctx context.Context, p Patch) (View, error) {
	c.mu.Lock()
	merged := c.criteria.Merge(p)
	if err := merged.Validate(); err != nil {
		v := c.viewLocked()
		c.mu.Unlock()
		return v, err
	}
	c.criteria = merged
	c.visible = c.pageSize
	c.mu.Unlock()
	return c.refresh(ctx)
}

// Replace swaps in a complete criteria set (deep links) and refreshes.
func (c *Controller) Replace(ctx context.Context, criteria Criteria) (View, error) {
	if err := criteria.Validate(); err != nil {
		c.mu.Lock()
		v := c.viewLocked()
		c.mu.Unlock()
		return v, err
	}
	if criteria.Sort == "" {
		criteria.Sort = SortNewest
	}
	c.mu.Lock()
	c.criteria = criteria
	c.visible = c.pageSize
	c.mu.Unlock()
	return c.refresh(ctx)
}

// Search clears all other filters and filters by the search term only.
func (c *Controller) Search(ctx context.Context, term string) (View, error) {
	criteria := DefaultCriteria()
	criteria.Search = term
	return c.Replace(ctx, criteria)
}

// Reset restores the default criteria and refreshes.
func (c *Controller) Reset(ctx context.Context) (View, error) {
	return c.Replace(ctx, DefaultCriteria())
}

// LoadMore extends the visible window by one page. The filtered set is only
// refetched when it has never been loaded.
func (c *Controller) LoadMore(ctx context.Context) (View, error) {
	c.mu.Lock()
	if !c.loaded {
		c.visible = c.pageSize
		c.mu.Unlock()
		return c.refresh(ctx)
	}
	if c.visible < len(c.filtered) {
		c.visible += c.pageSize
	}
	v := c.viewLocked()
	c.mu.Unlock()
	return v, nil
}

// Criteria returns a copy of the current criteria.
func (c *Controller) Criteria() Criteria {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.criteria
}

// refresh fetches the product set and applies the current criteria, guarded
// by the sequence token.
func (c *Controller) refresh(ctx context.Context) (View, error) {
	c.mu.Lock()
	c.seq++
	token := c.seq
	criteria := c.criteria
	c.mu.Unlock()

	products, err := c.source.ActiveProducts(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if token != c.seq {
		// A newer refresh superseded this one while it was in flight.
		c.logger.DebugContext(ctx, "stale catalog refresh discarded",
			slog.Uint64("token", token),
			slog.Uint64("latest", c.seq),
		)
		return c.viewLocked(), nil
	}

	if err != nil {
		c.failed = true
		c.logger.ErrorContext(ctx, "catalog refresh failed",
			slog.String("error", err.Error()),
		)
		return c.viewLocked(), err
	}

	c.filtered = Apply(products, criteria)
	c.loaded = true
	c.failed = false
	return c.viewLocked(), nil
}

// viewLocked builds a snapshot. Callers must hold c.mu.
func (c *Controller) viewLocked() View {
	n := c.visible
	if n > len(c.filtered) {
		n = len(c.filtered)
	}
	products := make([]domain.Product, n)
	copy(products, c.filtered[:n])

	return View{
		Products: products,
		Total:    len(c.filtered),
		HasMore:  n < len(c.filtered),
		Criteria: c.criteria,
		Failed:   c.failed,
	}
}
