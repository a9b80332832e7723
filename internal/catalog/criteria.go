package catalog

import (
	"net/url"
	"strconv"

	"github.com/damkaswim/storefront/internal/domain"
	apperrors "github.com/damkaswim/storefront/pkg/errors"
)

var (
	errInvalidCategory = apperrors.InvalidInput("unknown product category")
	errInvalidSort     = apperrors.InvalidInput("unknown sort key")
)

// Sort key constants.
const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortNameAsc   = "name_asc"
)

// ValidSorts returns the set of valid sort keys.
func ValidSorts() []string {
	return []string{SortNewest, SortPriceAsc, SortPriceDesc, SortNameAsc}
}

// IsValidSort checks whether the given sort key is valid.
func IsValidSort(sort string) bool {
	for _, s := range ValidSorts() {
		if s == sort {
			return true
		}
	}
	return false
}

// Criteria is the complete set of catalog filters plus the sort key.
// Zero values mean "not filtering on this dimension"; MinPrice, MaxPrice and
// InStock use pointers so that zero is distinguishable from unset.
type Criteria struct {
	Category   string `json:"category,omitempty"`
	Collection string `json:"collection,omitempty"`
	MinPrice   *int64 `json:"min_price,omitempty"`
	MaxPrice   *int64 `json:"max_price,omitempty"`
	InStock    *bool  `json:"in_stock,omitempty"`
	Search     string `json:"search,omitempty"`
	Sort       string `json:"sort"`
}

// DefaultCriteria returns the unfiltered state with the default sort.
func DefaultCriteria() Criteria {
	return Criteria{Sort: SortNewest}
}

// Patch is a partial criteria update. Nil fields are left unchanged;
// non-nil fields replace the current value.
type Patch struct {
	Category   *string `json:"category,omitempty"`
	Collection *string `json:"collection,omitempty"`
	MinPrice   *int64  `json:"min_price,omitempty"`
	MaxPrice   *int64  `json:"max_price,omitempty"`
	InStock    *bool   `json:"in_stock,omitempty"`
	Search     *string `json:"search,omitempty"`
	Sort       *string `json:"sort,omitempty"`
}

// Merge applies the patch to the criteria and returns the result.
func (c Criteria) Merge(p Patch) Criteria {
	if p.Category != nil {
		c.Category = *p.Category
	}
	if p.Collection != nil {
		c.Collection = *p.Collection
	}
	if p.MinPrice != nil {
		c.MinPrice = p.MinPrice
	}
	if p.MaxPrice != nil {
		c.MaxPrice = p.MaxPrice
	}
	if p.InStock != nil {
		c.InStock = p.InStock
	}
	if p.Search != nil {
		c.Search = *p.Search
	}
	if p.Sort != nil && IsValidSort(*p.Sort) {
		c.Sort = *p.Sort
	}
	return c
}

// Validate reports criteria problems that a caller should reject.
// A min price above the max price is NOT an error: it is accepted and
// simply matches nothing.
func (c Criteria) Validate() error {
	if c.Category != "" && !domain.IsValidCategory(c.Category) {
		return errInvalidCategory
	}
	if c.Sort != "" && !IsValidSort(c.Sort) {
		return errInvalidSort
	}
	return nil
}

// FromQuery builds criteria from URL query values, for deep links into the
// catalog. Unknown and malformed parameters are ignored; the result is
// independent of parameter order.
func FromQuery(values url.Values) Criteria {
	c := DefaultCriteria()

	if v := values.Get("category"); v != "" && domain.IsValidCategory(v) {
		c.Category = v
	}
	if v := values.Get("collection"); v != "" {
		c.Collection = v
	}
	if v := values.Get("min_price"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n >= 0 {
			c.MinPrice = &n
		}
	}
	if v := values.Get("max_price"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n >= 0 {
			c.MaxPrice = &n
		}
	}
	if v := values.Get("in_stock"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.InStock = &b
		}
	}
	if v := values.Get("search"); v != "" {
		c.Search = v
	}
	if v := values.Get("sort"); v != "" && IsValidSort(v) {
		c.Sort = v
	}

	return c
}
