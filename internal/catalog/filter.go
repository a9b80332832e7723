package catalog

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/damkaswim/storefront/internal/domain"
)

// Apply filters and sorts the given products according to the criteria,
// returning a new slice. The input is never mutated.
func Apply(products []domain.Product, c Criteria) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if matches(&p, c) {
			out = append(out, p)
		}
	}
	sortProducts(out, c.Sort)
	return out
}

// matches applies the filter dimensions in a fixed order: active status,
// category, collection, minimum price, maximum price, stock, then search.
func matches(p *domain.Product, c Criteria) bool {
	if !p.Active {
		return false
	}
	if c.Category != "" && p.Category != c.Category {
		return false
	}
	if c.Collection != "" && !p.HasCollection(c.Collection) {
		return false
	}
	if c.MinPrice != nil && p.EffectivePrice() < *c.MinPrice {
		return false
	}
	if c.MaxPrice != nil && p.EffectivePrice() > *c.MaxPrice {
		return false
	}
	if c.InStock != nil && p.InStock != *c.InStock {
		return false
	}
	if c.Search != "" && !matchesSearch(p, c.Search) {
		return false
	}
	return true
}

// matchesSearch does a case-insensitive substring match over title,
// description, and tags.
func matchesSearch(p *domain.Product, term string) bool {
	term = strings.ToLower(term)
	if strings.Contains(strings.ToLower(p.Title), term) {
		return true
	}
	if strings.Contains(strings.ToLower(p.Description), term) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

// newCollator builds a collator for title comparisons. Hebrew collation with
// case folding, since titles mix Hebrew and Latin text.
func newCollator() *collate.Collator {
	return collate.New(language.Hebrew, collate.Loose)
}

// sortProducts sorts in place by the given sort key.
//
// Ordering contracts: newest breaks creation-time ties by ascending title;
// price ascending breaks price ties by title then id, and price descending is
// the exact reverse of price ascending.
func sortProducts(products []domain.Product, sortKey string) {
	col := newCollator()

	byPriceAsc := func(a, b *domain.Product) bool {
		pa, pb := a.EffectivePrice(), b.EffectivePrice()
		if pa != pb {
			return pa < pb
		}
		if cmp := col.CompareString(a.Title, b.Title); cmp != 0 {
			return cmp < 0
		}
		return a.ID < b.ID
	}

	switch sortKey {
	case SortPriceAsc:
		sort.SliceStable(products, func(i, j int) bool {
			return byPriceAsc(&products[i], &products[j])
		})
	case SortPriceDesc:
		sort.SliceStable(products, func(i, j int) bool {
			return byPriceAsc(&products[j], &products[i])
		})
	case SortNameAsc:
		sort.SliceStable(products, func(i, j int) bool {
			if cmp := col.CompareString(products[i].Title, products[j].Title); cmp != 0 {
				return cmp < 0
			}
			return products[i].ID < products[j].ID
		})
	default: // SortNewest
		sort.SliceStable(products, func(i, j int) bool {
			if !products[i].CreatedAt.Equal(products[j].CreatedAt) {
				return products[i].CreatedAt.After(products[j].CreatedAt)
			}
			return col.CompareString(products[i].Title, products[j].Title) < 0
		})
	}
}
