package catalog

import (
	"strconv"
	"strings"

	"github.com/Pesokrava/product_catalog/internal/domain"
	"github.com/Pesokrava/product_catalog/internal/pkg/search"
	"github.com/Pesokrava/product_catalog/internal/query"
)

// Facet dimensions. The sidebar recomputes each dimension with its own
// selection excluded, so a user who picked a brand still sees the other
// brands to switch to.
const (
	dimCategory    = "category"
	dimSubCategory = "subCategory"
	dimBrand       = "brand"
	dimGender      = "gender"
	dimColor       = "color"
	dimPrice       = "price"
)

// searchFields are the product fields the free-text term is matched
// against.
var searchFields = []query.Field{
	query.FieldName,
	query.FieldBrand,
	query.FieldCategory,
	query.FieldSubCategory,
	query.FieldDescription,
	query.FieldGender,
}

// textPredicate builds the free-text part of the criteria: the loose
// pattern must match at least one of the search fields. The "all"
// sentinel and empty terms skip free-text matching entirely.
func textPredicate(term string) query.Predicate {
	if term == "" || strings.EqualFold(term, domain.MatchAllTerm) {
		return nil
	}

	pattern := search.BuildLoosePattern(term)
	if pattern == "" {
		return nil
	}

	preds := make([]query.Predicate, len(searchFields))
	for i, field := range searchFields {
		preds[i] = query.Matches{Field: field, Pattern: pattern}
	}
	return query.AnyOf(preds...)
}

// buildCriteria turns the filter selection into a predicate tree:
// free-text AND every selected facet. exclude names one facet dimension
// to leave out, which is how the sidebar recomputation works; pass the
// empty string to apply everything.
func buildCriteria(q domain.FilterQuery, exclude string) query.Predicate {
	parts := []query.Predicate{textPredicate(q.SearchTerm)}

	if q.Category != "" && exclude != dimCategory {
		parts = append(parts, query.Contains{Field: query.FieldCategory, Value: q.Category})
	}
	if exclude != dimSubCategory {
		parts = append(parts, facetPredicate(query.FieldSubCategory, q.SubCategories))
	}
	if exclude != dimBrand {
		parts = append(parts, facetPredicate(query.FieldBrand, q.Brands))
	}
	if q.Gender != "" && exclude != dimGender {
		parts = append(parts, query.Equals{Field: query.FieldGender, Value: q.Gender})
	}
	if q.Color != "" && exclude != dimColor {
		parts = append(parts, query.HasVariantColor{Value: q.Color})
	}
	if exclude != dimPrice {
		if rng, ok := parsePriceRange(q.PriceRange); ok {
			parts = append(parts, rng)
		}
	}

	return query.AllOf(parts...)
}

// facetPredicate maps a facet selection to its predicate: a single value
// is a substring match, several values match any of them exactly.
func facetPredicate(field query.Field, values []string) query.Predicate {
	switch len(values) {
	case 0:
		return nil
	case 1:
		return query.Contains{Field: field, Value: values[0]}
	default:
		return query.OneOf{Field: field, Values: values}
	}
}

// parsePriceRange parses "min,max" into a range predicate. Anything that
// is not exactly two numbers is dropped silently: the price filter
// degrades to a no-op instead of rejecting the request.
func parsePriceRange(s string) (query.Predicate, bool) {
	if s == "" {
		return nil, false
	}

	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return nil, false
	}

	min, errMin := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	max, errMax := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if errMin != nil || errMax != nil {
		return nil, false
	}

	return query.Range{Field: query.FieldPrice, Min: min, Max: max}, true
}

// normalizeSort maps unrecognized sort options to the default.
func normalizeSort(sort string) string {
	switch sort {
	case domain.SortRating, domain.SortPriceAsc, domain.SortPriceDesc, domain.SortNewest:
		return sort
	default:
		return domain.SortNewest
	}
}
