package domain

// Sort options accepted by the filter engine. Unrecognized values fall
// back to SortNewest.
const (
	SortRating    = "rating"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortNewest    = "new"
)

// MatchAllTerm is the sentinel search term that skips free-text matching
// entirely.
const MatchAllTerm = "all"

// FilterQuery is the per-request filter selection: a free-text term plus
// zero or more facet values per dimension, a price range, sort and page.
type FilterQuery struct {
	SearchTerm    string
	Category      string
	SubCategories []string
	Brands        []string
	Color         string
	Gender        string
	PriceRange    string // "min,max"; dropped silently when unparseable
	Sort          string
	Page          int
	PageSize      int
}

// HasFacet reports whether any narrowing facet is selected on top of the
// free-text term.
func (q FilterQuery) HasFacet() bool {
	return q.Category != "" ||
		len(q.SubCategories) > 0 ||
		len(q.Brands) > 0 ||
		q.Color != "" ||
		q.Gender != "" ||
		q.PriceRange != ""
}

// Sidebar lists the remaining narrowing options under the current filter
// context. A dimension is only populated when it still offers a choice
// (more than one value). LowestPrice/HighestPrice are 0/0 when the match
// set is empty or carries a single price point.
type Sidebar struct {
	Brands        []string `json:"brands"`
	Categories    []string `json:"categories"`
	SubCategories []string `json:"subCategories"`
	Genders       []string `json:"genders"`
	Colors        []string `json:"colors"`
	LowestPrice   float64  `json:"lowestPrice"`
	HighestPrice  float64  `json:"highestPrice"`
}

// FilterResult is a filtered product page plus the facet sidebar.
// TotalProducts counts the free-text match set when no facet is selected
// and the fully filtered set otherwise.
type FilterResult struct {
	Products      []*Product `json:"products"`
	TotalProducts int        `json:"totalProducts"`
	Skip          int        `json:"skip"`
	Limit         int        `json:"limit"`
	Sidebar       Sidebar    `json:"sidebar"`
}
