// Package query defines a closed, typed predicate tree for catalog
// queries. The tree is built by the filter criteria builder and
// translated to SQL by the persistence layer, which keeps the builder
// unit-testable without a database.
package query

// Field names a filterable product attribute. The persistence layer maps
// fields to columns; an unknown field is a translation error, never
// interpolated into SQL.
type Field string

const (
	FieldName        Field = "name"
	FieldCategory    Field = "category"
	FieldSubCategory Field = "subCategory"
	FieldBrand       Field = "brand"
	FieldGender      Field = "gender"
	FieldDescription Field = "description"
	FieldPrice       Field = "price"
)

// Predicate is one node of the filter tree.
type Predicate interface {
	isPredicate()
}

// And matches documents satisfying every child predicate. An empty And
// matches everything, as does a nil Predicate.
type And struct {
	Preds []Predicate
}

// Or matches documents satisfying at least one child predicate.
type Or struct {
	Preds []Predicate
}

// Equals is a case-insensitive exact match, anchored both ends.
type Equals struct {
	Field Field
	Value string
}

// Contains is a case-insensitive substring match.
type Contains struct {
	Field Field
	Value string
}

// OneOf is a case-insensitive exact match against any of several values.
type OneOf struct {
	Field  Field
	Values []string
}

// Range is an inclusive numeric range match.
type Range struct {
	Field Field
	Min   float64
	Max   float64
}

// Matches is a case-insensitive regular expression match.
type Matches struct {
	Field   Field
	Pattern string
}

// HasVariantColor matches products owning at least one variant whose
// color contains the value, case-insensitively. It is the only predicate
// that reaches into the owned variant collection.
type HasVariantColor struct {
	Value string
}

func (And) isPredicate()             {}
func (Or) isPredicate()              {}
func (Equals) isPredicate()          {}
func (Contains) isPredicate()        {}
func (OneOf) isPredicate()           {}
func (Range) isPredicate()           {}
func (Matches) isPredicate()         {}
func (HasVariantColor) isPredicate() {}

// AllOf combines predicates with And, dropping nils. It returns nil for
// an empty set and unwraps a single survivor.
func AllOf(preds ...Predicate) Predicate {
	kept := make([]Predicate, 0, len(preds))
	for _, p := range preds {
		if p != nil {
			kept = append(kept, p)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	default:
		return And{Preds: kept}
	}
}

// AnyOf combines predicates with Or, dropping nils, with the same
// normalization as AllOf.
func AnyOf(preds ...Predicate) Predicate {
	kept := make([]Predicate, 0, len(preds))
	for _, p := range preds {
		if p != nil {
			kept = append(kept, p)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	default:
		return Or{Preds: kept}
	}
}
