package postgres

import (
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/Pesokrava/product_catalog/internal/domain"
	"github.com/Pesokrava/product_catalog/internal/query"
)

// productColumns maps predicate fields to columns. Fields outside this
// map are rejected, so no caller-supplied string ever reaches the SQL
// text directly.
var productColumns = map[query.Field]string{
	query.FieldName:        "p.name",
	query.FieldCategory:    "p.category",
	query.FieldSubCategory: "p.sub_category",
	query.FieldBrand:       "p.brand",
	query.FieldGender:      "p.gender",
	query.FieldDescription: "p.description",
	query.FieldPrice:       "p.price",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likeContains builds an ILIKE pattern matching the value anywhere,
// with LIKE metacharacters escaped.
func likeContains(value string) string {
	return "%" + likeEscaper.Replace(value) + "%"
}

// sqlBuilder accumulates positional arguments while rendering a
// predicate tree into a WHERE clause.
type sqlBuilder struct {
	args []interface{}
}

func (b *sqlBuilder) arg(v interface{}) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

func (b *sqlBuilder) column(f query.Field) (string, error) {
	col, ok := productColumns[f]
	if !ok {
		return "", fmt.Errorf("unknown query field: %q", f)
	}
	return col, nil
}

func (b *sqlBuilder) render(p query.Predicate) (string, error) {
	switch pred := p.(type) {
	case nil:
		return "TRUE", nil

	case query.And:
		return b.renderJoin(pred.Preds, " AND ")

	case query.Or:
		return b.renderJoin(pred.Preds, " OR ")

	case query.Equals:
		col, err := b.column(pred.Field)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("LOWER(%s) = LOWER(%s)", col, b.arg(pred.Value)), nil

	case query.Contains:
		col, err := b.column(pred.Field)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s ILIKE %s", col, b.arg(likeContains(pred.Value))), nil

	case query.OneOf:
		col, err := b.column(pred.Field)
		if err != nil {
			return "", err
		}
		lowered := make([]string, len(pred.Values))
		for i, v := range pred.Values {
			lowered[i] = strings.ToLower(v)
		}
		return fmt.Sprintf("LOWER(%s) = ANY(%s)", col, b.arg(pq.Array(lowered))), nil

	case query.Range:
		col, err := b.column(pred.Field)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s >= %s AND %s <= %s)", col, b.arg(pred.Min), col, b.arg(pred.Max)), nil

	case query.Matches:
		col, err := b.column(pred.Field)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s ~* %s", col, b.arg(pred.Pattern)), nil

	case query.HasVariantColor:
		return fmt.Sprintf(
			"EXISTS (SELECT 1 FROM variants v WHERE v.product_id = p.id AND v.color ILIKE %s)",
			b.arg(likeContains(pred.Value)),
		), nil

	default:
		return "", fmt.Errorf("unknown predicate type: %T", p)
	}
}

func (b *sqlBuilder) renderJoin(preds []query.Predicate, sep string) (string, error) {
	if len(preds) == 0 {
		return "TRUE", nil
	}
	parts := make([]string, 0, len(preds))
	for _, p := range preds {
		part, err := b.render(p)
		if err != nil {
			return "", err
		}
		parts = append(parts, part)
	}
	return "(" + strings.Join(parts, sep) + ")", nil
}

// buildWhere renders a predicate tree into a WHERE clause over the
// products table (aliased p) plus its positional arguments. A nil
// predicate matches everything.
func buildWhere(p query.Predicate) (string, []interface{}, error) {
	b := &sqlBuilder{}
	clause, err := b.render(p)
	if err != nil {
		return "", nil, err
	}
	return clause, b.args, nil
}

// orderBy maps a sort option to a deterministic ORDER BY expression.
// Unrecognized options sort newest first.
func orderBy(sort string) string {
	switch sort {
	case domain.SortRating:
		return "p.average_rating DESC, p.created_at DESC"
	case domain.SortPriceAsc:
		return "p.price ASC, p.created_at DESC"
	case domain.SortPriceDesc:
		return "p.price DESC, p.created_at DESC"
	default:
		return "p.created_at DESC"
	}
}
