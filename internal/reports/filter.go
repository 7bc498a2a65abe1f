package reports

import (
	"fmt"
	"strings"
	"time"
)

// Filter scopes an aggregate to an inclusive date range and an entity. Zero
// values mean "not applied". All report families except the movement listing
// use at most one of the entity fields.
type Filter struct {
	From time.Time
	To   time.Time

	ProductID   string
	WarehouseID string
	// CityKey is the canonical city matching key produced by normalize.City.
	CityKey string
}

// DateRange builds the inclusive timestamp range for two calendar dates. The
// start is pinned to the start of day and the end to the last second of its
// day, matching the stored invoiced_date convention.
func DateRange(start, end time.Time) (time.Time, time.Time) {
	var from, to time.Time
	if !start.IsZero() {
		from = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	}
	if !end.IsZero() {
		to = time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 0, end.Location())
	}
	return from, to
}

// aliasSet names the table aliases a rendering targets. Rendering the same
// filter against two alias sets lets the percentage denominator subquery
// restrict to exactly the population of the outer query while sharing one
// positional argument list.
type aliasSet struct {
	Items  string // order_items
	Orders string // orders
	Cities string // normalized destinations CTE
}

var (
	outerAliases = aliasSet{Items: "oi", Orders: "o", Cities: "nc"}
	denomAliases = aliasSet{Items: "oi2", Orders: "o2", Cities: "nc2"}
)

type predicate func(a aliasSet, n int) string

// whereBuilder collects predicate fragments and their arguments. Placeholder
// numbers always derive from the argument's position in the sequence, never
// from hand-counted indexes.
type whereBuilder struct {
	preds []predicate
	args  []any
}

func (b *whereBuilder) add(p predicate, arg any) {
	b.preds = append(b.preds, p)
	b.args = append(b.args, arg)
}

// Args returns the positional arguments in placeholder order. Arguments
// appended afterwards (limit, offset) must continue from NextIndex.
func (b *whereBuilder) Args() []any {
	return b.args
}

// NextIndex is the placeholder number the next appended argument receives.
func (b *whereBuilder) NextIndex() int {
	return len(b.args) + 1
}

func (b *whereBuilder) render(a aliasSet) string {
	parts := make([]string, len(b.preds))
	for i, p := range b.preds {
		parts[i] = p(a, i+1)
	}
	return strings.Join(parts, " AND ")
}

// Where renders "WHERE ..." for the given aliases, or an empty string when no
// predicates apply.
func (b *whereBuilder) Where(a aliasSet) string {
	if len(b.preds) == 0 {
		return ""
	}
	return "WHERE " + b.render(a)
}

// And renders " AND ..." for queries that already carry a WHERE clause.
func (b *whereBuilder) And(a aliasSet) string {
	if len(b.preds) == 0 {
		return ""
	}
	return " AND " + b.render(a)
}

// build turns the filter into a predicate sequence. Entity predicates come
// first so scoped queries keep their driving index on the left.
func (f Filter) build() *whereBuilder {
	b := &whereBuilder{}
	if f.ProductID != "" {
		b.add(func(a aliasSet, n int) string {
			return fmt.Sprintf("%s.product_id = $%d", a.Items, n)
		}, f.ProductID)
	}
	if f.WarehouseID != "" {
		b.add(func(a aliasSet, n int) string {
			return fmt.Sprintf("%s.warehouse_id = $%d", a.Items, n)
		}, f.WarehouseID)
	}
	if f.CityKey != "" {
		b.add(func(a aliasSet, n int) string {
			return fmt.Sprintf("%s.normalized_city = $%d", a.Cities, n)
		}, f.CityKey)
	}
	if !f.From.IsZero() {
		b.add(func(a aliasSet, n int) string {
			return fmt.Sprintf("%s.invoiced_date >= $%d", a.Orders, n)
		}, f.From)
	}
	if !f.To.IsZero() {
		b.add(func(a aliasSet, n int) string {
			return fmt.Sprintf("%s.invoiced_date <= $%d", a.Orders, n)
		}, f.To)
	}
	return b
}

// needsCityJoin reports whether queries must join the normalized destination
// CTE to evaluate this filter.
func (f Filter) needsCityJoin() bool {
	return f.CityKey != ""
}
