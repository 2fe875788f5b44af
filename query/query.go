// Package query builds declarative, lazily-evaluated query descriptors
// from a base selector and an options bag. It provides the three stages
// generated code composes: Filter, Search and List.
//
// Every stage is a pure descriptor-to-descriptor transform. A stage given
// an empty or absent option returns its input descriptor unchanged - the
// very same value, not an equivalent copy - so callers may rely on
// identity when a stage is a no-op. Stages never reorder each other:
// filter, list, search applied in sequence produce a different (and
// supported) descriptor than filter, search, list.
//
// No field validation happens here. Unknown columns surface when the
// descriptor is executed by the persistence engine.
package query

import (
	"reflect"
	"sort"

	"github.com/crudo-dev/crudo/dialect/sql"
)

// Filter restricts the descriptor by the given field conditions. A scalar
// value restricts the field to equality, a slice value restricts it to
// membership (OR within the field, AND across fields), and a nil value
// restricts the field to NULL. An empty or nil filter map is a no-op and
// returns s itself.
//
// Go maps have no iteration order, so conditions are applied in sorted
// field-name order. The order is observable in the rendered SQL and is
// part of the contract.
func Filter(s *sql.Selector, filters map[string]any) *sql.Selector {
	if len(filters) == 0 {
		return s
	}
	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	st := s.Clone()
	for _, k := range keys {
		v := filters[k]
		switch vs, ok := sliceValues(v); {
		case v == nil:
			// "field" = NULL matches no row in SQL; a nil value means IS NULL.
			st.Where(sql.IsNull(k))
		case ok:
			st.Where(sql.In(k, vs...))
		default:
			st.Where(sql.EQ(k, v))
		}
	}
	return st
}

// Search restricts the descriptor to rows where at least one of the given
// fields contains the term, case-insensitively. An empty term is a no-op
// and returns s itself.
//
// The incoming descriptor is materialized as an isolated sub-query before
// the OR-joined matches are applied, so search can only narrow what the
// previous stages restricted - it can neither leak extra rows in nor undo
// an earlier filter.
func Search(s *sql.Selector, term string, fields ...string) *sql.Selector {
	if term == "" || len(fields) == 0 {
		return s
	}
	inner := s.Clone()
	out := sql.Select().From(inner)
	out.SetDialect(s.Dialect())
	p := sql.ContainsFold(fields[0], term)
	for _, f := range fields[1:] {
		p = sql.Or(p, sql.ContainsFold(f, term))
	}
	return out.Where(p)
}

// List applies pagination, ordering and an optional custom scope to the
// descriptor. The options bag may be an Options value, a map, a KV list,
// or nil; see ParseOptions for the accepted shapes. An empty bag is a
// no-op and returns s itself.
//
// The custom-query hook, if present, is applied first, so caller-injected
// scoping (tenant isolation, soft-delete exclusion) composes with and runs
// before pagination and ordering. Limit, offset and the ordering clauses
// are then applied, in that fixed sequence. An absent order_by adds no
// ordering clause at all.
func List(s *sql.Selector, opts any) (*sql.Selector, error) {
	o, err := ParseOptions(opts)
	if err != nil {
		return nil, err
	}
	terms, err := orderTerms(o.OrderBy, o.SortingOrder)
	if err != nil {
		return nil, err
	}
	if o.CustomQuery == nil && o.Limit == nil && o.Offset == 0 && len(terms) == 0 {
		return s, nil
	}
	var st *sql.Selector
	if o.CustomQuery != nil {
		st = o.CustomQuery(s.Clone())
	} else {
		st = s.Clone()
	}
	if o.Limit != nil {
		st.Limit(*o.Limit)
	}
	if o.Offset != 0 {
		st.Offset(o.Offset)
	}
	for _, t := range terms {
		if t.dir == Desc {
			st.OrderBy(sql.Desc(t.column))
		} else {
			st.OrderBy(sql.Asc(t.column))
		}
	}
	return st, nil
}

// sliceValues expands a slice or array value into []any. Strings and byte
// slices are scalars, not member sets.
func sliceValues(v any) ([]any, bool) {
	if v == nil {
		return nil, false
	}
	if _, ok := v.([]byte); ok {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	vs := make([]any, rv.Len())
	for i := range vs {
		vs[i] = rv.Index(i).Interface()
	}
	return vs, true
}
