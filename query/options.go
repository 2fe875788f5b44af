package query

import (
	"fmt"
	"strings"

	"github.com/crudo-dev/crudo/dialect/sql"
)

// Field is a symbolic field name. Both Field("age") and the plain string
// "age" resolve to the same column reference wherever a field name is
// accepted.
type Field string

// Direction is a sorting direction.
type Direction string

// Sorting directions.
const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// KV is one entry of a keyword-list shaped options bag. It mirrors the
// map shape for callers that want to preserve their own entry order.
type KV struct {
	Key   string
	Value any
}

// OrderPair is the (direction, field) encoding of an order-by target.
type OrderPair struct {
	Order Direction
	Field any // string or Field
}

// OrderTerm is the record encoding of an order-by target with explicit
// field and order attributes. A zero Order falls back to the stage's
// default sorting order.
type OrderTerm struct {
	Field any // string or Field
	Order Direction
}

// Options is the parsed list-stage options bag.
type Options struct {
	// Limit restricts the number of returned rows. Nil means unbounded.
	Limit *int
	// Offset skips the first rows. Zero is the default and is a no-op.
	Offset int
	// SortingOrder is the default direction applied to order-by targets
	// that carry no explicit direction. Defaults to Asc.
	SortingOrder Direction
	// OrderBy holds the raw order-by value in any of the accepted shapes:
	// a bare field, a sequence of fields, a sequence of OrderPair, or a
	// sequence of OrderTerm records. Nil adds no ordering clause.
	OrderBy any
	// CustomQuery, if set, transforms the descriptor before limit, offset
	// and ordering are layered on.
	CustomQuery func(*sql.Selector) *sql.Selector
}

// Option bag keys recognized in the map and KV shapes.
const (
	optLimit        = "limit"
	optOffset       = "offset"
	optSortingOrder = "sorting_order"
	optOrderBy      = "order_by"
	optCustomQuery  = "custom_query"
)

// ParseOptions normalizes an options bag into an Options value. It accepts
// nil, Options, *Options, map[string]any and []KV uniformly; callers never
// need to convert between the map and keyword-list shapes. Malformed keys
// or values fail fast with a descriptive error.
func ParseOptions(opts any) (*Options, error) {
	o := &Options{SortingOrder: Asc}
	switch t := opts.(type) {
	case nil:
	case Options:
		*o = t
	case *Options:
		if t != nil {
			*o = *t
		}
	case map[string]any:
		for k, v := range t {
			if err := o.set(k, v); err != nil {
				return nil, err
			}
		}
	case []KV:
		for _, kv := range t {
			if err := o.set(kv.Key, kv.Value); err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("query: unsupported options shape %T", opts)
	}
	if o.SortingOrder == "" {
		o.SortingOrder = Asc
	}
	d, err := toDirection(o.SortingOrder)
	if err != nil {
		return nil, err
	}
	o.SortingOrder = d
	if o.Limit != nil && *o.Limit < 0 {
		return nil, fmt.Errorf("query: limit must be >= 0, got %d", *o.Limit)
	}
	if o.Offset < 0 {
		return nil, fmt.Errorf("query: offset must be >= 0, got %d", o.Offset)
	}
	return o, nil
}

func (o *Options) set(key string, v any) error {
	switch key {
	case optLimit:
		n, err := toInt(key, v)
		if err != nil {
			return err
		}
		o.Limit = &n
	case optOffset:
		n, err := toInt(key, v)
		if err != nil {
			return err
		}
		o.Offset = n
	case optSortingOrder:
		d, err := toDirection(v)
		if err != nil {
			return err
		}
		o.SortingOrder = d
	case optOrderBy:
		o.OrderBy = v
	case optCustomQuery:
		f, ok := v.(func(*sql.Selector) *sql.Selector)
		if !ok {
			return fmt.Errorf("query: custom_query must be func(*sql.Selector) *sql.Selector, got %T", v)
		}
		o.CustomQuery = f
	default:
		return fmt.Errorf("query: unknown list option %q", key)
	}
	return nil
}

// orderTerm is one normalized (direction, column) pair.
type orderTerm struct {
	column string
	dir    Direction
}

// orderTerms normalizes the accepted order-by shapes into an ordered
// sequence of (direction, column) pairs. Targets without an explicit
// direction use def. Unsupported shapes are an error, never a silent
// drop of ordering.
func orderTerms(v any, def Direction) ([]orderTerm, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string, Field:
		name, err := fieldName(t)
		if err != nil {
			return nil, err
		}
		return []orderTerm{{column: name, dir: def}}, nil
	case OrderPair:
		return pairTerm(t, def)
	case OrderTerm:
		return recordTerm(t, def)
	case []string:
		terms := make([]orderTerm, len(t))
		for i, f := range t {
			terms[i] = orderTerm{column: f, dir: def}
		}
		return terms, nil
	case []Field:
		terms := make([]orderTerm, len(t))
		for i, f := range t {
			terms[i] = orderTerm{column: string(f), dir: def}
		}
		return terms, nil
	case []OrderPair:
		var terms []orderTerm
		for _, p := range t {
			ts, err := pairTerm(p, def)
			if err != nil {
				return nil, err
			}
			terms = append(terms, ts...)
		}
		return terms, nil
	case []OrderTerm:
		var terms []orderTerm
		for _, r := range t {
			ts, err := recordTerm(r, def)
			if err != nil {
				return nil, err
			}
			terms = append(terms, ts...)
		}
		return terms, nil
	case []any:
		var terms []orderTerm
		for _, e := range t {
			ts, err := orderTerms(e, def)
			if err != nil {
				return nil, err
			}
			terms = append(terms, ts...)
		}
		return terms, nil
	default:
		return nil, fmt.Errorf("query: unsupported order_by shape %T", v)
	}
}

func pairTerm(p OrderPair, def Direction) ([]orderTerm, error) {
	name, err := fieldName(p.Field)
	if err != nil {
		return nil, err
	}
	dir := p.Order
	if dir == "" {
		dir = def
	}
	d, err := toDirection(dir)
	if err != nil {
		return nil, err
	}
	return []orderTerm{{column: name, dir: d}}, nil
}

func recordTerm(r OrderTerm, def Direction) ([]orderTerm, error) {
	return pairTerm(OrderPair{Order: r.Order, Field: r.Field}, def)
}

// fieldName resolves the string and symbolic encodings of a field name
// to the same column reference.
func fieldName(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case Field:
		return string(t), nil
	default:
		return "", fmt.Errorf("query: field name must be string or Field, got %T", v)
	}
}

func toDirection(v any) (Direction, error) {
	var s string
	switch t := v.(type) {
	case Direction:
		s = string(t)
	case string:
		s = t
	default:
		return "", fmt.Errorf("query: sorting order must be %q or %q, got %T", Asc, Desc, v)
	}
	switch Direction(strings.ToLower(s)) {
	case Asc:
		return Asc, nil
	case Desc:
		return Desc, nil
	default:
		return "", fmt.Errorf("query: sorting order must be %q or %q, got %q", Asc, Desc, s)
	}
}

func toInt(key string, v any) (int, error) {
	switch t := v.(type) {
	case int:
		return t, nil
	case int32:
		return int(t), nil
	case int64:
		return int(t), nil
	case uint:
		return int(t), nil
	case float64:
		if t != float64(int(t)) {
			return 0, fmt.Errorf("query: %s must be an integer, got %v", key, v)
		}
		return int(t), nil
	default:
		return 0, fmt.Errorf("query: %s must be an integer, got %T", key, v)
	}
}
