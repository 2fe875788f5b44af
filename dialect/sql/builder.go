// Package sql provides the SQL statement builders that back crudo's query
// descriptors. A Selector is the descriptor itself: an immutable-by-convention
// representation of a SELECT statement that is progressively refined by the
// query package and only rendered to SQL when executed.
//
// Generation adapts to the configured dialect: identifier quoting and
// placeholder style follow the dialect name set on the builder.
package sql

import (
	"strconv"
	"strings"

	"github.com/crudo-dev/crudo/dialect"
)

// Querier wraps the Query method: rendering a statement and its arguments.
type Querier interface {
	// Query returns the SQL string and its bound arguments.
	Query() (string, []any)
}

// state is implemented by builders that participate in nested rendering
// and need the parent's dialect and placeholder offset.
type state interface {
	Querier
	SetDialect(string)
	SetTotal(int)
}

// Builder is the base SQL string builder. It tracks bound arguments and
// renders placeholders according to the active dialect.
type Builder struct {
	strings.Builder
	dialect string
	args    []any
	total   int // placeholder counter, shared across nested builders
}

// SetDialect sets the builder dialect. It is used for garnering dialect
// specific output such as identifier quoting and placeholder style.
func (b *Builder) SetDialect(name string) { b.dialect = name }

// Dialect returns the dialect of the builder.
func (b *Builder) Dialect() string { return b.dialect }

// SetTotal sets the placeholder counter. It is used internally when a
// builder is rendered inside another builder.
func (b *Builder) SetTotal(total int) { b.total = total }

// Quote quotes the given identifier with the dialect's quote character.
func (b *Builder) Quote(ident string) string {
	quote := `"`
	if b.dialect == dialect.MySQL {
		quote = "`"
	}
	return quote + ident + quote
}

// Ident appends the given string as an identifier. Strings that are
// expressions rather than plain identifiers (contain a function call,
// a star, or an explicit ordering direction) are written as-is.
func (b *Builder) Ident(s string) *Builder {
	switch {
	case s == "":
	case s == "*" || strings.ContainsAny(s, "()* "):
		b.WriteString(s)
	default:
		b.WriteString(b.Quote(s))
	}
	return b
}

// IdentComma appends the given identifiers separated by commas.
func (b *Builder) IdentComma(idents ...string) *Builder {
	for i, s := range idents {
		if i > 0 {
			b.Comma()
		}
		b.Ident(s)
	}
	return b
}

// Comma appends a comma separator.
func (b *Builder) Comma() *Builder {
	b.WriteString(", ")
	return b
}

// Arg appends one argument to the builder and writes its placeholder.
func (b *Builder) Arg(v any) *Builder {
	b.total++
	b.args = append(b.args, v)
	if b.dialect == dialect.Postgres {
		b.WriteString("$" + strconv.Itoa(b.total))
	} else {
		b.WriteByte('?')
	}
	return b
}

// Args appends the given arguments separated by commas.
func (b *Builder) Args(vs ...any) *Builder {
	for i, v := range vs {
		if i > 0 {
			b.Comma()
		}
		b.Arg(v)
	}
	return b
}

// Wrap wraps the output of f with parentheses.
func (b *Builder) Wrap(f func(*Builder)) *Builder {
	b.WriteByte('(')
	f(b)
	b.WriteByte(')')
	return b
}

// Join renders the given querier into the builder, propagating the
// dialect and placeholder offset into nested builders.
func (b *Builder) Join(q Querier) *Builder {
	if st, ok := q.(state); ok {
		st.SetDialect(b.dialect)
		st.SetTotal(b.total)
	}
	s, args := q.Query()
	b.WriteString(s)
	b.args = append(b.args, args...)
	b.total += len(args)
	return b
}

// Predicate is a WHERE predicate. Predicates are composed with And, Or
// and Not, and rendered lazily at Query time.
type Predicate struct {
	dialect string
	total   int
	fns     []func(*Builder)
}

// P creates a new predicate from the given render functions.
func P(fns ...func(*Builder)) *Predicate {
	return &Predicate{fns: fns}
}

// Append appends a render function to the predicate.
func (p *Predicate) Append(f func(*Builder)) *Predicate {
	p.fns = append(p.fns, f)
	return p
}

// SetDialect sets the predicate dialect.
func (p *Predicate) SetDialect(name string) { p.dialect = name }

// SetTotal sets the placeholder counter of the predicate.
func (p *Predicate) SetTotal(total int) { p.total = total }

// clone returns a copy of the predicate that can be extended without
// affecting the original.
func (p *Predicate) clone() *Predicate {
	if p == nil {
		return nil
	}
	return &Predicate{fns: append([]func(*Builder){}, p.fns...)}
}

// Query renders the predicate. Multiple appended conditions are joined
// with AND. Rendering is repeatable: each call renders into a fresh
// buffer so descriptors can be rendered more than once.
func (p *Predicate) Query() (string, []any) {
	b := &Builder{dialect: p.dialect, total: p.total}
	for i, f := range p.fns {
		if i > 0 {
			b.WriteString(" AND ")
		}
		f(b)
	}
	return b.String(), b.args
}

// And combines the given predicates with the AND operator, wrapping each
// operand in parentheses.
func And(preds ...*Predicate) *Predicate {
	return P().Append(func(b *Builder) {
		joinPredicates(b, preds, "AND")
	})
}

// Or combines the given predicates with the OR operator, wrapping each
// operand in parentheses.
func Or(preds ...*Predicate) *Predicate {
	return P().Append(func(b *Builder) {
		joinPredicates(b, preds, "OR")
	})
}

// Not negates the given predicate.
func Not(p *Predicate) *Predicate {
	return P().Append(func(b *Builder) {
		b.WriteString("NOT ")
		b.Wrap(func(b *Builder) {
			b.Join(p)
		})
	})
}

func joinPredicates(b *Builder, preds []*Predicate, op string) {
	for i, p := range preds {
		if i > 0 {
			b.WriteString(" " + op + " ")
		}
		b.Wrap(func(b *Builder) {
			b.Join(p)
		})
	}
}

// EQ returns a column = value predicate.
func EQ(col string, v any) *Predicate {
	return P().Append(func(b *Builder) {
		b.Ident(col).WriteString(" = ")
		b.Arg(v)
	})
}

// NEQ returns a column <> value predicate.
func NEQ(col string, v any) *Predicate {
	return P().Append(func(b *Builder) {
		b.Ident(col).WriteString(" <> ")
		b.Arg(v)
	})
}

// GT returns a column > value predicate.
func GT(col string, v any) *Predicate {
	return P().Append(func(b *Builder) {
		b.Ident(col).WriteString(" > ")
		b.Arg(v)
	})
}

// GTE returns a column >= value predicate.
func GTE(col string, v any) *Predicate {
	return P().Append(func(b *Builder) {
		b.Ident(col).WriteString(" >= ")
		b.Arg(v)
	})
}

// LT returns a column < value predicate.
func LT(col string, v any) *Predicate {
	return P().Append(func(b *Builder) {
		b.Ident(col).WriteString(" < ")
		b.Arg(v)
	})
}

// LTE returns a column <= value predicate.
func LTE(col string, v any) *Predicate {
	return P().Append(func(b *Builder) {
		b.Ident(col).WriteString(" <= ")
		b.Arg(v)
	})
}

// In returns a column IN (values...) predicate. An empty value list
// renders FALSE, since no row can match.
func In(col string, vs ...any) *Predicate {
	return P().Append(func(b *Builder) {
		if len(vs) == 0 {
			b.WriteString("FALSE")
			return
		}
		b.Ident(col).WriteString(" IN ")
		b.Wrap(func(b *Builder) {
			b.Args(vs...)
		})
	})
}

// NotIn returns a column NOT IN (values...) predicate. An empty value
// list renders TRUE, since every row matches.
func NotIn(col string, vs ...any) *Predicate {
	return P().Append(func(b *Builder) {
		if len(vs) == 0 {
			b.WriteString("TRUE")
			return
		}
		b.Ident(col).WriteString(" NOT IN ")
		b.Wrap(func(b *Builder) {
			b.Args(vs...)
		})
	})
}

// Like returns a column LIKE pattern predicate.
func Like(col, pattern string) *Predicate {
	return P().Append(func(b *Builder) {
		b.Ident(col).WriteString(" LIKE ")
		b.Arg(pattern)
	})
}

// Contains returns a substring-match predicate.
func Contains(col, sub string) *Predicate {
	return Like(col, "%"+sub+"%")
}

// ContainsFold returns a case-insensitive substring-match predicate.
// Both sides are lowered so the comparison is byte-wise deterministic
// across dialects.
func ContainsFold(col, sub string) *Predicate {
	return P().Append(func(b *Builder) {
		b.WriteString("lower(")
		b.Ident(col)
		b.WriteString(") LIKE ")
		b.Arg("%" + strings.ToLower(sub) + "%")
	})
}

// HasPrefix returns a prefix-match predicate.
func HasPrefix(col, prefix string) *Predicate {
	return Like(col, prefix+"%")
}

// HasSuffix returns a suffix-match predicate.
func HasSuffix(col, suffix string) *Predicate {
	return Like(col, "%"+suffix)
}

// EqualFold returns a case-insensitive equality predicate.
func EqualFold(col, v string) *Predicate {
	return P().Append(func(b *Builder) {
		b.WriteString("lower(")
		b.Ident(col)
		b.WriteString(") = ")
		b.Arg(strings.ToLower(v))
	})
}

// IsNull returns a column IS NULL predicate.
func IsNull(col string) *Predicate {
	return P().Append(func(b *Builder) {
		b.Ident(col).WriteString(" IS NULL")
	})
}

// NotNull returns a column IS NOT NULL predicate.
func NotNull(col string) *Predicate {
	return P().Append(func(b *Builder) {
		b.Ident(col).WriteString(" IS NOT NULL")
	})
}

// A TableView is anything a Selector can select FROM: a named table or
// another Selector used as a sub-query.
type TableView interface {
	view()
}

// SelectTable is a named table, optionally aliased.
type SelectTable struct {
	name string
	as   string
}

// Table returns a new table view with the given name.
func Table(name string) *SelectTable {
	return &SelectTable{name: name}
}

// As sets the table alias.
func (t *SelectTable) As(alias string) *SelectTable {
	t.as = alias
	return t
}

// Name returns the table name.
func (t *SelectTable) Name() string { return t.name }

func (*SelectTable) view() {}

// Selector is a SELECT statement builder. It is the query descriptor the
// query package refines: every stage either returns the selector untouched
// (a no-op stage) or a fresh selector derived from it.
type Selector struct {
	dialect string
	total   int
	as      string
	columns []string
	from    TableView
	where   *Predicate
	order   []string
	limit   *int
	offset  *int
}

// Select returns a new selector with the given projection. An empty
// projection renders as SELECT *.
func Select(columns ...string) *Selector {
	return &Selector{columns: columns}
}

func (*Selector) view() {}

// SetDialect sets the selector dialect.
func (s *Selector) SetDialect(name string) { s.dialect = name }

// Dialect returns the dialect of the selector.
func (s *Selector) Dialect() string { return s.dialect }

// SetTotal sets the placeholder counter for nested rendering.
func (s *Selector) SetTotal(total int) { s.total = total }

// From sets the source of the selection.
func (s *Selector) From(t TableView) *Selector {
	s.from = t
	return s
}

// As sets the selector alias, used when it serves as a sub-query.
func (s *Selector) As(alias string) *Selector {
	s.as = alias
	return s
}

// Where appends the given predicate, combining it with any existing
// predicate using AND.
func (s *Selector) Where(p *Predicate) *Selector {
	if s.where == nil {
		s.where = p
	} else {
		s.where = And(s.where, p)
	}
	return s
}

// P returns the current predicate of the selector.
func (s *Selector) P() *Predicate { return s.where }

// Limit restricts the number of returned rows.
func (s *Selector) Limit(n int) *Selector {
	s.limit = &n
	return s
}

// Offset skips the first n rows.
func (s *Selector) Offset(n int) *Selector {
	s.offset = &n
	return s
}

// OrderBy appends the given ordering terms. Terms are produced by Asc
// and Desc, or given as bare column names (implicit ascending order in
// most databases).
func (s *Selector) OrderBy(columns ...string) *Selector {
	s.order = append(s.order, columns...)
	return s
}

// OrderLen returns the number of ordering terms on the selector.
func (s *Selector) OrderLen() int { return len(s.order) }

// Clone returns a duplicate of the selector. The duplicate can be
// extended without affecting the original descriptor.
func (s *Selector) Clone() *Selector {
	if s == nil {
		return nil
	}
	c := *s
	c.columns = append([]string(nil), s.columns...)
	c.order = append([]string(nil), s.order...)
	c.where = s.where.clone()
	if s.limit != nil {
		n := *s.limit
		c.limit = &n
	}
	if s.offset != nil {
		n := *s.offset
		c.offset = &n
	}
	return &c
}

// Asc returns an ascending ordering term for the given column.
func Asc(column string) string { return column + " ASC" }

// Desc returns a descending ordering term for the given column.
func Desc(column string) string { return column + " DESC" }

// Query renders the SELECT statement and its arguments. Rendering is
// repeatable and never mutates the selector.
func (s *Selector) Query() (string, []any) {
	b := &Builder{dialect: s.dialect, total: s.total}
	b.WriteString("SELECT ")
	if len(s.columns) > 0 {
		b.IdentComma(s.columns...)
	} else {
		b.WriteString("*")
	}
	if s.from != nil {
		b.WriteString(" FROM ")
		switch t := s.from.(type) {
		case *SelectTable:
			b.WriteString(b.Quote(t.name))
			if t.as != "" {
				b.WriteString(" AS " + b.Quote(t.as))
			}
		case *Selector:
			b.WriteByte('(')
			b.Join(t)
			b.WriteString(") AS ")
			as := t.as
			if as == "" {
				as = "t0"
			}
			b.WriteString(b.Quote(as))
		}
	}
	if s.where != nil {
		b.WriteString(" WHERE ")
		b.Join(s.where)
	}
	if len(s.order) > 0 {
		b.WriteString(" ORDER BY ")
		for i, o := range s.order {
			if i > 0 {
				b.Comma()
			}
			b.Ident(o)
		}
	}
	switch {
	case s.limit != nil:
		b.WriteString(" LIMIT " + strconv.Itoa(*s.limit))
	case s.offset != nil && s.dialect == dialect.MySQL:
		// MySQL has no bare OFFSET clause.
		b.WriteString(" LIMIT 18446744073709551615")
	case s.offset != nil && s.dialect != dialect.Postgres:
		// SQLite requires a LIMIT clause for OFFSET to parse.
		b.WriteString(" LIMIT -1")
	}
	if s.offset != nil {
		b.WriteString(" OFFSET " + strconv.Itoa(*s.offset))
	}
	return b.String(), b.args
}

// InsertBuilder is an INSERT statement builder.
type InsertBuilder struct {
	dialect   string
	total     int
	table     string
	columns   []string
	values    []any
	returning []string
}

// Insert returns a new INSERT builder for the given table.
func Insert(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

// SetDialect sets the builder dialect.
func (i *InsertBuilder) SetDialect(name string) { i.dialect = name }

// SetTotal sets the placeholder counter for nested rendering.
func (i *InsertBuilder) SetTotal(total int) { i.total = total }

// Set assigns a value to a column.
func (i *InsertBuilder) Set(column string, v any) *InsertBuilder {
	i.columns = append(i.columns, column)
	i.values = append(i.values, v)
	return i
}

// Returning appends a RETURNING clause. It is rendered only on Postgres.
func (i *InsertBuilder) Returning(columns ...string) *InsertBuilder {
	i.returning = append(i.returning, columns...)
	return i
}

// Query renders the INSERT statement and its arguments.
func (i *InsertBuilder) Query() (string, []any) {
	b := &Builder{dialect: i.dialect, total: i.total}
	b.WriteString("INSERT INTO ")
	b.WriteString(b.Quote(i.table))
	b.WriteString(" (")
	b.IdentComma(i.columns...)
	b.WriteString(") VALUES (")
	b.Args(i.values...)
	b.WriteByte(')')
	if len(i.returning) > 0 && i.dialect == dialect.Postgres {
		b.WriteString(" RETURNING ")
		b.IdentComma(i.returning...)
	}
	return b.String(), b.args
}

// UpdateBuilder is an UPDATE statement builder.
type UpdateBuilder struct {
	dialect string
	total   int
	table   string
	columns []string
	values  []any
	where   *Predicate
}

// Update returns a new UPDATE builder for the given table.
func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

// SetDialect sets the builder dialect.
func (u *UpdateBuilder) SetDialect(name string) { u.dialect = name }

// SetTotal sets the placeholder counter for nested rendering.
func (u *UpdateBuilder) SetTotal(total int) { u.total = total }

// Set assigns a value to a column.
func (u *UpdateBuilder) Set(column string, v any) *UpdateBuilder {
	u.columns = append(u.columns, column)
	u.values = append(u.values, v)
	return u
}

// Where appends the given predicate, combining with AND.
func (u *UpdateBuilder) Where(p *Predicate) *UpdateBuilder {
	if u.where == nil {
		u.where = p
	} else {
		u.where = And(u.where, p)
	}
	return u
}

// Query renders the UPDATE statement and its arguments.
func (u *UpdateBuilder) Query() (string, []any) {
	b := &Builder{dialect: u.dialect, total: u.total}
	b.WriteString("UPDATE ")
	b.WriteString(b.Quote(u.table))
	b.WriteString(" SET ")
	for j, c := range u.columns {
		if j > 0 {
			b.Comma()
		}
		b.Ident(c).WriteString(" = ")
		b.Arg(u.values[j])
	}
	if u.where != nil {
		b.WriteString(" WHERE ")
		b.Join(u.where)
	}
	return b.String(), b.args
}

// DeleteBuilder is a DELETE statement builder.
type DeleteBuilder struct {
	dialect string
	total   int
	table   string
	where   *Predicate
}

// Delete returns a new DELETE builder for the given table.
func Delete(table string) *DeleteBuilder {
	return &DeleteBuilder{table: table}
}

// SetDialect sets the builder dialect.
func (d *DeleteBuilder) SetDialect(name string) { d.dialect = name }

// SetTotal sets the placeholder counter for nested rendering.
func (d *DeleteBuilder) SetTotal(total int) { d.total = total }

// Where appends the given predicate, combining with AND.
func (d *DeleteBuilder) Where(p *Predicate) *DeleteBuilder {
	if d.where == nil {
		d.where = p
	} else {
		d.where = And(d.where, p)
	}
	return d
}

// Query renders the DELETE statement and its arguments.
func (d *DeleteBuilder) Query() (string, []any) {
	b := &Builder{dialect: d.dialect, total: d.total}
	b.WriteString("DELETE FROM ")
	b.WriteString(b.Quote(d.table))
	if d.where != nil {
		b.WriteString(" WHERE ")
		b.Join(d.where)
	}
	return b.String(), b.args
}

// DialectBuilder prefixes all root builders with the given dialect.
type DialectBuilder struct {
	dialect string
}

// Dialect creates a new DialectBuilder with the given dialect name.
func Dialect(name string) *DialectBuilder {
	return &DialectBuilder{dialect: name}
}

// Select creates a Selector for the configured dialect.
func (d *DialectBuilder) Select(columns ...string) *Selector {
	s := Select(columns...)
	s.SetDialect(d.dialect)
	return s
}

// Insert creates an InsertBuilder for the configured dialect.
func (d *DialectBuilder) Insert(table string) *InsertBuilder {
	i := Insert(table)
	i.SetDialect(d.dialect)
	return i
}

// Update creates an UpdateBuilder for the configured dialect.
func (d *DialectBuilder) Update(table string) *UpdateBuilder {
	u := Update(table)
	u.SetDialect(d.dialect)
	return u
}

// Delete creates a DeleteBuilder for the configured dialect.
func (d *DialectBuilder) Delete(table string) *DeleteBuilder {
	del := Delete(table)
	del.SetDialect(d.dialect)
	return del
}
