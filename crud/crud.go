// Package crud is the thin persistence-access layer the generated CRUD
// functions call. A Repo binds one table description to a dialect.Driver
// and provides get/get-by/list/insert/update/delete with standard
// existence-check semantics: reads of missing records return a
// NotFoundError, and writes that target a vanished record return a
// StaleError.
//
// Records travel as map[string]any. The package owns no validation logic;
// database constraint violations are translated into validation trees by
// TranslateConstraint so the errfmt middleware can render them.
package crud

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/crudo-dev/crudo"
	"github.com/crudo-dev/crudo/dialect"
	"github.com/crudo-dev/crudo/dialect/sql"
	"github.com/crudo-dev/crudo/query"
)

// Table describes the shape of one persisted entity.
type Table struct {
	// Name is the table name.
	Name string
	// ID is the primary key column. Defaults to "id".
	ID string
	// Columns are all selectable columns, including the primary key.
	Columns []string
	// UUID indicates that the primary key is application-generated:
	// Insert assigns a fresh UUID when the caller supplies none.
	UUID bool
}

// Repo provides persistence access for one entity.
type Repo struct {
	drv    dialect.Driver
	schema string
	table  Table
}

// New returns a Repo for the given entity schema name and table over drv.
func New(drv dialect.Driver, schema string, table Table) *Repo {
	if table.ID == "" {
		table.ID = "id"
	}
	return &Repo{drv: drv, schema: schema, table: table}
}

// Schema returns the entity schema name the repo was bound to.
func (r *Repo) Schema() string { return r.schema }

// Table returns the table description.
func (r *Repo) Table() Table { return r.table }

// Selector returns a fresh base descriptor selecting the table's columns.
// It is the starting point for the query package's stages.
func (r *Repo) Selector() *sql.Selector {
	return sql.Dialect(r.drv.Dialect()).
		Select(r.table.Columns...).
		From(sql.Table(r.table.Name))
}

// All executes the given descriptor and returns all matching records.
func (r *Repo) All(ctx context.Context, s *sql.Selector) ([]map[string]any, error) {
	q, args := s.Query()
	var rows sql.Rows
	if err := r.drv.Query(ctx, q, args, &rows); err != nil {
		return nil, err
	}
	return scanRows(&rows)
}

// Get fetches a single record by its primary key. A missing record is a
// NotFoundError carrying the schema name and the ID.
func (r *Repo) Get(ctx context.Context, id any) (map[string]any, error) {
	s := r.Selector().Where(sql.EQ(r.table.ID, id)).Limit(1)
	recs, err := r.All(ctx, s)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, crudo.NewNotFoundErrorWithID(r.schema, id)
	}
	return recs[0], nil
}

// GetBy fetches the first record matching the given filters.
func (r *Repo) GetBy(ctx context.Context, filters map[string]any) (map[string]any, error) {
	s := query.Filter(r.Selector(), filters).Limit(1)
	recs, err := r.All(ctx, s)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, crudo.NewNotFoundError(r.schema)
	}
	return recs[0], nil
}

// Count returns the number of rows the given descriptor matches. The
// descriptor is wrapped as a sub-query so ordering and pagination on it
// are preserved verbatim.
func (r *Repo) Count(ctx context.Context, s *sql.Selector) (int, error) {
	cs := sql.Select("count(*)").From(s.Clone())
	cs.SetDialect(s.Dialect())
	q, args := cs.Query()
	var rows sql.Rows
	if err := r.drv.Query(ctx, q, args, &rows); err != nil {
		return 0, err
	}
	defer rows.Close()
	if !rows.Next() {
		return 0, rows.Err()
	}
	var n int
	if err := rows.Scan(&n); err != nil {
		return 0, err
	}
	return n, rows.Err()
}

// Exist reports whether a record with the given primary key exists.
func (r *Repo) Exist(ctx context.Context, id any) (bool, error) {
	n, err := r.Count(ctx, r.Selector().Where(sql.EQ(r.table.ID, id)))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Insert writes a new record and returns it with its primary key set.
// For UUID tables a fresh identifier is generated when the caller
// supplies none; otherwise the driver-assigned key is read back.
// Constraint violations are translated into validation trees.
func (r *Repo) Insert(ctx context.Context, values map[string]any) (map[string]any, error) {
	rec := make(map[string]any, len(values)+1)
	for k, v := range values {
		rec[k] = v
	}
	if r.table.UUID && rec[r.table.ID] == nil {
		rec[r.table.ID] = uuid.New().String()
	}
	ins := sql.Dialect(r.drv.Dialect()).Insert(r.table.Name)
	for _, c := range sortedKeys(rec) {
		ins.Set(c, rec[c])
	}
	if r.drv.Dialect() == dialect.Postgres && rec[r.table.ID] == nil {
		ins.Returning(r.table.ID)
		q, args := ins.Query()
		var rows sql.Rows
		if err := r.drv.Query(ctx, q, args, &rows); err != nil {
			return nil, TranslateConstraint(err, r.table)
		}
		defer rows.Close()
		if rows.Next() {
			var id any
			if err := rows.Scan(&id); err != nil {
				return nil, err
			}
			rec[r.table.ID] = id
		}
		return rec, rows.Err()
	}
	q, args := ins.Query()
	var res sql.Result
	if err := r.drv.Exec(ctx, q, args, &res); err != nil {
		return nil, TranslateConstraint(err, r.table)
	}
	if rec[r.table.ID] == nil {
		if id, err := res.LastInsertId(); err == nil {
			rec[r.table.ID] = id
		}
	}
	return rec, nil
}

// Update writes the given column values to the record with the given
// primary key and returns the stored record. Updating a vanished record
// returns a StaleError.
func (r *Repo) Update(ctx context.Context, id any, values map[string]any) (map[string]any, error) {
	u := sql.Dialect(r.drv.Dialect()).Update(r.table.Name)
	for _, c := range sortedKeys(values) {
		if c == r.table.ID {
			continue
		}
		u.Set(c, values[c])
	}
	u.Where(sql.EQ(r.table.ID, id))
	q, args := u.Query()
	var res sql.Result
	if err := r.drv.Exec(ctx, q, args, &res); err != nil {
		return nil, TranslateConstraint(err, r.table)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, crudo.NewStaleError(r.schema, id)
	}
	return r.Get(ctx, id)
}

// Delete removes the record with the given primary key. Deleting a
// vanished record returns a StaleError.
func (r *Repo) Delete(ctx context.Context, id any) error {
	d := sql.Dialect(r.drv.Dialect()).Delete(r.table.Name)
	d.Where(sql.EQ(r.table.ID, id))
	q, args := d.Query()
	var res sql.Result
	if err := r.drv.Exec(ctx, q, args, &res); err != nil {
		return TranslateConstraint(err, r.table)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return crudo.NewStaleError(r.schema, id)
	}
	return nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func scanRows(rows *sql.Rows) ([]map[string]any, error) {
	defer rows.Close()
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var out []map[string]any
	for rows.Next() {
		values := make([]any, len(columns))
		for i := range values {
			values[i] = new(any)
		}
		if err := rows.Scan(values...); err != nil {
			return nil, err
		}
		rec := make(map[string]any, len(columns))
		for i, c := range columns {
			rec[c] = *(values[i].(*any))
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
