package query

import (
	stdsql "database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/crudo-dev/crudo/dialect"
	"github.com/crudo-dev/crudo/dialect/sql"
)

func users() *sql.Selector {
	return sql.Dialect(dialect.Postgres).Select().From(sql.Table("users"))
}

func TestFilter(t *testing.T) {
	t.Run("empty filter returns the same descriptor", func(t *testing.T) {
		s := users()
		assert.Same(t, s, Filter(s, nil))
		assert.Same(t, s, Filter(s, map[string]any{}))
	})

	t.Run("scalar value restricts to equality", func(t *testing.T) {
		query, args := Filter(users(), map[string]any{"age": 30}).Query()
		assert.Equal(t, `SELECT * FROM "users" WHERE "age" = $1`, query)
		assert.Equal(t, []any{30}, args)
	})

	t.Run("slice value restricts to membership", func(t *testing.T) {
		query, args := Filter(users(), map[string]any{"name": []string{"a", "b"}}).Query()
		assert.Equal(t, `SELECT * FROM "users" WHERE "name" IN ($1, $2)`, query)
		assert.Equal(t, []any{"a", "b"}, args)
	})

	t.Run("conditions apply in sorted field order", func(t *testing.T) {
		query, args := Filter(users(), map[string]any{
			"name":       []string{"a", "b"},
			"company_id": 2,
		}).Query()
		assert.Equal(t, `SELECT * FROM "users" WHERE ("company_id" = $1) AND ("name" IN ($2, $3))`, query)
		assert.Equal(t, []any{2, "a", "b"}, args)
	})

	t.Run("nil value restricts to NULL", func(t *testing.T) {
		query, args := Filter(users(), map[string]any{
			"deleted_at": nil,
			"name":       "a",
		}).Query()
		assert.Equal(t, `SELECT * FROM "users" WHERE ("deleted_at" IS NULL) AND ("name" = $1)`, query)
		assert.Equal(t, []any{"a"}, args)
	})

	t.Run("byte slices are scalars", func(t *testing.T) {
		query, _ := Filter(users(), map[string]any{"digest": []byte{1, 2}}).Query()
		assert.Equal(t, `SELECT * FROM "users" WHERE "digest" = $1`, query)
	})

	t.Run("input descriptor is never mutated", func(t *testing.T) {
		s := users()
		before, _ := s.Query()
		Filter(s, map[string]any{"age": 30})
		after, _ := s.Query()
		assert.Equal(t, before, after)
	})
}

func TestSearch(t *testing.T) {
	t.Run("empty term returns the same descriptor", func(t *testing.T) {
		s := users()
		assert.Same(t, s, Search(s, "", "name"))
		assert.Same(t, s, Search(s, "john"))
	})

	t.Run("single field", func(t *testing.T) {
		query, args := Search(users(), "John", "name").Query()
		assert.Equal(t, `SELECT * FROM (SELECT * FROM "users") AS "t0" WHERE lower("name") LIKE $1`, query)
		assert.Equal(t, []any{"%john%"}, args)
	})

	t.Run("multiple fields join with OR", func(t *testing.T) {
		query, args := Search(users(), "john", "name", "email").Query()
		assert.Equal(t,
			`SELECT * FROM (SELECT * FROM "users") AS "t0" WHERE (lower("name") LIKE $1) OR (lower("email") LIKE $2)`,
			query,
		)
		assert.Equal(t, []any{"%john%", "%john%"}, args)
	})

	t.Run("prior stages are isolated in a sub-query", func(t *testing.T) {
		filtered := Filter(users(), map[string]any{"age": 60})
		query, args := Search(filtered, "smith", "name").Query()
		assert.Equal(t,
			`SELECT * FROM (SELECT * FROM "users" WHERE "age" = $1) AS "t0" WHERE lower("name") LIKE $2`,
			query,
		)
		assert.Equal(t, []any{60, "%smith%"}, args)
	})
}

func TestList(t *testing.T) {
	t.Run("empty options return the same descriptor", func(t *testing.T) {
		s := users()
		for _, opts := range []any{nil, Options{}, &Options{}, map[string]any{}, []KV{}} {
			got, err := List(s, opts)
			require.NoError(t, err)
			assert.Same(t, s, got)
		}
	})

	t.Run("limit offset and ordering", func(t *testing.T) {
		got, err := List(users(), map[string]any{
			"limit":    10,
			"offset":   5,
			"order_by": "age",
		})
		require.NoError(t, err)
		query, _ := got.Query()
		assert.Equal(t, `SELECT * FROM "users" ORDER BY age ASC LIMIT 10 OFFSET 5`, query)
	})

	t.Run("limit zero renders", func(t *testing.T) {
		got, err := List(users(), map[string]any{"limit": 0})
		require.NoError(t, err)
		query, _ := got.Query()
		assert.Equal(t, `SELECT * FROM "users" LIMIT 0`, query)
	})

	t.Run("order_by shapes are equivalent", func(t *testing.T) {
		for _, orderBy := range []any{
			"age",
			Field("age"),
			[]string{"age"},
			[]Field{"age"},
			[]any{"age"},
			OrderPair{Order: Asc, Field: "age"},
			OrderTerm{Field: Field("age")},
			[]OrderPair{{Order: Asc, Field: Field("age")}},
			[]OrderTerm{{Field: "age", Order: Asc}},
		} {
			got, err := List(users(), map[string]any{"order_by": orderBy})
			require.NoError(t, err)
			query, _ := got.Query()
			assert.Equal(t, `SELECT * FROM "users" ORDER BY age ASC`, query, "shape %T", orderBy)
		}
	})

	t.Run("sorting_order applies to bare fields", func(t *testing.T) {
		got, err := List(users(), map[string]any{
			"sorting_order": "desc",
			"order_by":      []string{"age", "name"},
		})
		require.NoError(t, err)
		query, _ := got.Query()
		assert.Equal(t, `SELECT * FROM "users" ORDER BY age DESC, name DESC`, query)
	})

	t.Run("explicit directions win over the default", func(t *testing.T) {
		got, err := List(users(), map[string]any{
			"sorting_order": Desc,
			"order_by": []any{
				OrderTerm{Field: "age", Order: Asc},
				"name",
			},
		})
		require.NoError(t, err)
		query, _ := got.Query()
		assert.Equal(t, `SELECT * FROM "users" ORDER BY age ASC, name DESC`, query)
	})

	t.Run("kv list shape", func(t *testing.T) {
		got, err := List(users(), []KV{
			{Key: "limit", Value: 2},
			{Key: "order_by", Value: "name"},
		})
		require.NoError(t, err)
		query, _ := got.Query()
		assert.Equal(t, `SELECT * FROM "users" ORDER BY name ASC LIMIT 2`, query)
	})

	t.Run("custom query applies before pagination", func(t *testing.T) {
		got, err := List(users(), map[string]any{
			"limit": 2,
			"custom_query": func(s *sql.Selector) *sql.Selector {
				return s.Where(sql.GT("age", 18))
			},
		})
		require.NoError(t, err)
		query, args := got.Query()
		assert.Equal(t, `SELECT * FROM "users" WHERE "age" > $1 LIMIT 2`, query)
		assert.Equal(t, []any{18}, args)
	})

	t.Run("malformed options fail fast", func(t *testing.T) {
		for name, opts := range map[string]any{
			"unknown key":           map[string]any{"per_page": 10},
			"negative limit":        map[string]any{"limit": -1},
			"negative offset":       map[string]any{"offset": -2},
			"fractional limit":      map[string]any{"limit": 2.5},
			"limit of wrong type":   map[string]any{"limit": "ten"},
			"bad sorting order":     map[string]any{"sorting_order": "sideways"},
			"bad order_by shape":    map[string]any{"order_by": 42},
			"bad order_by element":  map[string]any{"order_by": []any{13}},
			"bad custom query type": map[string]any{"custom_query": "scope"},
			"unsupported bag shape": 42,
		} {
			t.Run(name, func(t *testing.T) {
				got, err := List(users(), opts)
				require.Error(t, err)
				assert.Nil(t, got)
			})
		}
	})
}

// TestListAgainstSQLite executes composed descriptors against an
// in-memory database and checks the returned rows.
func TestListAgainstSQLite(t *testing.T) {
	db, err := stdsql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE users (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT NOT NULL, age INTEGER NOT NULL)`)
	require.NoError(t, err)
	for _, row := range []struct {
		name string
		age  int
	}{
		{"Chuck Norris", 60},
		{"Will Smith", 60},
		{"Aa", 40},
		{"Zz", 66},
		{"Crudry", 3},
	} {
		_, err = db.Exec(`INSERT INTO users (name, age) VALUES (?, ?)`, row.name, row.age)
		require.NoError(t, err)
	}
	base := func() *sql.Selector {
		return sql.Dialect(dialect.SQLite).Select("name", "age").From(sql.Table("users"))
	}
	names := func(s *sql.Selector) []string {
		query, args := s.Query()
		rows, err := db.Query(query, args...)
		require.NoError(t, err)
		defer rows.Close()
		var got []string
		for rows.Next() {
			var name string
			var age int
			require.NoError(t, rows.Scan(&name, &age))
			got = append(got, name)
		}
		require.NoError(t, rows.Err())
		return got
	}

	t.Run("scoped multi-key ordering", func(t *testing.T) {
		s, err := List(base(), map[string]any{
			"custom_query": func(s *sql.Selector) *sql.Selector {
				s.Where(sql.GTE("age", 40))
				s.Where(sql.NotIn("name", "Aa", "Crudry"))
				return s
			},
			"order_by": []OrderTerm{
				{Field: "age", Order: Asc},
				{Field: "name", Order: Desc},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"Will Smith", "Chuck Norris", "Zz"}, names(s))
	})

	t.Run("search narrows a filtered descriptor", func(t *testing.T) {
		filtered := Filter(base(), map[string]any{"age": 60})
		assert.ElementsMatch(t, []string{"Chuck Norris", "Will Smith"}, names(filtered))
		assert.Equal(t, []string{"Will Smith"}, names(Search(filtered, "SMITH", "name")))
		assert.Empty(t, names(Search(filtered, "crudry", "name")))
	})

	t.Run("pagination", func(t *testing.T) {
		s, err := List(base(), map[string]any{
			"order_by": []string{"age", "name"},
			"limit":    2,
			"offset":   1,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"Aa", "Chuck Norris"}, names(s))
	})
}
