package crud

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crudo-dev/crudo"
	"github.com/crudo-dev/crudo/dialect"
	"github.com/crudo-dev/crudo/dialect/sql"
	"github.com/crudo-dev/crudo/errfmt"
)

func mockRepo(t *testing.T, d string) (*Repo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	repo := New(sql.OpenDB(d, db), "User", Table{
		Name:    "users",
		Columns: []string{"id", "name", "age"},
	})
	return repo, mock
}

func TestGet(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo, mock := mockRepo(t, dialect.Postgres)
		mock.ExpectQuery(`SELECT "id", "name", "age" FROM "users" WHERE "id" = $1 LIMIT 1`).
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "age"}).AddRow(1, "mashraki", 30))
		rec, err := repo.Get(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, "mashraki", rec["name"])
		assert.EqualValues(t, 30, rec["age"])
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing record is a not-found error", func(t *testing.T) {
		repo, mock := mockRepo(t, dialect.Postgres)
		mock.ExpectQuery(`SELECT "id", "name", "age" FROM "users" WHERE "id" = $1 LIMIT 1`).
			WithArgs(42).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "age"}))
		rec, err := repo.Get(context.Background(), 42)
		assert.Nil(t, rec)
		require.True(t, crudo.IsNotFound(err))
		var nf *crudo.NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, "User", nf.Schema())
		assert.Equal(t, 42, nf.ID())
	})
}

func TestGetBy(t *testing.T) {
	repo, mock := mockRepo(t, dialect.Postgres)
	mock.ExpectQuery(`SELECT "id", "name", "age" FROM "users" WHERE "name" = $1 LIMIT 1`).
		WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "age"}))
	_, err := repo.GetBy(context.Background(), map[string]any{"name": "nobody"})
	assert.True(t, crudo.IsNotFound(err))
}

func TestAll(t *testing.T) {
	repo, mock := mockRepo(t, dialect.Postgres)
	mock.ExpectQuery(`SELECT "id", "name", "age" FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "age"}).
			AddRow(1, "a", 10).
			AddRow(2, "b", 20))
	recs, err := repo.All(context.Background(), repo.Selector())
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "a", recs[0]["name"])
	assert.Equal(t, "b", recs[1]["name"])
}

func TestCountAndExist(t *testing.T) {
	t.Run("count wraps the descriptor", func(t *testing.T) {
		repo, mock := mockRepo(t, dialect.Postgres)
		mock.ExpectQuery(`SELECT count(*) FROM (SELECT "id", "name", "age" FROM "users" WHERE "age" > $1) AS "t0"`).
			WithArgs(18).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
		n, err := repo.Count(context.Background(), repo.Selector().Where(sql.GT("age", 18)))
		require.NoError(t, err)
		assert.Equal(t, 3, n)
	})

	t.Run("exist", func(t *testing.T) {
		repo, mock := mockRepo(t, dialect.Postgres)
		mock.ExpectQuery(`SELECT count(*) FROM (SELECT "id", "name", "age" FROM "users" WHERE "id" = $1) AS "t0"`).
			WithArgs(7).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		ok, err := repo.Exist(context.Background(), 7)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestInsert(t *testing.T) {
	t.Run("postgres reads the key back with RETURNING", func(t *testing.T) {
		repo, mock := mockRepo(t, dialect.Postgres)
		mock.ExpectQuery(`INSERT INTO "users" ("age", "name") VALUES ($1, $2) RETURNING "id"`).
			WithArgs(30, "mashraki").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
		rec, err := repo.Insert(context.Background(), map[string]any{"name": "mashraki", "age": 30})
		require.NoError(t, err)
		assert.EqualValues(t, 7, rec["id"])
		assert.Equal(t, "mashraki", rec["name"])
	})

	t.Run("other dialects use LastInsertId", func(t *testing.T) {
		repo, mock := mockRepo(t, dialect.SQLite)
		mock.ExpectExec(`INSERT INTO "users" ("age", "name") VALUES (?, ?)`).
			WithArgs(30, "mashraki").
			WillReturnResult(sqlmock.NewResult(5, 1))
		rec, err := repo.Insert(context.Background(), map[string]any{"name": "mashraki", "age": 30})
		require.NoError(t, err)
		assert.EqualValues(t, 5, rec["id"])
	})

	t.Run("uuid tables generate a missing key", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
		require.NoError(t, err)
		defer db.Close()
		repo := New(sql.OpenDB(dialect.Postgres, db), "User", Table{
			Name:    "users",
			Columns: []string{"id", "name"},
			UUID:    true,
		})
		mock.ExpectExec(`INSERT INTO "users" ("id", "name") VALUES ($1, $2)`).
			WithArgs(sqlmock.AnyArg(), "mashraki").
			WillReturnResult(sqlmock.NewResult(0, 1))
		rec, err := repo.Insert(context.Background(), map[string]any{"name": "mashraki"})
		require.NoError(t, err)
		id, ok := rec["id"].(string)
		require.True(t, ok)
		_, err = uuid.Parse(id)
		assert.NoError(t, err)
	})

	t.Run("constraint violations become validation trees", func(t *testing.T) {
		repo, mock := mockRepo(t, dialect.Postgres)
		mock.ExpectQuery(`INSERT INTO "users" ("age", "name") VALUES ($1, $2) RETURNING "id"`).
			WithArgs(30, "mashraki").
			WillReturnError(&pq.Error{Code: "23505", Constraint: "users_name_key"})
		_, err := repo.Insert(context.Background(), map[string]any{"name": "mashraki", "age": 30})
		require.Error(t, err)
		assert.Equal(t, []any{"name has already been taken"}, errfmt.Translate(nil, err))
	})
}

func TestUpdate(t *testing.T) {
	t.Run("returns the stored record", func(t *testing.T) {
		repo, mock := mockRepo(t, dialect.Postgres)
		mock.ExpectExec(`UPDATE "users" SET "name" = $1 WHERE "id" = $2`).
			WithArgs("new", 1).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`SELECT "id", "name", "age" FROM "users" WHERE "id" = $1 LIMIT 1`).
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "age"}).AddRow(1, "new", 30))
		rec, err := repo.Update(context.Background(), 1, map[string]any{"name": "new"})
		require.NoError(t, err)
		assert.Equal(t, "new", rec["name"])
	})

	t.Run("vanished record is stale, not not-found", func(t *testing.T) {
		repo, mock := mockRepo(t, dialect.Postgres)
		mock.ExpectExec(`UPDATE "users" SET "name" = $1 WHERE "id" = $2`).
			WithArgs("new", 9).
			WillReturnResult(sqlmock.NewResult(0, 0))
		_, err := repo.Update(context.Background(), 9, map[string]any{"name": "new"})
		assert.True(t, crudo.IsStale(err))
		assert.False(t, crudo.IsNotFound(err))
	})

	t.Run("primary key is never assigned", func(t *testing.T) {
		repo, mock := mockRepo(t, dialect.Postgres)
		mock.ExpectExec(`UPDATE "users" SET "name" = $1 WHERE "id" = $2`).
			WithArgs("new", 1).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`SELECT "id", "name", "age" FROM "users" WHERE "id" = $1 LIMIT 1`).
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "age"}).AddRow(1, "new", 30))
		_, err := repo.Update(context.Background(), 1, map[string]any{"id": 99, "name": "new"})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDelete(t *testing.T) {
	t.Run("deletes by primary key", func(t *testing.T) {
		repo, mock := mockRepo(t, dialect.Postgres)
		mock.ExpectExec(`DELETE FROM "users" WHERE "id" = $1`).
			WithArgs(1).
			WillReturnResult(sqlmock.NewResult(0, 1))
		assert.NoError(t, repo.Delete(context.Background(), 1))
	})

	t.Run("vanished record is stale", func(t *testing.T) {
		repo, mock := mockRepo(t, dialect.Postgres)
		mock.ExpectExec(`DELETE FROM "users" WHERE "id" = $1`).
			WithArgs(9).
			WillReturnResult(sqlmock.NewResult(0, 0))
		err := repo.Delete(context.Background(), 9)
		assert.True(t, crudo.IsStale(err))
	})
}
