package gen

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateGraph(t *testing.T, schemas ...Schema) (string, Metrics) {
	t.Helper()
	dir := t.TempDir()
	c, err := NewConfig(
		WithPackage("example.com/app/store"),
		WithTarget(dir),
		WithHeader("Copyright example.com contributors."),
	)
	require.NoError(t, err)
	g, err := NewGraph(c, schemas...)
	require.NoError(t, err)
	metrics, err := NewGenerator(g).Generate(context.Background())
	require.NoError(t, err)
	return dir, metrics
}

func readFile(t *testing.T, dir, name string) string {
	t.Helper()
	buf, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	return string(buf)
}

func TestGenerate(t *testing.T) {
	dir, metrics := generateGraph(t, Schema{
		Name: "User",
		Fields: []Field{
			{Name: "username", Type: "string"},
			{Name: "age", Type: "int", Optional: true},
		},
	})

	// model, crud, resolver and the shared helpers.
	assert.Equal(t, 4, metrics.Files)
	assert.Positive(t, metrics.Bytes)

	model := readFile(t, dir, "user_model.go")
	assert.Contains(t, model, "type User struct")
	assert.Contains(t, model, "Username string")
	assert.Contains(t, model, "Age *int")
	assert.Contains(t, model, "DO NOT EDIT")
	assert.Contains(t, model, "Copyright example.com contributors.")

	crud := readFile(t, dir, "user_crud.go")
	assert.Contains(t, crud, "package store")
	assert.Contains(t, crud, `var UserTable = crud.Table{`)
	assert.Contains(t, crud, "func NewUserRepo(")
	for _, fn := range []string{
		"func GetUser(", "func GetUserBy(", "func ListUsers(",
		"func FilterUsers(", "func SearchUsers(", "func CreateUser(",
		"func UpdateUser(", "func DeleteUser(", "func CountUsers(",
		"func UserExists(",
	} {
		assert.Contains(t, crud, fn)
	}
	// Search targets only the string columns.
	assert.Contains(t, crud, `query.Search(repo.Selector(), term, "username")`)

	resolver := readFile(t, dir, "user_resolver.go")
	for _, fn := range []string{
		"func ResolveUser(", "func ResolveUsers(",
		"func ResolveCreateUser(", "func ResolveUpdateUser(",
		"func ResolveDeleteUser(",
	} {
		assert.Contains(t, resolver, fn)
	}
	assert.Contains(t, resolver, "translateErr(tr, err)")

	helpers := readFile(t, dir, "helpers.go")
	assert.Contains(t, helpers, "func translateErr(")
}

func TestGenerateRespectsFunctionSet(t *testing.T) {
	dir, metrics := generateGraph(t, Schema{
		Name:   "AuditLog",
		Only:   []string{"get", "list"},
		Fields: []Field{{Name: "action", Type: "string"}},
	})

	crud := readFile(t, dir, "audit_log_crud.go")
	assert.Contains(t, crud, "func GetAuditLog(")
	assert.Contains(t, crud, "func ListAuditLogs(")
	assert.NotContains(t, crud, "func CreateAuditLog(")
	assert.NotContains(t, crud, "func DeleteAuditLog(")

	resolver := readFile(t, dir, "audit_log_resolver.go")
	assert.Contains(t, resolver, "func ResolveAuditLog(")
	assert.NotContains(t, resolver, "func ResolveCreateAuditLog(")

	// model, crud, resolver, helpers.
	assert.Equal(t, 4, metrics.Files)
}

func TestGenerateSkipsResolverlessTypes(t *testing.T) {
	dir, _ := generateGraph(t, Schema{
		Name:   "Counter",
		Only:   []string{"count", "exist"},
		Fields: []Field{{Name: "value", Type: "int64"}},
	})
	_, err := os.Stat(filepath.Join(dir, "counter_resolver.go"))
	assert.True(t, os.IsNotExist(err))
}

func TestRegistryEmitsSharedFilesOnce(t *testing.T) {
	dir := t.TempDir()
	c, err := NewConfig(WithPackage("example.com/app/store"), WithTarget(dir))
	require.NoError(t, err)
	registry := NewRegistry()

	run := func(schema Schema) Metrics {
		g, err := NewGraph(c, schema)
		require.NoError(t, err)
		metrics, err := NewGenerator(g).WithRegistry(registry).Generate(context.Background())
		require.NoError(t, err)
		return metrics
	}

	first := run(Schema{Name: "User"})
	assert.Equal(t, 4, first.Files)
	second := run(Schema{Name: "Post"})
	// helpers.go was already claimed by the first run.
	assert.Equal(t, 3, second.Files)
}

func TestUUIDModels(t *testing.T) {
	dir, _ := generateGraph(t, Schema{
		Name:   "Session",
		UUID:   true,
		Fields: []Field{{Name: "token", Type: "uuid"}},
	})
	model := readFile(t, dir, "session_model.go")
	assert.Contains(t, model, "ID uuid.UUID")
	crud := readFile(t, dir, "session_crud.go")
	assert.Contains(t, crud, "UUID: true")
}
