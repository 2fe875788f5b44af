package graphql

import (
	"testing"

	"github.com/99designs/gqlgen/codegen/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crudo-dev/crudo/gen"
)

func testGraph(t *testing.T, schemas ...gen.Schema) *gen.Graph {
	t.Helper()
	c, err := gen.NewConfig(
		gen.WithPackage("example.com/app/store"),
		gen.WithTarget(t.TempDir()),
	)
	require.NoError(t, err)
	g, err := gen.NewGraph(c, schemas...)
	require.NoError(t, err)
	return g
}

func TestSDL(t *testing.T) {
	g := testGraph(t, gen.Schema{
		Name: "User",
		Fields: []gen.Field{
			{Name: "username", Type: "string"},
			{Name: "view_count", Type: "int"},
			{Name: "inserted_at", Type: "time", Optional: true},
		},
	})
	sdl := SDL(g)

	assert.Contains(t, sdl, "scalar Time")
	assert.Contains(t, sdl, "type User {")
	assert.Contains(t, sdl, "  id: ID!")
	assert.Contains(t, sdl, "  username: String!")
	assert.Contains(t, sdl, "  viewCount: Int!")
	// Optional fields are nullable.
	assert.Contains(t, sdl, "  insertedAt: Time\n")
	assert.Contains(t, sdl, "input UserInput {")
	assert.Contains(t, sdl, "  user(id: ID!): User")
	assert.Contains(t, sdl, "  users(limit: Int, offset: Int): [User!]!")
	assert.Contains(t, sdl, "  createUser(input: UserInput!): User!")
	assert.Contains(t, sdl, "  updateUser(id: ID!, input: UserInput!): User!")
	assert.Contains(t, sdl, "  deleteUser(id: ID!): Boolean!")

	assert.NoError(t, Validate(sdl))
}

func TestSDLRespectsFunctionSet(t *testing.T) {
	g := testGraph(t, gen.Schema{
		Name:   "AuditLog",
		Only:   []string{"get", "list"},
		Fields: []gen.Field{{Name: "action", Type: "string"}},
	})
	sdl := SDL(g)

	assert.Contains(t, sdl, "auditLog(id: ID!): AuditLog")
	assert.Contains(t, sdl, "auditLogs(limit: Int, offset: Int): [AuditLog!]!")
	assert.NotContains(t, sdl, "type Mutation")
	assert.NotContains(t, sdl, "input AuditLogInput")
	assert.NotContains(t, sdl, "scalar Time")

	assert.NoError(t, Validate(sdl))
}

func TestValidateRejectsBrokenSchemas(t *testing.T) {
	assert.Error(t, Validate("type User {"))
	// Unknown type reference.
	assert.Error(t, Validate("type Query { user: Missing }"))
}

func TestPlugin(t *testing.T) {
	g := testGraph(t,
		gen.Schema{Name: "User"},
		gen.Schema{Name: "Post"},
	)
	p := NewPlugin(g)
	assert.Equal(t, "crudo", p.Name())

	cfg := &config.Config{}
	require.NoError(t, p.MutateConfig(cfg))
	assert.Contains(t, cfg.Models["User"].Model, "example.com/app/store.User")
	assert.Contains(t, cfg.Models["Post"].Model, "example.com/app/store.Post")
}
