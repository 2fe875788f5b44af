// Package graphql renders and validates the GraphQL surface for a
// generation graph and binds the generated models into gqlgen.
package graphql

import (
	"fmt"
	"strings"

	"github.com/go-openapi/inflect"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/crudo-dev/crudo/gen"
)

// gqlTypes maps schema field types to their GraphQL counterparts.
var gqlTypes = map[string]string{
	"string":  "String",
	"int":     "Int",
	"int64":   "Int",
	"float64": "Float",
	"bool":    "Boolean",
	"time":    "Time",
	"uuid":    "ID",
}

// SDL renders the GraphQL schema definition for the graph. Each node
// produces an object type, an input type and the query and mutation
// fields its function set allows.
func SDL(g *gen.Graph) string {
	var b strings.Builder
	if usesTime(g) {
		b.WriteString("scalar Time\n\n")
	}
	for _, t := range g.Nodes {
		writeType(&b, t)
		if t.Has("create") || t.Has("update") {
			writeInput(&b, t)
		}
	}
	writeQuery(&b, g)
	writeMutation(&b, g)
	return b.String()
}

// Validate parses the SDL and reports schema errors.
func Validate(sdl string) error {
	_, err := gqlparser.LoadSchema(&ast.Source{Name: "crudo.graphql", Input: sdl})
	if err != nil {
		return fmt.Errorf("crudo: invalid graphql schema: %w", err)
	}
	return nil
}

func usesTime(g *gen.Graph) bool {
	for _, t := range g.Nodes {
		for _, f := range t.Fields {
			if f.Type == "time" {
				return true
			}
		}
	}
	return false
}

func writeType(b *strings.Builder, t *gen.Type) {
	fmt.Fprintf(b, "type %s {\n", t.Name)
	b.WriteString("  id: ID!\n")
	for _, f := range t.Fields {
		fmt.Fprintf(b, "  %s: %s%s\n", fieldName(f.Name), gqlTypes[f.Type], bang(!f.Optional))
	}
	b.WriteString("}\n\n")
}

func writeInput(b *strings.Builder, t *gen.Type) {
	fmt.Fprintf(b, "input %sInput {\n", t.Name)
	for _, f := range t.Fields {
		fmt.Fprintf(b, "  %s: %s%s\n", fieldName(f.Name), gqlTypes[f.Type], bang(!f.Optional))
	}
	b.WriteString("}\n\n")
}

func writeQuery(b *strings.Builder, g *gen.Graph) {
	var fields []string
	for _, t := range g.Nodes {
		if t.Has("get") {
			fields = append(fields, fmt.Sprintf("  %s(id: ID!): %s", lowerCamel(t.Name), t.Name))
		}
		if t.Has("list") {
			fields = append(fields, fmt.Sprintf("  %s(limit: Int, offset: Int): [%s!]!", lowerCamel(t.Plural()), t.Name))
		}
	}
	writeRoot(b, "Query", fields)
}

func writeMutation(b *strings.Builder, g *gen.Graph) {
	var fields []string
	for _, t := range g.Nodes {
		if t.Has("create") {
			fields = append(fields, fmt.Sprintf("  create%s(input: %sInput!): %s!", t.Name, t.Name, t.Name))
		}
		if t.Has("update") {
			fields = append(fields, fmt.Sprintf("  update%s(id: ID!, input: %sInput!): %s!", t.Name, t.Name, t.Name))
		}
		if t.Has("delete") {
			fields = append(fields, fmt.Sprintf("  delete%s(id: ID!): Boolean!", t.Name))
		}
	}
	writeRoot(b, "Mutation", fields)
}

func writeRoot(b *strings.Builder, name string, fields []string) {
	if len(fields) == 0 {
		return
	}
	fmt.Fprintf(b, "type %s {\n", name)
	for _, f := range fields {
		b.WriteString(f)
		b.WriteString("\n")
	}
	b.WriteString("}\n\n")
}

func fieldName(name string) string {
	return lowerCamel(inflect.Camelize(name))
}

func lowerCamel(name string) string {
	if name == "" {
		return name
	}
	return strings.ToLower(name[:1]) + name[1:]
}

func bang(required bool) string {
	if required {
		return "!"
	}
	return ""
}
