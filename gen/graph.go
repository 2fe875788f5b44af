package gen

import (
	"unicode"

	"github.com/go-openapi/inflect"
)

// AllFunctions is the full set of functions the generator can emit for a
// schema. Only/Except slices are validated against it.
var AllFunctions = []string{
	"get", "get_by", "list", "filter", "search",
	"create", "update", "delete", "count", "exist",
}

// fieldTypes maps the schema field types to their SQL column affinity.
var fieldTypes = map[string]bool{
	"string":  true,
	"int":     true,
	"int64":   true,
	"float64": true,
	"bool":    true,
	"time":    true,
	"uuid":    true,
}

// Field is a single column of a schema.
type Field struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Optional bool   `yaml:"optional,omitempty"`
	Unique   bool   `yaml:"unique,omitempty"`
}

// Schema is an entity definition as declared in the configuration.
type Schema struct {
	Name   string  `yaml:"name"`
	Fields []Field `yaml:"fields"`
	// UUID marks the primary key as a client-generated UUID instead of
	// a database-assigned integer.
	UUID bool `yaml:"uuid,omitempty"`
	// Only restricts the generated functions for this schema,
	// overriding the configuration default.
	Only []string `yaml:"only,omitempty"`
	// Except removes functions for this schema, overriding the
	// configuration default.
	Except []string `yaml:"except,omitempty"`
}

// Type is a schema node in the generation graph with its resolved
// function set.
type Type struct {
	Name   string
	Fields []Field
	UUID   bool

	only   []string
	except []string
}

// Table returns the table name of the type, e.g. "UserPost" => "user_posts".
func (t *Type) Table() string {
	return inflect.Pluralize(inflect.Underscore(t.Name))
}

// Plural returns the plural form of the type name.
func (t *Type) Plural() string {
	return inflect.Pluralize(t.Name)
}

// Columns returns the table columns, primary key first.
func (t *Type) Columns() []string {
	cols := make([]string, 0, len(t.Fields)+1)
	cols = append(cols, "id")
	for _, f := range t.Fields {
		cols = append(cols, inflect.Underscore(f.Name))
	}
	return cols
}

// Searchable returns the columns usable as text search targets.
func (t *Type) Searchable() []string {
	var cols []string
	for _, f := range t.Fields {
		if f.Type == "string" {
			cols = append(cols, inflect.Underscore(f.Name))
		}
	}
	return cols
}

// Functions returns the function names generated for this type.
func (t *Type) Functions() []string {
	if len(t.only) > 0 {
		return t.only
	}
	if len(t.except) == 0 {
		return AllFunctions
	}
	skip := make(map[string]bool, len(t.except))
	for _, fn := range t.except {
		skip[fn] = true
	}
	fns := make([]string, 0, len(AllFunctions))
	for _, fn := range AllFunctions {
		if !skip[fn] {
			fns = append(fns, fn)
		}
	}
	return fns
}

// Has reports whether the function is generated for this type.
func (t *Type) Has(fn string) bool {
	for _, name := range t.Functions() {
		if name == fn {
			return true
		}
	}
	return false
}

// Graph is the validated set of types a generation run works on.
type Graph struct {
	Config *Config
	Nodes  []*Type
}

// NewGraph validates the schemas and resolves their function sets
// against the configuration defaults.
func NewGraph(c *Config, schemas ...Schema) (*Graph, error) {
	if c == nil {
		return nil, NewConfigError("config", nil, "configuration is required")
	}
	if len(schemas) == 0 {
		schemas = c.Schemas
	}
	if len(schemas) == 0 {
		return nil, NewConfigError("schemas", nil, "at least one schema is required")
	}
	g := &Graph{Config: c, Nodes: make([]*Type, 0, len(schemas))}
	seen := make(map[string]bool, len(schemas))
	for _, s := range schemas {
		t, err := newType(c, s)
		if err != nil {
			return nil, err
		}
		if seen[t.Name] {
			return nil, NewSchemaError(t.Name, "", "duplicate schema name")
		}
		seen[t.Name] = true
		g.Nodes = append(g.Nodes, t)
	}
	return g, nil
}

func newType(c *Config, s Schema) (*Type, error) {
	if s.Name == "" {
		return nil, NewSchemaError("", "", "schema name is required")
	}
	if !unicode.IsUpper(rune(s.Name[0])) {
		return nil, NewSchemaError(s.Name, "", "schema name must be an exported identifier")
	}
	if len(s.Only) > 0 && len(s.Except) > 0 {
		return nil, NewSchemaError(s.Name, "", "only and except are mutually exclusive")
	}
	if err := validateSchemaFunctions(s); err != nil {
		return nil, err
	}
	fields := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		if f.Name == "" {
			return nil, NewSchemaError(s.Name, "", "field name is required")
		}
		if f.Name == "id" {
			return nil, NewSchemaError(s.Name, f.Name, "id is implicit and cannot be redeclared")
		}
		if !fieldTypes[f.Type] {
			return nil, NewSchemaError(s.Name, f.Name, "unknown field type "+f.Type)
		}
		if fields[f.Name] {
			return nil, NewSchemaError(s.Name, f.Name, "duplicate field name")
		}
		fields[f.Name] = true
	}
	t := &Type{
		Name:   s.Name,
		Fields: s.Fields,
		UUID:   s.UUID,
		only:   s.Only,
		except: s.Except,
	}
	// Schemas without their own filter inherit the configuration default.
	if len(t.only) == 0 && len(t.except) == 0 {
		t.only, t.except = c.Only, c.Except
	}
	return t, nil
}

func validateSchemaFunctions(s Schema) error {
	for _, fn := range append(append([]string{}, s.Only...), s.Except...) {
		if !knownFunction(fn) {
			return NewSchemaError(s.Name, "", "unknown function "+fn)
		}
	}
	return nil
}

func knownFunction(fn string) bool {
	for _, name := range AllFunctions {
		if name == fn {
			return true
		}
	}
	return false
}
