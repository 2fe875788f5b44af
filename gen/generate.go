package gen

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/dave/jennifer/jen"
	"github.com/go-openapi/inflect"
	"golang.org/x/sync/errgroup"
)

// Import paths of the runtime packages the generated code depends on.
const (
	pkgDialect   = "github.com/crudo-dev/crudo/dialect"
	pkgCRUD      = "github.com/crudo-dev/crudo/crud"
	pkgQuery     = "github.com/crudo-dev/crudo/query"
	pkgErrfmt    = "github.com/crudo-dev/crudo/errfmt"
	pkgTranslate = "github.com/crudo-dev/crudo/translate"
)

// Registry records which shared files were already emitted for a target
// package, so repeated Generate calls against the same package write the
// common helpers exactly once. It is keyed explicitly by package path
// instead of being process-global, which keeps independent generators
// from interfering with each other.
type Registry struct {
	mu      sync.Mutex
	emitted map[string]map[string]bool
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{emitted: make(map[string]map[string]bool)}
}

// Claim reports whether the named file is still unclaimed for the
// package and marks it claimed.
func (r *Registry) Claim(pkg, name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	files := r.emitted[pkg]
	if files == nil {
		files = make(map[string]bool)
		r.emitted[pkg] = files
	}
	if files[name] {
		return false
	}
	files[name] = true
	return true
}

// Generator emits the CRUD and resolver source files for a graph.
type Generator struct {
	graph    *Graph
	registry *Registry
	workers  int
}

// NewGenerator returns a Generator for the graph.
func NewGenerator(g *Graph) *Generator {
	return &Generator{
		graph:    g,
		registry: NewRegistry(),
		workers:  runtime.GOMAXPROCS(0),
	}
}

// WithRegistry shares a registry between generators targeting the same
// package.
func (g *Generator) WithRegistry(r *Registry) *Generator {
	g.registry = r
	return g
}

// WithWorkers bounds the number of concurrent file writers.
func (g *Generator) WithWorkers(n int) *Generator {
	if n > 0 {
		g.workers = n
	}
	return g
}

// Generate renders and writes all files for the graph. The returned
// metrics describe the completed run.
func (g *Generator) Generate(ctx context.Context) (Metrics, error) {
	w := newWriter(g.graph.Config.Target, g.graph.Config.Header)
	grp, ctx := errgroup.WithContext(ctx)
	grp.SetLimit(g.workers)
	cfg := g.graph.Config
	if g.registry.Claim(cfg.Package, "helpers.go") {
		grp.Go(func() error {
			return w.write(ctx, "helpers.go", genHelpers(cfg))
		})
	}
	for _, t := range g.graph.Nodes {
		t := t
		grp.Go(func() error {
			name := inflect.Underscore(t.Name) + "_model.go"
			return w.write(ctx, name, genModel(cfg, t))
		})
		grp.Go(func() error {
			name := inflect.Underscore(t.Name) + "_crud.go"
			return w.write(ctx, name, genCRUD(cfg, t))
		})
		if hasResolvers(t) {
			grp.Go(func() error {
				name := inflect.Underscore(t.Name) + "_resolver.go"
				return w.write(ctx, name, genResolvers(cfg, t))
			})
		}
	}
	if err := grp.Wait(); err != nil {
		return w.Metrics(), fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	return w.Metrics(), nil
}

func hasResolvers(t *Type) bool {
	for _, fn := range []string{"get", "list", "create", "update", "delete"} {
		if t.Has(fn) {
			return true
		}
	}
	return false
}

// genHelpers renders the per-package shared file.
func genHelpers(cfg *Config) *jen.File {
	f := jen.NewFilePathName(cfg.Package, cfg.pkgName())
	f.Comment("translateErr renders an error as client-facing messages through tr.")
	f.Func().Id("translateErr").
		Params(
			jen.Id("tr").Qual(pkgTranslate, "Func"),
			jen.Err().Error(),
		).
		Index().Any().
		Block(
			jen.Return(jen.Qual(pkgErrfmt, "Translate").Call(jen.Id("tr"), jen.Err())),
		)
	return f
}

// genModel renders the entity struct. The struct carries the column
// values of one row and is what gqlgen binds the GraphQL type to.
func genModel(cfg *Config, t *Type) *jen.File {
	f := jen.NewFilePathName(cfg.Package, cfg.pkgName())
	f.Commentf("%s is a row of the %s table.", t.Name, t.Table())
	f.Type().Id(t.Name).StructFunc(func(g *jen.Group) {
		idType := jen.Int64()
		if t.UUID {
			idType = jen.Qual("github.com/google/uuid", "UUID")
		}
		g.Id("ID").Add(idType).Tag(map[string]string{"json": "id"})
		for _, fld := range t.Fields {
			g.Id(inflect.Camelize(fld.Name)).Add(goType(fld)).
				Tag(map[string]string{"json": inflect.Underscore(fld.Name)})
		}
	})
	return f
}

func goType(f Field) *jen.Statement {
	var s *jen.Statement
	switch f.Type {
	case "string":
		s = jen.String()
	case "int":
		s = jen.Int()
	case "int64":
		s = jen.Int64()
	case "float64":
		s = jen.Float64()
	case "bool":
		s = jen.Bool()
	case "time":
		s = jen.Qual("time", "Time")
	case "uuid":
		s = jen.Qual("github.com/google/uuid", "UUID")
	}
	if f.Optional {
		return jen.Op("*").Add(s)
	}
	return s
}

// genCRUD renders the table descriptor, repository constructor and the
// persistence functions selected for the type.
func genCRUD(cfg *Config, t *Type) *jen.File {
	f := jen.NewFilePathName(cfg.Package, cfg.pkgName())
	name := t.Name
	plural := t.Plural()

	f.Commentf("%sTable describes the %s table.", name, t.Table())
	f.Var().Id(name + "Table").Op("=").Qual(pkgCRUD, "Table").Values(jen.Dict{
		jen.Id("Name"):    jen.Lit(t.Table()),
		jen.Id("ID"):      jen.Lit("id"),
		jen.Id("Columns"): jen.Index().String().ValuesFunc(func(g *jen.Group) {
			for _, c := range t.Columns() {
				g.Lit(c)
			}
		}),
		jen.Id("UUID"): jen.Lit(t.UUID),
	})

	f.Commentf("New%sRepo returns the %s persistence access over drv.", name, name)
	f.Func().Id("New"+name+"Repo").
		Params(jen.Id("drv").Qual(pkgDialect, "Driver")).
		Op("*").Qual(pkgCRUD, "Repo").
		Block(
			jen.Return(jen.Qual(pkgCRUD, "New").Call(
				jen.Id("drv"), jen.Lit(name), jen.Id(name+"Table"),
			)),
		)

	repo := jen.Id("repo").Op("*").Qual(pkgCRUD, "Repo")
	ctx := jen.Id("ctx").Qual("context", "Context")
	record := jen.Map(jen.String()).Any()

	if t.Has("get") {
		f.Commentf("Get%s fetches a single %s by its primary key.", name, name)
		f.Func().Id("Get"+name).
			Params(ctx.Clone(), repo.Clone(), jen.Id("id").Any()).
			Params(record.Clone(), jen.Error()).
			Block(jen.Return(jen.Id("repo").Dot("Get").Call(jen.Id("ctx"), jen.Id("id"))))
	}
	if t.Has("get_by") {
		f.Commentf("Get%sBy fetches the first %s matching the filters.", name, name)
		f.Func().Id("Get"+name+"By").
			Params(ctx.Clone(), repo.Clone(), jen.Id("filters").Map(jen.String()).Any()).
			Params(record.Clone(), jen.Error()).
			Block(jen.Return(jen.Id("repo").Dot("GetBy").Call(jen.Id("ctx"), jen.Id("filters"))))
	}
	if t.Has("list") {
		f.Commentf("List%s fetches all %s honoring the list options.", plural, plural)
		f.Func().Id("List"+plural).
			Params(ctx.Clone(), repo.Clone(), jen.Id("opts").Any()).
			Params(jen.Index().Add(record.Clone()), jen.Error()).
			Block(
				jen.List(jen.Id("s"), jen.Err()).Op(":=").
					Qual(pkgQuery, "List").Call(jen.Id("repo").Dot("Selector").Call(), jen.Id("opts")),
				jen.If(jen.Err().Op("!=").Nil()).Block(
					jen.Return(jen.Nil(), jen.Err()),
				),
				jen.Return(jen.Id("repo").Dot("All").Call(jen.Id("ctx"), jen.Id("s"))),
			)
	}
	if t.Has("filter") {
		f.Commentf("Filter%s fetches all %s matching the filters.", plural, plural)
		f.Func().Id("Filter"+plural).
			Params(ctx.Clone(), repo.Clone(), jen.Id("filters").Map(jen.String()).Any()).
			Params(jen.Index().Add(record.Clone()), jen.Error()).
			Block(
				jen.Id("s").Op(":=").Qual(pkgQuery, "Filter").
					Call(jen.Id("repo").Dot("Selector").Call(), jen.Id("filters")),
				jen.Return(jen.Id("repo").Dot("All").Call(jen.Id("ctx"), jen.Id("s"))),
			)
	}
	if t.Has("search") {
		f.Commentf("Search%s fetches all %s whose text columns contain term.", plural, plural)
		f.Func().Id("Search"+plural).
			Params(ctx.Clone(), repo.Clone(), jen.Id("term").String()).
			Params(jen.Index().Add(record.Clone()), jen.Error()).
			Block(
				jen.Id("s").Op(":=").Qual(pkgQuery, "Search").
					CallFunc(func(g *jen.Group) {
						g.Id("repo").Dot("Selector").Call()
						g.Id("term")
						for _, c := range t.Searchable() {
							g.Lit(c)
						}
					}),
				jen.Return(jen.Id("repo").Dot("All").Call(jen.Id("ctx"), jen.Id("s"))),
			)
	}
	if t.Has("create") {
		f.Commentf("Create%s inserts a new %s and returns the stored record.", name, name)
		f.Func().Id("Create"+name).
			Params(ctx.Clone(), repo.Clone(), jen.Id("values").Map(jen.String()).Any()).
			Params(record.Clone(), jen.Error()).
			Block(jen.Return(jen.Id("repo").Dot("Insert").Call(jen.Id("ctx"), jen.Id("values"))))
	}
	if t.Has("update") {
		f.Commentf("Update%s applies values to the %s with the given id.", name, name)
		f.Func().Id("Update"+name).
			Params(ctx.Clone(), repo.Clone(), jen.Id("id").Any(), jen.Id("values").Map(jen.String()).Any()).
			Params(record.Clone(), jen.Error()).
			Block(jen.Return(jen.Id("repo").Dot("Update").Call(jen.Id("ctx"), jen.Id("id"), jen.Id("values"))))
	}
	if t.Has("delete") {
		f.Commentf("Delete%s removes the %s with the given id.", name, name)
		f.Func().Id("Delete"+name).
			Params(ctx.Clone(), repo.Clone(), jen.Id("id").Any()).
			Error().
			Block(jen.Return(jen.Id("repo").Dot("Delete").Call(jen.Id("ctx"), jen.Id("id"))))
	}
	if t.Has("count") {
		f.Commentf("Count%s reports the number of stored %s.", plural, plural)
		f.Func().Id("Count"+plural).
			Params(ctx.Clone(), repo.Clone()).
			Params(jen.Int(), jen.Error()).
			Block(jen.Return(jen.Id("repo").Dot("Count").Call(jen.Id("ctx"), jen.Id("repo").Dot("Selector").Call())))
	}
	if t.Has("exist") {
		f.Commentf("%sExists reports whether a %s with the given id exists.", name, name)
		f.Func().Id(name+"Exists").
			Params(ctx.Clone(), repo.Clone(), jen.Id("id").Any()).
			Params(jen.Bool(), jen.Error()).
			Block(jen.Return(jen.Id("repo").Dot("Exist").Call(jen.Id("ctx"), jen.Id("id"))))
	}
	return f
}

// genResolvers renders the resolver functions. Resolvers return the
// result alongside flattened, client-facing error messages instead of a
// raw error.
func genResolvers(cfg *Config, t *Type) *jen.File {
	f := jen.NewFilePathName(cfg.Package, cfg.pkgName())
	name := t.Name
	plural := t.Plural()

	repo := jen.Id("repo").Op("*").Qual(pkgCRUD, "Repo")
	ctx := jen.Id("ctx").Qual("context", "Context")
	tr := jen.Id("tr").Qual(pkgTranslate, "Func")
	record := jen.Map(jen.String()).Any()

	// body renders the shared fetch-then-translate resolver skeleton.
	body := func(call *jen.Statement) []jen.Code {
		return []jen.Code{
			jen.List(jen.Id("rec"), jen.Err()).Op(":=").Add(call),
			jen.If(jen.Err().Op("!=").Nil()).Block(
				jen.Return(jen.Nil(), jen.Id("translateErr").Call(jen.Id("tr"), jen.Err())),
			),
			jen.Return(jen.Id("rec"), jen.Nil()),
		}
	}

	if t.Has("get") {
		f.Commentf("Resolve%s resolves a single %s by id.", name, name)
		f.Func().Id("Resolve"+name).
			Params(ctx.Clone(), repo.Clone(), tr.Clone(), jen.Id("id").Any()).
			Params(record.Clone(), jen.Index().Any()).
			Block(body(jen.Id("Get" + name).Call(jen.Id("ctx"), jen.Id("repo"), jen.Id("id")))...)
	}
	if t.Has("list") {
		f.Commentf("Resolve%s resolves a %s listing honoring the list options.", plural, name)
		f.Func().Id("Resolve"+plural).
			Params(ctx.Clone(), repo.Clone(), tr.Clone(), jen.Id("opts").Any()).
			Params(jen.Index().Add(record.Clone()), jen.Index().Any()).
			Block(body(jen.Id("List" + plural).Call(jen.Id("ctx"), jen.Id("repo"), jen.Id("opts")))...)
	}
	if t.Has("create") {
		f.Commentf("ResolveCreate%s resolves a %s creation.", name, name)
		f.Func().Id("ResolveCreate"+name).
			Params(ctx.Clone(), repo.Clone(), tr.Clone(), jen.Id("values").Map(jen.String()).Any()).
			Params(record.Clone(), jen.Index().Any()).
			Block(body(jen.Id("Create" + name).Call(jen.Id("ctx"), jen.Id("repo"), jen.Id("values")))...)
	}
	if t.Has("update") {
		f.Commentf("ResolveUpdate%s resolves a %s update.", name, name)
		f.Func().Id("ResolveUpdate"+name).
			Params(ctx.Clone(), repo.Clone(), tr.Clone(), jen.Id("id").Any(), jen.Id("values").Map(jen.String()).Any()).
			Params(record.Clone(), jen.Index().Any()).
			Block(body(jen.Id("Update" + name).Call(jen.Id("ctx"), jen.Id("repo"), jen.Id("id"), jen.Id("values")))...)
	}
	if t.Has("delete") {
		f.Commentf("ResolveDelete%s resolves a %s deletion.", name, name)
		f.Func().Id("ResolveDelete"+name).
			Params(ctx.Clone(), repo.Clone(), tr.Clone(), jen.Id("id").Any()).
			Params(jen.Bool(), jen.Index().Any()).
			Block(
				jen.If(
					jen.Err().Op(":=").Id("Delete"+name).Call(jen.Id("ctx"), jen.Id("repo"), jen.Id("id")),
					jen.Err().Op("!=").Nil(),
				).Block(
					jen.Return(jen.False(), jen.Id("translateErr").Call(jen.Id("tr"), jen.Err())),
				),
				jen.Return(jen.True(), jen.Nil()),
			)
	}
	return f
}
