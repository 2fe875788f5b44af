package graphql

import (
	"github.com/99designs/gqlgen/codegen/config"
	"github.com/99designs/gqlgen/plugin"

	"github.com/crudo-dev/crudo/gen"
)

// Plugin binds the graph's generated model types into a running gqlgen
// code generation. It is passed to api.Generate alongside the gqlgen
// defaults.
type Plugin struct {
	graph *gen.Graph
}

var (
	_ plugin.Plugin        = (*Plugin)(nil)
	_ plugin.ConfigMutator = (*Plugin)(nil)
)

// NewPlugin returns a gqlgen plugin for the graph.
func NewPlugin(g *gen.Graph) *Plugin {
	return &Plugin{graph: g}
}

// Name implements plugin.Plugin.
func (*Plugin) Name() string {
	return "crudo"
}

// MutateConfig implements plugin.ConfigMutator. It maps every graph node
// to its generated Go type.
func (p *Plugin) MutateConfig(cfg *config.Config) error {
	if cfg.Models == nil {
		cfg.Models = config.TypeMap{}
	}
	for _, t := range p.graph.Nodes {
		cfg.Models.Add(t.Name, p.graph.Config.Package+"."+t.Name)
	}
	return nil
}
