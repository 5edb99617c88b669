package layout

import (
	"context"
	"slices"
	"strings"

	"github.com/matzehuels/pipedag/pkg/errors"
	"github.com/matzehuels/pipedag/pkg/graph"
)

// Engine computes node geometry for a graph.
//
// Layout returns the center of every node's box keyed by node ID, in a frame
// whose origin is the top-left of the drawing and whose y axis grows
// downward. Implementations must be deterministic and must not retain or
// modify g.
type Engine interface {
	Name() string
	Layout(ctx context.Context, g graph.Graph, opts Options) (map[string]graph.Position, error)
}

// Engine names.
const (
	EngineGraphviz = "graphviz"
	EngineLayered  = "layered"

	DefaultEngine = EngineGraphviz
)

var engines = map[string]Engine{
	EngineGraphviz: Graphviz{},
	EngineLayered:  Layered{},
}

// Engines returns the registered engine names in sorted order.
func Engines() []string {
	names := make([]string, 0, len(engines))
	for name := range engines {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// LookupEngine returns the engine registered under name. An empty name
// selects DefaultEngine.
func LookupEngine(name string) (Engine, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = DefaultEngine
	}
	if e, ok := engines[name]; ok {
		return e, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidEngine,
		"unknown layout engine %q (want %s)", name, strings.Join(Engines(), " or "))
}
