// Package layout computes deterministic node positions for pipeline graphs.
//
// # Overview
//
// [Apply] takes an ordered node and edge snapshot and returns a copy in which
// every node carries a new [graph.Position]. Edges flow in one consistent
// direction ([LeftToRight] by default). Positions are the top-left corner of
// each node's box with the y axis growing downward, so a diagram editor can
// adopt them verbatim.
//
// The geometry itself comes from a rank-based layered algorithm supplied by
// an [Engine]:
//
//   - [Graphviz] ("graphviz", the default) runs graphviz dot in-process
//     through go-graphviz
//   - [Layered] ("layered") runs a pure-Go Sugiyama pipeline built on
//     pkg/dag and pkg/dag/transform
//
// Engines report box centers. Apply subtracts half the configured box size,
// keeps the input node order, and copies edges through unchanged.
//
// # Determinism
//
// Both engines are deterministic: identical input sequences always produce
// identical positions. Input slices are never modified and results share no
// memory with them.
//
// # Unknown Endpoints
//
// Edges naming a node that is not in the node sequence violate the caller
// contract. Both engines skip such edges when computing geometry; they are
// still copied to the result.
//
// [graph.Position]: github.com/matzehuels/pipedag/pkg/graph
package layout
