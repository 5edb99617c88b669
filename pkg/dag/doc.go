// Package dag provides the row-organized directed graph used by the
// validator's cycle check and by the layered layout engine.
//
// # Overview
//
// A [DAG] holds nodes with an assigned row (layer) and directed edges
// between them. Layered drawing proceeds in the usual Sugiyama steps, all of
// which live in the [transform] subpackage: break cycles, assign rows,
// subdivide edges that span more than one row, then order each row to keep
// edge crossings low. This package supplies the structure those steps work
// on plus the crossing counters used to score an ordering.
//
// # Basic Usage
//
// Build a graph by hand, or convert a pipeline snapshot with [FromGraph]:
//
//	g := dag.New()
//	g.AddNode(dag.Node{ID: "extract", Row: 0})
//	g.AddNode(dag.Node{ID: "load", Row: 1})
//	g.AddEdge(dag.Edge{From: "extract", To: "load"})
//
// [DAG.DetectCycles] reports any directed cycle, self-loops included.
// [DAG.Validate] additionally requires every edge to join consecutive rows,
// which holds after subdivision.
//
// # Determinism
//
// Nodes are kept in insertion order and every query that returns several
// nodes ([DAG.Nodes], [DAG.Sources], [DAG.NodesInRow]) preserves it. The same
// input therefore always produces the same layering and ordering.
//
// # Edge Crossings
//
// [CountCrossings] and [CountLayerCrossings] use a Fenwick tree (binary
// indexed tree) to count inversions in O(E log V) time.
//
// # Concurrency
//
// DAG instances are not safe for concurrent use. Build one per request.
//
// [transform]: github.com/matzehuels/pipedag/pkg/dag/transform
package dag
