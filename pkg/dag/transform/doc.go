// Package transform prepares a [dag.DAG] for layered drawing.
//
// # Overview
//
// Pipelines arrive as arbitrary directed graphs: they may contain cycles,
// edges that skip rows, and rows whose insertion order crosses many edges.
// The layered layout engine needs the opposite, so this package applies the
// classic Sugiyama steps:
//
//   - [ReverseCycles] flips DFS back edges and drops self-loops
//   - [AssignLayers] places each node one row below its deepest parent
//   - [Subdivide] splits edges spanning several rows with synthetic nodes
//   - [OrderRows] reorders rows with barycenter sweeps and adjacent swaps
//
// [Layer] runs all four in order:
//
//	orders, reversed := transform.Layer(g, transform.DefaultOrderPasses)
//
// All steps iterate in insertion order, so the result depends only on the
// input sequence.
//
// [dag.DAG]: github.com/matzehuels/pipedag/pkg/dag
package transform
