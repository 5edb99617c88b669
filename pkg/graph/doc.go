// Package graph defines the pipeline graph model and its serialization.
//
// A pipeline graph is a snapshot of nodes and edges as produced by an editor.
// It is the single input type of the validator ([validate.Validate]) and the
// layout engine ([layout.Apply]); both treat it as read-only.
//
// # Core Types
//
//   - [Node]: a pipeline step with an ID, display label, [NodeType] and [Position]
//   - [Edge]: a directed connection from a source handle to a target handle
//   - [Graph]: the ordered node and edge sequences
//
// # Handles
//
// Every node exposes two connection ports. A legal edge leaves its source
// through [HandleOutgoing] and enters its target through [HandleIncoming]:
//
//	graph.Edge{ID: "e1", Source: "extract", Target: "load",
//	    SourceHandle: graph.HandleOutgoing, TargetHandle: graph.HandleIncoming}
//
// # Node Types
//
// [NodeType] is a closed enumeration used only for display. [ParseNodeType]
// is total: unknown tags map to [TypeNormal]. Each type has a badge color:
//
//	graph.TypeSource.Color() // "#4caf50"
//	graph.TypeSource.Badge() // "S"
//
// # Serialization
//
// Graphs are exchanged as JSON or YAML documents:
//
//	{
//	  "nodes": [{"id": "1", "label": "extract", "type": "source", "position": {"x": 0, "y": 0}}],
//	  "edges": [{"id": "e1", "source": "1", "target": "2", "sourceHandle": "right", "targetHandle": "left"}]
//	}
//
// Decoding also accepts the diagram-editor node shape, where label and type
// are nested under "data". Common operations:
//
//	g, _ := graph.ReadFile("pipeline.yaml")    // File → Graph (format by extension)
//	_ = graph.WriteFile(g, "out.json")          // Graph → File
//	data, _ := graph.Marshal(g)                 // Graph → indented JSON
//
// # Concurrency
//
// Graph values are plain data. [Graph.Clone] returns a deep copy that shares
// no memory with the original, which is how every consumer in this module
// avoids retaining caller-owned slices.
//
// [validate.Validate]: github.com/matzehuels/pipedag/pkg/validate
// [layout.Apply]: github.com/matzehuels/pipedag/pkg/layout
package graph
