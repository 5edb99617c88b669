package validate

import (
	"strings"

	"github.com/matzehuels/pipedag/pkg/dag"
	"github.com/matzehuels/pipedag/pkg/errors"
	"github.com/matzehuels/pipedag/pkg/graph"
)

// Result is the verdict for one graph snapshot.
//
// Errors holds one message per failed rule in rule order, and Violations the
// matching rule codes. Valid is true exactly when Errors is empty.
type Result struct {
	Valid      bool     `json:"isValid"`
	Errors     []string `json:"errors"`
	Violations []Rule   `json:"violations,omitempty"`
}

// Banner returns the one-line status shown by editors: "Valid DAG", or
// "Invalid DAG: " followed by the messages joined with ", ".
func (r Result) Banner() string {
	if r.Valid {
		return "Valid DAG"
	}
	return "Invalid DAG: " + strings.Join(r.Errors, ", ")
}

// Err returns nil for a valid result, otherwise a STRUCTURAL_VIOLATION error
// carrying the joined messages.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return errors.New(errors.ErrCodeStructuralViolation, "%s", strings.Join(r.Errors, ", "))
}

// Violated reports whether rule failed in this result.
func (r Result) Violated(rule Rule) bool {
	for _, v := range r.Violations {
		if v == rule {
			return true
		}
	}
	return false
}

// Validate runs every rule against the snapshot and collects the failures.
// It never mutates its arguments and never fails.
func Validate(nodes []graph.Node, edges []graph.Edge) Result {
	checks := []struct {
		rule Rule
		ok   bool
	}{
		{RuleMinimumNodes, HasMinimumNodes(nodes)},
		{RuleNoSelfLoops, HasNoSelfLoops(edges)},
		{RuleEdgeDirection, HasValidEdgeDirections(edges)},
		{RuleConnectivity, AllNodesConnected(nodes, edges)},
		{RuleAcyclic, HasNoCycles(nodes, edges)},
	}

	res := Result{Errors: []string{}}
	for _, c := range checks {
		if !c.ok {
			res.Errors = append(res.Errors, c.rule.Message())
			res.Violations = append(res.Violations, c.rule)
		}
	}
	res.Valid = len(res.Errors) == 0
	return res
}

// ValidateGraph is shorthand for Validate(g.Nodes, g.Edges).
func ValidateGraph(g graph.Graph) Result {
	return Validate(g.Nodes, g.Edges)
}

// HasMinimumNodes reports whether there are at least two nodes.
func HasMinimumNodes(nodes []graph.Node) bool {
	return len(nodes) >= 2
}

// HasNoSelfLoops reports whether no edge starts and ends at the same node.
func HasNoSelfLoops(edges []graph.Edge) bool {
	for _, e := range edges {
		if e.IsSelfLoop() {
			return false
		}
	}
	return true
}

// HasValidEdgeDirections reports whether every edge leaves through
// [graph.HandleOutgoing] and enters through [graph.HandleIncoming].
// A missing handle on either end fails the check.
func HasValidEdgeDirections(edges []graph.Edge) bool {
	for _, e := range edges {
		if !e.HasCanonicalHandles() {
			return false
		}
	}
	return true
}

// AllNodesConnected reports whether every node is the source or target of at
// least one edge. Edges naming unknown nodes count toward nothing.
func AllNodesConnected(nodes []graph.Node, edges []graph.Edge) bool {
	touched := make(map[string]struct{}, len(edges)*2)
	for _, e := range edges {
		touched[e.Source] = struct{}{}
		touched[e.Target] = struct{}{}
	}
	for _, n := range nodes {
		if _, ok := touched[n.ID]; !ok {
			return false
		}
	}
	return true
}

// HasNoCycles reports whether the source→target relation is acyclic. An
// edge endpoint that is not a declared node still counts as a vertex, so
// 1→2→ghost→1 is a cycle. Edges with an empty endpoint are ignored.
func HasNoCycles(nodes []graph.Node, edges []graph.Edge) bool {
	d := dag.New()
	for _, n := range nodes {
		_ = d.AddNode(dag.Node{ID: n.ID})
	}
	for _, e := range edges {
		for _, id := range [...]string{e.Source, e.Target} {
			if _, ok := d.Node(id); !ok {
				_ = d.AddNode(dag.Node{ID: id})
			}
		}
		_ = d.AddEdge(dag.Edge{From: e.Source, To: e.Target})
	}
	return d.DetectCycles() == nil
}
