package validate

import (
	"fmt"
	"strings"
)

// Rule identifies one structural check.
type Rule int

// Rules in evaluation order.
const (
	RuleMinimumNodes Rule = iota + 1
	RuleNoSelfLoops
	RuleEdgeDirection
	RuleConnectivity
	RuleAcyclic
)

// Rules lists every rule in evaluation order.
var Rules = []Rule{
	RuleMinimumNodes,
	RuleNoSelfLoops,
	RuleEdgeDirection,
	RuleConnectivity,
	RuleAcyclic,
}

var ruleInfo = map[Rule]struct{ code, message string }{
	RuleMinimumNodes:  {"minimum_nodes", "Pipeline must have at least 2 nodes."},
	RuleNoSelfLoops:   {"no_self_loops", "Self-loops are not allowed."},
	RuleEdgeDirection: {"edge_direction", "Edges must connect outgoing to incoming handles."},
	RuleConnectivity:  {"connectivity", "All nodes must be connected to at least one edge."},
	RuleAcyclic:       {"acyclic", "Pipeline must not contain cycles."},
}

// Message returns the fixed user-facing message reported when r fails.
func (r Rule) Message() string { return ruleInfo[r].message }

// String returns the rule's machine code, e.g. "no_self_loops".
func (r Rule) String() string {
	if info, ok := ruleInfo[r]; ok {
		return info.code
	}
	return fmt.Sprintf("rule(%d)", int(r))
}

// MarshalText encodes the rule as its machine code.
func (r Rule) MarshalText() ([]byte, error) {
	if _, ok := ruleInfo[r]; !ok {
		return nil, fmt.Errorf("unknown rule %d", int(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText decodes a machine code produced by MarshalText.
func (r *Rule) UnmarshalText(b []byte) error {
	code := strings.TrimSpace(string(b))
	for rule, info := range ruleInfo {
		if info.code == code {
			*r = rule
			return nil
		}
	}
	return fmt.Errorf("unknown rule %q", code)
}
