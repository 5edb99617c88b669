// Package validate checks that a pipeline graph is a well-formed DAG.
//
// [Validate] runs five structural rules against a node and edge snapshot and
// reports every failing rule with a fixed, human-readable message:
//
//  1. [RuleMinimumNodes]: at least two nodes
//  2. [RuleNoSelfLoops]: no edge starts and ends at the same node
//  3. [RuleEdgeDirection]: every edge leaves through the outgoing handle and
//     enters through the incoming handle
//  4. [RuleConnectivity]: every node is an endpoint of some edge
//  5. [RuleAcyclic]: no directed cycle
//
// All rules always run and messages appear in rule order, so the same input
// always yields the same [Result]. A self-loop violates both rule 2 and
// rule 5. Validation never fails: malformed input (unknown edge endpoints,
// duplicate IDs, missing handles) is reported through the rules or ignored,
// never returned as an error.
//
// Each rule is also available as a standalone predicate for callers that
// need a single check, such as an editor refusing a connection early.
package validate
