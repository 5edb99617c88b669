package graph

import "strings"

// NodeType is the display category of a node. The set is closed; see
// [ParseNodeType] for how unknown tags are handled.
type NodeType string

// Node types.
const (
	TypeSource     NodeType = "source"
	TypeProcessing NodeType = "processing"
	TypeOutput     NodeType = "output"
	TypeNormal     NodeType = "normal"
	TypeValidation NodeType = "validation"
	TypeError      NodeType = "error"
	TypeWarning    NodeType = "warning"
	TypeInfo       NodeType = "info"
)

// NodeTypes lists every node type in display order.
var NodeTypes = []NodeType{
	TypeSource,
	TypeProcessing,
	TypeOutput,
	TypeNormal,
	TypeValidation,
	TypeError,
	TypeWarning,
	TypeInfo,
}

var typeColors = map[NodeType]string{
	TypeSource:     "#4caf50",
	TypeProcessing: "#2196f3",
	TypeOutput:     "#ff9800",
	TypeNormal:     "#777777",
	TypeValidation: "#9c27b0",
	TypeError:      "#f44336",
	TypeWarning:    "#ffeb3b",
	TypeInfo:       "#00bcd4",
}

// ParseNodeType maps a tag to a NodeType. Matching is case-insensitive and
// ignores surrounding whitespace. Empty or unknown tags return TypeNormal.
func ParseNodeType(s string) NodeType {
	t := NodeType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := typeColors[t]; ok {
		return t
	}
	return TypeNormal
}

// Known reports whether t is one of the enumerated types.
func (t NodeType) Known() bool {
	_, ok := typeColors[t]
	return ok
}

// Normalize returns t if known, otherwise TypeNormal.
func (t NodeType) Normalize() NodeType {
	if t.Known() {
		return t
	}
	return TypeNormal
}

// Color returns the badge color as a hex string.
func (t NodeType) Color() string { return typeColors[t.Normalize()] }

// Badge returns the single upper-case letter shown on the node badge.
func (t NodeType) Badge() string {
	return strings.ToUpper(string(t.Normalize())[:1])
}

// String returns the normalized tag.
func (t NodeType) String() string { return string(t.Normalize()) }
