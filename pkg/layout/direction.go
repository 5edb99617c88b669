package layout

import (
	"strings"

	"github.com/matzehuels/pipedag/pkg/errors"
)

// Direction is the flow direction of edges in the drawing.
type Direction string

// Supported directions, named by their graphviz rankdir.
const (
	LeftToRight Direction = "LR"
	TopToBottom Direction = "TB"
	RightToLeft Direction = "RL"
	BottomToTop Direction = "BT"
)

// DefaultDirection is used when no direction is given.
const DefaultDirection = LeftToRight

// Directions lists every supported direction.
var Directions = []Direction{LeftToRight, TopToBottom, RightToLeft, BottomToTop}

var directionAliases = map[string]Direction{
	"lr":            LeftToRight,
	"left-to-right": LeftToRight,
	"tb":            TopToBottom,
	"top-to-bottom": TopToBottom,
	"rl":            RightToLeft,
	"right-to-left": RightToLeft,
	"bt":            BottomToTop,
	"bottom-to-top": BottomToTop,
}

// ParseDirection parses a rankdir ("LR", "TB", ...) or its long form
// ("left-to-right", ...). Matching is case-insensitive. An empty string
// yields DefaultDirection.
func ParseDirection(s string) (Direction, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultDirection, nil
	}
	if d, ok := directionAliases[s]; ok {
		return d, nil
	}
	return "", errors.New(errors.ErrCodeInvalidDirection,
		"unknown direction %q (want LR, TB, RL or BT)", s)
}

// Valid reports whether d is one of the supported directions.
func (d Direction) Valid() bool {
	switch d {
	case LeftToRight, TopToBottom, RightToLeft, BottomToTop:
		return true
	}
	return false
}

// Horizontal reports whether ranks advance along the x axis.
func (d Direction) Horizontal() bool { return d == LeftToRight || d == RightToLeft }

// Reversed reports whether ranks advance toward decreasing coordinates.
func (d Direction) Reversed() bool { return d == RightToLeft || d == BottomToTop }

// String returns the rankdir form.
func (d Direction) String() string { return string(d) }
