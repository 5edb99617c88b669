package layout

// Default box and spacing, in layout units (graphviz points).
const (
	DefaultNodeWidth  = 172
	DefaultNodeHeight = 36
	DefaultNodeSep    = 50
	DefaultRankSep    = 50
)

// Options configures a layout run. Zero fields take their defaults.
type Options struct {
	// Direction of edge flow. Defaults to LeftToRight.
	Direction Direction
	// Engine name as registered with [Engines]. Defaults to DefaultEngine.
	Engine string

	NodeWidth  float64 // box width
	NodeHeight float64 // box height
	NodeSep    float64 // gap between nodes in the same rank
	RankSep    float64 // gap between ranks
}

// DefaultOptions returns options with every field set to its default.
func DefaultOptions() Options {
	return Options{}.WithDefaults()
}

// WithDefaults returns a copy of o with zero fields replaced by defaults.
func (o Options) WithDefaults() Options {
	if o.Direction == "" {
		o.Direction = DefaultDirection
	}
	if o.Engine == "" {
		o.Engine = DefaultEngine
	}
	if o.NodeWidth <= 0 {
		o.NodeWidth = DefaultNodeWidth
	}
	if o.NodeHeight <= 0 {
		o.NodeHeight = DefaultNodeHeight
	}
	if o.NodeSep <= 0 {
		o.NodeSep = DefaultNodeSep
	}
	if o.RankSep <= 0 {
		o.RankSep = DefaultRankSep
	}
	return o
}
