package svg

// Datum is one labelled value of a chart.
type Datum struct {
	Label string
	Title string
	Value float64
	Color string
}

// BarOpts customises the bar chart renderer.
type BarOpts struct {
	Title       string
	Description string
	SeriesLabel string
	AxisColor   string
	GridColor   string
	Padding     float64
	TickCount   int
	// LabelAngle rotates the x-axis labels, in degrees. Zero keeps them horizontal.
	LabelAngle float64
}

// PieOpts customises the donut chart renderer.
type PieOpts struct {
	Title        string
	Description  string
	InnerRadius  float64
	OuterRadius  float64
	PaddingAngle float64
	// Active is the index of the highlighted segment.
	Active int
	// SegmentHref, when set, links every segment to the returned URL.
	SegmentHref func(index int) string
}

// Defaults for the analytics charts.
const (
	DefaultWidth        = 720
	DefaultHeight       = 400
	DefaultPadding      = 48.0
	DefaultTicks        = 5
	DefaultInnerRadius  = 70.0
	DefaultOuterRadius  = 90.0
	DefaultPaddingAngle = 4.0
)
