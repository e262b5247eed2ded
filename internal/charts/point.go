package charts

import (
	"sort"
	"unicode/utf8"
)

// MaxLabelLength is the number of characters kept in a chart label before truncation.
const MaxLabelLength = 20

// Palette is the fixed color cycle assigned to chart points by insertion order.
var Palette = []string{
	"#06B6D4", "#0EA5E9", "#3B82F6", "#6366F1", "#8B5CF6",
	"#D946EF", "#EC4899", "#F43F5E", "#FB7185", "#FDA4AF",
	"#10B981", "#34D399", "#6EE7B7", "#A7F3D0", "#86EFAC",
}

// Point is one labelled, colored value of a chart.
type Point struct {
	Label     string  `json:"label"`
	FullLabel string  `json:"fullLabel"`
	Value     float64 `json:"value"`
	Color     string  `json:"color"`
}

// ToChartPoints converts a distribution into chart points sorted by value, largest
// first. Colors follow the original bucket order; ties keep that order too.
// An absent distribution yields an empty slice.
func ToChartPoints(dist Distribution) []Point {
	points := make([]Point, 0, len(dist))
	for i, bucket := range dist {
		points = append(points, Point{
			Label:     TruncateLabel(bucket.Name),
			FullLabel: bucket.Name,
			Value:     float64(bucket.Count),
			Color:     Palette[i%len(Palette)],
		})
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Value > points[j].Value
	})
	return points
}

// TruncateLabel shortens name to MaxLabelLength characters followed by "...".
func TruncateLabel(name string) string {
	if utf8.RuneCountInString(name) <= MaxLabelLength {
		return name
	}
	runes := []rune(name)
	return string(runes[:MaxLabelLength]) + "..."
}
