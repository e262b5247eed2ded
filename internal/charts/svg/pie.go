package svg

import (
	"fmt"
	"html/template"
	"math"
	"strings"
)

const emptyRingColor = "#E5E7EB"

// Pie renders a donut chart. The active segment is drawn with an outer highlight ring
// and its value and title are shown in the centre.
func Pie(width, height int, data []Datum, opts PieOpts) (template.HTML, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("svg: data required")
	}
	total := 0.0
	for _, d := range data {
		if d.Value < 0 {
			return "", fmt.Errorf("svg: negative value for %q", d.Label)
		}
		total += d.Value
	}
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	inner := opts.InnerRadius
	if inner <= 0 {
		inner = DefaultInnerRadius
	}
	outer := opts.OuterRadius
	if outer <= inner {
		outer = math.Max(DefaultOuterRadius, inner+20)
	}
	if 2*(outer+10) > float64(min(width, height)) {
		return "", fmt.Errorf("svg: viewport too small")
	}
	padAngle := opts.PaddingAngle
	if padAngle < 0 {
		padAngle = 0
	}
	if len(data) == 1 {
		padAngle = 0
	}
	// Padding never takes more than half the circle.
	if n := float64(len(data)); padAngle*n > 180 {
		padAngle = 180 / n
	}
	active := opts.Active
	if active < 0 || active >= len(data) {
		active = 0
	}

	cx := float64(width) / 2
	cy := float64(height) / 2
	titleID := makeID(opts.Title, "pie-title")
	descID := makeID(opts.Title, "pie-desc")

	var b strings.Builder
	b.WriteString(fmt.Sprintf("<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"0 0 %d %d\" role=\"img\" aria-labelledby=\"%s %s\">", width, height, titleID, descID))
	b.WriteString(fmt.Sprintf("<title id=\"%s\">%s</title>", titleID, template.HTMLEscapeString(fallback(opts.Title, "Pie chart"))))
	b.WriteString(fmt.Sprintf("<desc id=\"%s\">%s</desc>", descID, template.HTMLEscapeString(fallback(opts.Description, "Share per category"))))

	if almostEqual(total, 0) {
		b.WriteString(fmt.Sprintf("<path d=\"%s\" fill=\"%s\"></path>", sectorPath(cx, cy, inner, outer, 0, 360), emptyRingColor))
		writeCentre(&b, cx, cy, inner, 0, "No data")
		b.WriteString("</svg>")
		return template.HTML(b.String()), nil
	}

	available := 360 - padAngle*float64(len(data))
	angle := 0.0
	var activeStart, activeEnd float64
	for i, d := range data {
		sweep := d.Value / total * available
		start, end := angle, angle+sweep
		angle = end + padAngle
		if i == active {
			activeStart, activeEnd = start, end
		}
		if sweep <= 0 {
			continue
		}
		label := fmt.Sprintf("%s: %s", fallback(d.Title, d.Label), formatTick(d.Value))
		segment := fmt.Sprintf("<path d=\"%s\" fill=\"%s\" fill-opacity=\"0.8\" stroke=\"white\" stroke-width=\"2\" aria-label=\"%s\"><title>%s</title></path>",
			sectorPath(cx, cy, inner, outer, start, end), d.Color, template.HTMLEscapeString(label), template.HTMLEscapeString(label))
		if opts.SegmentHref != nil {
			segment = fmt.Sprintf("<a href=\"%s\">%s</a>", template.HTMLEscapeString(opts.SegmentHref(i)), segment)
		}
		b.WriteString(segment)
	}

	focus := data[active]
	if activeEnd > activeStart {
		b.WriteString(fmt.Sprintf("<path d=\"%s\" fill=\"%s\" aria-hidden=\"true\"></path>", sectorPath(cx, cy, outer+6, outer+10, activeStart, activeEnd), focus.Color))
	}
	writeCentre(&b, cx, cy, inner, focus.Value, fallback(focus.Title, focus.Label))

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}

func writeCentre(b *strings.Builder, cx, cy, radius, value float64, caption string) {
	b.WriteString(fmt.Sprintf("<circle cx=\"%.2f\" cy=\"%.2f\" r=\"%.2f\" fill=\"white\"></circle>", cx, cy, radius))
	b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"#333\" font-size=\"18\" font-weight=\"600\" text-anchor=\"middle\">%s</text>", cx, cy, template.HTMLEscapeString(formatTick(value))))
	b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"#666\" font-size=\"12\" text-anchor=\"middle\">%s</text>", cx, cy+25, template.HTMLEscapeString(caption)))
}

// sectorPath draws the ring segment between the two radii from start to end degrees,
// measured clockwise from 12 o'clock. A full turn is split into two arcs.
func sectorPath(cx, cy, inner, outer, start, end float64) string {
	if end-start >= 359.999 {
		mid := start + 180
		return sectorPath(cx, cy, inner, outer, start, mid) + " " + sectorPath(cx, cy, inner, outer, mid, start+360)
	}
	largeArc := 0
	if end-start > 180 {
		largeArc = 1
	}
	ox1, oy1 := polar(cx, cy, outer, start)
	ox2, oy2 := polar(cx, cy, outer, end)
	ix1, iy1 := polar(cx, cy, inner, end)
	ix2, iy2 := polar(cx, cy, inner, start)
	return fmt.Sprintf("M%.2f %.2f A%.2f %.2f 0 %d 1 %.2f %.2f L%.2f %.2f A%.2f %.2f 0 %d 0 %.2f %.2f Z",
		ox1, oy1, outer, outer, largeArc, ox2, oy2,
		ix1, iy1, inner, inner, largeArc, ix2, iy2)
}

func polar(cx, cy, radius, degrees float64) (float64, float64) {
	rad := (degrees - 90) * math.Pi / 180
	return cx + radius*math.Cos(rad), cy + radius*math.Sin(rad)
}
