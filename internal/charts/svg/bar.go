package svg

import (
	"fmt"
	"html/template"
	"strings"
)

// Bars renders a categorical bar chart with one colored, gradient-filled bar per datum.
func Bars(width, height int, data []Datum, opts BarOpts) (template.HTML, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("svg: data required")
	}
	for _, d := range data {
		if d.Value < 0 {
			return "", fmt.Errorf("svg: negative value for %q", d.Label)
		}
	}
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	padding := opts.Padding
	if padding <= 0 {
		padding = DefaultPadding
	}
	tickCount := opts.TickCount
	if tickCount <= 0 {
		tickCount = DefaultTicks
	}
	axisColor := fallback(opts.AxisColor, "#4B5563")
	gridColor := fallback(opts.GridColor, "#E5E7EB")
	seriesLabel := fallback(opts.SeriesLabel, "Value")

	// Rotated labels need room below the axis.
	bottom := padding
	if opts.LabelAngle != 0 {
		bottom += 36
	}
	chartWidth := float64(width) - 2*padding
	chartHeight := float64(height) - padding - bottom
	if chartWidth <= 0 || chartHeight <= 0 {
		return "", fmt.Errorf("svg: viewport too small")
	}

	maxVal := niceMax(maxValue(data), tickCount)
	scale := chartHeight / maxVal
	baseY := padding + chartHeight
	slot := chartWidth / float64(len(data))
	barWidth := slot * 0.6

	titleID := makeID(opts.Title, "bar-title")
	descID := makeID(opts.Title, "bar-desc")
	gradientPrefix := makeID(opts.Title, "bar-gradient")

	var b strings.Builder
	b.WriteString(fmt.Sprintf("<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"0 0 %d %d\" role=\"img\" aria-labelledby=\"%s %s\">", width, height, titleID, descID))
	b.WriteString(fmt.Sprintf("<title id=\"%s\">%s</title>", titleID, template.HTMLEscapeString(fallback(opts.Title, "Bar chart"))))
	b.WriteString(fmt.Sprintf("<desc id=\"%s\">%s</desc>", descID, template.HTMLEscapeString(fallback(opts.Description, "Category distribution"))))

	b.WriteString("<defs>")
	for i, d := range data {
		b.WriteString(fmt.Sprintf("<linearGradient id=\"%s-%d\" x1=\"0\" y1=\"0\" x2=\"0\" y2=\"1\">", gradientPrefix, i))
		b.WriteString(fmt.Sprintf("<stop offset=\"0%%\" stop-color=\"%s\" stop-opacity=\"0.8\"></stop>", d.Color))
		b.WriteString(fmt.Sprintf("<stop offset=\"100%%\" stop-color=\"%s\" stop-opacity=\"0.3\"></stop>", d.Color))
		b.WriteString("</linearGradient>")
	}
	b.WriteString("</defs>")

	for i := 0; i <= tickCount; i++ {
		ratio := float64(i) / float64(tickCount)
		y := baseY - ratio*chartHeight
		b.WriteString(fmt.Sprintf("<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke=\"%s\" stroke-width=\"1\" stroke-dasharray=\"3,3\" aria-hidden=\"true\"></line>", padding, y, padding+chartWidth, y, gridColor))
		b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"12\" text-anchor=\"end\">%s</text>", padding-6, y+4, axisColor, template.HTMLEscapeString(formatTick(maxVal*ratio))))
	}

	b.WriteString(fmt.Sprintf("<g stroke=\"%s\" aria-label=\"Axes\">", axisColor))
	b.WriteString(fmt.Sprintf("<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke-width=\"1\"></line>", padding, padding, padding, baseY))
	b.WriteString(fmt.Sprintf("<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke-width=\"1\"></line>", padding, baseY, padding+chartWidth, baseY))
	b.WriteString("</g>")

	for i, d := range data {
		h := d.Value * scale
		x := padding + float64(i)*slot + (slot-barWidth)/2
		y := baseY - h
		tooltip := fmt.Sprintf("%s: %s %s", fallback(d.Title, d.Label), formatTick(d.Value), seriesLabel)
		b.WriteString(fmt.Sprintf("<rect x=\"%.2f\" y=\"%.2f\" width=\"%.2f\" height=\"%.2f\" rx=\"6\" fill=\"url(#%s-%d)\" aria-label=\"%s\"><title>%s</title></rect>",
			x, y, barWidth, h, gradientPrefix, i, template.HTMLEscapeString(tooltip), template.HTMLEscapeString(tooltip)))

		center := padding + float64(i)*slot + slot/2
		labelY := baseY + 14
		if opts.LabelAngle != 0 {
			b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"12\" text-anchor=\"end\" transform=\"rotate(%.0f %.2f %.2f)\">%s</text>",
				center, labelY, axisColor, opts.LabelAngle, center, labelY, template.HTMLEscapeString(d.Label)))
			continue
		}
		b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"12\" text-anchor=\"middle\">%s</text>", center, labelY, axisColor, template.HTMLEscapeString(d.Label)))
	}

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}
