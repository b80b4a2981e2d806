package output

import (
	"fmt"
	"math"
	"strings"
)

// Bar renders value as a horizontal bar scaled between lo and hi.
// Example: "████████░░"
func Bar(value, lo, hi float64, width int) string {
	if width <= 0 {
		width = 20
	}
	if math.IsNaN(value) {
		return StyleMuted.Render(strings.Repeat("·", width))
	}

	frac := 1.0
	if hi > lo {
		frac = (value - lo) / (hi - lo)
	}
	filled := int(math.Round(frac * float64(width)))
	if filled > width {
		filled = width
	}
	if filled < 1 {
		// the lowest team still gets a visible stub
		filled = 1
	}

	return StyleAccent.Render(strings.Repeat("█", filled)) + StyleMuted.Render(strings.Repeat("░", width-filled))
}

// TrendArrow returns a styled indicator for the difference between two
// values. text is the already formatted magnitude of delta. The higherIsBetter
// parameter decides whether a positive delta is shown as good.
func TrendArrow(delta float64, text string, higherIsBetter bool) string {
	if delta == 0 || math.IsNaN(delta) {
		return StyleMuted.Render("─")
	}

	isPositive := delta > 0
	isImproved := isPositive == higherIsBetter

	var arrow string
	if isPositive {
		arrow = fmt.Sprintf("▲ +%s", text)
	} else {
		arrow = fmt.Sprintf("▼ -%s", text)
	}

	if isImproved {
		return StyleSuccess.Render(arrow)
	}
	return StyleError.Render(arrow)
}

// Section returns a styled section header with a horizontal rule of the
// given width.
func Section(title string, width int) string {
	if width <= 0 {
		width = 66
	}
	header := StyleHeader.Render(title)
	rule := StyleMuted.Render(strings.Repeat("─", width))
	return fmt.Sprintf("\n %s\n %s", header, rule)
}
