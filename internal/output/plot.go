package output

import (
	"math"
	"strings"

	"github.com/blackwell-systems/courtside/internal/metrics"
)

type point struct {
	label string
	x, y  float64
}

// plot draws labelled points on a width x height character grid. Points
// with a missing coordinate are left off. A label that would touch another
// moves to the nearest free spot; labels with no room left are listed under
// the axis.
func plot(pts []point, xm, ym metrics.Metric, width, height int) string {
	if width < 20 {
		width = 20
	}
	if height < 4 {
		height = 4
	}

	var shown []point
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, p := range pts {
		if math.IsNaN(p.x) || math.IsNaN(p.y) || math.IsInf(p.x, 0) || math.IsInf(p.y, 0) {
			continue
		}
		shown = append(shown, p)
		minX, maxX = math.Min(minX, p.x), math.Max(maxX, p.x)
		minY, maxY = math.Min(minY, p.y), math.Max(maxY, p.y)
	}
	if len(shown) == 0 {
		return " " + StyleMuted.Render("no plottable teams") + "\n"
	}
	if maxX == minX {
		minX, maxX = minX-1, maxX+1
	}
	if maxY == minY {
		minY, maxY = minY-1, maxY+1
	}

	grid := make([][]rune, height)
	for r := range grid {
		grid[r] = []rune(strings.Repeat(" ", width))
	}
	var unplaced []string
	for _, p := range shown {
		lbl := []rune(p.label)
		col := int(math.Round((p.x - minX) / (maxX - minX) * float64(max(width-len(lbl), 0))))
		row := int(math.Round((maxY - p.y) / (maxY - minY) * float64(height-1)))
		r, c, ok := freeSpot(grid, len(lbl), row, col)
		if !ok {
			unplaced = append(unplaced, p.label)
			continue
		}
		copy(grid[r][c:], lbl)
	}

	top, bottom := FormatValue(ym, maxY), FormatValue(ym, minY)
	lw := max(len(top), len(bottom), len(string(ym)))

	var sb strings.Builder
	sb.WriteString(" " + padLeft(string(ym), lw) + "\n")
	for r, line := range grid {
		tick := ""
		switch r {
		case 0:
			tick = top
		case height - 1:
			tick = bottom
		}
		sb.WriteString(" " + StyleMuted.Render(padLeft(tick, lw)+" │") + StyleAccent.Render(string(line)) + "\n")
	}
	sb.WriteString(" " + StyleMuted.Render(strings.Repeat(" ", lw)+" └"+strings.Repeat("─", width)) + "\n")

	left, right := FormatValue(xm, minX), FormatValue(xm, maxX)
	gap := max(width-len(left)-len(right), 1)
	sb.WriteString(" " + strings.Repeat(" ", lw+2) + StyleMuted.Render(left+strings.Repeat(" ", gap)+right) + "\n")
	sb.WriteString(" " + padLeft(string(xm), lw+2+width) + "\n")
	if len(unplaced) > 0 {
		sb.WriteString(" " + StyleMuted.Render("not plotted (no room): "+strings.Join(unplaced, ", ")) + "\n")
	}
	return sb.String()
}

// freeSpot finds the position nearest (row, col) where a label n cells wide
// fits with a blank cell on either side. Rows closer to row win over columns
// closer to col.
func freeSpot(grid [][]rune, n, row, col int) (int, int, bool) {
	height, width := len(grid), len(grid[0])
	if n == 0 {
		return row, col, true
	}
	if n > width {
		return 0, 0, false
	}
	for d := 0; d < height; d++ {
		for _, r := range []int{row - d, row + d} {
			if r < 0 || r >= height {
				continue
			}
			for s := 0; s < width; s++ {
				for _, c := range []int{col + s, col - s} {
					if c >= 0 && c+n <= width && blank(grid[r], c-1, c+n+1) {
						return r, c, true
					}
				}
			}
		}
	}
	return 0, 0, false
}

func blank(line []rune, from, to int) bool {
	for c := max(from, 0); c < min(to, len(line)); c++ {
		if line[c] != ' ' {
			return false
		}
	}
	return true
}
