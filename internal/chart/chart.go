// Package chart draws payoff curves as text for terminal output.
package chart

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"options-visualizer/internal/strategy"
)

const (
	labelWidth = 10

	curveMark  = '•'
	zeroMark   = '─'
	strikeMark = '|'
	spotMark   = '¦'
)

// Options controls the plot area. Padding extends the P&L axis on both sides.
type Options struct {
	Width   int
	Height  int
	Padding float64
}

// DefaultOptions returns a 72×18 plot padded by 10 on the P&L axis.
func DefaultOptions() Options {
	return Options{Width: 72, Height: 18, Padding: 10}
}

func (o Options) normalized() Options {
	d := DefaultOptions()
	if o.Width < 2 {
		o.Width = d.Width
	}
	if o.Height < 2 {
		o.Height = d.Height
	}
	if o.Padding < 0 {
		o.Padding = 0
	}
	return o
}

// Render draws curve with a zero line and vertical markers at strike (K) and spot (S).
// The P&L axis spans [min-Padding, max+Padding].
func Render(curve strategy.Curve, strike, spot float64, opts Options) []string {
	if len(curve) == 0 {
		return []string{"no data"}
	}
	opts = opts.normalized()

	points := make(strategy.Curve, len(curve))
	copy(points, curve)
	sort.SliceStable(points, func(i, j int) bool { return points[i].Spot < points[j].Spot })

	xmin, xmax := points[0].Spot, points[len(points)-1].Spot
	lo, hi := points.Bounds()
	ymin, ymax := lo-opts.Padding, hi+opts.Padding
	if ymax == ymin {
		ymin, ymax = ymin-1, ymax+1
	}

	p := plot{
		width: opts.Width, height: opts.Height,
		xmin: xmin, xmax: xmax, ymin: ymin, ymax: ymax,
	}
	grid := p.grid()

	zeroRow, zeroVisible := p.row(0)
	if zeroVisible {
		for c := range grid[zeroRow] {
			grid[zeroRow][c] = zeroMark
		}
	}

	header := []rune(strings.Repeat(" ", opts.Width))
	if c, ok := p.col(strike); ok {
		p.vertical(grid, c, strikeMark)
		header[c] = 'K'
	}
	if c, ok := p.col(spot); ok {
		p.vertical(grid, c, spotMark)
		header[c] = 'S'
	}

	for c := 0; c < opts.Width; c++ {
		if r, ok := p.row(interpolate(points, p.x(c))); ok {
			grid[r][c] = curveMark
		}
	}

	lines := make([]string, 0, opts.Height+4)
	lines = append(lines, strings.Repeat(" ", labelWidth+2)+strings.TrimRight(string(header), " "))
	for r, row := range grid {
		label := ""
		switch {
		case r == 0:
			label = formatAxis(ymax)
		case r == opts.Height-1:
			label = formatAxis(ymin)
		case zeroVisible && r == zeroRow:
			label = formatAxis(0)
		}
		lines = append(lines, fmt.Sprintf("%*s ┤%s", labelWidth, label, string(row)))
	}
	lines = append(lines, strings.Repeat(" ", labelWidth+1)+"└"+strings.Repeat("─", opts.Width))

	left, right := formatAxis(xmin), formatAxis(xmax)
	gap := max(opts.Width-len(left)-len(right), 1)
	lines = append(lines, strings.Repeat(" ", labelWidth+2)+left+strings.Repeat(" ", gap)+right)
	lines = append(lines, fmt.Sprintf("%*s  K = %s   S = %s", labelWidth, "", formatAxis(strike), formatAxis(spot)))

	return lines
}

type plot struct {
	width, height int
	xmin, xmax    float64
	ymin, ymax    float64
}

func (p plot) grid() [][]rune {
	grid := make([][]rune, p.height)
	for r := range grid {
		grid[r] = []rune(strings.Repeat(" ", p.width))
	}
	return grid
}

// x is the spot price at column c.
func (p plot) x(c int) float64 {
	if p.width == 1 || p.xmax == p.xmin {
		return p.xmin
	}
	return p.xmin + float64(c)*(p.xmax-p.xmin)/float64(p.width-1)
}

func (p plot) col(x float64) (int, bool) {
	if x < p.xmin || x > p.xmax {
		return 0, false
	}
	if p.xmax == p.xmin {
		return 0, true
	}
	return int(math.Round((x - p.xmin) / (p.xmax - p.xmin) * float64(p.width-1))), true
}

func (p plot) row(y float64) (int, bool) {
	if y < p.ymin || y > p.ymax {
		return 0, false
	}
	return int(math.Round((p.ymax - y) / (p.ymax - p.ymin) * float64(p.height-1))), true
}

func (p plot) vertical(grid [][]rune, c int, mark rune) {
	for r := range grid {
		grid[r][c] = mark
	}
}

// interpolate returns the P&L at x by linear interpolation between the
// neighbouring points of a curve sorted by spot.
func interpolate(points strategy.Curve, x float64) float64 {
	i := sort.Search(len(points), func(i int) bool { return points[i].Spot >= x })
	switch {
	case i == 0:
		return points[0].PnL
	case i == len(points):
		return points[len(points)-1].PnL
	}
	a, b := points[i-1], points[i]
	if b.Spot == a.Spot {
		return b.PnL
	}
	return a.PnL + (b.PnL-a.PnL)*(x-a.Spot)/(b.Spot-a.Spot)
}

func formatAxis(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
