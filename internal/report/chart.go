// Package report renders cost histories as charts and publishes them.
package report

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// ErrEmptyChart is returned when no series has a plottable point.
var ErrEmptyChart = errors.New("report: nothing to plot")

// Series is one named cost history.
type Series struct {
	Name  string
	Costs []float64
}

// ChartOptions configures a cost chart.
type ChartOptions struct {
	Title    string
	LogScale bool // Plot cost on a log10 axis; non-positive costs are dropped
}

// CostChart plots each series as a line of cost against outer step.
// Non-finite costs (a diverged run) are left out of the line.
func CostChart(opts ChartOptions, series ...Series) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = "step"
	p.Y.Label.Text = "cost"
	p.Legend.Top = true
	if opts.LogScale {
		p.Y.Scale = plot.LogScale{}
		p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
		p.Y.Label.Text = "cost (log)"
	}

	lines := 0
	for i, s := range series {
		xys := points(s.Costs, opts.LogScale)
		if len(xys) == 0 {
			continue
		}

		l, err := plotter.NewLine(xys)
		if err != nil {
			return nil, fmt.Errorf("could not create line for %q: %w", s.Name, err)
		}
		l.Color = plotutil.Color(i)
		l.Dashes = plotutil.Dashes(i)
		p.Add(l)
		p.Legend.Add(s.Name, l)
		lines++
	}

	if lines == 0 {
		return nil, ErrEmptyChart
	}
	return p, nil
}

func points(costs []float64, logScale bool) plotter.XYs {
	xys := make(plotter.XYs, 0, len(costs))
	for i, c := range costs {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			continue
		}
		if logScale && c <= 0 {
			continue
		}
		xys = append(xys, plotter.XY{X: float64(i), Y: c})
	}
	return xys
}

// Render encodes the plot in format ("png", "svg", "pdf", ...).
func Render(p *plot.Plot, w, h vg.Length, format string) ([]byte, error) {
	wt, err := p.WriterTo(w, h, format)
	if err != nil {
		return nil, fmt.Errorf("could not create writer: %w", err)
	}

	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("could not render plot: %w", err)
	}
	return buf.Bytes(), nil
}

// Save renders the plot to path, choosing the format from its extension.
func Save(p *plot.Plot, w, h vg.Length, path string) error {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if format == "" {
		format = "png"
	}

	data, err := Render(p, w, h, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // Charts are meant to be shared
		return fmt.Errorf("could not write %s: %w", path, err)
	}
	return nil
}

// ContentType returns the MIME type for a rendered format.
func ContentType(format string) string {
	switch strings.ToLower(format) {
	case "svg":
		return "image/svg+xml"
	case "pdf":
		return "application/pdf"
	case "jpg", "jpeg":
		return "image/jpeg"
	default:
		return "image/png"
	}
}
