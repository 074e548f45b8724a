// Package plot renders experiment reports as PNG charts with gonum/plot.
package plot

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/cwbudde/randopt/internal/experiment"
)

const (
	width  = 8 * vg.Inch
	height = 5 * vg.Inch
)

// Slug turns a plot name into a file name prefix: "Four Peaks" -> "four_peaks".
func Slug(name string) string {
	var b strings.Builder
	underscore := false
	for _, r := range strings.TrimSpace(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
			underscore = false
			continue
		}
		if !underscore && b.Len() > 0 {
			b.WriteByte('_')
			underscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

// Optimizations writes the SA decay curves and one fitness-vs-parameter
// chart per sweep. It returns the written paths.
func Optimizations(report *experiment.OptimizationReport, dir, ylabel string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create plot directory: %w", err)
	}
	slug := Slug(report.Problem)
	var paths []string

	if sa := report.Sweep("SA", experiment.ParamDecayRate); sa != nil {
		curves := sa.Curves
		if sa.Baseline != nil {
			curves = append(append([]experiment.Curve(nil), curves...), *sa.Baseline)
		}
		path := filepath.Join(dir, slug+"_sa_decay_curves.png")
		title := report.Problem + ": SA decay rates"
		if err := saveCurves(path, title, ylabel, curves, false); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}

	for _, s := range report.Sweeps {
		path := filepath.Join(dir, fmt.Sprintf("%s_%s_%s.png", slug, strings.ToLower(s.Algorithm), s.Parameter))
		title := fmt.Sprintf("%s: %s %s", report.Problem, s.Algorithm, s.Parameter)
		if err := saveSweep(path, title, ylabel, s); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// Performances writes the fitness curves, the wall time bars and the
// evaluation count bars. It returns the written paths.
func Performances(report *experiment.PerformanceReport, dir, ylabel string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create plot directory: %w", err)
	}
	slug := Slug(report.Problem)

	curves := make([]experiment.Curve, len(report.Algorithms))
	names := make([]string, len(report.Algorithms))
	secs := make(plotter.Values, len(report.Algorithms))
	evals := make(plotter.Values, len(report.Algorithms))
	for i, a := range report.Algorithms {
		curves[i] = a.Curve
		names[i] = a.Algorithm
		secs[i] = a.MeanSeconds
		evals[i] = a.MeanEvaluations
	}

	var paths []string
	path := filepath.Join(dir, slug+"_fitness_iterations.png")
	if err := saveCurves(path, report.Problem+": fitness by iteration", ylabel, curves, true); err != nil {
		return paths, err
	}
	paths = append(paths, path)

	path = filepath.Join(dir, slug+"_time.png")
	if err := saveBars(path, report.Problem+": mean wall time", "Seconds", names, secs); err != nil {
		return paths, err
	}
	paths = append(paths, path)

	path = filepath.Join(dir, slug+"_evaluations.png")
	if err := saveBars(path, report.Problem+": mean fitness evaluations", "Evaluations", names, evals); err != nil {
		return paths, err
	}
	return append(paths, path), nil
}

// saveCurves draws one line per curve. With bands, mean ± std is shaded.
func saveCurves(path, title, ylabel string, curves []experiment.Curve, bands bool) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Iterations"
	p.Y.Label.Text = ylabel

	for i, c := range curves {
		if len(c.Mean) == 0 {
			continue
		}
		pts := make(plotter.XYs, len(c.Mean))
		for t, y := range c.Mean {
			pts[t].X = float64(t + 1)
			pts[t].Y = y
		}

		if bands && len(c.Std) == len(c.Mean) {
			band, err := stdBand(c)
			if err != nil {
				return fmt.Errorf("failed to build band for %s: %w", c.Label, err)
			}
			band.Color = translucent(plotutil.Color(i))
			band.LineStyle.Width = 0
			p.Add(band)
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("failed to build line for %s: %w", c.Label, err)
		}
		line.Color = plotutil.Color(i)
		line.Dashes = plotutil.Dashes(i)
		p.Add(line)
		p.Legend.Add(c.Label, line)
	}
	p.Legend.Top = true
	p.Legend.Left = true
	p.Add(plotter.NewGrid())

	return save(p, path)
}

// stdBand is the closed polygon mean+std forward, mean-std backward.
func stdBand(c experiment.Curve) (*plotter.Polygon, error) {
	n := len(c.Mean)
	pts := make(plotter.XYs, 0, 2*n)
	for t := 0; t < n; t++ {
		pts = append(pts, plotter.XY{X: float64(t + 1), Y: c.Mean[t] + c.Std[t]})
	}
	for t := n - 1; t >= 0; t-- {
		pts = append(pts, plotter.XY{X: float64(t + 1), Y: c.Mean[t] - c.Std[t]})
	}
	return plotter.NewPolygon(pts)
}

// errorPoints adapts sweep points for plotter.NewYErrorBars.
type errorPoints struct {
	plotter.XYs
	plotter.YErrors
}

// saveSweep draws mean final fitness against the swept value with std
// error bars.
func saveSweep(path, title, ylabel string, s experiment.Sweep) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = s.Parameter
	p.Y.Label.Text = ylabel

	data := errorPoints{
		XYs:     make(plotter.XYs, len(s.Points)),
		YErrors: make(plotter.YErrors, len(s.Points)),
	}
	for i, pt := range s.Points {
		data.XYs[i] = plotter.XY{X: pt.Value, Y: pt.MeanFitness}
		data.YErrors[i].Low = pt.StdFitness
		data.YErrors[i].High = pt.StdFitness
	}

	if len(s.Points) > 0 {
		line, points, err := plotter.NewLinePoints(data.XYs)
		if err != nil {
			return fmt.Errorf("failed to build sweep line: %w", err)
		}
		line.Color = plotutil.Color(0)
		points.Color = plotutil.Color(0)
		bars, err := plotter.NewYErrorBars(data)
		if err != nil {
			return fmt.Errorf("failed to build error bars: %w", err)
		}
		p.Add(line, points, bars)
		p.Legend.Add(s.Algorithm, line, points)
	}
	p.Add(plotter.NewGrid())

	return save(p, path)
}

// saveBars draws one bar per algorithm.
func saveBars(path, title, ylabel string, names []string, values plotter.Values) error {
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = ylabel

	bars, err := plotter.NewBarChart(values, vg.Points(30))
	if err != nil {
		return fmt.Errorf("failed to build bar chart: %w", err)
	}
	bars.Color = plotutil.Color(0)
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(names...)

	return save(p, path)
}

func save(p *plot.Plot, path string) error {
	if err := p.Save(width, height, path); err != nil {
		return fmt.Errorf("failed to save plot %s: %w", path, err)
	}
	return nil
}

func translucent(c color.Color) color.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = 48
	return n
}
