package plot

import (
	"fmt"
	"sort"

	kcmath "github.com/drakos74/kcurves/internal/math"
	"github.com/drakos74/kcurves/internal/storage"
	"github.com/drakos74/kcurves/internal/synth"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"
)

// resolution is the number of points used to draw a noiseless curve.
const resolution = 200

// Kind is the way a series is drawn.
type Kind string

const (
	Scatter Kind = "scatter"
	Line    Kind = "line"
)

// default markers and colors, cycled by class index.
var (
	markers = []string{"o", "x", "+", "*", "s", "d", "^", "v"}
	colors  = []string{"blue", "red", "green", "orange", "purple", "brown", "pink", "gray"}
)

// Figure is the descriptor of a 2D plot.
// It is rendered by an external tool, this package only prepares the data.
type Figure struct {
	Name   string   `json:"name"`
	Title  string   `json:"title"`
	XLabel string   `json:"x_label"`
	YLabel string   `json:"y_label"`
	Series []Series `json:"series"`
}

// Series is a set of points drawn with the same style.
type Series struct {
	Name   string    `json:"name"`
	Kind   Kind      `json:"kind"`
	Marker string    `json:"marker,omitempty"`
	Color  string    `json:"color,omitempty"`
	X      []float64 `json:"x"`
	Y      []float64 `json:"y"`
}

// Size returns the number of points in the series.
func (s Series) Size() int {
	return len(s.X)
}

// Style is the marker and color of a class.
type Style struct {
	Marker string
	Color  string
}

// ClassStyle returns the default style for the class.
func ClassStyle(class int) Style {
	return Style{
		Marker: markers[class%len(markers)],
		Color:  colors[class%len(colors)],
	}
}

// Classes creates a scatter figure of the first two columns of x, one series per label.
// Centers, if given, are added as a separate series.
func Classes(name, title string, x mat.Matrix, labels []int, centers mat.Matrix) (Figure, error) {
	r, c := x.Dims()
	if r != len(labels) {
		return Figure{}, fmt.Errorf("could not align labels with data [ %d | %d ]", len(labels), r)
	}
	if c == 0 {
		return Figure{}, fmt.Errorf("no columns to plot for '%s'", name)
	}

	series := make(map[int]*Series)
	for i, l := range labels {
		s, ok := series[l]
		if !ok {
			style := ClassStyle(l)
			s = &Series{
				Name:   fmt.Sprintf("class %d", l),
				Kind:   Scatter,
				Marker: style.Marker,
				Color:  style.Color,
			}
			series[l] = s
		}
		px, py := point(x, i)
		s.X = append(s.X, px)
		s.Y = append(s.Y, py)
	}

	classes := make([]int, 0, len(series))
	for l := range series {
		classes = append(classes, l)
	}
	sort.Ints(classes)

	fig := Figure{
		Name:   name,
		Title:  title,
		XLabel: "x0",
		YLabel: "x1",
	}
	for _, l := range classes {
		fig.Series = append(fig.Series, *series[l])
	}

	if centers != nil {
		k, _ := centers.Dims()
		s := Series{
			Name:   "centers",
			Kind:   Scatter,
			Marker: "X",
			Color:  "black",
		}
		for i := 0; i < k; i++ {
			px, py := point(centers, i)
			s.X = append(s.X, px)
			s.Y = append(s.Y, py)
		}
		fig.Series = append(fig.Series, s)
	}
	return fig, nil
}

// point returns the first two coordinates of the row, single column data is drawn on the x axis.
func point(x mat.Matrix, i int) (float64, float64) {
	_, c := x.Dims()
	if c == 1 {
		return x.At(i, 0), 0
	}
	return x.At(i, 0), x.At(i, 1)
}

// Arm is a sinusoid together with the samples drawn from it.
type Arm struct {
	Name     string
	Function synth.Sinusoid
	Samples  mat.Matrix
	Style    Style
}

// Curves creates a figure with the noiseless curve and the samples of every arm.
func Curves(name, title string, arms ...Arm) Figure {
	fig := Figure{
		Name:   name,
		Title:  title,
		XLabel: "x",
		YLabel: "y",
	}
	for _, arm := range arms {
		f := arm.Function
		xx := kcmath.Linspace(f.Interval.Min, f.Interval.Max, resolution)
		fig.Series = append(fig.Series, Series{
			Name:  arm.Name,
			Kind:  Line,
			Color: arm.Style.Color,
			X:     xx,
			Y:     kcmath.Sine(f.Amplitude, f.Frequency, f.Shift, xx),
		})

		if arm.Samples == nil {
			continue
		}
		r, _ := arm.Samples.Dims()
		samples := Series{
			Name:   arm.Name + " samples",
			Kind:   Scatter,
			Marker: arm.Style.Marker,
			Color:  arm.Style.Color,
			X:      make([]float64, r),
			Y:      make([]float64, r),
		}
		for i := 0; i < r; i++ {
			samples.X[i], samples.Y[i] = point(arm.Samples, i)
		}
		fig.Series = append(fig.Series, samples)
	}
	return fig
}

// Plotter stores figures under a directory.
type Plotter struct {
	dir   string
	store storage.Persistence
}

// New creates a plotter writing to the given directory.
func New(dir string, store storage.Persistence) *Plotter {
	return &Plotter{
		dir:   dir,
		store: store,
	}
}

// Plot stores the figure, the file is named after the figure.
func (p *Plotter) Plot(fig Figure) error {
	k := storage.Key{Dir: p.dir, Label: fig.Name}
	if err := p.store.Store(k, fig); err != nil {
		return fmt.Errorf("could not store figure '%s': %w", fig.Name, err)
	}
	log.Debug().Str("figure", fig.Name).Int("series", len(fig.Series)).Msg("plotted")
	return nil
}

// Load reads a stored figure back.
func (p *Plotter) Load(name string) (Figure, error) {
	var fig Figure
	if err := p.store.Load(storage.Key{Dir: p.dir, Label: name}, &fig); err != nil {
		return Figure{}, fmt.Errorf("could not load figure '%s': %w", name, err)
	}
	return fig, nil
}
