package anysink

import (
	"fmt"
	"image/color"
	"sort"
	"sync"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// A Point is a single scalar write.
type Point struct {
	Step  int
	Value float64
}

// A History keeps every write in memory.
// It is safe to use from multiple goroutines.
type History struct {
	lock    sync.Mutex
	scalars map[string][]Point
	texts   map[string][]string
}

// NewHistory creates an empty History.
func NewHistory() *History {
	return &History{
		scalars: map[string][]Point{},
		texts:   map[string][]string{},
	}
}

// Scalar records the value.
func (h *History) Scalar(tag string, step int, value float64) {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.scalars[tag] = append(h.scalars[tag], Point{Step: step, Value: value})
}

// Text records the text.
func (h *History) Text(tag string, step int, text string) {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.texts[tag] = append(h.texts[tag], text)
}

// Series returns a copy of the points written for a tag,
// in write order.
func (h *History) Series(tag string) []Point {
	h.lock.Lock()
	defer h.lock.Unlock()
	return append([]Point{}, h.scalars[tag]...)
}

// Texts returns a copy of the text written for a tag.
func (h *History) Texts(tag string) []string {
	h.lock.Lock()
	defer h.lock.Unlock()
	return append([]string{}, h.texts[tag]...)
}

// Tags returns the sorted tags of every scalar series.
func (h *History) Tags() []string {
	h.lock.Lock()
	defer h.lock.Unlock()
	var res []string
	for tag := range h.scalars {
		res = append(res, tag)
	}
	sort.Strings(res)
	return res
}

var plotColors = []color.Color{
	color.RGBA{R: 20, G: 80, B: 200, A: 255},
	color.RGBA{R: 200, G: 30, B: 30, A: 255},
	color.RGBA{R: 40, G: 120, B: 40, A: 255},
	color.RGBA{R: 120, G: 120, B: 120, A: 255},
}

// SavePlot draws one line per tag against the step and
// saves the image to path.
// The image format follows the file extension.
// If no tags are given, every series is drawn.
func (h *History) SavePlot(path string, tags ...string) error {
	if len(tags) == 0 {
		tags = h.Tags()
	}
	p := plot.New()
	p.Title.Text = "Training loss"
	p.X.Label.Text = "step"
	p.Y.Label.Text = "loss"
	p.Add(plotter.NewGrid())

	for i, tag := range tags {
		series := h.Series(tag)
		if len(series) == 0 {
			continue
		}
		xys := make(plotter.XYs, len(series))
		for j, pt := range series {
			xys[j] = plotter.XY{X: float64(pt.Step), Y: pt.Value}
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return fmt.Errorf("error plotting %s: %w", tag, err)
		}
		line.Color = plotColors[i%len(plotColors)]
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(tag, line)
	}

	if err := p.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("error saving plot: %w", err)
	}
	return nil
}
