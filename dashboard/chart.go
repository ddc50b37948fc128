// Copyright (c) 2026 BVK Chaitanya

package dashboard

import (
	"fmt"
	"image/color"
	"io"
	"os"

	"github.com/bvk/shopwatch/metamon"
	"github.com/bvk/shopwatch/pricelog"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

var (
	chartWidth  = 10 * vg.Inch
	chartHeight = 7 * vg.Inch

	eggColor    = color.RGBA{B: 255, A: 255}
	potionColor = color.RGBA{R: 204, G: 170, A: 255}
)

func newPricePlot(kind metamon.ItemKind, history []*pricelog.Observation, c color.Color) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s Lowest Price", kind.Title())
	p.X.Label.Text = "Time"
	p.Y.Label.Text = kind.Title() + "_Price"
	p.X.Tick.Marker = plot.TimeTicks{Format: "02/01 15:04"}
	p.Add(plotter.NewGrid())

	if len(history) == 0 {
		return p, nil
	}

	pts := make(plotter.XYs, len(history))
	for i, obs := range history {
		pts[i].X = float64(obs.Timestamp.Unix())
		pts[i].Y = obs.Amount.InexactFloat64()
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, fmt.Errorf("could not create %s line: %w", kind, err)
	}
	line.Color = c
	line.Width = vg.Points(1.5)
	p.Add(line)
	return p, nil
}

// WriteChart draws the egg and potion series as two vertically stacked plots
// and writes the image in PNG format.
func WriteChart(w io.Writer, egg, potion []*pricelog.Observation) error {
	eggPlot, err := newPricePlot(metamon.Egg, egg, eggColor)
	if err != nil {
		return err
	}
	potionPlot, err := newPricePlot(metamon.Potion, potion, potionColor)
	if err != nil {
		return err
	}

	// Share the time axis between the plots.
	if len(egg) != 0 && len(potion) != 0 {
		xmin, xmax := min(eggPlot.X.Min, potionPlot.X.Min), max(eggPlot.X.Max, potionPlot.X.Max)
		eggPlot.X.Min, potionPlot.X.Min = xmin, xmin
		eggPlot.X.Max, potionPlot.X.Max = xmax, xmax
	}

	img := vgimg.New(chartWidth, chartHeight)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows: 2,
		Cols: 1,
		PadX: vg.Millimeter,
		PadY: 3 * vg.Millimeter,

		PadTop:    2 * vg.Millimeter,
		PadBottom: 2 * vg.Millimeter,
		PadLeft:   2 * vg.Millimeter,
		PadRight:  4 * vg.Millimeter,
	}
	plots := [][]*plot.Plot{{eggPlot}, {potionPlot}}
	canvases := plot.Align(plots, tiles, dc)
	for i := range plots {
		plots[i][0].Draw(canvases[i][0])
	}

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(w); err != nil {
		return fmt.Errorf("could not encode chart image: %w", err)
	}
	return nil
}

// SaveChart writes the chart into a PNG file.
func SaveChart(fpath string, egg, potion []*pricelog.Observation) (status error) {
	fp, err := os.Create(fpath)
	if err != nil {
		return fmt.Errorf("could not create chart file: %w", err)
	}
	defer func() {
		if err := fp.Close(); err != nil && status == nil {
			status = err
		}
	}()
	return WriteChart(fp, egg, potion)
}
