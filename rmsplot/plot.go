/*
 * plot.go, part of gofit.
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

//Package rmsplot draws per-residue score profiles (local RMSD, fit
//weights) to image files.
package rmsplot

import (
	"fmt"
	"image/color"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

//Profile plots the per-residue values against residue number and saves
//the result to filename, with the format taken from the extension (png,
//svg, pdf among others). Gaps larger than one residue break the line.
func Profile(values map[int]float64, title, filename string) error {
	if len(values) == 0 {
		return fmt.Errorf("nothing to plot")
	}
	resis := make([]int, 0, len(values))
	for r := range values {
		resis = append(resis, r)
	}
	sort.Ints(resis)
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Residue"
	p.Y.Label.Text = "RMSD (A)"
	//one line per contiguous run of residues
	var segment plotter.XYs
	flush := func() error {
		if len(segment) == 0 {
			return nil
		}
		line, err := plotter.NewLine(segment)
		if err != nil {
			return err
		}
		line.Color = color.RGBA{B: 180, A: 255}
		p.Add(line)
		segment = nil
		return nil
	}
	prev := resis[0] - 1
	for _, r := range resis {
		if r != prev+1 {
			if err := flush(); err != nil {
				return err
			}
		}
		segment = append(segment, plotter.XY{X: float64(r), Y: values[r]})
		prev = r
	}
	if err := flush(); err != nil {
		return err
	}
	return p.Save(20*vg.Centimeter, 10*vg.Centimeter, filename)
}

//MultiProfile plots several named profiles on the same axes, with a
//legend, and saves the result to filename.
func MultiProfile(profiles map[string]map[int]float64, title, filename string) error {
	if len(profiles) == 0 {
		return fmt.Errorf("nothing to plot")
	}
	names := make([]string, 0, len(profiles))
	for n := range profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Residue"
	p.Y.Label.Text = "RMSD (A)"
	palette := []color.RGBA{
		{B: 180, A: 255},
		{R: 200, A: 255},
		{G: 150, A: 255},
		{R: 180, B: 180, A: 255},
		{R: 200, G: 130, A: 255},
	}
	for k, name := range names {
		values := profiles[name]
		resis := make([]int, 0, len(values))
		for r := range values {
			resis = append(resis, r)
		}
		sort.Ints(resis)
		pts := make(plotter.XYs, 0, len(resis))
		for _, r := range resis {
			pts = append(pts, plotter.XY{X: float64(r), Y: values[r]})
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.Color = palette[k%len(palette)]
		p.Add(line)
		p.Legend.Add(name, line)
	}
	p.Legend.Top = true
	return p.Save(20*vg.Centimeter, 10*vg.Centimeter, filename)
}
