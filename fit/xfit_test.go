/*
 * xfit_test.go, part of gofit.
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

package fit

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	gofit "github.com/strucbio/gofit"
)

//helix is a synthetic alpha-helix-like trace, rigid and non-degenerate.
func helix(n int) *mat.Dense {
	c := mat.NewDense(n, 3, nil)
	for i := 0; i < n; i++ {
		angle := float64(i) * 100.0 * math.Pi / 180.0
		c.Set(i, 0, 2.3*math.Cos(angle))
		c.Set(i, 1, 2.3*math.Sin(angle))
		c.Set(i, 2, 1.5*float64(i))
	}
	return c
}

//rotZ returns coords turned by the given angle about z and shifted.
func rotZ(coords *mat.Dense, angle, dx, dy, dz float64) *mat.Dense {
	n, _ := coords.Dims()
	ret := mat.NewDense(n, 3, nil)
	s, c := math.Sin(angle), math.Cos(angle)
	for i := 0; i < n; i++ {
		x, y, z := coords.At(i, 0), coords.At(i, 1), coords.At(i, 2)
		ret.Set(i, 0, c*x-s*y+dx)
		ret.Set(i, 1, s*x+c*y+dy)
		ret.Set(i, 2, z+dz)
	}
	return ret
}

func TestXFitDownweightsOutliers(t *testing.T) {
	target := helix(30)
	mobile := rotZ(target, 0.7, 5, -3, 2)
	//2 atoms of the mobile structure go wild
	mobile.Set(10, 0, mobile.At(10, 0)+8)
	mobile.Set(20, 1, mobile.At(20, 1)-8)
	res, err := XFit(mobile, target, 0)
	if err != nil {
		t.Fatal(err)
	}
	if res.Cycles != PairCycles {
		t.Errorf("ran %d cycles, expected %d", res.Cycles, PairCycles)
	}
	if res.RMSD > 0.1 {
		t.Errorf("weighted RMSD %.3f, the core should fit almost exactly", res.RMSD)
	}
	//the displaced atoms must have lost almost all their weight
	for _, i := range []int{10, 20} {
		if res.Weights[i] > 0.01 {
			t.Errorf("outlier atom %d kept weight %.3f", i, res.Weights[i])
		}
	}
	lw := res.LogWeights()
	if lw[10] < lw[0] {
		t.Error("-ln(w) should be larger for the outlier than for core atoms")
	}
	//applying the result superimposes the core
	moved := gofit.ApplyRotTrans(mobile, res.Rot, res.T1, res.T2)
	d2, err := gofit.DistSq(moved, target)
	if err != nil {
		t.Fatal(err)
	}
	for i, d := range d2 {
		if i == 10 || i == 20 {
			continue
		}
		if math.Sqrt(d) > 0.01 {
			t.Errorf("core atom %d off by %.3f after the fit", i, math.Sqrt(d))
		}
	}
}

func TestXFitExact(t *testing.T) {
	target := helix(15)
	mobile := rotZ(target, -1.2, 1, 2, 3)
	res, err := XFit(mobile, target, 3)
	if err != nil {
		t.Fatal(err)
	}
	if res.RMSD > 1e-6 {
		t.Errorf("rigid copies should fit exactly, weighted RMSD %.2e", res.RMSD)
	}
}

func TestXFitErrors(t *testing.T) {
	if _, err := XFit(helix(10), helix(12), 0); err == nil {
		t.Error("mismatched sizes should fail")
	}
}

func TestIntraXFit(t *testing.T) {
	base := helix(20)
	states := []*mat.Dense{
		mat.DenseCopyOf(base),
		rotZ(base, 0.5, 3, 0, -1),
		rotZ(base, -0.9, -2, 4, 2),
	}
	results, w, err := IntraXFit(states, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 transformations, got %d", len(results))
	}
	if len(w) != 20 {
		t.Fatalf("expected 20 weights, got %d", len(w))
	}
	//every state must land on the frame of state 0
	for s, r := range results {
		moved := gofit.ApplyRotTrans(states[s], r.Rot, r.T1, r.T2)
		rmsd, err := gofit.RMSD(moved, states[0])
		if err != nil {
			t.Fatal(err)
		}
		if rmsd > 1e-6 {
			t.Errorf("state %d lands %.2e away from the reference frame", s, rmsd)
		}
	}
	//rigid copies have no variance, so no atom should be down-weighted
	for i, wi := range w {
		if wi < 0.99 {
			t.Errorf("atom %d down-weighted (%.3f) in a rigid ensemble", i, wi)
		}
	}
}

func TestIntraXFitErrors(t *testing.T) {
	if _, _, err := IntraXFit([]*mat.Dense{helix(10)}, 0, 0); err == nil {
		t.Error("a single state should fail")
	}
	states := []*mat.Dense{helix(10), helix(10)}
	if _, _, err := IntraXFit(states, 5, 0); err == nil {
		t.Error("an out of range reference should fail")
	}
}
