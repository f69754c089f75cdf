/*
 * mixture_test.go, part of gofit.
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

package mix

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

//trace is a synthetic helical backbone trace.
func trace(n int) *mat.Dense {
	c := mat.NewDense(n, 3, nil)
	for i := 0; i < n; i++ {
		angle := float64(i) * 100.0 * math.Pi / 180.0
		c.Set(i, 0, 2.3*math.Cos(angle))
		c.Set(i, 1, 2.3*math.Sin(angle))
		c.Set(i, 2, 1.5*float64(i))
	}
	return c
}

//hinged returns a copy of coords with the atoms from pivot on rotated by
//angle about the z axis through the pivot atom.
func hinged(coords *mat.Dense, pivot int, angle float64) *mat.Dense {
	n, _ := coords.Dims()
	ret := mat.DenseCopyOf(coords)
	px, py := coords.At(pivot, 0), coords.At(pivot, 1)
	s, c := math.Sin(angle), math.Cos(angle)
	for i := pivot; i < n; i++ {
		x, y := coords.At(i, 0)-px, coords.At(i, 1)-py
		ret.Set(i, 0, c*x-s*y+px)
		ret.Set(i, 1, s*x+c*y+py)
	}
	return ret
}

func TestSegmentsHinge(t *testing.T) {
	//two states of a 40-residue chain with a hinge at residue 20: the
	//two halves are rigid on their own but not together
	base := trace(40)
	bent := hinged(base, 20, 1.4)
	res, err := Segments([]*mat.Dense{base, bent}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if res.K != 2 {
		t.Fatalf("K = %d", res.K)
	}
	if len(res.Membership) != 40 {
		t.Fatalf("%d memberships for 40 atoms", len(res.Membership))
	}
	//atoms deep in each half must be in one segment each; a couple of
	//residues at the hinge may go either way
	first := res.Membership[5]
	second := res.Membership[35]
	if first == second {
		t.Fatal("the two halves ended in the same segment")
	}
	for i := 0; i < 15; i++ {
		if res.Membership[i] != first {
			t.Errorf("atom %d left the first segment", i)
		}
	}
	for i := 25; i < 40; i++ {
		if res.Membership[i] != second {
			t.Errorf("atom %d left the second segment", i)
		}
	}
	if res.Iterations < 1 || res.LogL == 0 {
		t.Errorf("suspicious EM run: %+v", res)
	}
}

func TestSegmentsScan(t *testing.T) {
	base := trace(40)
	bent := hinged(base, 20, 1.4)
	res, err := Segments([]*mat.Dense{base, bent}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if res.K < 2 || res.K > KScanMax {
		t.Fatalf("scan returned K = %d", res.K)
	}
	if res.BIC == 0 {
		t.Error("scan should report the BIC of the winner")
	}
}

func TestSegmentsErrors(t *testing.T) {
	if _, err := Segments([]*mat.Dense{trace(10)}, 2); err == nil {
		t.Error("a single state should fail")
	}
	states := []*mat.Dense{trace(10), trace(10)}
	if _, err := Segments(states, 9); err == nil {
		t.Error("more segments than the atoms can hold should fail")
	}
}

func TestConformers(t *testing.T) {
	//6 states in 2 clearly distinct conformations, shuffled in order
	straight := trace(30)
	bent := hinged(straight, 15, 1.8)
	jitter := func(c *mat.Dense, seed float64) *mat.Dense {
		n, _ := c.Dims()
		ret := mat.DenseCopyOf(c)
		for i := 0; i < n; i++ {
			ret.Set(i, 0, c.At(i, 0)+0.05*math.Sin(seed+float64(i)))
		}
		return ret
	}
	states := []*mat.Dense{
		jitter(straight, 1), jitter(bent, 2), jitter(straight, 3),
		jitter(bent, 4), jitter(straight, 5), jitter(bent, 6),
	}
	res, err := Conformers(states, 2)
	if err != nil {
		t.Fatal(err)
	}
	if res.K != 2 {
		t.Fatalf("K = %d", res.K)
	}
	a := res.Membership[0]
	for _, s := range []int{2, 4} {
		if res.Membership[s] != a {
			t.Errorf("state %d split from the other straight states", s)
		}
	}
	b := res.Membership[1]
	if b == a {
		t.Fatal("straight and bent states ended in the same conformer")
	}
	for _, s := range []int{3, 5} {
		if res.Membership[s] != b {
			t.Errorf("state %d split from the other bent states", s)
		}
	}
}

func TestConformersErrors(t *testing.T) {
	states := []*mat.Dense{trace(10), trace(10), trace(10)}
	if _, err := Conformers(states, 2); err == nil {
		t.Error("3 states are too few to cluster")
	}
}
