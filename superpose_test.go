/*
 * superpose_test.go, part of gofit.
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

package gofit

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestSuperBetweenStates(t *testing.T) {
	//the 2 states of the test file differ by a rigid transformation, so
	//a fit should bring them within numerical noise.
	mol, err := PDBRead("test/2models.pdb")
	if err != nil {
		t.Fatal(err)
	}
	moved, err := Super(mol.Coords[1], mol.Coords[0], nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	rmsd, err := RMSD(moved, mol.Coords[0])
	if err != nil {
		t.Fatal(err)
	}
	if rmsd > 1e-6 {
		t.Errorf("states should superimpose exactly, RMSD %.2e", rmsd)
	}
}

func TestRotTransKnownRotation(t *testing.T) {
	//90 degrees about z plus a translation, on a non-degenerate set
	x := mat.NewDense(4, 3, []float64{
		0, 0, 0,
		1, 0, 0,
		0, 2, 0,
		0.5, 0.5, 3,
	})
	y := mat.NewDense(4, 3, nil)
	for i := 0; i < 4; i++ {
		y.Set(i, 0, -x.At(i, 1)+7)
		y.Set(i, 1, x.At(i, 0)-2)
		y.Set(i, 2, x.At(i, 2)+1)
	}
	rot, t1, t2, err := RotTrans(x, y, nil)
	if err != nil {
		t.Fatal(err)
	}
	if d := mat.Det(rot); math.Abs(d-1) > 1e-9 {
		t.Errorf("rotation determinant %.6f, want 1", d)
	}
	moved := ApplyRotTrans(x, rot, t1, t2)
	rmsd, err := RMSD(moved, y)
	if err != nil {
		t.Fatal(err)
	}
	if rmsd > 1e-9 {
		t.Errorf("known rotation not recovered, RMSD %.2e", rmsd)
	}
}

func TestRotTransNoReflection(t *testing.T) {
	//y is a mirror image of x; the best proper rotation must still have
	//determinant +1.
	x := mat.NewDense(4, 3, []float64{
		0, 0, 0,
		1, 0, 0,
		0, 2, 0,
		0.5, 0.5, 3,
	})
	y := mat.NewDense(4, 3, nil)
	for i := 0; i < 4; i++ {
		y.Set(i, 0, x.At(i, 0))
		y.Set(i, 1, x.At(i, 1))
		y.Set(i, 2, -x.At(i, 2))
	}
	rot, _, _, err := RotTrans(x, y, nil)
	if err != nil {
		t.Fatal(err)
	}
	if d := mat.Det(rot); math.Abs(d-1) > 1e-9 {
		t.Errorf("got an improper rotation, determinant %.6f", d)
	}
}

func TestRotTransWeighted(t *testing.T) {
	//with all the weight on the first 4 atoms, the fifth may misbehave
	//without disturbing the fit.
	x := mat.NewDense(5, 3, []float64{
		0, 0, 0,
		1, 0, 0,
		0, 2, 0,
		0.5, 0.5, 3,
		4, 4, 4,
	})
	y := mat.DenseCopyOf(x)
	y.Set(4, 0, 40) //an outlier
	w := []float64{1, 1, 1, 1, 1e-9}
	rot, t1, t2, err := RotTrans(x, y, w)
	if err != nil {
		t.Fatal(err)
	}
	moved := ApplyRotTrans(x, rot, t1, t2)
	for i := 0; i < 4; i++ {
		for a := 0; a < 3; a++ {
			if math.Abs(moved.At(i, a)-y.At(i, a)) > 1e-4 {
				t.Fatalf("weighted fit moved a full-weight atom: %v", mat.Formatted(moved))
			}
		}
	}
}

func TestRotTransErrors(t *testing.T) {
	x := mat.NewDense(4, 3, nil)
	y := mat.NewDense(5, 3, nil)
	if _, _, _, err := RotTrans(x, y, nil); err == nil {
		t.Error("mismatched sizes should fail")
	}
	if _, _, _, err := RotTrans(x, mat.NewDense(4, 3, nil), []float64{1}); err == nil {
		t.Error("wrong weight count should fail")
	}
	small := mat.NewDense(2, 3, []float64{0, 0, 0, 1, 1, 1})
	if _, _, _, err := RotTrans(small, small, nil); err == nil {
		t.Error("2 atoms should not be enough")
	}
}

func TestSuperRMSDAndDistSq(t *testing.T) {
	x := mat.NewDense(3, 3, []float64{0, 0, 0, 1, 0, 0, 0, 1, 0})
	y := mat.NewDense(3, 3, []float64{5, 5, 5, 6, 5, 5, 5, 6, 5}) //x translated
	r, err := SuperRMSD(x, y)
	if err != nil {
		t.Fatal(err)
	}
	if r > 1e-9 {
		t.Errorf("translated copies should fit exactly, RMSD %.2e", r)
	}
	d2, err := DistSq(x, y)
	if err != nil {
		t.Fatal(err)
	}
	for i, d := range d2 {
		if math.Abs(d-75) > 1e-9 {
			t.Errorf("atom %d: squared distance %.3f, want 75", i, d)
		}
	}
}
