/*
 * superpose.go, part of gofit.
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
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

//RotTrans computes the best rotation and translations to superimpose the
//coordinates in test on those of templa, optionally weighted per atom by
//w (nil means unweighted). It returns a rotation matrix and 2 translation
//vectors: to perform the superposition, t1 has to be added first to the
//moving matrix, then the rotation applied, and finally t2 added
//(ApplyRotTrans does exactly that). The rotation comes from the SVD of
//the weighted covariance, with the usual determinant correction so a
//reflection is never returned.
func RotTrans(test, templa *mat.Dense, w []float64) (*mat.Dense, []float64, []float64, error) {
	tsr, tsc := test.Dims()
	tmr, tmc := templa.Dims()
	if tmr != tsr || tmc != 3 || tsc != 3 {
		return nil, nil, nil, fmt.Errorf("RotTrans: ill-formed matrices (%dx%d vs %dx%d)", tsr, tsc, tmr, tmc)
	}
	if tsr < 3 {
		return nil, nil, nil, fmt.Errorf("RotTrans: need at least 3 atoms, got %d", tsr)
	}
	if w != nil && len(w) != tsr {
		return nil, nil, nil, fmt.Errorf("RotTrans: %d weights for %d atoms", len(w), tsr)
	}
	ctest, ccest := center(test, w)
	ctempla, cctempla := center(templa, w)
	//weighted covariance C = A^T W B, a 3x3
	cov := mat.NewDense(3, 3, nil)
	for i := 0; i < tsr; i++ {
		wi := 1.0
		if w != nil {
			wi = w[i]
		}
		for a := 0; a < 3; a++ {
			for b := 0; b < 3; b++ {
				cov.Set(a, b, cov.At(a, b)+wi*ctest.At(i, a)*ctempla.At(i, b))
			}
		}
	}
	var svd mat.SVD
	if ok := svd.Factorize(cov, mat.SVDFull); !ok {
		return nil, nil, nil, fmt.Errorf("RotTrans: SVD failed")
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	rot := mat.NewDense(3, 3, nil)
	rot.Mul(&u, v.T())
	//determinant correction: flip the axis of the smallest singular
	//value instead of returning a specular image.
	if mat.Det(rot) < 0 {
		d := mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, -1})
		var tmp mat.Dense
		tmp.Mul(&u, d)
		rot.Mul(&tmp, v.T())
	}
	t1 := []float64{-ccest[0], -ccest[1], -ccest[2]}
	return rot, t1, cctempla, nil
}

//center returns coords with the (weighted) centroid subtracted, plus the
//centroid itself.
func center(coords *mat.Dense, w []float64) (*mat.Dense, []float64) {
	r, _ := coords.Dims()
	c := make([]float64, 3)
	var wsum float64
	for i := 0; i < r; i++ {
		wi := 1.0
		if w != nil {
			wi = w[i]
		}
		wsum += wi
		for a := 0; a < 3; a++ {
			c[a] += wi * coords.At(i, a)
		}
	}
	for a := 0; a < 3; a++ {
		c[a] /= wsum
	}
	ret := mat.NewDense(r, 3, nil)
	for i := 0; i < r; i++ {
		for a := 0; a < 3; a++ {
			ret.Set(i, a, coords.At(i, a)-c[a])
		}
	}
	return ret, c
}

//ApplyRotTrans returns (X + t1) R + t2 as a new matrix.
func ApplyRotTrans(X *mat.Dense, R *mat.Dense, t1, t2 []float64) *mat.Dense {
	r, _ := X.Dims()
	moved := mat.NewDense(r, 3, nil)
	for i := 0; i < r; i++ {
		for a := 0; a < 3; a++ {
			moved.Set(i, a, X.At(i, a)+t1[a])
		}
	}
	var rotated mat.Dense
	rotated.Mul(moved, R)
	for i := 0; i < r; i++ {
		for a := 0; a < 3; a++ {
			rotated.Set(i, a, rotated.At(i, a)+t2[a])
		}
	}
	return &rotated
}

//Super determines the best rotation and translation to superimpose the
//coordinates in test listed in testlst on the atoms of templa listed in
//templalst, then applies them to the whole test matrix and returns the
//result. testlst and templalst must have the same number of elements.
//Nil lists mean all rows.
func Super(test, templa *mat.Dense, testlst, templalst []int) (*mat.Dense, error) {
	ctest := test
	ctempla := templa
	var err error
	if testlst != nil {
		if ctest, err = SomeRows(test, testlst); err != nil {
			return nil, err
		}
	}
	if templalst != nil {
		if ctempla, err = SomeRows(templa, templalst); err != nil {
			return nil, err
		}
	}
	tr, _ := ctest.Dims()
	mr, _ := ctempla.Dims()
	if tr != mr {
		return nil, fmt.Errorf("mismatched template and test atom numbers: %d, %d", mr, tr)
	}
	rot, t1, t2, err := RotTrans(ctest, ctempla, nil)
	if err != nil {
		return nil, err
	}
	return ApplyRotTrans(test, rot, t1, t2), nil
}

//RMSD returns the root mean square deviation between the two coordinate
//sets, which must have equal dimensions. No fitting is performed.
func RMSD(test, templa *mat.Dense) (float64, error) {
	tsr, tsc := test.Dims()
	tmr, tmc := templa.Dims()
	if tmr != tsr || tmc != 3 || tsc != 3 {
		return 0, fmt.Errorf("ill-formed matrices for RMSD calculation")
	}
	var sum float64
	for i := 0; i < tsr; i++ {
		for a := 0; a < 3; a++ {
			d := test.At(i, a) - templa.At(i, a)
			sum += d * d
		}
	}
	return math.Sqrt(sum / float64(tsr)), nil
}

//SuperRMSD returns the RMSD between test and templa after optimal
//superposition.
func SuperRMSD(test, templa *mat.Dense) (float64, error) {
	rot, t1, t2, err := RotTrans(test, templa, nil)
	if err != nil {
		return 0, err
	}
	return RMSD(ApplyRotTrans(test, rot, t1, t2), templa)
}

//DistSq returns the per-atom squared distances between two coordinate
//sets of equal dimensions.
func DistSq(test, templa *mat.Dense) ([]float64, error) {
	tsr, _ := test.Dims()
	tmr, _ := templa.Dims()
	if tsr != tmr {
		return nil, fmt.Errorf("mismatched coordinate sets: %d, %d", tsr, tmr)
	}
	ret := make([]float64, tsr)
	for i := 0; i < tsr; i++ {
		for a := 0; a < 3; a++ {
			d := test.At(i, a) - templa.At(i, a)
			ret[i] += d * d
		}
	}
	return ret, nil
}
