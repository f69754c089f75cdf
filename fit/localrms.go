/*
 * localrms.go, part of gofit.
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
	"fmt"
	"math"

	matrix "github.com/skelterjohn/go.matrix"
)

//DefaultWindow is the sliding window length, in residues, for LocalRMS.
const DefaultWindow = 20

//LocalRMS computes a sliding-window RMSD profile between two chains
//given as paired guide-atom coordinates (flat x,y,z triplets, one per
//residue) and the residue numbers behind each pair. For each residue
//number a window reaching up to window/2 residue numbers to either side
//is independently superimposed and its RMSD recorded under that number.
//The window bounds are residue numbers, not positions, so windows end
//at gaps in the numbering; positions whose window covers fewer than
//window/4 residues are skipped. The result maps residue number to RMSD.
func LocalRMS(mobile, target []float64, resi []int, window int) (map[int]float64, error) {
	if window <= 0 {
		window = DefaultWindow
	}
	if len(mobile) != len(target) {
		return nil, fmt.Errorf("local rms: mismatched coordinate sets: %d, %d", len(mobile), len(target))
	}
	n := len(mobile) / 3
	if len(resi) != n {
		return nil, fmt.Errorf("local rms: %d residue numbers for %d positions", len(resi), n)
	}
	if n == 0 {
		return map[int]float64{}, nil
	}
	w2 := window / 2
	w4 := window / 4
	resv2i := make(map[int]int, n)
	first, last := resi[0], resi[0]
	for i, r := range resi {
		resv2i[r] = i
		if r < first {
			first = r
		}
		if r > last {
			last = r
		}
	}
	ret := make(map[int]float64, n)
	for resv := first; resv <= last; resv++ {
		iFrom, okFrom := -1, false
		for r := resv - w2; r <= resv; r++ {
			if i, ok := resv2i[r]; ok {
				iFrom, okFrom = i, true
				break
			}
		}
		iTo, okTo := -1, false
		for r := resv + w2; r >= resv-1; r-- {
			if i, ok := resv2i[r]; ok {
				iTo, okTo = i, true
				break
			}
		}
		if !okFrom || !okTo || iTo-iFrom < w4 {
			continue
		}
		r, err := kabschRMSD(mobile[iFrom*3:(iTo+1)*3], target[iFrom*3:(iTo+1)*3])
		if err != nil {
			return nil, err
		}
		ret[resv] = r
	}
	return ret, nil
}

//kabschRMSD returns the minimum RMSD between two flat coordinate slices
//after optimal superposition, without building the rotated coordinates:
//it comes straight from the singular values of the 3x3 covariance.
func kabschRMSD(a, b []float64) (float64, error) {
	n := len(a) / 3
	ca, ea := centered(a)
	cb, eb := centered(b)
	cov := make([]float64, 9)
	for i := 0; i < n; i++ {
		for x := 0; x < 3; x++ {
			for y := 0; y < 3; y++ {
				cov[3*x+y] += ca[3*i+x] * cb[3*i+y]
			}
		}
	}
	m := matrix.MakeDenseMatrix(cov, 3, 3)
	sign := 1.0
	if m.Det() < 0 {
		sign = -1.0
	}
	_, s, _, err := m.SVD()
	if err != nil {
		return 0, err
	}
	trace := s.Get(0, 0) + s.Get(1, 1) + sign*s.Get(2, 2)
	msd := (ea + eb - 2*trace) / float64(n)
	if msd < 0 {
		msd = 0
	}
	return math.Sqrt(msd), nil
}

//centered subtracts the centroid in place on a copy and also returns the
//sum of squared norms of the centered coordinates.
func centered(coords []float64) ([]float64, float64) {
	n := len(coords) / 3
	c := make([]float64, 3)
	for i := 0; i < n; i++ {
		for a := 0; a < 3; a++ {
			c[a] += coords[3*i+a]
		}
	}
	for a := 0; a < 3; a++ {
		c[a] /= float64(n)
	}
	ret := make([]float64, len(coords))
	var e float64
	for i := 0; i < n; i++ {
		for a := 0; a < 3; a++ {
			v := coords[3*i+a] - c[a]
			ret[3*i+a] = v
			e += v * v
		}
	}
	return ret, e
}
