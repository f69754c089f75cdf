/*
 * gdt.go, part of gofit.
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
	"sort"

	"gonum.org/v1/gonum/mat"

	gofit "github.com/strucbio/gofit"
)

//GDTCutoffs are the distance cutoffs, in Angstrom, of the GDT_TS score.
var GDTCutoffs = []float64{1.0, 2.0, 4.0, 8.0}

//GDTTS computes the GDT total score between two paired guide-atom
//coordinate sets: for each cutoff, the largest fraction of atom pairs
//that can be brought within the cutoff by a rigid superposition, found
//by refitting on the in-cutoff subset until it stops growing (at most 5
//refits). The score is the mean fraction over the 4 cutoffs; the
//per-cutoff fractions are returned alongside.
func GDTTS(mobile, target *mat.Dense) (float64, []float64, error) {
	n, _ := mobile.Dims()
	tn, _ := target.Dims()
	if n != tn {
		return 0, nil, fmt.Errorf("gdt: mismatched coordinate sets: %d, %d", n, tn)
	}
	fractions := make([]float64, len(GDTCutoffs))
	for k, cutoff := range GDTCutoffs {
		best := 0
		inset := allRows(n)
		for cycle := 0; cycle < 5; cycle++ {
			moved, err := gofit.Super(mobile, target, inset, inset)
			if err != nil {
				break
			}
			d2, err := gofit.DistSq(moved, target)
			if err != nil {
				return 0, nil, err
			}
			next := make([]int, 0, n)
			for i, d := range d2 {
				if d <= cutoff*cutoff {
					next = append(next, i)
				}
			}
			if len(next) > best {
				best = len(next)
			}
			if len(next) < 3 {
				//nothing inside the cutoff yet: refit on the better
				//half of the current set instead of giving up
				if len(inset) < 6 {
					break
				}
				sort.Slice(inset, func(a, b int) bool { return d2[inset[a]] < d2[inset[b]] })
				next = append([]int{}, inset[:len(inset)/2]...)
				sort.Ints(next)
			} else if len(next) == len(inset) {
				break
			}
			inset = next
		}
		fractions[k] = float64(best) / float64(n)
	}
	var sum float64
	for _, f := range fractions {
		sum += f
	}
	return sum / float64(len(fractions)), fractions, nil
}

func allRows(n int) []int {
	ret := make([]int, n)
	for i := range ret {
		ret[i] = i
	}
	return ret
}
