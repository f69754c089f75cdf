/*
 * selection.go, part of gofit.
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
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"
)

//Selections are ordered slices of atom indexes into a molecule. The
//constructors preserve atom order; the set operations preserve the order
//of their first argument.

//AllAtoms returns a selection with every atom of mol.
func AllAtoms(mol Atomer) []int {
	ret := make([]int, mol.Len())
	for i := range ret {
		ret[i] = i
	}
	return ret
}

//ByName returns the indexes of the atoms of mol with a name in names.
//If chains is not empty, atoms are also required to belong to one of the
//given chains.
func ByName(mol Atomer, names []string, chains []string) []int {
	ret := make([]int, 0, mol.Len()/4)
	for i := 0; i < mol.Len(); i++ {
		at := mol.Atom(i)
		if isInString(names, at.Name) && (len(chains) == 0 || isInString(chains, at.Chain)) {
			ret = append(ret, i)
		}
	}
	return ret
}

//ByChain returns the indexes of the atoms belonging to one of the given
//chains, or all atoms if chains is empty.
func ByChain(mol Atomer, chains []string) []int {
	if len(chains) == 0 {
		return AllAtoms(mol)
	}
	ret := make([]int, 0, mol.Len())
	for i := 0; i < mol.Len(); i++ {
		if isInString(chains, mol.Atom(i).Chain) {
			ret = append(ret, i)
		}
	}
	return ret
}

//ByResi returns, from the atoms in sel, those with a residue number
//between first and last, inclusive.
func ByResi(mol Atomer, sel []int, first, last int) []int {
	ret := make([]int, 0, len(sel))
	for _, i := range sel {
		if id := mol.Atom(i).Molid; id >= first && id <= last {
			ret = append(ret, i)
		}
	}
	return ret
}

//Polymer returns, from the atoms in sel, those not marked HETATM.
func Polymer(mol Atomer, sel []int) []int {
	ret := make([]int, 0, len(sel))
	for _, i := range sel {
		if !mol.Atom(i).Het {
			ret = append(ret, i)
		}
	}
	return ret
}

//guideNames are the representative per-residue atoms: the alpha carbon
//for amino acids and C1' for nucleotides. BB covers Martini
//coarse-grained models.
var guideNames = []string{"CA", "C1'", "BB"}

//Guide returns, from the atoms in sel, the non-HETATM guide atoms.
func Guide(mol Atomer, sel []int) []int {
	return GuideNamed(mol, sel, guideNames)
}

//GuideNamed is Guide with a caller-chosen set of guide atom names, for
//models whose representative atoms differ from the defaults.
func GuideNamed(mol Atomer, sel []int, names []string) []int {
	ret := make([]int, 0, len(sel)/4)
	for _, i := range sel {
		at := mol.Atom(i)
		if !at.Het && isInString(names, at.Name) {
			ret = append(ret, i)
		}
	}
	return ret
}

//And returns the atoms present in both a and b, in the order of a.
func And(a, b []int) []int {
	inb := make(map[int]bool, len(b))
	for _, i := range b {
		inb[i] = true
	}
	ret := make([]int, 0, len(a))
	for _, i := range a {
		if inb[i] {
			ret = append(ret, i)
		}
	}
	return ret
}

//Or returns the union of a and b: all of a, then the atoms of b not in a.
func Or(a, b []int) []int {
	ina := make(map[int]bool, len(a))
	ret := make([]int, 0, len(a)+len(b))
	for _, i := range a {
		ina[i] = true
		ret = append(ret, i)
	}
	for _, i := range b {
		if !ina[i] {
			ret = append(ret, i)
		}
	}
	return ret
}

//Not returns the atoms of a not present in b.
func Not(a, b []int) []int {
	inb := make(map[int]bool, len(b))
	for _, i := range b {
		inb[i] = true
	}
	ret := make([]int, 0, len(a))
	for _, i := range a {
		if !inb[i] {
			ret = append(ret, i)
		}
	}
	return ret
}

//Diff returns the atoms of a whose identifier (chain, residue number,
//atom name) has no counterpart in b. This is the "difference between two
//molecules" operation: a and b normally index different molecules, so
//the comparison goes through identifiers rather than positions.
func Diff(mola Atomer, a []int, molb Atomer, b []int) []int {
	type key struct {
		chain string
		molid int
		name  string
	}
	inb := make(map[key]bool, len(b))
	for _, i := range b {
		at := molb.Atom(i)
		inb[key{at.Chain, at.Molid, at.Name}] = true
	}
	ret := make([]int, 0, len(a))
	for _, i := range a {
		at := mola.Atom(i)
		if !inb[key{at.Chain, at.Molid, at.Name}] {
			ret = append(ret, i)
		}
	}
	return ret
}

//SymDiff returns both sides of the symmetric difference between the two
//selections, compared by atom identifier as in Diff.
func SymDiff(mola Atomer, a []int, molb Atomer, b []int) ([]int, []int) {
	return Diff(mola, a, molb, b), Diff(molb, b, mola, a)
}

//ByRes expands sel to every atom of every residue with at least one atom
//in sel.
func ByRes(mol Atomer, sel []int) []int {
	type key struct {
		chain string
		molid int
	}
	want := make(map[key]bool, len(sel))
	for _, i := range sel {
		at := mol.Atom(i)
		want[key{at.Chain, at.Molid}] = true
	}
	ret := make([]int, 0, len(sel)*4)
	for i := 0; i < mol.Len(); i++ {
		at := mol.Atom(i)
		if want[key{at.Chain, at.Molid}] {
			ret = append(ret, i)
		}
	}
	return ret
}

//CollapseResi returns a compact selection macro for sel at the residue
//number level, one "/chain/first-last+..." term per chain.
func CollapseResi(mol Atomer, sel []int) string {
	perchain := make(map[string]map[int]bool)
	chains := make([]string, 0, 2)
	for _, i := range sel {
		at := mol.Atom(i)
		if perchain[at.Chain] == nil {
			perchain[at.Chain] = make(map[int]bool)
			chains = append(chains, at.Chain)
		}
		perchain[at.Chain][at.Molid] = true
	}
	sort.Strings(chains)
	terms := make([]string, 0, len(chains))
	for _, ch := range chains {
		resis := make([]int, 0, len(perchain[ch]))
		for r := range perchain[ch] {
			resis = append(resis, r)
		}
		sort.Ints(resis)
		ranges := make([][2]int, 0, len(resis))
		for _, r := range resis {
			if n := len(ranges); n > 0 && r <= ranges[n-1][1]+1 {
				ranges[n-1][1] = r
			} else {
				ranges = append(ranges, [2]int{r, r})
			}
		}
		parts := make([]string, 0, len(ranges))
		for _, rg := range ranges {
			if rg[0] == rg[1] {
				parts = append(parts, fmt.Sprintf("%d", rg[0]))
			} else {
				parts = append(parts, fmt.Sprintf("%d-%d", rg[0], rg[1]))
			}
		}
		terms = append(terms, fmt.Sprintf("/%s/%s", ch, strings.Join(parts, "+")))
	}
	return strings.Join(terms, " ")
}

//PyMOLSelect returns a string of text to create a PyMOL selection named
//name with the residues covered by sel, qualified by chain so residues
//with the same number in another chain stay out.
func PyMOLSelect(name string, mol Atomer, sel []int) string {
	perchain := make(map[string][]int)
	chains := make([]string, 0, 2)
	for _, i := range sel {
		at := mol.Atom(i)
		if perchain[at.Chain] == nil {
			chains = append(chains, at.Chain)
		}
		if !isInInt(perchain[at.Chain], at.Molid) {
			perchain[at.Chain] = append(perchain[at.Chain], at.Molid)
		}
	}
	terms := make([]string, 0, len(chains))
	for _, ch := range chains {
		resis := make([]string, 0, len(perchain[ch]))
		for _, r := range perchain[ch] {
			resis = append(resis, fmt.Sprintf("%d", r))
		}
		terms = append(terms, fmt.Sprintf("(chain %s and resi %s)", ch, strings.Join(resis, "+")))
	}
	return "select " + name + ", " + strings.Join(terms, " or ")
}

//Domains partitions a chain of guide-atom coordinates into compact
//domains with a distance-matrix heuristic: any segment whose spread
//exceeds cutoff gets split at the position that minimizes the combined
//spread of the two halves, recursively, never leaving less than minsize
//residues on a side. method picks the spread statistic over the distance
//submatrices ("mean" or "max"). It returns the sorted internal split
//positions.
func Domains(coords *mat.Dense, minsize int, cutoff float64, method string) ([]int, error) {
	n, c := coords.Dims()
	if c != 3 {
		return nil, fmt.Errorf("ill-formed coordinate matrix for domain partitioning")
	}
	var f func(d *mat.Dense, a, b int) float64
	switch method {
	case "mean":
		f = submatMean
	case "max":
		f = submatMax
	default:
		return nil, fmt.Errorf("unknown partition method %q", method)
	}
	dist := distMatrix(coords)
	var splits []int
	var partition func(start, end int)
	partition = func(start, end int) {
		if f(dist, start, end) <= cutoff {
			return
		}
		best := -1
		bestval := 0.0
		for i := start + minsize; i < end-minsize; i++ {
			v := f(dist, start, i) + f(dist, i, end)
			if best < 0 || v < bestval {
				best, bestval = i, v
			}
		}
		if best < 0 {
			return
		}
		splits = append(splits, best)
		partition(start, best)
		partition(best, end)
	}
	partition(0, n)
	sort.Ints(splits)
	return splits, nil
}

//distMatrix returns the n x n matrix of pairwise distances between the
//rows of coords.
func distMatrix(coords *mat.Dense) *mat.Dense {
	n, _ := coords.Dims()
	d := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dx := coords.At(i, 0) - coords.At(j, 0)
			dy := coords.At(i, 1) - coords.At(j, 1)
			dz := coords.At(i, 2) - coords.At(j, 2)
			v := math.Sqrt(dx*dx + dy*dy + dz*dz)
			d.Set(i, j, v)
			d.Set(j, i, v)
		}
	}
	return d
}

func submatMean(d *mat.Dense, a, b int) float64 {
	if b <= a {
		return 0
	}
	var sum float64
	for i := a; i < b; i++ {
		for j := a; j < b; j++ {
			sum += d.At(i, j)
		}
	}
	return sum / float64((b-a)*(b-a))
}

func submatMax(d *mat.Dense, a, b int) float64 {
	var m float64
	for i := a; i < b; i++ {
		for j := a; j < b; j++ {
			if v := d.At(i, j); v > m {
				m = v
			}
		}
	}
	return m
}

//isInInt returns true if test is in container, false otherwise.
func isInInt(container []int, test int) bool {
	for _, i := range container {
		if test == i {
			return true
		}
	}
	return false
}

//Same as the previous, but with strings.
func isInString(container []string, test string) bool {
	for _, i := range container {
		if test == i {
			return true
		}
	}
	return false
}
