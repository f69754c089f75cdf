/*
 * sequence.go, part of gofit.
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
	"regexp"
	"strings"
)

//A map between 3-letter names for aminoacidic residues and the
//corresponding 1-letter names.
var three2OneLetter = map[string]byte{
	"SER": 'S',
	"THR": 'T',
	"ASN": 'N',
	"GLN": 'Q',
	"SEC": 'U', //Selenocysteine!
	"CYS": 'C',
	"GLY": 'G',
	"PRO": 'P',
	"ALA": 'A',
	"VAL": 'V',
	"ILE": 'I',
	"LEU": 'L',
	"MET": 'M',
	"PHE": 'F',
	"TYR": 'Y',
	"TRP": 'W',
	"ARG": 'R',
	"HIS": 'H',
	"LYS": 'K',
	"ASP": 'D',
	"GLU": 'E',
}

//The same for nucleotide residue names, which are their own 1-letter code.
var nuc2OneLetter = map[string]byte{
	"A": 'A', "C": 'C', "G": 'G', "T": 'T', "U": 'U',
	"DA": 'A', "DC": 'C', "DG": 'G', "DT": 'T',
}

//NucOneLetter returns the nucleotide residue name map, for sequence
//searches over nucleic acids.
func NucOneLetter() map[string]byte {
	return nuc2OneLetter
}

//PepSeqCutoff is the default guide-atom distance over which two
//consecutive residues are considered a chain break for sequence searches.
//NucSeqCutoff is the equivalent for nucleic acids.
const (
	PepSeqCutoff = 4.0
	NucSeqCutoff = 6.5
)

//Sequence walks the guide atoms in sel, in order, and returns the
//1-letter sequence plus a parallel slice with the atom index behind each
//character. Unknown residues and chain breaks (consecutive guide atoms
//further apart than cutoff) become '#', which matches no pattern; break
//positions carry a -1 index. The coordinates of the given state decide
//the breaks.
func Sequence(mol *Molecule, state int, sel []int, oneLetter map[string]byte, cutoff float64) (string, []int, error) {
	if state < 0 || state >= mol.NStates() {
		return "", nil, fmt.Errorf("state %d out of range", state)
	}
	if oneLetter == nil {
		oneLetter = three2OneLetter
	}
	var seq strings.Builder
	idx := make([]int, 0, len(sel)+4)
	px, py, pz := 0.0, 0.0, 0.0
	first := true
	for _, i := range sel {
		x, y, z := mol.Coord(i, state)
		dx, dy, dz := x-px, y-py, z-pz
		if !first && math.Sqrt(dx*dx+dy*dy+dz*dz) > cutoff {
			seq.WriteByte('#')
			idx = append(idx, -1)
		}
		first = false
		c, ok := oneLetter[mol.Atom(i).Molname]
		if !ok {
			c = '#'
		}
		seq.WriteByte(c)
		idx = append(idx, i)
		px, py, pz = x, y, z
	}
	return seq.String(), idx, nil
}

//SearchSeq finds a residue sequence pattern (a regular expression over
//the 1-letter codes) in the guide atoms of sel and returns one guide-atom
//selection per match. Patterns do not span chain breaks unless matched by
//a wildcard that covers '#'.
func SearchSeq(pattern string, mol *Molecule, state int, sel []int, oneLetter map[string]byte, cutoff float64) ([][]int, error) {
	re, err := regexp.Compile(strings.ToUpper(pattern))
	if err != nil {
		return nil, err
	}
	seq, idx, err := Sequence(mol, state, sel, oneLetter, cutoff)
	if err != nil {
		return nil, err
	}
	var matches [][]int
	for _, span := range re.FindAllStringIndex(seq, -1) {
		m := make([]int, 0, span[1]-span[0])
		for _, i := range idx[span[0]:span[1]] {
			if i >= 0 {
				m = append(m, i)
			}
		}
		matches = append(matches, m)
	}
	return matches, nil
}

//AlignSequences aligns two 1-letter sequences with the Needleman-Wunsch
//algorithm (identity scoring) and returns the paired positions of the
//gap-free columns, as parallel slices of indexes into a and b.
func AlignSequences(a, b string) ([]int, []int) {
	const (
		match    = 2
		mismatch = -1
		gap      = -2
	)
	n, m := len(a), len(b)
	//score matrix, rows correspond to residues in a
	h := make([][]int, n+1)
	for i := range h {
		h[i] = make([]int, m+1)
		h[i][0] = gap * i
	}
	for j := 0; j <= m; j++ {
		h[0][j] = gap * j
	}
	score := func(i, j int) int {
		if a[i] == b[j] && a[i] != '#' {
			return match
		}
		return mismatch
	}
	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			h[i][j] = max3(
				h[i-1][j-1]+score(i-1, j-1),
				h[i-1][j]+gap,
				h[i][j-1]+gap)
		}
	}
	//traceback from (n, m)
	pa := make([]int, 0, min2(n, m))
	pb := make([]int, 0, min2(n, m))
	i, j := n, m
	for i > 0 && j > 0 {
		switch h[i][j] {
		case h[i-1][j-1] + score(i-1, j-1):
			pa = append(pa, i-1)
			pb = append(pb, j-1)
			i, j = i-1, j-1
		case h[i-1][j] + gap:
			i--
		default:
			j--
		}
	}
	//reverse into sequence order
	for l, r := 0, len(pa)-1; l < r; l, r = l+1, r-1 {
		pa[l], pa[r] = pa[r], pa[l]
		pb[l], pb[r] = pb[r], pb[l]
	}
	return pa, pb
}

func max3(a, b, c int) int {
	if a >= b && a >= c {
		return a
	}
	if b >= c {
		return b
	}
	return c
}

func min2(a, b int) int {
	if a < b {
		return a
	}
	return b
}
