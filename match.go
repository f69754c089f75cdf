/*
 * match.go, part of gofit.
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
	"strings"
)

//A Match holds two equal-length atom index lists, one into a mobile and
//one into a target molecule, pairing the atoms to use in a fit.
type Match struct {
	A []int //mobile
	B []int //target
}

//Len returns the number of atom pairs in the match.
func (m *Match) Len() int {
	return len(m.A)
}

//NewMatch pairs atoms between two selections so they can be
//superimposed. mode chooses the pairing:
//
//  "none"  pair the selections in order, which must have equal lengths.
//  "ids"   pair atoms with the same atom ID.
//  "resi"  pair guide atoms with the same chain and residue number.
//  "align" pair guide atoms through a sequence alignment of the two
//          selections, so the residue numbering does not need to agree.
//
//The coordinates of the given states decide chain breaks in "align" mode.
func NewMatch(mobile *Molecule, mobileSel []int, mobileState int, target *Molecule, targetSel []int, targetState int, mode string) (*Match, error) {
	switch mode {
	case "none":
		if len(mobileSel) != len(targetSel) {
			return nil, fmt.Errorf("unequal selections (%d vs %d atoms) cannot be paired in order", len(mobileSel), len(targetSel))
		}
		return &Match{A: append([]int{}, mobileSel...), B: append([]int{}, targetSel...)}, nil
	case "ids":
		byid := make(map[int]int, len(targetSel))
		for _, i := range targetSel {
			byid[target.Atom(i).ID] = i
		}
		m := &Match{}
		for _, i := range mobileSel {
			if j, ok := byid[mobile.Atom(i).ID]; ok {
				m.A = append(m.A, i)
				m.B = append(m.B, j)
			}
		}
		if m.Len() == 0 {
			return nil, fmt.Errorf("no atoms share an ID between the two selections")
		}
		return m, nil
	case "resi":
		type key struct {
			chain string
			molid int
		}
		byresi := make(map[key]int, len(targetSel))
		for _, i := range Guide(target, targetSel) {
			at := target.Atom(i)
			byresi[key{at.Chain, at.Molid}] = i
		}
		m := &Match{}
		for _, i := range Guide(mobile, mobileSel) {
			at := mobile.Atom(i)
			if j, ok := byresi[key{at.Chain, at.Molid}]; ok {
				m.A = append(m.A, i)
				m.B = append(m.B, j)
			}
		}
		if m.Len() == 0 {
			return nil, fmt.Errorf("no guide atoms share a chain and residue number between the two selections")
		}
		return m, nil
	case "align":
		ga := Guide(mobile, mobileSel)
		gb := Guide(target, targetSel)
		seqa, idxa, err := Sequence(mobile, mobileState, ga, nil, PepSeqCutoff)
		if err != nil {
			return nil, err
		}
		seqb, idxb, err := Sequence(target, targetState, gb, nil, PepSeqCutoff)
		if err != nil {
			return nil, err
		}
		pa, pb := AlignSequences(seqa, seqb)
		m := &Match{}
		for k := range pa {
			i, j := idxa[pa[k]], idxb[pb[k]]
			if i >= 0 && j >= 0 {
				m.A = append(m.A, i)
				m.B = append(m.B, j)
			}
		}
		if m.Len() == 0 {
			return nil, fmt.Errorf("the sequence alignment produced no residue pairs")
		}
		return m, nil
	}
	return nil, fmt.Errorf("unknown matching mode %q", mode)
}

//MatchFromAlignment builds a Match from the 3-line alignment printed by
//a structural alignment program: the mobile sequence with gaps, a marker
//line, and the target sequence with gaps. selA and selB are the guide
//atom selections whose residues the two sequence lines describe, in
//order. If matchedOnly is true, only columns whose marker is not blank
//are kept; otherwise every gap-free column becomes a pair.
func MatchFromAlignment(selA []int, rowA, marks, rowB string, selB []int, matchedOnly bool) (*Match, error) {
	if len(rowA) != len(rowB) {
		return nil, fmt.Errorf("alignment rows have different lengths (%d vs %d)", len(rowA), len(rowB))
	}
	m := &Match{}
	ia, ib := 0, 0
	for col := 0; col < len(rowA); col++ {
		ga := rowA[col] == '-'
		gb := rowB[col] == '-'
		keep := !ga && !gb
		if keep && matchedOnly && (col >= len(marks) || marks[col] == ' ') {
			keep = false
		}
		if keep {
			if ia >= len(selA) || ib >= len(selB) {
				return nil, fmt.Errorf("alignment rows name more residues than the selections hold")
			}
			m.A = append(m.A, selA[ia])
			m.B = append(m.B, selB[ib])
		}
		if !ga {
			ia++
		}
		if !gb {
			ib++
		}
	}
	if strings.Count(rowA, "-") != len(rowA)-ia {
		return nil, fmt.Errorf("malformed alignment row")
	}
	if m.Len() == 0 {
		return nil, fmt.Errorf("the alignment has no usable columns")
	}
	return m, nil
}
