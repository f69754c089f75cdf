/*
 * sspick.go, part of gofit.
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

import "fmt"

//SSElement is a connected secondary structure element: a run of
//consecutive residue numbers in one chain sharing the same SS code.
type SSElement struct {
	Chain string
	SS    byte
	First int
	Last  int
}

var ssNames = map[byte]string{'S': "Strand", 'H': "Helix", 'L': "Loop"}

//String returns a printable representation like "Helix  /A/12-34".
func (e SSElement) String() string {
	name, ok := ssNames[e.SS]
	if !ok {
		name = string(e.SS)
	}
	return fmt.Sprintf("%-6s /%s/%d-%d", name, e.Chain, e.First, e.Last)
}

//SSElements returns the secondary structure elements touched by the
//guide atoms in sel, each extended to its full extent in mol.
func SSElements(mol Atomer, sel []int) []SSElement {
	type key struct {
		chain string
		ss    byte
	}
	//residue numbers per (chain, ss) over the whole molecule
	full := make(map[key]map[int]bool)
	for i := 0; i < mol.Len(); i++ {
		at := mol.Atom(i)
		if at.Het {
			continue
		}
		k := key{at.Chain, at.SS}
		if full[k] == nil {
			full[k] = make(map[int]bool)
		}
		full[k][at.Molid] = true
	}
	var elements []SSElement
	inElement := func(chain string, ss byte, resv int) bool {
		for _, e := range elements {
			if e.Chain == chain && e.SS == ss && e.First <= resv && resv <= e.Last {
				return true
			}
		}
		return false
	}
	for _, i := range Guide(mol, sel) {
		at := mol.Atom(i)
		if inElement(at.Chain, at.SS, at.Molid) {
			continue
		}
		resvs := full[key{at.Chain, at.SS}]
		first, last := at.Molid, at.Molid
		for resvs[first-1] {
			first--
		}
		for resvs[last+1] {
			last++
		}
		elements = append(elements, SSElement{Chain: at.Chain, SS: at.SS, First: first, Last: last})
	}
	return elements
}

//SSPick extends sel to whole connected secondary structure elements and
//returns the expanded selection together with the elements themselves.
func SSPick(mol Atomer, sel []int) ([]int, []SSElement) {
	elements := SSElements(mol, sel)
	var ret []int
	for i := 0; i < mol.Len(); i++ {
		at := mol.Atom(i)
		for _, e := range elements {
			if at.Chain == e.Chain && at.SS == e.SS && e.First <= at.Molid && at.Molid <= e.Last {
				ret = append(ret, i)
				break
			}
		}
	}
	return ret, elements
}
