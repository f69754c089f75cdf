/*
 * atom.go, part of gofit.
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

//Atom contains the per-atom data read from a PDB file, except for the
//coordinates and b-factors, which change between states and live in the
//Molecule.
type Atom struct {
	Name      string
	ID        int
	Molname   string //the 3-letter residue name
	Molname1  byte   //the 1-letter residue name, 0 if there is none
	Molid     int    //residue number
	Chain     string
	Mass      float64
	Occupancy float64
	Symbol    string
	Het       bool //HETATM record in the PDB file?
	SS        byte //'H' helix, 'S' strand, 'L' loop/other
}

//Copy returns a copy of the Atom object.
func (A *Atom) Copy() *Atom {
	if A == nil {
		panic("attempted to copy a nil atom")
	}
	at := *A
	return &at
}

//Atomer is the basic interface for a topology.
type Atomer interface {
	//Atom returns the Atom corresponding to the index i. Panics if out
	//of range.
	Atom(i int) *Atom

	Len() int
}

//Topology contains the information about a molecule which is not expected
//to change between states.
type Topology struct {
	Atoms []*Atom
}

//Atom returns the Atom corresponding to the index i of the Atom slice in
//the Topology. Panics if out of range.
func (T *Topology) Atom(i int) *Atom {
	if i >= T.Len() {
		panic("Topology: requested Atom out of bounds")
	}
	return T.Atoms[i]
}

//Len returns the number of atoms in the topology.
func (T *Topology) Len() int {
	return len(T.Atoms)
}

//CopyAtoms returns a deep copy of the topology.
func (T *Topology) CopyAtoms() *Topology {
	top := new(Topology)
	top.Atoms = make([]*Atom, T.Len())
	for key, val := range T.Atoms {
		top.Atoms[key] = val.Copy()
	}
	return top
}

//SomeAtoms returns a new Topology with the atoms at the positions given
//in atomlist, in that order. Changes to the atoms affect the original.
func (T *Topology) SomeAtoms(atomlist []int) (*Topology, error) {
	ret := make([]*Atom, 0, len(atomlist))
	for k, j := range atomlist {
		if j > T.Len()-1 {
			return nil, fmt.Errorf("atom requested (number %d, value %d) out of range", k, j)
		}
		ret = append(ret, T.Atoms[j])
	}
	return &Topology{Atoms: ret}, nil
}
