/*
 * molecule.go, part of gofit.
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

	"gonum.org/v1/gonum/mat"
)

//Molecule contains all the info for a molecule in many states. The data
//expected to change between states, coordinates and b-factors, is stored
//separately from the atomic info. Each coordinate state is an Nx3 matrix.
type Molecule struct {
	*Topology
	Coords   []*mat.Dense
	Bfactors [][]float64
}

//NewMolecule makes a molecule from a topology and a set of coordinate
//states. Nil b-factor slices are filled with zeros.
func NewMolecule(top *Topology, coords []*mat.Dense, bfactors [][]float64) (*Molecule, error) {
	if top == nil {
		return nil, fmt.Errorf("supplied a nil topology")
	}
	if len(coords) == 0 {
		return nil, fmt.Errorf("supplied no coordinate states")
	}
	mol := &Molecule{Topology: top, Coords: coords, Bfactors: bfactors}
	if err := mol.Corrupted(); err != nil {
		return nil, err
	}
	return mol, nil
}

//Corrupted checks whether the coordinates match the number of atoms in
//every state. Missing or short b-factor columns are filled with zeros
//instead of considered errors.
func (M *Molecule) Corrupted() error {
	if M.Bfactors == nil {
		M.Bfactors = make([][]float64, 0, len(M.Coords))
	}
	for i := range M.Coords {
		r, c := M.Coords[i].Dims()
		if M.Len() != r || c != 3 {
			return fmt.Errorf("inconsistent coordinates/atoms in state %d: atoms %d, coords %d", i, M.Len(), r)
		}
		if len(M.Bfactors) <= i {
			M.Bfactors = append(M.Bfactors, make([]float64, M.Len()))
		} else if len(M.Bfactors[i]) < M.Len() {
			M.Bfactors[i] = make([]float64, M.Len())
		}
	}
	return nil
}

//NStates returns the number of coordinate states in the molecule.
func (M *Molecule) NStates() int {
	return len(M.Coords)
}

//AddState appends a coordinate state and its b-factor column. A nil
//bfactors gets replaced by zeros. Panics on dimension mismatch, as a
//wrong state means the program itself is wrong.
func (M *Molecule) AddState(coords *mat.Dense, bfactors []float64) {
	if coords == nil {
		panic("attempted to add a nil state")
	}
	r, c := coords.Dims()
	if c != 3 || r != M.Len() {
		panic(fmt.Sprintf("malformed coordinate state: %dx%d for %d atoms", r, c, M.Len()))
	}
	if bfactors == nil {
		bfactors = make([]float64, r)
	}
	M.Coords = append(M.Coords, coords)
	M.Bfactors = append(M.Bfactors, bfactors)
}

//Coord returns the x, y, z coordinates for atom i in the given state.
//Panics if out of range.
func (M *Molecule) Coord(i, state int) (float64, float64, float64) {
	if state >= len(M.Coords) {
		panic(fmt.Sprintf("state requested (%d) out of range", state))
	}
	c := M.Coords[state]
	return c.At(i, 0), c.At(i, 1), c.At(i, 2)
}

//Copy returns a deep copy of the molecule, coordinates included.
func (M *Molecule) Copy() *Molecule {
	mol := new(Molecule)
	mol.Topology = M.CopyAtoms()
	mol.Coords = make([]*mat.Dense, 0, len(M.Coords))
	mol.Bfactors = make([][]float64, 0, len(M.Bfactors))
	for key, val := range M.Coords {
		mol.Coords = append(mol.Coords, mat.DenseCopyOf(val))
		b := make([]float64, len(M.Bfactors[key]))
		copy(b, M.Bfactors[key])
		mol.Bfactors = append(mol.Bfactors, b)
	}
	return mol
}

//SomeCoords returns a new matrix with the coordinates of the atoms in
//atomlist, in that order, for the given state.
func (M *Molecule) SomeCoords(state int, atomlist []int) (*mat.Dense, error) {
	if state < 0 || state >= len(M.Coords) {
		return nil, fmt.Errorf("state %d out of range", state)
	}
	return SomeRows(M.Coords[state], atomlist)
}

//SetBfactors writes vals into the b-factor column of the given state for
//the atoms in atomlist.
func (M *Molecule) SetBfactors(state int, atomlist []int, vals []float64) error {
	if state < 0 || state >= len(M.Bfactors) {
		return fmt.Errorf("state %d out of range", state)
	}
	if len(atomlist) != len(vals) {
		return fmt.Errorf("mismatched atoms (%d) and values (%d)", len(atomlist), len(vals))
	}
	for k, j := range atomlist {
		if j >= M.Len() {
			return fmt.Errorf("atom %d out of range", j)
		}
		M.Bfactors[state][j] = vals[k]
	}
	return nil
}

//FillBfactors sets the whole b-factor column of state to def, then writes
//the per-residue values in byresi into every atom of the matching residue.
//Used to store per-residue scores, local RMSD profiles among them.
func (M *Molecule) FillBfactors(state int, byresi map[int]float64, def float64) error {
	if state < 0 || state >= len(M.Bfactors) {
		return fmt.Errorf("state %d out of range", state)
	}
	for i := 0; i < M.Len(); i++ {
		if v, ok := byresi[M.Atom(i).Molid]; ok {
			M.Bfactors[state][i] = v
		} else {
			M.Bfactors[state][i] = def
		}
	}
	return nil
}

//TransformState applies the transform (X + t1)R + t2 to every atom of the
//given state, in place. A state of -1 transforms all states.
func (M *Molecule) TransformState(state int, R *mat.Dense, t1, t2 []float64) error {
	if state >= len(M.Coords) {
		return fmt.Errorf("state %d out of range", state)
	}
	if state < 0 {
		for i := range M.Coords {
			M.Coords[i] = ApplyRotTrans(M.Coords[i], R, t1, t2)
		}
		return nil
	}
	M.Coords[state] = ApplyRotTrans(M.Coords[state], R, t1, t2)
	return nil
}

//Ensemble returns the coordinates of the atoms in atomlist for every
//state, as one matrix per state.
func (M *Molecule) Ensemble(atomlist []int) ([]*mat.Dense, error) {
	ret := make([]*mat.Dense, 0, len(M.Coords))
	for i := range M.Coords {
		c, err := M.SomeCoords(i, atomlist)
		if err != nil {
			return nil, err
		}
		ret = append(ret, c)
	}
	return ret, nil
}

//SomeRows returns a new matrix with the rows of src listed in rowlist,
//in that order.
func SomeRows(src *mat.Dense, rowlist []int) (*mat.Dense, error) {
	r, c := src.Dims()
	ret := mat.NewDense(len(rowlist), c, nil)
	for k, j := range rowlist {
		if j < 0 || j >= r {
			return nil, fmt.Errorf("row requested (number %d, value %d) out of range", k, j)
		}
		for l := 0; l < c; l++ {
			ret.Set(k, l, src.At(j, l))
		}
	}
	return ret, nil
}
