/*
 * pdb_test.go, part of gofit.
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
	"path/filepath"
	"testing"
)

func TestPDBRead(t *testing.T) {
	mol, err := PDBRead("test/2models.pdb")
	if err != nil {
		t.Fatal(err)
	}
	if mol.NStates() != 2 {
		t.Fatalf("expected 2 states, got %d", mol.NStates())
	}
	if mol.Len() != 14 {
		t.Fatalf("expected 14 atoms, got %d", mol.Len())
	}
	first := mol.Atom(0)
	if first.Name != "N" || first.Molname != "ALA" || first.Chain != "A" || first.Molid != 1 {
		t.Errorf("bad first atom: %+v", first)
	}
	if first.Symbol != "N" || first.Mass != 14.01 {
		t.Errorf("bad symbol/mass on first atom: %q %.2f", first.Symbol, first.Mass)
	}
	last := mol.Atom(mol.Len() - 1)
	if !last.Het || last.Molname != "HOH" {
		t.Errorf("expected a water HETATM last, got %+v", last)
	}
	//both states share the topology but not the coordinates
	x0, _, _ := mol.Coord(1, 0)
	x1, y1, _ := mol.Coord(1, 1)
	if x0 != 0.0 {
		t.Errorf("CA of residue 1 should be at the origin in state 0, x = %.3f", x0)
	}
	if x1 != 10.0 || y1 != 5.0 {
		t.Errorf("state 1 not read: CA of residue 1 at %.3f, %.3f", x1, y1)
	}
	if mol.Bfactors[0][0] != 10.0 {
		t.Errorf("b-factor not read: %.2f", mol.Bfactors[0][0])
	}
}

func TestPDBSecondaryStructure(t *testing.T) {
	mol, err := PDBRead("test/2models.pdb")
	if err != nil {
		t.Fatal(err)
	}
	want := map[int]byte{1: 'L', 2: 'H', 3: 'H', 4: 'H', 5: 'H', 6: 'S', 7: 'S', 8: 'S'}
	for _, i := range Guide(mol, ByChain(mol, []string{"A"})) {
		at := mol.Atom(i)
		if at.SS != want[at.Molid] {
			t.Errorf("residue %d: SS %q, want %q", at.Molid, at.SS, want[at.Molid])
		}
	}
	//the HELIX record names chain A only
	for _, i := range ByChain(mol, []string{"B"}) {
		if mol.Atom(i).SS != 'L' {
			t.Errorf("chain B atom %d should be loop", i)
		}
	}
}

func TestPDBWriteRead(t *testing.T) {
	mol, err := PDBRead("test/2models.pdb")
	if err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(t.TempDir(), "rewritten.pdb")
	if err := PDBWrite(out, mol, nil, true); err != nil {
		t.Fatal(err)
	}
	mol2, err := PDBRead(out)
	if err != nil {
		t.Fatal(err)
	}
	if mol2.Len() != mol.Len() || mol2.NStates() != mol.NStates() {
		t.Fatalf("roundtrip changed sizes: %d/%d atoms, %d/%d states",
			mol2.Len(), mol.Len(), mol2.NStates(), mol.NStates())
	}
	for i := 0; i < mol.Len(); i++ {
		a, b := mol.Atom(i), mol2.Atom(i)
		if a.Name != b.Name || a.Molname != b.Molname || a.Chain != b.Chain || a.Molid != b.Molid || a.Het != b.Het {
			t.Errorf("atom %d changed in roundtrip: %+v vs %+v", i, a, b)
		}
		for s := 0; s < mol.NStates(); s++ {
			x, y, z := mol.Coord(i, s)
			x2, y2, z2 := mol2.Coord(i, s)
			if x != x2 || y != y2 || z != z2 {
				t.Errorf("atom %d state %d moved in roundtrip", i, s)
			}
		}
	}
}

func TestPDBWriteSelection(t *testing.T) {
	mol, err := PDBRead("test/2models.pdb")
	if err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(t.TempDir(), "chainA.pdb")
	sel := ByChain(mol, []string{"A"})
	if err := PDBWrite(out, mol, sel, false); err != nil {
		t.Fatal(err)
	}
	mol2, err := PDBRead(out)
	if err != nil {
		t.Fatal(err)
	}
	if mol2.Len() != len(sel) {
		t.Fatalf("expected %d atoms, got %d", len(sel), mol2.Len())
	}
	for i := 0; i < mol2.Len(); i++ {
		if mol2.Atom(i).Chain != "A" {
			t.Errorf("atom %d not in chain A", i)
		}
	}
}
