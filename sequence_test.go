/*
 * sequence_test.go, part of gofit.
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
	"testing"
)

func TestSequence(t *testing.T) {
	mol := testMol(t)
	guide := Guide(mol, AllAtoms(mol))
	seq, idx, err := Sequence(mol, 0, guide, nil, PepSeqCutoff)
	if err != nil {
		t.Fatal(err)
	}
	//chain A, a break marker, then chain B
	if seq != "AGSTVLKE#GGG" {
		t.Fatalf("sequence %q", seq)
	}
	if len(idx) != len(seq) {
		t.Fatalf("%d indexes for %d characters", len(idx), len(seq))
	}
	if idx[8] != -1 {
		t.Errorf("break marker should carry index -1, got %d", idx[8])
	}
	if mol.Atom(idx[0]).Molname != "ALA" || mol.Atom(idx[9]).Chain != "B" {
		t.Error("indexes do not point back to the right atoms")
	}
}

func TestSearchSeq(t *testing.T) {
	mol := testMol(t)
	guide := Guide(mol, AllAtoms(mol))
	matches, err := SearchSeq("stv", mol, 0, guide, nil, PepSeqCutoff)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 || len(matches[0]) != 3 {
		t.Fatalf("STV should match once over 3 residues: %v", matches)
	}
	for k, want := range []int{3, 4, 5} {
		if got := mol.Atom(matches[0][k]).Molid; got != want {
			t.Errorf("match atom %d: residue %d, want %d", k, got, want)
		}
	}
	//GG appears twice in chain B (overlap not counted)
	matches, err = SearchSeq("GG", mol, 0, guide, nil, PepSeqCutoff)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 {
		t.Errorf("GG in GGG should match once without overlap, got %d", len(matches))
	}
	//patterns never cross the chain break
	matches, err = SearchSeq("EG", mol, 0, guide, nil, PepSeqCutoff)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 0 {
		t.Errorf("EG spans the chain break and should not match: %v", matches)
	}
	if _, err := SearchSeq("(", mol, 0, guide, nil, PepSeqCutoff); err == nil {
		t.Error("a broken pattern should fail")
	}
}

func TestAlignSequences(t *testing.T) {
	//b misses the D of a and adds a trailing K
	pa, pb := AlignSequences("AGSDTVL", "AGSTVLK")
	if len(pa) != len(pb) {
		t.Fatal("unpaired alignment")
	}
	if len(pa) != 6 {
		t.Fatalf("expected 6 aligned columns, got %d: %v %v", len(pa), pa, pb)
	}
	for k := range pa {
		ca, cb := "AGSDTVL"[pa[k]], "AGSTVLK"[pb[k]]
		if ca != cb {
			t.Errorf("column %d pairs %c with %c", k, ca, cb)
		}
	}
}
