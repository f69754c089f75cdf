/*
 * pdb.go, part of gofit.
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
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"gonum.org/v1/gonum/mat"
)

//A map for assigning mass to elements.
//Note that just common "bio-elements" are present.
var symbolMass = map[string]float64{
	"H":  1.0,
	"C":  12.01,
	"O":  16.00,
	"N":  14.01,
	"P":  30.97,
	"S":  32.06,
	"Se": 78.96,
	"K":  39.1,
	"Ca": 40.08,
	"Mg": 24.30,
	"Cl": 35.45,
	"Na": 22.99,
	"Cu": 63.55,
	"Zn": 65.38,
	"Co": 58.93,
	"Fe": 55.84,
	"Mn": 54.94,
}

//symbolFromName tries to guess a chemical element symbol from a PDB atom
//name. It only deals with common bio-elements.
func symbolFromName(name string) (string, error) {
	symbol := ""
	if len(name) == 4 || (len(name) > 0 && name[0] == 'H') {
		symbol = "H"
	} else if len(name) == 0 {
		return "", fmt.Errorf("empty PDB atom name")
	} else if name[0] == 'C' {
		switch name {
		case "CU":
			symbol = "Cu"
		case "CO":
			symbol = "Co"
		case "CL":
			symbol = "Cl"
		default:
			symbol = "C"
		}
	} else if name[0] == 'N' {
		if name == "NA" {
			symbol = "Na"
		} else {
			symbol = "N"
		}
	} else if name[0] == 'O' {
		symbol = "O"
	} else if name[0] == 'P' {
		symbol = "P"
	} else if name[0] == 'S' {
		if name == "SE" {
			symbol = "Se"
		} else {
			symbol = "S"
		}
	} else if strings.HasPrefix(name, "ZN") {
		symbol = "Zn"
	}
	if symbol == "" {
		return symbol, fmt.Errorf("couldn't guess symbol from PDB name %q", name)
	}
	return symbol, nil
}

//ssRange marks the residues resi1-resi2 of a chain as helix or strand.
type ssRange struct {
	chain string
	first int
	last  int
	kind  byte
}

//readFullPDBLine parses a valid ATOM or HETATM line, returning an Atom
//plus the coordinates and b-factor, which are kept separately.
func readFullPDBLine(line string) (*Atom, []float64, float64, error) {
	if len(line) < 66 {
		return nil, nil, 0, fmt.Errorf("ATOM/HETATM line too short: %q", line)
	}
	err := make([]error, 7)
	coords := make([]float64, 3)
	atom := new(Atom)
	atom.Het = strings.HasPrefix(line, "HETATM")
	atom.ID, err[0] = strconv.Atoi(strings.TrimSpace(line[6:12]))
	atom.Name = strings.TrimSpace(line[12:16])
	atom.Molname = strings.TrimSpace(line[17:20])
	atom.Molname1 = three2OneLetter[atom.Molname]
	atom.Chain = strings.TrimSpace(line[21:22])
	atom.Molid, err[1] = strconv.Atoi(strings.TrimSpace(line[22:26]))
	coords[0], err[2] = strconv.ParseFloat(strings.TrimSpace(line[30:38]), 64)
	coords[1], err[3] = strconv.ParseFloat(strings.TrimSpace(line[38:46]), 64)
	coords[2], err[4] = strconv.ParseFloat(strings.TrimSpace(line[46:54]), 64)
	atom.Occupancy, err[5] = strconv.ParseFloat(strings.TrimSpace(line[54:60]), 64)
	var bfactor float64
	bfactor, err[6] = strconv.ParseFloat(strings.TrimSpace(line[60:66]), 64)
	if len(line) >= 78 {
		atom.Symbol = strings.TrimSpace(line[76:78])
	}
	//guess the symbol from the name if it was not in the file. No error
	//checking, the symbol just stays empty if the guess fails too.
	if atom.Symbol == "" {
		atom.Symbol, _ = symbolFromName(atom.Name)
	}
	for i := range err {
		if err[i] != nil {
			return nil, nil, 0, err[i]
		}
	}
	atom.Mass = symbolMass[atom.Symbol]
	atom.SS = 'L'
	return atom, coords, bfactor, nil
}

//readCoordsPDBLine parses a PDB line when only coordinates and b-factor
//are needed (states after the first one).
func readCoordsPDBLine(line string) ([]float64, float64, error) {
	if len(line) < 66 {
		return nil, 0, fmt.Errorf("ATOM/HETATM line too short: %q", line)
	}
	err := make([]error, 4)
	coords := make([]float64, 3)
	var bfactor float64
	coords[0], err[0] = strconv.ParseFloat(strings.TrimSpace(line[30:38]), 64)
	coords[1], err[1] = strconv.ParseFloat(strings.TrimSpace(line[38:46]), 64)
	coords[2], err[2] = strconv.ParseFloat(strings.TrimSpace(line[46:54]), 64)
	bfactor, err[3] = strconv.ParseFloat(strings.TrimSpace(line[60:66]), 64)
	for i := range err {
		if err[i] != nil {
			return nil, 0, err[i]
		}
	}
	return coords, bfactor, nil
}

//readSSRecord parses a HELIX or SHEET record into a residue range.
func readSSRecord(line string) (*ssRange, error) {
	var r ssRange
	var e1, e2 error
	if strings.HasPrefix(line, "HELIX") {
		if len(line) < 38 {
			return nil, fmt.Errorf("HELIX record too short")
		}
		r.kind = 'H'
		r.chain = strings.TrimSpace(line[19:20])
		r.first, e1 = strconv.Atoi(strings.TrimSpace(line[21:25]))
		r.last, e2 = strconv.Atoi(strings.TrimSpace(line[33:37]))
	} else {
		if len(line) < 38 {
			return nil, fmt.Errorf("SHEET record too short")
		}
		r.kind = 'S'
		r.chain = strings.TrimSpace(line[21:22])
		r.first, e1 = strconv.Atoi(strings.TrimSpace(line[22:26]))
		r.last, e2 = strconv.Atoi(strings.TrimSpace(line[33:37]))
	}
	if e1 != nil || e2 != nil {
		return nil, fmt.Errorf("malformed secondary structure record: %q", line)
	}
	return &r, nil
}

//PDBRead reads a PDB file into a Molecule. MODEL/ENDMDL records produce
//additional coordinate states; atomic data is taken from the first state
//only, as it is the same in all of them. Files ending in .gz are
//decompressed on the fly. HELIX and SHEET records fill the per-atom SS
//codes.
func PDBRead(pdbname string) (*Molecule, error) {
	pdbfile, err := os.Open(pdbname)
	if err != nil {
		return nil, err
	}
	defer pdbfile.Close()
	var r io.Reader = pdbfile
	if strings.HasSuffix(pdbname, ".gz") {
		gz, err := gzip.NewReader(pdbfile)
		if err != nil {
			return nil, fmt.Errorf("%s: %v", pdbname, err)
		}
		defer gz.Close()
		r = gz
	}
	mol, err := pdbBufferRead(bufio.NewReader(r))
	if err != nil {
		return nil, fmt.Errorf("%s: %v", pdbname, err)
	}
	return mol, nil
}

func pdbBufferRead(pdb *bufio.Reader) (*Molecule, error) {
	atoms := make([]*Atom, 0, 100)
	coords := [][]float64{make([]float64, 0, 300)}
	bfactors := [][]float64{make([]float64, 0, 100)}
	ssranges := make([]*ssRange, 0)
	firstModel := true
	contlines := 0 //count lines read to better report errors
	for {
		line, err := pdb.ReadString('\n')
		if err != nil && line == "" {
			break
		}
		contlines++
		if len(line) < 6 {
			continue
		}
		switch {
		case strings.HasPrefix(line, "ATOM") || strings.HasPrefix(line, "HETATM"):
			if firstModel {
				atom, c, b, err2 := readFullPDBLine(line)
				if err2 != nil {
					return nil, fmt.Errorf("line %d: %v", contlines, err2)
				}
				atoms = append(atoms, atom)
				coords[len(coords)-1] = append(coords[len(coords)-1], c...)
				bfactors[len(bfactors)-1] = append(bfactors[len(bfactors)-1], b)
			} else {
				c, b, err2 := readCoordsPDBLine(line)
				if err2 != nil {
					return nil, fmt.Errorf("line %d: %v", contlines, err2)
				}
				coords[len(coords)-1] = append(coords[len(coords)-1], c...)
				bfactors[len(bfactors)-1] = append(bfactors[len(bfactors)-1], b)
			}
		case strings.HasPrefix(line, "HELIX") || strings.HasPrefix(line, "SHEET"):
			ss, err2 := readSSRecord(line)
			if err2 != nil {
				return nil, fmt.Errorf("line %d: %v", contlines, err2)
			}
			ssranges = append(ssranges, ss)
		case strings.HasPrefix(line, "ENDMDL"):
			if len(coords[len(coords)-1]) > 0 {
				firstModel = false
				coords = append(coords, make([]float64, 0, len(coords[0])))
				bfactors = append(bfactors, make([]float64, 0, len(bfactors[0])))
			}
		}
		if err != nil {
			break
		}
	}
	//an ENDMDL at the end of the file leaves an empty trailing state
	if len(coords[len(coords)-1]) == 0 {
		coords = coords[:len(coords)-1]
		bfactors = bfactors[:len(bfactors)-1]
	}
	if len(atoms) == 0 {
		return nil, fmt.Errorf("no ATOM/HETATM records found")
	}
	for _, ss := range ssranges {
		for _, at := range atoms {
			if at.Chain == ss.chain && at.Molid >= ss.first && at.Molid <= ss.last {
				at.SS = ss.kind
			}
		}
	}
	states := make([]*mat.Dense, 0, len(coords))
	for i, c := range coords {
		if len(c) != 3*len(atoms) {
			return nil, fmt.Errorf("state %d has %d coordinates for %d atoms", i+1, len(c)/3, len(atoms))
		}
		states = append(states, mat.NewDense(len(atoms), 3, c))
	}
	return NewMolecule(&Topology{Atoms: atoms}, states, bfactors)
}

//PDBWrite writes the atoms in atomlist (all atoms if nil) of mol to
//pdbname, every state, with MODEL/ENDMDL records when there is more than
//one. If ter is false no TER records are written: several external
//alignment programs stop reading at the first TER.
func PDBWrite(pdbname string, mol *Molecule, atomlist []int, ter bool) error {
	out, err := os.Create(pdbname)
	if err != nil {
		return err
	}
	defer out.Close()
	return pdbBufferWrite(out, mol, atomlist, ter)
}

func pdbBufferWrite(w io.Writer, mol *Molecule, atomlist []int, ter bool) error {
	if atomlist == nil {
		atomlist = make([]int, mol.Len())
		for i := range atomlist {
			atomlist[i] = i
		}
	}
	out := bufio.NewWriter(w)
	multi := mol.NStates() > 1
	for state := 0; state < mol.NStates(); state++ {
		if multi {
			fmt.Fprintf(out, "MODEL     %4d\n", state+1)
		}
		prevchain := ""
		for k, j := range atomlist {
			if j >= mol.Len() {
				return fmt.Errorf("atom requested (number %d, value %d) out of range", k, j)
			}
			at := mol.Atom(j)
			if ter && prevchain != "" && at.Chain != prevchain {
				fmt.Fprintln(out, "TER")
			}
			prevchain = at.Chain
			x, y, z := mol.Coord(j, state)
			record := "ATOM"
			if at.Het {
				record = "HETATM"
			}
			//short atom names start one column later
			name := at.Name
			if len(name) < 4 {
				name = " " + name
			}
			fmt.Fprintf(out, "%-6s%5d %-4s %-3s %1s%4d    %8.3f%8.3f%8.3f%6.2f%6.2f          %2s\n",
				record, at.ID, name, at.Molname, at.Chain, at.Molid, x, y, z,
				at.Occupancy, mol.Bfactors[state][j], at.Symbol)
		}
		if ter {
			fmt.Fprintln(out, "TER")
		}
		if multi {
			fmt.Fprintln(out, "ENDMDL")
		}
	}
	fmt.Fprintln(out, "END")
	return out.Flush()
}
