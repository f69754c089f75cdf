/*
 * helpers.go, part of gofit.
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

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	gofit "github.com/strucbio/gofit"
)

//pairFlags are the flags shared by every command that fits one structure
//on another.
type pairFlags struct {
	mobileChains []string
	targetChains []string
	mobileState  int
	targetState  int
	match        string
	out          string
}

func (f *pairFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringSliceVar(&f.mobileChains, "mobile-chains", nil, "chains of the mobile structure to use (default all)")
	fl.StringSliceVar(&f.targetChains, "target-chains", nil, "chains of the target structure to use (default all)")
	fl.IntVar(&f.mobileState, "mobile-state", 0, "state of the mobile structure the fit is computed on")
	fl.IntVar(&f.targetState, "target-state", 0, "state of the target structure the fit is computed on")
	fl.StringVar(&f.match, "match", "align", "atom pairing: align, resi, ids or none")
	fl.StringVarP(&f.out, "out", "o", "", "write the transformed mobile structure to this PDB file")
}

//loadMolecule reads a structure and reports the read in the log.
func loadMolecule(path string) (*gofit.Molecule, error) {
	mol, err := gofit.PDBRead(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	return mol, nil
}

//chainSel returns the polymer atoms of the given chains, or of the whole
//molecule when chains is empty.
func chainSel(mol *gofit.Molecule, chains []string) []int {
	return gofit.Polymer(mol, gofit.ByChain(mol, chains))
}

//guideSel returns the guide atoms of sel, using the configured guide
//atom names when the config sets any.
func guideSel(mol *gofit.Molecule, sel []int) []int {
	if cfg != nil && len(cfg.Fit.GuideAtoms) > 0 {
		return gofit.GuideNamed(mol, sel, cfg.Fit.GuideAtoms)
	}
	return gofit.Guide(mol, sel)
}

//pairMatch builds the atom pairing between two molecules from the shared
//fit flags.
func pairMatch(mobile *gofit.Molecule, target *gofit.Molecule, f *pairFlags) (*gofit.Match, error) {
	return gofit.NewMatch(
		mobile, chainSel(mobile, f.mobileChains), f.mobileState,
		target, chainSel(target, f.targetChains), f.targetState,
		f.match)
}

//writeOut saves the (transformed) mobile molecule if an output path was
//given.
func writeOut(path string, mol *gofit.Molecule) error {
	if path == "" {
		return nil
	}
	return gofit.PDBWrite(path, mol, gofit.AllAtoms(mol), true)
}
