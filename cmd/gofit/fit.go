/*
 * fit.go, part of gofit.
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
	"log"
	"sort"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	gofit "github.com/strucbio/gofit"
	"github.com/strucbio/gofit/fit"
	"github.com/strucbio/gofit/rmsplot"
)

func init() {
	rootCmd.AddCommand(xfitCmd())
	rootCmd.AddCommand(intraXFitCmd())
	rootCmd.AddCommand(intraCenterCmd())
	rootCmd.AddCommand(localRMSCmd())
	rootCmd.AddCommand(gdtCmd())
	rootCmd.AddCommand(extraFitCmd())
}

func xfitCmd() *cobra.Command {
	var f pairFlags
	var cycles int
	var storeWeights bool
	cmd := &cobra.Command{
		Use:   "xfit mobile.pdb target.pdb",
		Short: "weighted superposition with iterative outlier down-weighting",
		Long: `xfit superimposes the mobile structure on the target with an
iteratively reweighted fit: atoms that refuse to superimpose lose weight
in the following cycles, so the fit converges on the rigid common core.
With --store-weights the mobile b-factor column gets -ln(weight), a
flexibility score, for each fitted residue.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mobile, err := loadMolecule(args[0])
			if err != nil {
				return err
			}
			target, err := loadMolecule(args[1])
			if err != nil {
				return err
			}
			m, err := pairMatch(mobile, target, &f)
			if err != nil {
				return err
			}
			mc, err := mobile.SomeCoords(f.mobileState, m.A)
			if err != nil {
				return err
			}
			tc, err := target.SomeCoords(f.targetState, m.B)
			if err != nil {
				return err
			}
			if cycles == 0 {
				cycles = cfg.Fit.Cycles
			}
			r, err := fit.XFit(mc, tc, cycles)
			if err != nil {
				return err
			}
			if err := mobile.TransformState(-1, r.Rot, r.T1, r.T2); err != nil {
				return err
			}
			fmt.Printf("weighted RMSD after %d cycles: %.3f over %d atoms\n", r.Cycles, r.RMSD, m.Len())
			if storeWeights {
				byresi := make(map[int]float64, m.Len())
				for k, lw := range r.LogWeights() {
					byresi[mobile.Atom(m.A[k]).Molid] = lw
				}
				if err := mobile.FillBfactors(f.mobileState, byresi, -1); err != nil {
					return err
				}
			}
			return writeOut(f.out, mobile)
		},
	}
	f.register(cmd)
	cmd.Flags().IntVar(&cycles, "cycles", 0, "reweighting cycles")
	cmd.Flags().BoolVar(&storeWeights, "store-weights", false, "store -ln(weight) in the mobile b-factor column")
	return cmd
}

func intraXFitCmd() *cobra.Command {
	var chains []string
	var ref, cycles int
	var out string
	var storeWeights bool
	cmd := &cobra.Command{
		Use:   "intra-xfit structure.pdb",
		Short: "weighted superposition of all states on their evolving mean",
		Long: `intra-xfit fits every state of a multi-state structure to the mean
structure of the ensemble, reweighting atoms by the inverse of their
variance across states and updating the mean each cycle. The reference
state keeps its original frame.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mol, err := loadMolecule(args[0])
			if err != nil {
				return err
			}
			sel := guideSel(mol, chainSel(mol, chains))
			states, err := mol.Ensemble(sel)
			if err != nil {
				return err
			}
			results, w, err := fit.IntraXFit(states, ref, cycles)
			if err != nil {
				return err
			}
			for s, r := range results {
				if err := mol.TransformState(s, r.Rot, r.T1, r.T2); err != nil {
					return err
				}
				log.Printf("state %d: weighted RMSD to the mean %.3f", s, r.RMSD)
			}
			if storeWeights {
				byresi := make(map[int]float64, len(sel))
				for k, wk := range w {
					byresi[mol.Atom(sel[k]).Molid] = wk
				}
				for s := 0; s < mol.NStates(); s++ {
					if err := mol.FillBfactors(s, byresi, -1); err != nil {
						return err
					}
				}
			}
			return writeOut(out, mol)
		},
	}
	fl := cmd.Flags()
	fl.StringSliceVar(&chains, "chains", nil, "chains to fit on (default all)")
	fl.IntVar(&ref, "ref", 0, "state that keeps its frame")
	fl.IntVar(&cycles, "cycles", 0, "reweighting cycles")
	fl.StringVarP(&out, "out", "o", "", "write the superposed states to this PDB file")
	fl.BoolVar(&storeWeights, "store-weights", false, "store the final weights in the b-factor columns")
	return cmd
}

func intraCenterCmd() *cobra.Command {
	var chains []string
	var ref int
	var out string
	cmd := &cobra.Command{
		Use:   "intra-center structure.pdb",
		Short: "translate all states so their centers of geometry coincide",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mol, err := loadMolecule(args[0])
			if err != nil {
				return err
			}
			sel := chainSel(mol, chains)
			if len(sel) == 0 {
				return fmt.Errorf("empty selection")
			}
			refCenter, err := selCenter(mol, ref, sel)
			if err != nil {
				return err
			}
			identity := mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
			zero := []float64{0, 0, 0}
			for s := 0; s < mol.NStates(); s++ {
				c, err := selCenter(mol, s, sel)
				if err != nil {
					return err
				}
				t := []float64{refCenter[0] - c[0], refCenter[1] - c[1], refCenter[2] - c[2]}
				if err := mol.TransformState(s, identity, zero, t); err != nil {
					return err
				}
			}
			return writeOut(out, mol)
		},
	}
	fl := cmd.Flags()
	fl.StringSliceVar(&chains, "chains", nil, "chains that define the center (default all)")
	fl.IntVar(&ref, "ref", 0, "state whose center the others move to")
	fl.StringVarP(&out, "out", "o", "", "write the centered states to this PDB file")
	return cmd
}

func selCenter(mol *gofit.Molecule, state int, sel []int) ([]float64, error) {
	coords, err := mol.SomeCoords(state, sel)
	if err != nil {
		return nil, err
	}
	n, _ := coords.Dims()
	c := make([]float64, 3)
	for i := 0; i < n; i++ {
		for a := 0; a < 3; a++ {
			c[a] += coords.At(i, a)
		}
	}
	for a := 0; a < 3; a++ {
		c[a] /= float64(n)
	}
	return c, nil
}

func localRMSCmd() *cobra.Command {
	var f pairFlags
	var window int
	var plotfile string
	cmd := &cobra.Command{
		Use:   "local-rms mobile.pdb target.pdb",
		Short: "sliding-window local RMSD profile between two structures",
		Long: `local-rms pairs the residues of the two structures, superimposes a
sliding window of residues centered on each position and reports the
RMSD of that window under the residue number at its center. The profile
goes to standard output, optionally to a plot, and with --out to the
b-factor column of a copy of the mobile structure (unprofiled residues
get -1).`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mobile, err := loadMolecule(args[0])
			if err != nil {
				return err
			}
			target, err := loadMolecule(args[1])
			if err != nil {
				return err
			}
			m, err := pairMatch(mobile, target, &f)
			if err != nil {
				return err
			}
			mflat, resi, err := flatCoords(mobile, f.mobileState, m.A)
			if err != nil {
				return err
			}
			tflat, _, err := flatCoords(target, f.targetState, m.B)
			if err != nil {
				return err
			}
			if window == 0 {
				window = cfg.Fit.Window
			}
			profile, err := fit.LocalRMS(mflat, tflat, resi, window)
			if err != nil {
				return err
			}
			for _, r := range sortedKeys(profile) {
				fmt.Printf("%5d %8.3f\n", r, profile[r])
			}
			if plotfile != "" {
				if err := rmsplot.Profile(profile, "Local RMSD", plotfile); err != nil {
					return err
				}
			}
			if f.out != "" {
				if err := mobile.FillBfactors(f.mobileState, profile, -1); err != nil {
					return err
				}
			}
			return writeOut(f.out, mobile)
		},
	}
	f.register(cmd)
	cmd.Flags().IntVar(&window, "window", 0, "window length in residues")
	cmd.Flags().StringVar(&plotfile, "plot", "", "plot the profile to this image file")
	return cmd
}

//flatCoords returns the coordinates of the selected atoms as flat x,y,z
//triplets plus their residue numbers.
func flatCoords(mol *gofit.Molecule, state int, sel []int) ([]float64, []int, error) {
	coords, err := mol.SomeCoords(state, sel)
	if err != nil {
		return nil, nil, err
	}
	n, _ := coords.Dims()
	flat := make([]float64, 0, 3*n)
	resi := make([]int, 0, n)
	for i := 0; i < n; i++ {
		flat = append(flat, coords.At(i, 0), coords.At(i, 1), coords.At(i, 2))
		resi = append(resi, mol.Atom(sel[i]).Molid)
	}
	return flat, resi, nil
}

func sortedKeys(m map[int]float64) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func gdtCmd() *cobra.Command {
	var f pairFlags
	cmd := &cobra.Command{
		Use:   "gdt-ts mobile.pdb target.pdb",
		Short: "GDT total score between two structures",
		Long: `gdt-ts pairs the residues of the two structures and reports the GDT
total score: the mean, over the cutoffs 1, 2, 4 and 8 Angstrom, of the
largest fraction of residue pairs a rigid superposition brings within
the cutoff.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mobile, err := loadMolecule(args[0])
			if err != nil {
				return err
			}
			target, err := loadMolecule(args[1])
			if err != nil {
				return err
			}
			m, err := pairMatch(mobile, target, &f)
			if err != nil {
				return err
			}
			mc, err := mobile.SomeCoords(f.mobileState, m.A)
			if err != nil {
				return err
			}
			tc, err := target.SomeCoords(f.targetState, m.B)
			if err != nil {
				return err
			}
			score, fractions, err := fit.GDTTS(mc, tc)
			if err != nil {
				return err
			}
			for k, cutoff := range fit.GDTCutoffs {
				fmt.Printf("GDT P%-2.0f: %.4f\n", cutoff, fractions[k])
			}
			fmt.Printf("GDT_TS: %.4f\n", score)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func extraFitCmd() *cobra.Command {
	var f pairFlags
	cmd := &cobra.Command{
		Use:   "extra-fit mobile.pdb target.pdb",
		Short: "plain superposition of one structure on another",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mobile, err := loadMolecule(args[0])
			if err != nil {
				return err
			}
			target, err := loadMolecule(args[1])
			if err != nil {
				return err
			}
			m, err := pairMatch(mobile, target, &f)
			if err != nil {
				return err
			}
			rmsd, err := fit.ExtraFit(mobile, f.mobileState, target, f.targetState, m)
			if err != nil {
				return err
			}
			fmt.Printf("RMSD over %d atoms: %.3f\n", m.Len(), rmsd)
			return writeOut(f.out, mobile)
		},
	}
	f.register(cmd)
	return cmd
}
