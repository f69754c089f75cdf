/*
 * mixture.go, part of gofit.
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

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	gofit "github.com/strucbio/gofit"
	"github.com/strucbio/gofit/mix"
)

func init() {
	rootCmd.AddCommand(promixCmd())
	rootCmd.AddCommand(intraPromixCmd())
}

//reportSegments prints one PyMOL selection per segment, with the
//membership mapped back through the guide atoms it was computed on.
func reportSegments(mol *gofit.Molecule, sel []int, res *mix.Result) {
	log.Printf("K = %d segments, BIC %.1f, log-likelihood %.1f after %d iterations",
		res.K, res.BIC, res.LogL, res.Iterations)
	for k := 0; k < res.K; k++ {
		seg := make([]int, 0, len(sel))
		for i, m := range res.Membership {
			if m == k {
				seg = append(seg, sel[i])
			}
		}
		fmt.Printf("segment %d: %d residues, sigma %.2f, weight %.2f\n",
			k+1, len(seg), res.Sigma[k], res.W[k])
		fmt.Println(gofit.PyMOLSelect(fmt.Sprintf("segment_%d", k+1), mol, seg))
	}
}

func promixCmd() *cobra.Command {
	var f pairFlags
	var k int
	cmd := &cobra.Command{
		Use:   "promix mobile.pdb target.pdb",
		Short: "decompose the difference between two structures into rigid segments",
		Long: `promix pairs the residues of the two structures and splits them into K
rigid segments, each moving between the structures with its own
superposition, by expectation maximization over a mixture of fits.
K = 0 tries 2 to 6 segments and keeps the decomposition with the best
Bayesian information criterion. Each segment comes out as a PyMOL
selection command.`,
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
			tc, err := target.SomeCoords(f.targetState, m.B)
			if err != nil {
				return err
			}
			mc, err := mobile.SomeCoords(f.mobileState, m.A)
			if err != nil {
				return err
			}
			res, err := mix.Segments([]*mat.Dense{tc, mc}, k)
			if err != nil {
				return err
			}
			reportSegments(mobile, m.A, res)
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().IntVar(&k, "k", 0, "number of segments (0 scans 2-6 by BIC)")
	return cmd
}

func intraPromixCmd() *cobra.Command {
	var chains []string
	var k int
	var conformers bool
	cmd := &cobra.Command{
		Use:   "intra-promix structure.pdb",
		Short: "decompose a multi-state ensemble into rigid segments or conformers",
		Long: `intra-promix splits the guide atoms of a multi-state structure into K
rigid segments that each move as a unit across the states. With
--conformers it instead groups the states themselves into K
conformations. K = 0 scans 2 to 6 by Bayesian information criterion.`,
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
			if conformers {
				res, err := mix.Conformers(states, k)
				if err != nil {
					return err
				}
				log.Printf("K = %d conformers, BIC %.1f after %d iterations",
					res.K, res.BIC, res.Iterations)
				for s, m := range res.Membership {
					fmt.Printf("state %d: conformer %d\n", s, m+1)
				}
				return nil
			}
			res, err := mix.Segments(states, k)
			if err != nil {
				return err
			}
			reportSegments(mol, sel, res)
			return nil
		},
	}
	fl := cmd.Flags()
	fl.StringSliceVar(&chains, "chains", nil, "chains to analyze (default all)")
	fl.IntVar(&k, "k", 0, "number of components (0 scans 2-6 by BIC)")
	fl.BoolVar(&conformers, "conformers", false, "group states instead of atoms")
	return cmd
}
