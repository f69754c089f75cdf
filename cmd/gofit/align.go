/*
 * align.go, part of gofit.
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
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	gofit "github.com/strucbio/gofit"
	"github.com/strucbio/gofit/extern"
	"github.com/strucbio/gofit/fit"
)

func init() {
	rootCmd.AddCommand(tmalignCmd())
	rootCmd.AddCommand(dyndomCmd())
	rootCmd.AddCommand(theseusCmd())
	rootCmd.AddCommand(intraTheseusCmd())
	rootCmd.AddCommand(prosmartCmd())
	rootCmd.AddCommand(alignAllCmd())
}

func tmalignCmd() *cobra.Command {
	var f pairFlags
	var extraArgs []string
	cmd := &cobra.Command{
		Use:   "tmalign mobile.pdb target.pdb",
		Short: "superimpose two structures with TMalign",
		Long: `tmalign runs the TMalign executable on the two structures, applies the
resulting transformation to every state of the mobile one and reports
the TM-score and the RMSD over the aligned residue pairs.`,
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
			res, err := extern.TMalign(context.Background(), cfg.Exes.TMalign,
				mobile, f.mobileState, target, f.targetState, extraArgs, cfg.Preserve)
			if err != nil {
				return err
			}
			if err := mobile.TransformState(-1, res.Rot, res.T1, res.T2); err != nil {
				return err
			}
			fmt.Printf("TM-score: %.4f\n", res.TMScore)
			//the alignment rows describe the guide atoms of the files
			//TMalign got, written in molecule order
			ga := guideSel(mobile, gofit.Polymer(mobile, gofit.AllAtoms(mobile)))
			gb := guideSel(target, gofit.Polymer(target, gofit.AllAtoms(target)))
			m, err := gofit.MatchFromAlignment(ga, res.RowMobile, res.Marks, res.RowTarget, gb, false)
			if err != nil {
				log.Printf("cannot pair the reported alignment: %v", err)
				return writeOut(f.out, mobile)
			}
			rmsd, err := pairedRMSD(mobile, f.mobileState, target, f.targetState, m)
			if err != nil {
				return err
			}
			fmt.Printf("RMSD over %d aligned residues: %.3f\n", m.Len(), rmsd)
			return writeOut(f.out, mobile)
		},
	}
	f.register(cmd)
	cmd.Flags().StringSliceVar(&extraArgs, "args", nil, "extra arguments passed to the executable")
	return cmd
}

//pairedRMSD is the RMSD over a match, without further fitting.
func pairedRMSD(mobile *gofit.Molecule, mobileState int, target *gofit.Molecule, targetState int, m *gofit.Match) (float64, error) {
	mc, err := mobile.SomeCoords(mobileState, m.A)
	if err != nil {
		return 0, err
	}
	tc, err := target.SomeCoords(targetState, m.B)
	if err != nil {
		return 0, err
	}
	return gofit.RMSD(mc, tc)
}

func dyndomCmd() *cobra.Command {
	var state1, state2, window, domain int
	var chain string
	var ratio float64
	cmd := &cobra.Command{
		Use:   "dyndom structure.pdb",
		Short: "find dynamic domains between two states with DynDom",
		Long: `dyndom runs the DynDom program on two states of a multi-state
structure and reports the rigid domains it finds, their hinge (bending)
residues and a PyMOL selection command for each.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mol, err := loadMolecule(args[0])
			if err != nil {
				return err
			}
			if mol.NStates() < 2 {
				return fmt.Errorf("%s has a single state, dyndom needs two", args[0])
			}
			res, err := extern.DynDom(context.Background(), cfg.Exes.DynDom,
				mol, state1, state2, chain, window, domain, ratio, cfg.Preserve)
			if err != nil {
				return err
			}
			for _, d := range res.Domains {
				kind := "moving"
				if d.Fixed {
					kind = "fixed"
				}
				fmt.Printf("domain %d (%s, %s): residues %s\n", d.Number, d.Color, kind, d.Residues)
				fmt.Printf("select domain_%d, chain %s and resi %s\n", d.Number, chain, d.Residues)
			}
			for i, b := range res.Bending {
				fmt.Printf("select hinge_%d, chain %s and resi %s\n", i+1, chain, b)
			}
			return nil
		},
	}
	fl := cmd.Flags()
	fl.IntVar(&state1, "state1", 0, "first state")
	fl.IntVar(&state2, "state2", 1, "second state")
	fl.StringVar(&chain, "chain", "A", "chain to analyze")
	fl.IntVar(&window, "window", 0, "DynDom smoothing window (default 5)")
	fl.IntVar(&domain, "domain", 0, "DynDom minimum domain size (default 20)")
	fl.Float64Var(&ratio, "ratio", 0, "DynDom displacement ratio (default 1.0)")
	return cmd
}

func theseusCmd() *cobra.Command {
	var f pairFlags
	var cov bool
	var cycles int
	cmd := &cobra.Command{
		Use:   "theseus mobile.pdb target.pdb",
		Short: "maximum-likelihood superposition of two structures with THESEUS",
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
			//THESEUS wants the same atoms on both sides, so the files
			//get only the matched ones
			m, err := pairMatch(mobile, target, &f)
			if err != nil {
				return err
			}
			tr, err := extern.Theseus(context.Background(), cfg.Exes.Theseus,
				mobile, f.mobileState, m.A, target, f.targetState, m.B, cov, cycles, cfg.Preserve)
			if err != nil {
				return err
			}
			if err := mobile.TransformState(-1, tr.Rot, tr.T1, tr.T2); err != nil {
				return err
			}
			log.Printf("superimposed %s on %s over %d paired atoms", args[0], args[1], m.Len())
			return writeOut(f.out, mobile)
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVar(&cov, "cov", false, "use the full covariance model")
	cmd.Flags().IntVar(&cycles, "cycles", 0, "maximum likelihood iterations (default 200)")
	return cmd
}

func intraTheseusCmd() *cobra.Command {
	var chains []string
	var out string
	var cov bool
	var cycles, state int
	cmd := &cobra.Command{
		Use:   "intra-theseus structure.pdb",
		Short: "maximum-likelihood superposition of all states with THESEUS",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mol, err := loadMolecule(args[0])
			if err != nil {
				return err
			}
			sel := chainSel(mol, chains)
			transforms, err := extern.IntraTheseus(context.Background(), cfg.Exes.Theseus,
				mol, sel, state, cov, cycles, cfg.Preserve)
			if err != nil {
				return err
			}
			for s, tr := range transforms {
				if err := mol.TransformState(s, tr.Rot, tr.T1, tr.T2); err != nil {
					return err
				}
			}
			log.Printf("superimposed %d states", mol.NStates())
			return writeOut(out, mol)
		},
	}
	fl := cmd.Flags()
	fl.StringSliceVar(&chains, "chains", nil, "chains to fit on (default all)")
	fl.StringVarP(&out, "out", "o", "", "write the superposed states to this PDB file")
	fl.BoolVar(&cov, "cov", false, "use the full covariance model")
	fl.IntVar(&cycles, "cycles", 0, "maximum likelihood iterations (default 200)")
	fl.IntVar(&state, "state", 0, "state whose frame is kept (-1 for the mean frame)")
	return cmd
}

func prosmartCmd() *cobra.Command {
	var f pairFlags
	var scores bool
	cmd := &cobra.Command{
		Use:   "prosmart mobile.pdb target.pdb",
		Short: "superimpose two structures with ProSMART",
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
			res, err := extern.ProSMART(context.Background(), cfg.Exes.ProSMART,
				mobile, f.mobileState, target, f.targetState, cfg.Preserve)
			if err != nil {
				return err
			}
			if err := mobile.TransformState(-1, res.Rot, res.T1, res.T2); err != nil {
				return err
			}
			log.Printf("superimposed %s on %s", args[0], args[1])
			if scores {
				for _, p := range res.Pairs {
					fmt.Printf("%s/%d -> %s/%d %8.4f\n",
						p.ChainMobile, p.ResiMobile, p.ChainTarget, p.ResiTarget, p.Score)
				}
				log.Printf("aligned %d residue pairs", len(res.Pairs))
			}
			return writeOut(f.out, mobile)
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVar(&scores, "scores", false, "print the per-residue alignment scores")
	return cmd
}

func alignAllCmd() *cobra.Command {
	var f pairFlags
	cmd := &cobra.Command{
		Use:   "align-all mobile.pdb target.pdb",
		Short: "compare every available alignment method on one structure pair",
		Long: `align-all superimposes the mobile structure on the target with every
available method, each on its own copy and all at the same time, and
prints a table with the RMSD over the fitted atoms and the time each
method took. Methods whose external program is missing just report
their failure.`,
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
			methods := []fit.Method{
				{Name: "align", Run: func() (float64, error) {
					mob := mobile.Copy()
					m, err := pairMatch(mob, target, &f)
					if err != nil {
						return 0, err
					}
					return fit.ExtraFit(mob, f.mobileState, target, f.targetState, m)
				}},
				{Name: "xfit", Run: func() (float64, error) {
					mob := mobile.Copy()
					m, err := pairMatch(mob, target, &f)
					if err != nil {
						return 0, err
					}
					mc, err := mob.SomeCoords(f.mobileState, m.A)
					if err != nil {
						return 0, err
					}
					tc, err := target.SomeCoords(f.targetState, m.B)
					if err != nil {
						return 0, err
					}
					r, err := fit.XFit(mc, tc, cfg.Fit.Cycles)
					if err != nil {
						return 0, err
					}
					return r.RMSD, nil
				}},
				{Name: "tmalign", Run: func() (float64, error) {
					mob := mobile.Copy()
					res, err := extern.TMalign(context.Background(), cfg.Exes.TMalign,
						mob, f.mobileState, target, f.targetState, nil, cfg.Preserve)
					if err != nil {
						return 0, err
					}
					if err := mob.TransformState(f.mobileState, res.Rot, res.T1, res.T2); err != nil {
						return 0, err
					}
					ga := guideSel(mob, gofit.Polymer(mob, gofit.AllAtoms(mob)))
					gb := guideSel(target, gofit.Polymer(target, gofit.AllAtoms(target)))
					m, err := gofit.MatchFromAlignment(ga, res.RowMobile, res.Marks, res.RowTarget, gb, false)
					if err != nil {
						return 0, err
					}
					return pairedRMSD(mob, f.mobileState, target, f.targetState, m)
				}},
				{Name: "theseus", Run: func() (float64, error) {
					mob := mobile.Copy()
					m, err := pairMatch(mob, target, &f)
					if err != nil {
						return 0, err
					}
					tr, err := extern.Theseus(context.Background(), cfg.Exes.Theseus,
						mob, f.mobileState, m.A, target, f.targetState, m.B, false, 0, cfg.Preserve)
					if err != nil {
						return 0, err
					}
					if err := mob.TransformState(f.mobileState, tr.Rot, tr.T1, tr.T2); err != nil {
						return 0, err
					}
					return pairedRMSD(mob, f.mobileState, target, f.targetState, m)
				}},
			}
			results := fit.AlignAll(methods)
			fmt.Printf("%-10s %10s %12s\n", "method", "RMSD", "time")
			for _, r := range results {
				if r.Err != nil {
					fmt.Printf("%-10s %10s %12s\n", r.Name, "failed", "-")
					continue
				}
				fmt.Printf("%-10s %10.3f %12v\n", r.Name, r.RMSD, r.Duration)
			}
			return nil
		},
	}
	f.register(cmd)
	return cmd
}
