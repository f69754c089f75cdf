/*
 * select.go, part of gofit.
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

func init() {
	rootCmd.AddCommand(selectPepseqCmd())
	rootCmd.AddCommand(selectNucseqCmd())
	rootCmd.AddCommand(selectSSPickCmd())
	rootCmd.AddCommand(selectDomainsCmd())
	rootCmd.AddCommand(diffCmd())
	rootCmd.AddCommand(symdiffCmd())
	rootCmd.AddCommand(collapseResiCmd())
}

//selFlags restrict a command to part of one structure.
type selFlags struct {
	chains []string
	first  int
	last   int
	state  int
}

func (f *selFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringSliceVar(&f.chains, "chains", nil, "chains to consider (default all)")
	fl.IntVar(&f.first, "first", 0, "first residue number to consider")
	fl.IntVar(&f.last, "last", 0, "last residue number to consider")
	fl.IntVar(&f.state, "state", 0, "state whose coordinates decide chain breaks")
}

func (f *selFlags) sel(mol *gofit.Molecule) []int {
	sel := chainSel(mol, f.chains)
	if f.first != 0 || f.last != 0 {
		last := f.last
		if last == 0 {
			last = int(^uint(0) >> 1)
		}
		sel = gofit.ByResi(mol, sel, f.first, last)
	}
	return sel
}

func seqSelectCmd(use, short string, oneLetter map[string]byte, cutoff float64, prefix string) *cobra.Command {
	var f selFlags
	var name string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mol, err := loadMolecule(args[1])
			if err != nil {
				return err
			}
			guide := guideSel(mol, f.sel(mol))
			matches, err := gofit.SearchSeq(args[0], mol, f.state, guide, oneLetter, cutoff)
			if err != nil {
				return err
			}
			if len(matches) == 0 {
				return fmt.Errorf("pattern %q not found", args[0])
			}
			for i, m := range matches {
				full := gofit.ByRes(mol, m)
				fmt.Println(gofit.PyMOLSelect(fmt.Sprintf("%s_%02d", name, i+1), mol, full))
			}
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&name, "name", prefix, "base name of the printed selections")
	return cmd
}

func selectPepseqCmd() *cobra.Command {
	cmd := seqSelectCmd("select-pepseq PATTERN structure.pdb",
		"find a peptide sequence in a structure",
		nil, gofit.PepSeqCutoff, "pepseq")
	cmd.Long = `select-pepseq searches the amino acid sequence of a structure for a
pattern given in 1-letter codes (regular expression syntax allowed) and
prints a PyMOL selection command per match. Matches never span chain
breaks: consecutive alpha carbons further apart than 4 Angstrom split
the sequence.`
	return cmd
}

func selectNucseqCmd() *cobra.Command {
	cmd := seqSelectCmd("select-nucseq PATTERN structure.pdb",
		"find a nucleotide sequence in a structure",
		gofit.NucOneLetter(), gofit.NucSeqCutoff, "nucseq")
	cmd.Long = `select-nucseq searches the nucleotide sequence of a structure for a
pattern in 1-letter codes and prints a PyMOL selection command per
match. Consecutive C1' atoms further apart than 6.5 Angstrom count as a
chain break.`
	return cmd
}

func selectSSPickCmd() *cobra.Command {
	var f selFlags
	var name string
	cmd := &cobra.Command{
		Use:   "select-sspick structure.pdb",
		Short: "extend a selection to whole secondary structure elements",
		Long: `select-sspick takes the part of the structure given by the flags,
extends it to every complete helix, strand or loop it touches and
prints the elements plus one PyMOL selection command covering them all.
Secondary structure comes from the HELIX and SHEET records of the file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mol, err := loadMolecule(args[0])
			if err != nil {
				return err
			}
			expanded, elements := gofit.SSPick(mol, f.sel(mol))
			if len(elements) == 0 {
				return fmt.Errorf("the selection touches no secondary structure element")
			}
			for _, e := range elements {
				fmt.Println(e)
			}
			fmt.Println(gofit.PyMOLSelect(name, mol, expanded))
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&name, "name", "sspick", "name of the printed selection")
	return cmd
}

func selectDomainsCmd() *cobra.Command {
	var f selFlags
	var minsize int
	var cutoff float64
	var method string
	cmd := &cobra.Command{
		Use:   "select-domains structure.pdb",
		Short: "partition a chain into compact domains by distance geometry",
		Long: `select-domains splits the guide atoms of a structure into compact
sequence-contiguous domains, recursively cutting at the position that
minimizes the combined spread of the two sides, and prints one PyMOL
selection command per domain. Unlike dyndom this needs a single state
and no external program.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mol, err := loadMolecule(args[0])
			if err != nil {
				return err
			}
			guide := guideSel(mol, f.sel(mol))
			if len(guide) < 2*minsize {
				return fmt.Errorf("too few residues (%d) for domains of at least %d", len(guide), minsize)
			}
			coords, err := mol.SomeCoords(f.state, guide)
			if err != nil {
				return err
			}
			splits, err := gofit.Domains(coords, minsize, cutoff, method)
			if err != nil {
				return err
			}
			bounds := append([]int{0}, splits...)
			bounds = append(bounds, len(guide))
			for k := 0; k < len(bounds)-1; k++ {
				fmt.Println(gofit.PyMOLSelect(fmt.Sprintf("domain_%d", k+1),
					mol, guide[bounds[k]:bounds[k+1]]))
			}
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().IntVar(&minsize, "minsize", 30, "minimum domain size in residues")
	cmd.Flags().Float64Var(&cutoff, "cutoff", 30, "largest allowed combined spread for a split, in Angstrom")
	cmd.Flags().StringVar(&method, "method", "mean", "spread statistic: mean or max")
	return cmd
}

func diffCmd() *cobra.Command {
	var chains []string
	cmd := &cobra.Command{
		Use:   "diff a.pdb b.pdb",
		Short: "atoms of the first structure with no counterpart in the second",
		Long: `diff compares two structures by atom identifier (chain, residue number
and atom name) and prints the residues of the first one not present in
the second, as a selection macro.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mola, err := loadMolecule(args[0])
			if err != nil {
				return err
			}
			molb, err := loadMolecule(args[1])
			if err != nil {
				return err
			}
			d := gofit.Diff(mola, chainSel(mola, chains), molb, chainSel(molb, chains))
			if len(d) == 0 {
				fmt.Println("no difference")
				return nil
			}
			fmt.Printf("%d atoms only in %s: %s\n", len(d), args[0], gofit.CollapseResi(mola, d))
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&chains, "chains", nil, "chains to compare (default all)")
	return cmd
}

func symdiffCmd() *cobra.Command {
	var chains []string
	cmd := &cobra.Command{
		Use:   "symdiff a.pdb b.pdb",
		Short: "atoms unique to either of two structures",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mola, err := loadMolecule(args[0])
			if err != nil {
				return err
			}
			molb, err := loadMolecule(args[1])
			if err != nil {
				return err
			}
			da, db := gofit.SymDiff(mola, chainSel(mola, chains), molb, chainSel(molb, chains))
			if len(da) == 0 && len(db) == 0 {
				fmt.Println("no difference")
				return nil
			}
			if len(da) > 0 {
				fmt.Printf("%d atoms only in %s: %s\n", len(da), args[0], gofit.CollapseResi(mola, da))
			}
			if len(db) > 0 {
				fmt.Printf("%d atoms only in %s: %s\n", len(db), args[1], gofit.CollapseResi(molb, db))
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&chains, "chains", nil, "chains to compare (default all)")
	return cmd
}

func collapseResiCmd() *cobra.Command {
	var f selFlags
	cmd := &cobra.Command{
		Use:   "collapse-resi structure.pdb",
		Short: "compact selection macro for part of a structure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mol, err := loadMolecule(args[0])
			if err != nil {
				return err
			}
			sel := f.sel(mol)
			if len(sel) == 0 {
				return fmt.Errorf("empty selection")
			}
			fmt.Println(gofit.CollapseResi(mol, sel))
			return nil
		},
	}
	f.register(cmd)
	return cmd
}
