/*
 * root.go, part of gofit.
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
	"io"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/strucbio/gofit/config"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "gofit",
	Short: "structural superposition and flexibility analysis of macromolecules",
	Long: `gofit superimposes protein and nucleic acid structures read from PDB
files, with plain, weighted and iterative fits, computes local RMSD
profiles and GDT scores, decomposes ensembles into rigid segments or
conformer groups, and wraps the external programs TMalign, DynDom,
THESEUS and ProSMART.

Fitted structures are written back as PDB files; residue-level results
can additionally be reported as PyMOL selection commands, per-residue
b-factor columns or profile plots.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(cfgFile); err != nil {
			return err
		}
		if cfg.Quiet {
			log.SetOutput(io.Discard)
		}
		log.SetFlags(0)
		return nil
	},
}

//Execute runs the command line application.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("gofit: %v", err)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default ~/.gofit.yaml)")
	pf.Bool("preserve", false, "keep the scratch directories of external program runs")
	pf.Bool("quiet", false, "suppress progress output")
	viper.BindPFlag("preserve", pf.Lookup("preserve"))
	viper.BindPFlag("quiet", pf.Lookup("quiet"))

	rootCmd.AddCommand(&cobra.Command{
		Use:       "completion [bash|zsh|fish]",
		Short:     "generate a shell completion script",
		ValidArgs: []string{"bash", "zsh", "fish"},
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return rootCmd.GenBashCompletion(cmd.OutOrStdout())
			case "zsh":
				return rootCmd.GenZshCompletion(cmd.OutOrStdout())
			default:
				return rootCmd.GenFishCompletion(cmd.OutOrStdout(), true)
			}
		},
	})
}
