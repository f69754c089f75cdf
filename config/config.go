/*
 * config.go, part of gofit.
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

//Package config reads the program settings: paths to the wrapped
//external executables and the defaults of the fitting routines. Settings
//come from a YAML file (~/.gofit.yaml or the file given with --config),
//the environment (GOFIT_ prefixed) and the command line, in increasing
//priority.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

//Exes holds the names or full paths of the external programs.
type Exes struct {
	TMalign  string `mapstructure:"tmalign"`
	DynDom   string `mapstructure:"dyndom"`
	Theseus  string `mapstructure:"theseus"`
	ProSMART string `mapstructure:"prosmart"`
}

//Fit holds the defaults of the fitting routines.
type Fit struct {
	//Cycles of iterative reweighting for the weighted fits.
	Cycles int `mapstructure:"cycles"`
	//Window length, in residues, of the local RMSD profile.
	Window int `mapstructure:"window"`
	//GuideAtoms are the per-residue representative atom names.
	GuideAtoms []string `mapstructure:"guide_atoms"`
}

//Config is the whole settings tree.
type Config struct {
	Exes Exes `mapstructure:"exes"`
	Fit  Fit  `mapstructure:"fit"`
	//Preserve keeps the scratch directories of external runs.
	Preserve bool `mapstructure:"preserve"`
	Quiet    bool `mapstructure:"quiet"`
}

//setDefaults registers every setting so a missing config file still
//yields a usable Config.
func setDefaults() {
	viper.SetDefault("exes.tmalign", "TMalign")
	viper.SetDefault("exes.dyndom", "DynDom")
	viper.SetDefault("exes.theseus", "theseus")
	viper.SetDefault("exes.prosmart", "prosmart")
	viper.SetDefault("fit.cycles", 10)
	viper.SetDefault("fit.window", 20)
	viper.SetDefault("fit.guide_atoms", []string{"CA", "C1'", "BB"})
	viper.SetDefault("preserve", false)
	viper.SetDefault("quiet", false)
}

//Load reads the settings from cfgFile, or from ~/.gofit.yaml when
//cfgFile is empty, merges the environment on top and returns the
//unmarshalled tree. A missing config file is not an error.
func Load(cfgFile string) (*Config, error) {
	setDefaults()
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".gofit")
		viper.SetConfigType("yaml")
	}
	viper.SetEnvPrefix("GOFIT")
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			return nil, fmt.Errorf("cannot read config %s: %w", cfgFile, err)
		}
	}
	c := &Config{}
	if err := viper.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("cannot parse config: %w", err)
	}
	return c, nil
}

//Write saves the current settings to path, creating the directories on
//the way if needed.
func Write(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return viper.WriteConfigAs(path)
}
