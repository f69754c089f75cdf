/*
 * runner.go, part of gofit.
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

//Package extern wraps external structural alignment programs (TMalign,
//DynDom, THESEUS and ProSMART): each wrapper writes the needed PDB
//files to a scratch directory, runs the program and parses its output
//back into transformations and annotations in the conventions of the
//rest of the library, with rotations meant to be applied to
//row-vector coordinates as (X + t1) R + t2.
package extern

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	gofit "github.com/strucbio/gofit"
)

//Error reports a failure of an external program run, keeping which
//program and which phase (execute, parse output, read files) failed.
type Error struct {
	Program string
	Phase   string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Program, e.Phase, e.Message)
}

//scratchDir makes a temporary work directory for one external run and
//returns it with its cleanup function. With preserve the cleanup only
//logs where the files were left.
func scratchDir(prefix string, preserve bool) (string, func(), error) {
	dir, err := os.MkdirTemp("", prefix)
	if err != nil {
		return "", nil, err
	}
	if preserve {
		return dir, func() { log.Printf("kept temporary files in %s", dir) }, nil
	}
	return dir, func() { os.RemoveAll(dir) }, nil
}

//run executes the program in dir and returns its standard output, split
//in lines. Standard error ends up appended to the same slice, as some of
//the wrapped programs report through it.
func run(ctx context.Context, program, dir, exe string, args ...string) ([]string, error) {
	cmd := exec.CommandContext(ctx, exe, args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return nil, &Error{Program: program, Phase: "execute",
			Message: fmt.Sprintf("cannot execute %q: %v", exe, err)}
	}
	return strings.Split(string(out), "\n"), nil
}

//writeState writes one state of the molecule as a single-model PDB file.
//TER records are omitted when ter is false, as some programs stop
//reading at the first TER.
func writeState(path string, mol *gofit.Molecule, state int, sel []int, ter bool) error {
	if state < 0 || state >= mol.NStates() {
		return fmt.Errorf("state %d out of range", state)
	}
	single := &gofit.Molecule{
		Topology: mol.Topology,
		Coords:   []*mat.Dense{mol.Coords[state]},
		Bfactors: [][]float64{mol.Bfactors[state]},
	}
	return gofit.PDBWrite(path, single, sel, ter)
}

//readLines returns the lines of a file the external program wrote.
func readLines(program, path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &Error{Program: program, Phase: "read output",
			Message: fmt.Sprintf("missing output file %s: %v", filepath.Base(path), err)}
	}
	defer f.Close()
	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}

//fields2Floats parses white-space separated floats from a string.
func fields2Floats(s string) ([]float64, error) {
	fields := strings.Fields(s)
	ret := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		ret = append(ret, v)
	}
	return ret, nil
}

//transpose3 returns the transpose of a 3x3 rotation given row-major, as
//a matrix ready for row-vector coordinates.
func transpose3(rows []float64) *mat.Dense {
	if len(rows) != 9 {
		panic("transpose3 needs 9 values")
	}
	r := mat.NewDense(3, 3, rows)
	ret := mat.NewDense(3, 3, nil)
	ret.CloneFrom(r.T())
	return ret
}

var zero3 = []float64{0, 0, 0}

//neg3 returns the negated copy of a 3-vector.
func neg3(v []float64) []float64 {
	return []float64{-v[0], -v[1], -v[2]}
}
