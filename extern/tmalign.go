/*
 * tmalign.go, part of gofit.
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

package extern

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"gonum.org/v1/gonum/mat"

	gofit "github.com/strucbio/gofit"
)

//TMResult holds what a TMalign (or TMscore/MMalign) run produces: the
//score, the transformation that moves the mobile structure onto the
//target, and the sequence alignment the program printed.
type TMResult struct {
	TMScore float64
	Rot     *mat.Dense
	T1, T2  []float64
	//The 3 alignment lines: mobile sequence, match markers, target
	//sequence.
	RowMobile, Marks, RowTarget string
}

var tmScoreRe = regexp.MustCompile(`TM-score\s*=\s*(\d*\.\d*)`)

//TMalign writes the two structures as PDB files, runs a TMalign-family
//executable on them and parses score, rotation matrix and alignment from
//its output. The files carry no TER records since TMalign stops reading
//at the first one. extraArgs go to the program verbatim, after the two
//file names.
func TMalign(ctx context.Context, exe string, mobile *gofit.Molecule, mobileState int, target *gofit.Molecule, targetState int, extraArgs []string, preserve bool) (*TMResult, error) {
	program := filepath.Base(exe)
	dir, cleanup, err := scratchDir("tmalign", preserve)
	if err != nil {
		return nil, err
	}
	defer cleanup()
	mobfile := filepath.Join(dir, "mobile.pdb")
	tarfile := filepath.Join(dir, "target.pdb")
	if err := writeState(mobfile, mobile, mobileState, gofit.Polymer(mobile, gofit.AllAtoms(mobile)), false); err != nil {
		return nil, err
	}
	if err := writeState(tarfile, target, targetState, gofit.Polymer(target, gofit.AllAtoms(target)), false); err != nil {
		return nil, err
	}
	matfile := filepath.Join(dir, "matrix.txt")
	args := []string{mobfile, tarfile, "-m", matfile}
	args = append(args, extraArgs...)
	lines, err := run(ctx, program, dir, exe, args...)
	if err != nil {
		return nil, err
	}
	res := &TMResult{}
	for i, line := range lines {
		if m := tmScoreRe.FindStringSubmatch(line); m != nil {
			//several scores get printed, one per normalization; the
			//last one wins, as with the program's own summary.
			fmt.Sscanf(m[1], "%f", &res.TMScore)
		}
		if strings.HasPrefix(line, `(":" denotes`) && i+3 < len(lines) {
			res.RowMobile = lines[i+1]
			res.Marks = lines[i+2]
			res.RowTarget = lines[i+3]
		}
	}
	rot, t, err := parseTMMatrix(program, matfile, lines)
	if err != nil {
		return nil, err
	}
	res.Rot, res.T1, res.T2 = rot, zero3, t
	if res.RowMobile == "" {
		return nil, &Error{Program: program, Phase: "parse output",
			Message: "no alignment found in the program output"}
	}
	return res, nil
}

//parseTMMatrix reads the rotation matrix TMalign wrote with -m, falling
//back to the standard output for versions that print it there. The file
//holds, after a banner, 3 rows "i t(i) u(i,1) u(i,2) u(i,3)" meaning
//X' = t + U X on column vectors; the returned rotation is transposed for
//row vectors.
func parseTMMatrix(program, matfile string, stdout []string) (*mat.Dense, []float64, error) {
	lines, err := readLines(program, matfile)
	if err != nil {
		lines = stdout
	}
	rot := make([]float64, 0, 9)
	t := make([]float64, 0, 3)
	banner := false
	for _, line := range lines {
		if strings.Contains(strings.ToLower(line), "rotation matrix") {
			banner = true
			continue
		}
		if !banner || len(rot) == 9 {
			continue
		}
		vals, err := fields2Floats(line)
		if err != nil || len(vals) < 5 {
			//the column header row right after the banner
			continue
		}
		t = append(t, vals[1])
		rot = append(rot, vals[2], vals[3], vals[4])
	}
	if len(rot) != 9 {
		return nil, nil, &Error{Program: program, Phase: "parse output",
			Message: "no rotation matrix found"}
	}
	return transpose3(rot), t, nil
}
