/*
 * prosmart.go, part of gofit.
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
	"path/filepath"
	"strconv"
	"strings"

	gofit "github.com/strucbio/gofit"
)

//A ResiduePair is one aligned residue pair from the ProSMART residue
//alignment, with the local alignment score when the file carries one.
type ResiduePair struct {
	ChainMobile string
	ResiMobile  int
	ChainTarget string
	ResiTarget  int
	Score       float64
}

//ProSMARTResult holds the superposition transform and the per-residue
//alignment of one ProSMART run.
type ProSMARTResult struct {
	*Transform
	Pairs []ResiduePair
}

//ProSMART runs a ProSMART restrained superposition of two structures and
//returns the transformation moving the mobile one onto the target, from
//the first transformation file the run produces, together with the
//residue alignment scores when the run wrote them.
func ProSMART(ctx context.Context, exe string, mobile *gofit.Molecule, mobileState int, target *gofit.Molecule, targetState int, preserve bool) (*ProSMARTResult, error) {
	program := filepath.Base(exe)
	dir, cleanup, err := scratchDir("prosmart", preserve)
	if err != nil {
		return nil, err
	}
	defer cleanup()
	if err := writeState(filepath.Join(dir, "mobile.pdb"), mobile, mobileState, gofit.Polymer(mobile, gofit.AllAtoms(mobile)), true); err != nil {
		return nil, err
	}
	if err := writeState(filepath.Join(dir, "target.pdb"), target, targetState, gofit.Polymer(target, gofit.AllAtoms(target)), true); err != nil {
		return nil, err
	}
	if _, err := run(ctx, program, dir, exe, "-p1", "mobile.pdb", "-p2", "target.pdb", "-a"); err != nil {
		return nil, err
	}
	outfiles := filepath.Join(dir, "ProSMART_Output", "Output_Files")
	matches, err := filepath.Glob(filepath.Join(outfiles, "Superposition", "Transformations", "*", "*.txt"))
	if err != nil || len(matches) == 0 {
		return nil, &Error{Program: program, Phase: "read output",
			Message: "no transformation files produced"}
	}
	lines, err := readLines(program, matches[0])
	if err != nil {
		return nil, err
	}
	tr, err := parseProSMARTTransform(program, lines)
	if err != nil {
		return nil, err
	}
	res := &ProSMARTResult{Transform: tr}
	//the residue alignment is a bonus: a run without it still superposes
	scorefiles, _ := filepath.Glob(filepath.Join(outfiles, "Residue_Alignment_Scores", "*", "*.txt"))
	for _, f := range scorefiles {
		if strings.HasSuffix(f, "_clusters.txt") {
			continue
		}
		if lines, err := readLines(program, f); err == nil {
			res.Pairs = parseProSMARTScores(lines)
		}
		break
	}
	return res, nil
}

//parseProSMARTTransform reads a ProSMART transformation file: a ROTATION
//header followed by 3 rows of the matrix, and a TRANSLATION header
//followed by a 3-vector to be subtracted after rotating. The rotation
//applies to column vectors and gets transposed for our row convention.
func parseProSMARTTransform(program string, lines []string) (*Transform, error) {
	var rot []float64
	var t []float64
	mode := 0
	for _, line := range lines {
		up := strings.ToUpper(line)
		switch {
		case strings.Contains(up, "ROTATION"):
			mode = 1
			continue
		case strings.Contains(up, "TRANSLATION"):
			mode = 2
			continue
		}
		if mode == 0 {
			continue
		}
		vals, err := fields2Floats(line)
		if err != nil || len(vals) != 3 {
			continue
		}
		switch mode {
		case 1:
			if len(rot) < 9 {
				rot = append(rot, vals...)
			}
		case 2:
			if t == nil {
				t = vals
			}
		}
	}
	if len(rot) != 9 || t == nil {
		return nil, &Error{Program: program, Phase: "parse output",
			Message: "incomplete transformation file"}
	}
	return &Transform{Rot: transpose3(rot), T1: zero3, T2: neg3(t)}, nil
}

//parseProSMARTScores reads a residue alignment scores table: one aligned
//pair per row as chain, residue number, chain, residue number and then
//the scores. Header rows and rows with an unaligned side ("-") fall
//through the number parsing and are skipped.
func parseProSMARTScores(lines []string) []ResiduePair {
	var pairs []ResiduePair
	for _, line := range lines {
		f := strings.Fields(line)
		if len(f) < 4 {
			continue
		}
		r1, err1 := strconv.Atoi(f[1])
		r2, err2 := strconv.Atoi(f[3])
		if err1 != nil || err2 != nil {
			continue
		}
		p := ResiduePair{ChainMobile: f[0], ResiMobile: r1, ChainTarget: f[2], ResiTarget: r2}
		if len(f) > 4 {
			if s, err := strconv.ParseFloat(f[4], 64); err == nil {
				p.Score = s
			}
		}
		pairs = append(pairs, p)
	}
	return pairs
}
