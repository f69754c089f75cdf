/*
 * theseus.go, part of gofit.
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
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/mat"

	gofit "github.com/strucbio/gofit"
)

//TheseusCycles is the default number of maximum-likelihood iterations.
const TheseusCycles = 200

//A Transform is one rigid transformation in row-vector convention,
//X' = (X + T1) Rot + T2.
type Transform struct {
	Rot    *mat.Dense
	T1, T2 []float64
}

//Theseus runs a THESEUS maximum-likelihood pairwise superposition of two
//structures and returns the transformation moving the mobile one onto
//the target. mobileSel and targetSel pick the atoms written for each
//structure and must pair up one to one (THESEUS wants equal atom
//counts); nil selects the whole polymer of structures that already
//match. cov switches from a variance model to a full covariance model;
//cycles <= 0 means TheseusCycles.
func Theseus(ctx context.Context, exe string, mobile *gofit.Molecule, mobileState int, mobileSel []int, target *gofit.Molecule, targetState int, targetSel []int, cov bool, cycles int, preserve bool) (*Transform, error) {
	program := filepath.Base(exe)
	if cycles <= 0 {
		cycles = TheseusCycles
	}
	if mobileSel == nil {
		mobileSel = gofit.Polymer(mobile, gofit.AllAtoms(mobile))
	}
	if targetSel == nil {
		targetSel = gofit.Polymer(target, gofit.AllAtoms(target))
	}
	if len(mobileSel) != len(targetSel) {
		return nil, fmt.Errorf("theseus needs paired atoms, got %d and %d", len(mobileSel), len(targetSel))
	}
	dir, cleanup, err := scratchDir("theseus", preserve)
	if err != nil {
		return nil, err
	}
	defer cleanup()
	if err := writeState(filepath.Join(dir, "mobile.pdb"), mobile, mobileState, mobileSel, true); err != nil {
		return nil, err
	}
	if err := writeState(filepath.Join(dir, "target.pdb"), target, targetState, targetSel, true); err != nil {
		return nil, err
	}
	covflag := "-v"
	if cov {
		covflag = "-c"
	}
	if _, err := run(ctx, program, dir, exe, "-a0", covflag, fmt.Sprintf("-i%d", cycles), "mobile.pdb", "target.pdb"); err != nil {
		return nil, err
	}
	transforms, err := readTheseusTransforms(program, dir, 2)
	if err != nil {
		return nil, err
	}
	//Each per-structure transform maps the structure onto the
	//maximum-likelihood mean. Mobile goes into the mean frame with its
	//own transform, then out with the inverse of the target's.
	toMean, fromMean := transforms[0], transforms[1]
	rot := mat.NewDense(3, 3, nil)
	inv := mat.NewDense(3, 3, nil)
	inv.CloneFrom(fromMean.Rot.T())
	rot.Mul(toMean.Rot, inv)
	//the inverse of (X + t1) R is X R^T - t1... applied after toMean:
	//X' = ((X + t1m) Rm) Rt^T - t1t
	return &Transform{Rot: rot, T1: toMean.T1, T2: neg3(fromMean.T1)}, nil
}

//IntraTheseus runs THESEUS on all the states of one molecule at once and
//returns one transformation per state. Each transform moves its state
//into the frame of state ref, going through the maximum-likelihood mean;
//state ref itself gets the identity. A ref out of range leaves the
//states in the mean frame.
func IntraTheseus(ctx context.Context, exe string, mol *gofit.Molecule, sel []int, ref int, cov bool, cycles int, preserve bool) ([]*Transform, error) {
	program := filepath.Base(exe)
	if cycles <= 0 {
		cycles = TheseusCycles
	}
	if mol.NStates() < 2 {
		return nil, fmt.Errorf("need at least 2 states, got %d", mol.NStates())
	}
	dir, cleanup, err := scratchDir("theseus", preserve)
	if err != nil {
		return nil, err
	}
	defer cleanup()
	if sel == nil {
		sel = gofit.Polymer(mol, gofit.AllAtoms(mol))
	}
	if err := gofit.PDBWrite(filepath.Join(dir, "states.pdb"), mol, sel, true); err != nil {
		return nil, err
	}
	covflag := "-v"
	if cov {
		covflag = "-c"
	}
	if _, err := run(ctx, program, dir, exe, "-a0", covflag, fmt.Sprintf("-i%d", cycles), "states.pdb"); err != nil {
		return nil, err
	}
	transforms, err := readTheseusTransforms(program, dir, mol.NStates())
	if err != nil {
		return nil, err
	}
	if ref >= 0 && ref < len(transforms) {
		transforms = intraCompose(transforms, ref)
	}
	return transforms, nil
}

//intraCompose rebases to-mean transforms on the frame of state ref:
//each state goes into the mean with its own transform and back out with
//the inverse of ref's, so state ref keeps its coordinates.
func intraCompose(transforms []*Transform, ref int) []*Transform {
	refRot := transforms[ref].Rot
	refT1 := transforms[ref].T1
	ret := make([]*Transform, len(transforms))
	for i, tr := range transforms {
		rot := mat.NewDense(3, 3, nil)
		inv := mat.NewDense(3, 3, nil)
		inv.CloneFrom(refRot.T())
		rot.Mul(tr.Rot, inv)
		//((X + t1) R) Rref^T - t1ref
		ret[i] = &Transform{Rot: rot, T1: tr.T1, T2: neg3(refT1)}
	}
	return ret
}

//readTheseusTransforms reads the transformation file THESEUS leaves
//behind. Versions up to 2.x write theseus_transf2.txt; 3.x writes
//theseus_transf.txt with the translations negated. Lines carry a marker
//at a fixed column: " t:" rows hold a 3-vector, " R:" rows a row-major
//3x3 rotation meaning X_mean = R (X - t) on column vectors. The returned
//transforms are converted to the row-vector convention.
func readTheseusTransforms(program, dir string, want int) ([]*Transform, error) {
	path := filepath.Join(dir, "theseus_transf2.txt")
	negate := false
	if _, err := os.Stat(path); err != nil {
		path = filepath.Join(dir, "theseus_transf.txt")
		negate = true
	}
	lines, err := readLines(program, path)
	if err != nil {
		return nil, err
	}
	var ts [][]float64
	var rs [][]float64
	for _, line := range lines {
		if len(line) < 14 {
			continue
		}
		switch line[10:13] {
		case " t:":
			v, err := fields2Floats(line[13:])
			if err != nil || len(v) != 3 {
				return nil, &Error{Program: program, Phase: "parse output",
					Message: "malformed translation row"}
			}
			if negate {
				v = neg3(v)
			}
			ts = append(ts, v)
		case " R:":
			v, err := fields2Floats(line[13:])
			if err != nil || len(v) != 9 {
				return nil, &Error{Program: program, Phase: "parse output",
					Message: "malformed rotation row"}
			}
			rs = append(rs, v)
		}
	}
	if len(ts) != want || len(rs) != want {
		return nil, &Error{Program: program, Phase: "parse output",
			Message: fmt.Sprintf("expected %d transformations, found %d translations and %d rotations", want, len(ts), len(rs))}
	}
	ret := make([]*Transform, want)
	for i := range ret {
		ret[i] = &Transform{Rot: transpose3(rs[i]), T1: neg3(ts[i]), T2: zero3}
	}
	return ret, nil
}
