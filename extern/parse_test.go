/*
 * parse_test.go, part of gofit.
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
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"

	gofit "github.com/strucbio/gofit"
)

//The parsers are tested against literal output of the wrapped programs,
//so no executable is needed to run these tests.

const tmMatrixOutput = ` -------- Rotation matrix to rotate Chain_1 to Chain_2 ------
 m               t[m]        u[m][1]        u[m][2]        u[m][3]
 0     -6.8904425377   0.6585110295  -0.6120940354   0.4378070895
 1      9.3985098824   0.7487404231   0.4846500860  -0.4525349161
 2      2.5778110480   0.0648136902   0.6257845088   0.7772011689
`

func TestParseTMMatrix(t *testing.T) {
	dir := t.TempDir()
	matfile := filepath.Join(dir, "matrix.txt")
	if err := os.WriteFile(matfile, []byte(tmMatrixOutput), 0644); err != nil {
		t.Fatal(err)
	}
	rot, tr, err := parseTMMatrix("TMalign", matfile, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(tr) != 3 || math.Abs(tr[0]+6.8904425377) > 1e-9 {
		t.Errorf("translation: %v", tr)
	}
	//the file holds U for column vectors; the parsed matrix is its
	//transpose, so row 1 of the file is column 1 of the result
	if math.Abs(rot.At(0, 0)-0.6585110295) > 1e-9 {
		t.Errorf("rot(0,0) = %.10f", rot.At(0, 0))
	}
	if math.Abs(rot.At(1, 0)+0.6120940354) > 1e-9 {
		t.Errorf("rot(1,0) = %.10f", rot.At(1, 0))
	}
	if math.Abs(rot.At(0, 1)-0.7487404231) > 1e-9 {
		t.Errorf("rot(0,1) = %.10f", rot.At(0, 1))
	}
}

func TestParseTMMatrixFromStdout(t *testing.T) {
	//older versions print the matrix to standard output only
	_, tr, err := parseTMMatrix("TMalign", "/nonexistent/matrix.txt",
		strings.Split(tmMatrixOutput, "\n"))
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(tr[1]-9.3985098824) > 1e-9 {
		t.Errorf("translation: %v", tr)
	}
	if _, _, err := parseTMMatrix("TMalign", "/nonexistent/matrix.txt",
		[]string{"no matrix here"}); err == nil {
		t.Error("missing matrix should fail")
	}
}

func TestTMScoreRegexp(t *testing.T) {
	line := "TM-score= 0.87654 (if normalized by length of Chain_2)"
	m := tmScoreRe.FindStringSubmatch(line)
	if m == nil || m[1] != "0.87654" {
		t.Errorf("score not matched in %q", line)
	}
}

const dyndomInfo = `DYNDOM VERSION 1.50

ACCEPTED RATIO:  1.00

FIXED  DOMAIN
DOMAIN NUMBER: 	 1 (coloured blue for rasmol)
RESIDUE NUMBERS : 	4 - 174 , 190 - 210
SIZE: 	192

MOVING DOMAIN
DOMAIN NUMBER: 	 2 (coloured red for rasmol)
RESIDUE NUMBERS : 	175 - 189
SIZE: 	15
BENDING RESIDUES (involved in domain movement):
RESIDUE NUMBERS : 	173 - 177 , 187 - 191
`

func TestParseDynDomInfo(t *testing.T) {
	res, err := parseDynDomInfo("DynDom", strings.Split(dyndomInfo, "\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Domains) != 2 {
		t.Fatalf("expected 2 domains, got %d", len(res.Domains))
	}
	d1, d2 := res.Domains[0], res.Domains[1]
	if !d1.Fixed || d1.Number != 1 || d1.Color != "blue" {
		t.Errorf("fixed domain: %+v", d1)
	}
	if d1.Residues != "4-174+190-210" {
		t.Errorf("fixed domain residues: %q", d1.Residues)
	}
	if d2.Fixed || d2.Number != 2 || d2.Color != "red" {
		t.Errorf("moving domain: %+v", d2)
	}
	if d2.Residues != "175-189" {
		t.Errorf("moving domain residues: %q", d2.Residues)
	}
	if len(res.Bending) != 1 || res.Bending[0] != "173-177+187-191" {
		t.Errorf("bending residues: %v", res.Bending)
	}
}

func TestDynDomCommand(t *testing.T) {
	got := dynDomCommand("domains", "conf1.pdb", "conf2.pdb", "A", 5, 20, 1.0)
	want := "title=domains\nfilename1=conf1.pdb\nchain1id=A\nfilename2=conf2.pdb\nchain2id=A\nwindow=5\ndomain=20\nratio=1.0000\n"
	if got != want {
		t.Errorf("command file:\n%q\nwant:\n%q", got, want)
	}
	//the program reads key=value pairs, one per line
	for _, line := range strings.Split(strings.TrimSuffix(got, "\n"), "\n") {
		if !strings.Contains(line, "=") {
			t.Errorf("line %q is not a key=value pair", line)
		}
	}
}

func TestParseDynDomInfoInlineBending(t *testing.T) {
	//some versions put the hinge residues on the header line itself
	info := []string{
		"FIXED  DOMAIN",
		"DOMAIN NUMBER: 	 1 (coloured blue for rasmol)",
		"RESIDUE NUMBERS : 	4 - 174",
		"BENDING RESIDUES: 172 - 176 , 187 - 191",
	}
	res, err := parseDynDomInfo("DynDom", info)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Bending) != 1 || res.Bending[0] != "172-176+187-191" {
		t.Errorf("inline bending residues: %v", res.Bending)
	}
	if len(res.Domains) != 1 || res.Domains[0].Residues != "4-174" {
		t.Errorf("domains: %+v", res.Domains)
	}
}

func TestParseDynDomInfoEmpty(t *testing.T) {
	if _, err := parseDynDomInfo("DynDom", []string{"DYNDOM VERSION 1.50", ""}); err == nil {
		t.Error("an info file with no domains should fail")
	}
}

func TestReadTheseusTransforms(t *testing.T) {
	//theseus 2.x writes theseus_transf2.txt
	content := `model      1:
           t:     1.0000000000     2.0000000000     3.0000000000
           R:     1.0000000000     0.0000000000     0.0000000000     0.0000000000     0.0000000000    -1.0000000000     0.0000000000     1.0000000000     0.0000000000
model      2:
           t:    -4.0000000000     0.5000000000     0.0000000000
           R:     1.0000000000     0.0000000000     0.0000000000     0.0000000000     1.0000000000     0.0000000000     0.0000000000     0.0000000000     1.0000000000
`
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "theseus_transf2.txt"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	transforms, err := readTheseusTransforms("theseus", dir, 2)
	if err != nil {
		t.Fatal(err)
	}
	//t goes in negated as the pre-rotation translation
	if transforms[0].T1[0] != -1 || transforms[0].T1[1] != -2 || transforms[0].T1[2] != -3 {
		t.Errorf("first translation: %v", transforms[0].T1)
	}
	//the rotation is transposed for row vectors
	if transforms[0].Rot.At(1, 2) != 1 || transforms[0].Rot.At(2, 1) != -1 {
		t.Errorf("first rotation not transposed: %v", transforms[0].Rot)
	}
	if transforms[1].T1[0] != 4 {
		t.Errorf("second translation: %v", transforms[1].T1)
	}
	if _, err := readTheseusTransforms("theseus", dir, 3); err == nil {
		t.Error("asking for more transforms than the file holds should fail")
	}
}

func TestReadTheseusTransforms3x(t *testing.T) {
	//3.x renames the file and negates the translations
	content := `model      1:
           t:     1.0000000000     2.0000000000     3.0000000000
           R:     1.0000000000     0.0000000000     0.0000000000     0.0000000000     1.0000000000     0.0000000000     0.0000000000     0.0000000000     1.0000000000
`
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "theseus_transf.txt"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	transforms, err := readTheseusTransforms("theseus", dir, 1)
	if err != nil {
		t.Fatal(err)
	}
	//negated in the file, negated again going in: back to positive
	if transforms[0].T1[0] != 1 || transforms[0].T1[1] != 2 {
		t.Errorf("3.x translation: %v", transforms[0].T1)
	}
}

const prosmartTransf = `Superposition of mobile (fragment 1) onto target

ROTATION MATRIX:
   0.866025   -0.500000    0.000000
   0.500000    0.866025    0.000000
   0.000000    0.000000    1.000000

TRANSLATION VECTOR:
   1.500000   -2.500000    0.750000
`

//applyTransform is the row-vector convention written out.
func applyTransform(tr *Transform, p []float64) []float64 {
	ret := make([]float64, 3)
	for j := 0; j < 3; j++ {
		for i := 0; i < 3; i++ {
			ret[j] += (p[i] + tr.T1[i]) * tr.Rot.At(i, j)
		}
		ret[j] += tr.T2[j]
	}
	return ret
}

func TestIntraCompose(t *testing.T) {
	ident := mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
	rz := mat.NewDense(3, 3, []float64{0, 1, 0, -1, 0, 0, 0, 0, 1})
	transforms := []*Transform{
		{Rot: mat.DenseCopyOf(rz), T1: []float64{1, 2, 3}, T2: zero3},
		{Rot: mat.DenseCopyOf(ident), T1: []float64{4, 0, 0}, T2: zero3},
	}
	composed := intraCompose(transforms, 0)
	//the kept state must not move, rotation or not
	p := []float64{5, -1, 2}
	got := applyTransform(composed[0], p)
	for i := range p {
		if math.Abs(got[i]-p[i]) > 1e-12 {
			t.Fatalf("kept state moved: %v -> %v", p, got)
		}
	}
	//the other state goes through the mean and out with the inverse of
	//the kept state's transform; check against the hand-composed path
	mean := applyTransform(transforms[1], p)
	want := make([]float64, 3)
	for j := 0; j < 3; j++ {
		for i := 0; i < 3; i++ {
			//inverse of (X + t1) R is X R^T - t1
			want[j] += mean[i] * transforms[0].Rot.At(j, i)
		}
		want[j] -= transforms[0].T1[j]
	}
	got = applyTransform(composed[1], p)
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Fatalf("composed transform: got %v, want %v", got, want)
		}
	}
}

func TestTheseusSelectionMismatch(t *testing.T) {
	top := &gofit.Topology{Atoms: []*gofit.Atom{
		{Name: "CA", Molname: "GLY", Chain: "A", Molid: 1},
		{Name: "CA", Molname: "GLY", Chain: "A", Molid: 2},
		{Name: "CA", Molname: "GLY", Chain: "A", Molid: 3},
	}}
	coords := []*mat.Dense{mat.NewDense(3, 3, []float64{0, 0, 0, 1, 0, 0, 2, 0, 0})}
	mol, err := gofit.NewMolecule(top, coords, [][]float64{{0, 0, 0}})
	if err != nil {
		t.Fatal(err)
	}
	_, err = Theseus(context.Background(), "theseus", mol, 0, []int{0, 1, 2},
		mol, 0, []int{0, 1}, false, 0, false)
	if err == nil {
		t.Error("selections of different size should fail before running anything")
	}
}

func TestParseProSMARTTransform(t *testing.T) {
	tr, err := parseProSMARTTransform("prosmart", strings.Split(prosmartTransf, "\n"))
	if err != nil {
		t.Fatal(err)
	}
	//transposed rotation, negated translation
	if math.Abs(tr.Rot.At(0, 1)-0.5) > 1e-9 || math.Abs(tr.Rot.At(1, 0)+0.5) > 1e-9 {
		t.Errorf("rotation: %v", tr.Rot)
	}
	if tr.T2[0] != -1.5 || tr.T2[1] != 2.5 || tr.T2[2] != -0.75 {
		t.Errorf("translation: %v", tr.T2)
	}
	if _, err := parseProSMARTTransform("prosmart", []string{"nothing"}); err == nil {
		t.Error("an empty transformation should fail")
	}
}

const prosmartScores = `Residue Alignment Scores
Chain Residue Chain Residue ProcrustesScore FlexibleScore

A 21 A 17 0.9613 0.9613
A 22 A 18 0.9415 0.9502
A 23 - - - -
B 5 B 4 0.8100 0.8100
`

func TestParseProSMARTScores(t *testing.T) {
	pairs := parseProSMARTScores(strings.Split(prosmartScores, "\n"))
	if len(pairs) != 3 {
		t.Fatalf("expected 3 aligned pairs, got %d", len(pairs))
	}
	p := pairs[0]
	if p.ChainMobile != "A" || p.ResiMobile != 21 || p.ChainTarget != "A" || p.ResiTarget != 17 {
		t.Errorf("first pair: %+v", p)
	}
	if math.Abs(p.Score-0.9613) > 1e-9 {
		t.Errorf("first pair score: %f", p.Score)
	}
	if pairs[2].ChainMobile != "B" || pairs[2].ResiTarget != 4 {
		t.Errorf("last pair: %+v", pairs[2])
	}
}
