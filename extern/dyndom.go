/*
 * dyndom.go, part of gofit.
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
	"regexp"
	"strconv"
	"strings"

	gofit "github.com/strucbio/gofit"
)

//Defaults for the DynDom run parameters.
const (
	DynDomWindow = 5
	DynDomDomain = 20
	DynDomRatio  = 1.0
)

//A Domain is one rigid domain found by DynDom. Residues is a residue
//number list in selection macro syntax, like "151-231+245-250".
type Domain struct {
	Number   int
	Color    string
	Fixed    bool
	Residues string
}

//DynDomResult collects the domains and hinge (bending) residues of one
//DynDom analysis of two conformers.
type DynDomResult struct {
	Domains []Domain
	//Bending holds one residue list per interdomain hinge region.
	Bending []string
}

var dynDomainRe = regexp.MustCompile(`DOMAIN NUMBER:\s*(\d+) \(coloured (\w+)`)

//DynDom runs the DynDom domain decomposition on two states of a
//molecule, restricted to one chain, and parses the analysis back. window,
//domain and ratio are the program's smoothing window, minimum domain size
//and interdomain-to-intradomain displacement ratio; zero values take the
//defaults above.
func DynDom(ctx context.Context, exe string, mol *gofit.Molecule, state1, state2 int, chain string, window, domain int, ratio float64, preserve bool) (*DynDomResult, error) {
	program := filepath.Base(exe)
	if window <= 0 {
		window = DynDomWindow
	}
	if domain <= 0 {
		domain = DynDomDomain
	}
	if ratio <= 0 {
		ratio = DynDomRatio
	}
	dir, cleanup, err := scratchDir("dyndom", preserve)
	if err != nil {
		return nil, err
	}
	defer cleanup()
	sel := gofit.Polymer(mol, gofit.ByChain(mol, []string{chain}))
	if len(sel) == 0 {
		return nil, fmt.Errorf("no polymer atoms in chain %q", chain)
	}
	//DynDom stops reading at TER records, so the inputs go out without them
	if err := writeState(filepath.Join(dir, "conf1.pdb"), mol, state1, sel, false); err != nil {
		return nil, err
	}
	if err := writeState(filepath.Join(dir, "conf2.pdb"), mol, state2, sel, false); err != nil {
		return nil, err
	}
	const title = "domains"
	cmdfile := filepath.Join(dir, "dyndom.command")
	if err := os.WriteFile(cmdfile, []byte(dynDomCommand(title, "conf1.pdb", "conf2.pdb", chain, window, domain, ratio)), 0644); err != nil {
		return nil, err
	}
	if _, err := run(ctx, program, dir, exe, cmdfile); err != nil {
		return nil, err
	}
	lines, err := readLines(program, filepath.Join(dir, title+"_info"))
	if err != nil {
		return nil, err
	}
	return parseDynDomInfo(program, lines)
}

//dynDomCommand builds the key=value command file DynDom is driven by.
//The info file the program writes takes its name from the title key.
func dynDomCommand(title, file1, file2, chain string, window, domain int, ratio float64) string {
	return fmt.Sprintf("title=%s\nfilename1=%s\nchain1id=%s\nfilename2=%s\nchain2id=%s\nwindow=%d\ndomain=%d\nratio=%.4f\n",
		title, file1, chain, file2, chain, window, domain, ratio)
}

//parseDynDomInfo walks a DynDom info file. The file describes a FIXED
//DOMAIN and one or more MOVING DOMAIN sections, each with a domain
//number, its display color and its residue numbers, plus the BENDING
//RESIDUES of each hinge.
func parseDynDomInfo(program string, lines []string) (*DynDomResult, error) {
	res := &DynDomResult{}
	fixed := false
	bending := false
	var current *Domain
	for _, line := range lines {
		switch {
		case strings.Contains(line, "FIXED  DOMAIN") || strings.Contains(line, "FIXED DOMAIN"):
			fixed = true
			bending = false
		case strings.Contains(line, "MOVING DOMAIN"):
			fixed = false
			bending = false
		case strings.Contains(line, "BENDING RESIDUES"):
			//the residues sit on this very line ("BENDING RESIDUES: 172 - 176")
			//or on a RESIDUE NUMBERS line below the header
			bending = true
			if i := strings.Index(line, ":"); i >= 0 {
				if rest := strings.TrimSpace(line[i+1:]); strings.ContainsAny(rest, "0123456789") {
					res.Bending = append(res.Bending, residueMacro(rest))
					bending = false
				}
			}
		}
		if m := dynDomainRe.FindStringSubmatch(line); m != nil {
			n, _ := strconv.Atoi(m[1])
			res.Domains = append(res.Domains, Domain{Number: n, Color: m[2], Fixed: fixed})
			current = &res.Domains[len(res.Domains)-1]
			continue
		}
		if i := strings.Index(line, "RESIDUE NUMBERS :"); i >= 0 && !bending {
			if current == nil {
				return nil, &Error{Program: program, Phase: "parse output",
					Message: "residue numbers outside a domain section"}
			}
			current.Residues = residueMacro(line[i+len("RESIDUE NUMBERS :"):])
			continue
		}
		if i := strings.Index(line, "RESIDUE NUMBERS :"); i >= 0 && bending {
			res.Bending = append(res.Bending, residueMacro(line[i+len("RESIDUE NUMBERS :"):]))
		}
	}
	if len(res.Domains) == 0 {
		return nil, &Error{Program: program, Phase: "parse output",
			Message: "no domains found, the conformational change may be too small"}
	}
	return res, nil
}

//residueMacro turns DynDom's comma-separated residue ranges into a
//"+"-joined selection macro.
func residueMacro(s string) string {
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.ReplaceAll(strings.TrimSpace(parts[i]), " ", "")
	}
	return strings.Join(parts, "+")
}
