/*
 * multi.go, part of gofit.
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

package fit

import (
	"fmt"
	"log"
	"sync"
	"time"

	gofit "github.com/strucbio/gofit"
)

//ExtraFit superimposes the mobile molecule on the target using the atom
//pairs of the given match, fitting on the coordinates of the two given
//states and transforming every state of mobile. It returns the RMSD over
//the matched atoms after the fit.
func ExtraFit(mobile *gofit.Molecule, mobileState int, target *gofit.Molecule, targetState int, m *gofit.Match) (float64, error) {
	if m.Len() < 3 {
		return 0, fmt.Errorf("extra fit: need at least 3 matched atoms, got %d", m.Len())
	}
	mc, err := mobile.SomeCoords(mobileState, m.A)
	if err != nil {
		return 0, err
	}
	tc, err := target.SomeCoords(targetState, m.B)
	if err != nil {
		return 0, err
	}
	rot, t1, t2, err := gofit.RotTrans(mc, tc, nil)
	if err != nil {
		return 0, err
	}
	if err := mobile.TransformState(-1, rot, t1, t2); err != nil {
		return 0, err
	}
	moved := gofit.ApplyRotTrans(mc, rot, t1, t2)
	return gofit.RMSD(moved, tc)
}

//A Method is one named way of aligning a mobile structure on a target.
//Run performs the alignment, including any transformation of the mobile
//molecule it implies, and reports the resulting RMSD over the atoms it
//fitted.
type Method struct {
	Name string
	Run  func() (float64, error)
}

//A MethodResult reports one method of an AlignAll run.
type MethodResult struct {
	Name     string
	RMSD     float64
	Duration time.Duration
	Err      error
}

//AlignAll runs every method concurrently, each on its own copy of the
//problem (the Run closures must not share a mobile molecule), waits for
//all of them, and returns their results in the input order. Failures are
//reported per method, not returned as an error.
func AlignAll(methods []Method) []MethodResult {
	results := make([]MethodResult, len(methods))
	var wg sync.WaitGroup
	for i, m := range methods {
		wg.Add(1)
		go func(i int, m Method) {
			defer wg.Done()
			start := time.Now()
			rmsd, err := m.Run()
			results[i] = MethodResult{Name: m.Name, RMSD: rmsd, Duration: time.Since(start), Err: err}
			if err != nil {
				log.Printf("%s failed: %v", m.Name, err)
			} else {
				log.Printf("%s: RMSD %.3f (%v)", m.Name, rmsd, results[i].Duration)
			}
		}(i, m)
	}
	wg.Wait()
	return results
}
