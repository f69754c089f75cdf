/*
 * xfit.go, part of gofit.
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

//Package fit implements weighted and iterative superposition schemes on
//top of the basic Kabsch fit: outlier-rejecting pairwise fits, fits of a
//whole ensemble to its evolving mean, sliding-window local RMSD profiles
//and GDT scores.
package fit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	gofit "github.com/strucbio/gofit"
)

//Default iteration counts for the weighted fits.
const (
	PairCycles  = 10
	IntraCycles = 20
)

//minVar floors the per-atom squared deviations so a perfectly matching
//atom does not get infinite weight.
const minVar = 1e-3

//A Result holds the outcome of a weighted fit: the transformation, the
//final per-atom weights and the weighted RMSD they produce.
type Result struct {
	Rot    *mat.Dense
	T1, T2 []float64
	//Weights holds the final per-atom weights, parallel to the fitted
	//selection.
	Weights []float64
	RMSD    float64
	Cycles  int
}

//LogWeights returns -ln(w) per atom, a b-factor-like measure of how much
//each atom was down-weighted during the fit.
func (r *Result) LogWeights() []float64 {
	ret := make([]float64, len(r.Weights))
	for i, w := range r.Weights {
		ret[i] = -math.Log(w)
	}
	return ret
}

//XFit superimposes mobile on target with an iteratively reweighted
//Kabsch fit: after each fit the weights become the inverse squared
//deviations, so well-fitting atoms dominate the next cycle and flexible
//regions stop dragging the rigid core around. cycles <= 0 means
//PairCycles. The matrices are not modified; the returned Result carries
//the transformation for the last cycle.
func XFit(mobile, target *mat.Dense, cycles int) (*Result, error) {
	if cycles <= 0 {
		cycles = PairCycles
	}
	n, _ := mobile.Dims()
	tn, _ := target.Dims()
	if n != tn {
		return nil, fmt.Errorf("xfit: mismatched coordinate sets: %d, %d", n, tn)
	}
	var w []float64
	res := &Result{}
	for c := 0; c < cycles; c++ {
		rot, t1, t2, err := gofit.RotTrans(mobile, target, w)
		if err != nil {
			return nil, err
		}
		moved := gofit.ApplyRotTrans(mobile, rot, t1, t2)
		d2, err := gofit.DistSq(moved, target)
		if err != nil {
			return nil, err
		}
		w = make([]float64, n)
		var wsum, dsum float64
		for i, d := range d2 {
			w[i] = 1.0 / math.Max(d, minVar)
			wsum += w[i]
			dsum += w[i] * d
		}
		res.Rot, res.T1, res.T2 = rot, t1, t2
		res.Weights = w
		res.RMSD = math.Sqrt(dsum / wsum)
		res.Cycles = c + 1
	}
	//normalize so the largest weight is 1 and -ln(w) starts at 0
	var wmax float64
	for _, v := range res.Weights {
		if v > wmax {
			wmax = v
		}
	}
	for i := range res.Weights {
		res.Weights[i] /= wmax
	}
	return res, nil
}

//IntraXFit fits every state of the ensemble to the evolving ensemble
//mean with per-atom weights from the inverse variance across states,
//iterating until the cycles run out. The returned transformations, one
//per state, map each original state onto the frame of state ref, so
//applying them leaves state ref where it was. Weights are parallel to
//the atom rows.
func IntraXFit(states []*mat.Dense, ref, cycles int) ([]*Result, []float64, error) {
	if len(states) < 2 {
		return nil, nil, fmt.Errorf("intra xfit: need at least 2 states, got %d", len(states))
	}
	if ref < 0 || ref >= len(states) {
		return nil, nil, fmt.Errorf("intra xfit: reference state %d out of range", ref)
	}
	if cycles <= 0 {
		cycles = IntraCycles
	}
	n, _ := states[0].Dims()
	for _, s := range states {
		if r, _ := s.Dims(); r != n {
			return nil, nil, fmt.Errorf("intra xfit: states differ in atom count")
		}
	}
	work := make([]*mat.Dense, len(states))
	for i, s := range states {
		work[i] = mat.DenseCopyOf(s)
	}
	var w []float64
	for c := 0; c < cycles; c++ {
		m := meanState(work)
		for i := range work {
			rot, t1, t2, err := gofit.RotTrans(work[i], m, w)
			if err != nil {
				return nil, nil, err
			}
			work[i] = gofit.ApplyRotTrans(work[i], rot, t1, t2)
		}
		w = invVariance(work)
	}
	//final pass: each original state fitted straight onto the converged
	//frame, expressed relative to state ref so that state stays put.
	m := meanState(work)
	rref, t1ref, t2ref, err := gofit.RotTrans(m, states[ref], w)
	if err != nil {
		return nil, nil, err
	}
	results := make([]*Result, len(states))
	for i := range states {
		rot, t1, t2, err := gofit.RotTrans(states[i], m, w)
		if err != nil {
			return nil, nil, err
		}
		moved := gofit.ApplyRotTrans(gofit.ApplyRotTrans(states[i], rot, t1, t2), rref, t1ref, t2ref)
		rmsd, err := weightedRMSD(moved, gofit.ApplyRotTrans(m, rref, t1ref, t2ref), w)
		if err != nil {
			return nil, nil, err
		}
		//compose the two steps into a single transformation
		crot := mat.NewDense(3, 3, nil)
		crot.Mul(rot, rref)
		ct2 := make([]float64, 3)
		tmp := mat.NewDense(1, 3, []float64{t2[0] + t1ref[0], t2[1] + t1ref[1], t2[2] + t1ref[2]})
		var rt mat.Dense
		rt.Mul(tmp, rref)
		for a := 0; a < 3; a++ {
			ct2[a] = rt.At(0, a) + t2ref[a]
		}
		results[i] = &Result{Rot: crot, T1: t1, T2: ct2, Weights: w, RMSD: rmsd, Cycles: cycles}
	}
	return results, w, nil
}

//meanState returns the arithmetic mean of the given coordinate sets.
func meanState(states []*mat.Dense) *mat.Dense {
	n, _ := states[0].Dims()
	m := mat.NewDense(n, 3, nil)
	for _, s := range states {
		m.Add(m, s)
	}
	m.Scale(1.0/float64(len(states)), m)
	return m
}

//invVariance returns per-atom weights 1/var, with var the mean squared
//deviation of each atom from its ensemble mean position, floored at
//minVar and normalized to a maximum of 1.
func invVariance(states []*mat.Dense) []float64 {
	n, _ := states[0].Dims()
	m := meanState(states)
	v := make([]float64, n)
	for _, s := range states {
		for i := 0; i < n; i++ {
			for a := 0; a < 3; a++ {
				d := s.At(i, a) - m.At(i, a)
				v[i] += d * d
			}
		}
	}
	w := make([]float64, n)
	var wmax float64
	for i := range v {
		w[i] = 1.0 / math.Max(v[i]/float64(len(states)), minVar)
		if w[i] > wmax {
			wmax = w[i]
		}
	}
	for i := range w {
		w[i] /= wmax
	}
	return w
}

func weightedRMSD(a, b *mat.Dense, w []float64) (float64, error) {
	d2, err := gofit.DistSq(a, b)
	if err != nil {
		return 0, err
	}
	var wsum, dsum float64
	for i, d := range d2 {
		wi := 1.0
		if w != nil {
			wi = w[i]
		}
		wsum += wi
		dsum += wi * d
	}
	return math.Sqrt(dsum / wsum), nil
}
