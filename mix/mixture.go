/*
 * mixture.go, part of gofit.
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

//Package mix decomposes a structural ensemble into rigid pieces with
//expectation-maximization over mixtures of superpositions: Segments
//assigns each atom to one of K rigid segments (domains that move as
//units between the states), while Conformers assigns each state to one
//of K conformations. K can be scanned and the decomposition with the
//best Bayesian information criterion kept.
package mix

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	gofit "github.com/strucbio/gofit"
)

//Iteration controls for the EM loops.
const (
	MaxIter = 50
	tolLogL = 1e-4
	minSig  = 0.05
	//an item only changes component when the alternative is better by
	//this much in log likelihood, so numerically tied components cannot
	//steal each other's members back and forth
	switchMargin = 1e-6
	//KScanMax is the largest K tried when the caller asks for a scan.
	KScanMax = 6
)

//A Result holds one mixture decomposition. Membership assigns each item
//(atom for Segments, state for Conformers) to a component in 0..K-1.
type Result struct {
	K          int
	Membership []int
	//Sigma is the per-component deviation scale, W the mixing weights.
	Sigma      []float64
	W          []float64
	LogL       float64
	BIC        float64
	Iterations int
}

//Segments decomposes an ensemble of paired guide-atom coordinate sets
//into K rigid segments: groups of atoms that move together between the
//states, each with its own superposition per state. K = 0 scans
//2..KScanMax and keeps the decomposition with the lowest BIC. The first
//state is the reference the other states are fitted against.
func Segments(states []*mat.Dense, K int) (*Result, error) {
	if len(states) < 2 {
		return nil, fmt.Errorf("mix: need at least 2 states, got %d", len(states))
	}
	n, _ := states[0].Dims()
	for _, s := range states {
		if r, c := s.Dims(); r != n || c != 3 {
			return nil, fmt.Errorf("mix: ill-formed or mismatched states")
		}
	}
	if K == 0 {
		return scan(func(k int) (*Result, error) { return segmentsK(states, k) })
	}
	return segmentsK(states, K)
}

func segmentsK(states []*mat.Dense, K int) (*Result, error) {
	n, _ := states[0].Dims()
	if K < 2 || K > n/3 {
		return nil, fmt.Errorf("mix: cannot split %d atoms into %d segments", n, K)
	}
	//contiguous block init: real domains are mostly contiguous in
	//sequence, so equal consecutive blocks are a decent starting point.
	member := make([]int, n)
	for i := range member {
		member[i] = i * K / n
	}
	res := &Result{K: K, Membership: member,
		Sigma: make([]float64, K), W: make([]float64, K)}
	for k := range res.Sigma {
		res.Sigma[k] = 1.0
		res.W[k] = 1.0 / float64(K)
	}
	prev := math.Inf(-1)
	for iter := 1; iter <= MaxIter; iter++ {
		//M step part 1: refit each segment in each non-reference state,
		//collecting per-atom squared deviations under each segment's
		//transformation.
		d2, err := segmentDeviations(states, res.Membership, K)
		if err != nil {
			return nil, err
		}
		//M step part 2: sigma and weights from the current assignment
		counts := make([]int, K)
		sums := make([]float64, K)
		for i, k := range res.Membership {
			counts[k]++
			sums[k] += d2[k][i]
		}
		nst := float64(len(states) - 1)
		for k := 0; k < K; k++ {
			if counts[k] == 0 {
				res.Sigma[k] = minSig
				res.W[k] = 1e-6
				continue
			}
			res.Sigma[k] = math.Max(math.Sqrt(sums[k]/(3*nst*float64(counts[k]))), minSig)
			res.W[k] = float64(counts[k]) / float64(len(res.Membership))
		}
		//E step: reassign each atom to its most likely segment. The
		//current segment is only abandoned for a clearly better one.
		var logl float64
		changed := false
		for i := 0; i < n; i++ {
			bestk := res.Membership[i]
			bestl := math.Log(res.W[bestk]) + logDensity(d2[bestk][i]/nst, res.Sigma[bestk])
			var tot float64
			for k := 0; k < K; k++ {
				l := math.Log(res.W[k]) + logDensity(d2[k][i]/nst, res.Sigma[k])
				tot += math.Exp(l)
				if l > bestl+switchMargin {
					bestk, bestl = k, l
				}
			}
			if bestk != res.Membership[i] {
				res.Membership[i] = bestk
				changed = true
			}
			logl += math.Log(tot)
		}
		res.LogL = logl
		res.Iterations = iter
		if !changed || math.Abs(logl-prev) < tolLogL {
			break
		}
		prev = logl
	}
	//parameters: per segment a transformation per non-reference state
	//(6 dof), a sigma and a weight.
	p := float64(K*(6*(len(states)-1)+2) - 1)
	res.BIC = -2*res.LogL + p*math.Log(float64(n*(len(states)-1)))
	return res, nil
}

//segmentDeviations fits each segment of the reference state onto every
//other state and returns, per segment, the squared deviation each atom
//accumulates over all non-reference states under that segment's fits.
func segmentDeviations(states []*mat.Dense, member []int, K int) ([][]float64, error) {
	n, _ := states[0].Dims()
	d2 := make([][]float64, K)
	for k := range d2 {
		d2[k] = make([]float64, n)
	}
	for k := 0; k < K; k++ {
		seg := make([]int, 0, n/K)
		for i, m := range member {
			if m == k {
				seg = append(seg, i)
			}
		}
		if len(seg) < 3 {
			//an empty or tiny segment explains nothing
			for i := range d2[k] {
				d2[k][i] = math.Inf(1)
			}
			continue
		}
		for s := 1; s < len(states); s++ {
			moved, err := gofit.Super(states[s], states[0], seg, seg)
			if err != nil {
				return nil, err
			}
			dev, err := gofit.DistSq(moved, states[0])
			if err != nil {
				return nil, err
			}
			for i, d := range dev {
				d2[k][i] += d
			}
		}
	}
	return d2, nil
}

//Conformers decomposes an ensemble into K conformations: each state is
//assigned to the component whose mean structure it best superimposes on.
//K = 0 scans 2..KScanMax by BIC.
func Conformers(states []*mat.Dense, K int) (*Result, error) {
	if len(states) < 4 {
		return nil, fmt.Errorf("mix: need at least 4 states to cluster, got %d", len(states))
	}
	n, _ := states[0].Dims()
	for _, s := range states {
		if r, c := s.Dims(); r != n || c != 3 {
			return nil, fmt.Errorf("mix: ill-formed or mismatched states")
		}
	}
	if K == 0 {
		return scan(func(k int) (*Result, error) { return conformersK(states, k) })
	}
	return conformersK(states, K)
}

func conformersK(states []*mat.Dense, K int) (*Result, error) {
	n, _ := states[0].Dims()
	if K < 2 || K > len(states)/2 {
		return nil, fmt.Errorf("mix: cannot split %d states into %d conformers", len(states), K)
	}
	member := make([]int, len(states))
	for i := range member {
		member[i] = i * K / len(states)
	}
	res := &Result{K: K, Membership: member,
		Sigma: make([]float64, K), W: make([]float64, K)}
	for k := range res.Sigma {
		res.Sigma[k] = 1.0
		res.W[k] = 1.0 / float64(K)
	}
	prev := math.Inf(-1)
	for iter := 1; iter <= MaxIter; iter++ {
		//M step: mean structure per conformer from its members, each
		//fitted on the running mean first, then sigma and weights.
		means, err := conformerMeans(states, res.Membership, K)
		if err != nil {
			return nil, err
		}
		msd := make([][]float64, K)
		for k := 0; k < K; k++ {
			msd[k] = make([]float64, len(states))
			for s := range states {
				moved, err := gofit.Super(states[s], means[k], nil, nil)
				if err != nil {
					return nil, err
				}
				d2, err := gofit.DistSq(moved, means[k])
				if err != nil {
					return nil, err
				}
				var sum float64
				for _, d := range d2 {
					sum += d
				}
				msd[k][s] = sum / float64(n)
			}
		}
		counts := make([]int, K)
		sums := make([]float64, K)
		for s, k := range res.Membership {
			counts[k]++
			sums[k] += msd[k][s]
		}
		for k := 0; k < K; k++ {
			if counts[k] == 0 {
				res.Sigma[k] = minSig
				res.W[k] = 1e-6
				continue
			}
			res.Sigma[k] = math.Max(math.Sqrt(sums[k]/(3*float64(counts[k]))), minSig)
			res.W[k] = float64(counts[k]) / float64(len(states))
		}
		//E step, with the same switching hysteresis as the segments
		var logl float64
		changed := false
		for s := range states {
			bestk := res.Membership[s]
			bestl := math.Log(res.W[bestk]) + logDensity(msd[bestk][s], res.Sigma[bestk])
			var tot float64
			for k := 0; k < K; k++ {
				l := math.Log(res.W[k]) + logDensity(msd[k][s], res.Sigma[k])
				tot += math.Exp(l)
				if l > bestl+switchMargin {
					bestk, bestl = k, l
				}
			}
			if bestk != res.Membership[s] {
				res.Membership[s] = bestk
				changed = true
			}
			logl += math.Log(tot)
		}
		res.LogL = logl
		res.Iterations = iter
		if !changed || math.Abs(logl-prev) < tolLogL {
			break
		}
		prev = logl
	}
	p := float64(K*(3*n+2) - 1)
	res.BIC = -2*res.LogL + p*math.Log(float64(len(states)))
	return res, nil
}

//conformerMeans returns the mean structure of each component, with every
//member state superimposed on the component's running mean before
//averaging. Empty components inherit the overall mean.
func conformerMeans(states []*mat.Dense, member []int, K int) ([]*mat.Dense, error) {
	n, _ := states[0].Dims()
	means := make([]*mat.Dense, K)
	for k := 0; k < K; k++ {
		var ref *mat.Dense
		count := 0
		for s, m := range member {
			if m != k {
				continue
			}
			if ref == nil {
				ref = mat.DenseCopyOf(states[s])
				count = 1
				continue
			}
			moved, err := gofit.Super(states[s], ref, nil, nil)
			if err != nil {
				return nil, err
			}
			//running mean keeps later members from chasing an
			//unfitted frame
			ref.Scale(float64(count), ref)
			ref.Add(ref, moved)
			count++
			ref.Scale(1.0/float64(count), ref)
		}
		if ref == nil {
			ref = mat.NewDense(n, 3, nil)
			for _, s := range states {
				ref.Add(ref, s)
			}
			ref.Scale(1.0/float64(len(states)), ref)
		}
		means[k] = ref
	}
	return means, nil
}

//logDensity is the log of an isotropic 3D Gaussian density at mean
//squared deviation d2 and scale sigma.
func logDensity(d2, sigma float64) float64 {
	return -d2/(2*sigma*sigma) - 3*math.Log(sigma) - 1.5*math.Log(2*math.Pi)
}

//scan tries K = 2..KScanMax and returns the result with the lowest BIC.
//A K that cannot be estimated (too few items) just ends the scan.
func scan(f func(k int) (*Result, error)) (*Result, error) {
	var best *Result
	for k := 2; k <= KScanMax; k++ {
		r, err := f(k)
		if err != nil {
			if best != nil {
				break
			}
			return nil, err
		}
		if best == nil || r.BIC < best.BIC {
			best = r
		}
	}
	return best, nil
}
