package searcher

import "math"

// uct scores the children of one parent. Child values are sums from the root
// side's perspective.
type uct struct {
	bonus float64 // c^2 * ln(N)
	raveK float64
}

func newUCT(cSquared float64, parentVisits float64, raveK float64) *uct {
	if parentVisits == 0 {
		panic("parent has no visits")
	}
	return &uct{bonus: cSquared * math.Log(parentVisits), raveK: raveK}
}

// evaluate returns q/n + sqrt(c^2*ln(N)/n).
func (u uct) evaluate(q float64, n float64) float64 {
	return q/n + u.explore(n)
}

// evaluateAMAF replaces the mean term with (1-beta)*mean + beta*amafMean when
// the child's action has AMAF samples.
func (u uct) evaluateAMAF(q float64, n float64, amaf amafStat) float64 {
	if u.raveK <= 0 || amaf.count == 0 {
		return u.evaluate(q, n)
	}
	beta := RaveBeta(u.raveK, int(n))
	mean := (1-beta)*q/n + beta*amaf.value/float64(amaf.count)
	return mean + u.explore(n)
}

func (u uct) explore(n float64) float64 {
	if n == 0 {
		panic("child has no visits")
	}
	return math.Sqrt(u.bonus / n)
}

// RaveBeta is the weight given to AMAF statistics for a child with n visits.
// It starts at 1 and decays toward 0 as real visits accumulate.
func RaveBeta(k float64, n int) float64 {
	if k <= 0 {
		return 0
	}
	return math.Sqrt(k / (3*float64(n) + k))
}
