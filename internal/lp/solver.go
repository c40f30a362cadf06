package lp

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	glp "gonum.org/v1/gonum/optimize/convex/lp"
)

var (
	negInf = math.Inf(-1)
	posInf = math.Inf(1)
)

var ErrNodeLimit = errors.New("lp: node limit reached")

// Status is the outcome of a solve.
type Status int

const (
	NotSolved Status = iota
	Optimal
	Infeasible
	NodeLimit
)

func (s Status) String() string {
	switch s {
	case NotSolved:
		return "Not Solved"
	case Optimal:
		return "Optimal"
	case Infeasible:
		return "Infeasible"
	case NodeLimit:
		return "Node Limit"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Solution is a solved assignment. Values is indexed by Var.ID.
type Solution struct {
	Status     Status
	Objective  float64
	Values     []float64
	Nodes      int
	LPFailures int
}

func (s *Solution) Value(v Var) float64 {
	if s == nil || v.ID >= len(s.Values) {
		return 0
	}
	return s.Values[v.ID]
}

// Selected reports whether a binary variable was set to one.
func (s *Solution) Selected(v Var) bool { return s.Value(v) > 0.5 }

// Eval evaluates an expression against the solution.
func (s *Solution) Eval(e Expr) float64 {
	if s == nil || s.Values == nil {
		return e.constant
	}
	return e.Eval(s.Values)
}

// Solver solves a Problem. Implementations are synchronous.
type Solver interface {
	Solve(p *Problem) (*Solution, error)
}

const (
	DefaultMaxNodes  = 2000000
	DefaultTolerance = 1e-6
)

// BranchAndBound is a depth-first branch-and-bound for binary programs.
// Each node runs bound propagation over the constraints and, when the LP
// relaxation solves, prunes against the incumbent with the simplex bound.
// If the relaxation fails the node is bounded by the sum of positive
// objective coefficients instead, so simplex trouble never cuts off a
// feasible subtree.
type BranchAndBound struct {
	Tolerance float64
	MaxNodes  int
}

func NewBranchAndBound() *BranchAndBound {
	return &BranchAndBound{Tolerance: DefaultTolerance, MaxNodes: DefaultMaxNodes}
}

func (b *BranchAndBound) Solve(p *Problem) (*Solution, error) {
	obj, ok := p.Objective()
	if !ok {
		return &Solution{Status: NotSolved}, ErrNoObjective
	}
	tol := b.Tolerance
	if tol <= 0 {
		tol = DefaultTolerance
	}
	maxNodes := b.MaxNodes
	if maxNodes <= 0 {
		maxNodes = DefaultMaxNodes
	}

	s := newSearch(p, obj, tol, maxNodes)
	sol := &Solution{Status: Infeasible}
	if s.infeasible {
		return sol, nil
	}

	fixed := make([]int8, s.n)
	for i := range fixed {
		fixed[i] = free
	}
	err := s.dfs(fixed)
	sol.Nodes = s.nodes
	sol.LPFailures = s.lpFailures
	if s.found {
		sol.Values = s.best
		sol.Objective = s.bestVal
		if p.Direction == Minimize {
			sol.Objective = -s.bestVal
		}
		sol.Status = Optimal
	}
	if err != nil {
		sol.Status = NodeLimit
		return sol, err
	}
	return sol, nil
}

const free int8 = -1

type row struct {
	name   string
	idx    []int
	coef   []float64
	lo, hi float64
}

type search struct {
	n          int
	obj        []float64
	objConst   float64
	rows       []row
	tol        float64
	maxNodes   int
	infeasible bool

	nodes      int
	lpFailures int
	found      bool
	best       []float64
	bestVal    float64
}

func newSearch(p *Problem, obj Expr, tol float64, maxNodes int) *search {
	s := &search{
		n:        p.NumVars(),
		obj:      make([]float64, p.NumVars()),
		tol:      tol,
		maxNodes: maxNodes,
	}
	sign := 1.0
	if p.Direction == Minimize {
		sign = -1.0
	}
	for id, c := range obj.coefs {
		s.obj[id] = sign * c
	}
	s.objConst = sign * obj.constant

	for _, c := range p.constraints {
		lo, hi := c.bounds()
		r := row{name: c.Name, lo: lo, hi: hi}
		for _, id := range c.Expr.ids() {
			if coef := c.Expr.coefs[id]; coef != 0 {
				r.idx = append(r.idx, id)
				r.coef = append(r.coef, coef)
			}
		}
		if len(r.idx) == 0 {
			if 0 < lo-tol || 0 > hi+tol {
				s.infeasible = true
			}
			continue
		}
		s.rows = append(s.rows, r)
	}
	return s
}

func (s *search) objEps() float64 {
	return 1e-9 * (1 + math.Abs(s.bestVal))
}

func (s *search) dfs(fixed []int8) error {
	s.nodes++
	if s.nodes > s.maxNodes {
		return ErrNodeLimit
	}

	trail, ok := s.propagate(fixed)
	defer func() {
		for _, j := range trail {
			fixed[j] = free
		}
	}()
	if !ok {
		return nil
	}

	var open []int
	fixedVal := s.objConst
	for j, v := range fixed {
		switch v {
		case free:
			open = append(open, j)
		case 1:
			fixedVal += s.obj[j]
		}
	}

	if len(open) == 0 {
		x := assignment(fixed, nil, nil)
		s.offer(x, fixedVal)
		return nil
	}

	bound, xs, lpOK := s.relax(fixed, open, fixedVal)
	if !lpOK {
		s.lpFailures++
		bound = fixedVal
		for _, j := range open {
			if s.obj[j] > 0 {
				bound += s.obj[j]
			}
		}
	}
	if s.found && bound <= s.bestVal+s.objEps() {
		return nil
	}

	if lpOK && integral(xs, s.tol) {
		x := assignment(fixed, open, xs)
		if s.feasible(x) {
			s.offer(x, s.value(x))
			return nil
		}
	}

	j, first := s.branchVar(open, xs, lpOK)
	for _, v := range [2]int8{first, 1 - first} {
		fixed[j] = v
		err := s.dfs(fixed)
		fixed[j] = free
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *search) offer(x []float64, val float64) {
	if !s.feasible(x) {
		return
	}
	if !s.found || val > s.bestVal+s.objEps() {
		s.found = true
		s.best = x
		s.bestVal = val
	}
}

func (s *search) value(x []float64) float64 {
	v := s.objConst
	for j, c := range s.obj {
		v += c * x[j]
	}
	return v
}

func (s *search) feasible(x []float64) bool {
	for _, r := range s.rows {
		act := 0.0
		for k, j := range r.idx {
			act += r.coef[k] * x[j]
		}
		if act < r.lo-s.tol || act > r.hi+s.tol {
			return false
		}
	}
	return true
}

// propagate fixes variables whose other value would violate some row and
// reports false when a row can no longer be satisfied. It returns the
// variables it fixed so the caller can undo them.
func (s *search) propagate(fixed []int8) ([]int, bool) {
	var trail []int
	for changed := true; changed; {
		changed = false
		for _, r := range s.rows {
			minAct, maxAct := 0.0, 0.0
			for k, j := range r.idx {
				c := r.coef[k]
				switch {
				case fixed[j] == 1:
					minAct += c
					maxAct += c
				case fixed[j] == free && c < 0:
					minAct += c
				case fixed[j] == free:
					maxAct += c
				}
			}
			if minAct > r.hi+s.tol || maxAct < r.lo-s.tol {
				return trail, false
			}
			for k, j := range r.idx {
				if fixed[j] != free {
					continue
				}
				c := r.coef[k]
				force := free
				if c > 0 {
					if minAct+c > r.hi+s.tol {
						force = 0
					} else if maxAct-c < r.lo-s.tol {
						force = 1
					}
				} else {
					if maxAct+c < r.lo-s.tol {
						force = 0
					} else if minAct-c > r.hi+s.tol {
						force = 1
					}
				}
				if force != free {
					fixed[j] = force
					trail = append(trail, j)
					changed = true
				}
			}
		}
	}
	return trail, true
}

// relax solves the LP relaxation over the open variables in standard form:
// one slack per inequality row and one per 0<=x<=1 bound.
func (s *search) relax(fixed []int8, open []int, fixedVal float64) (float64, []float64, bool) {
	col := make(map[int]int, len(open))
	for k, j := range open {
		col[j] = k
	}
	nf := len(open)

	type stdRow struct {
		coef  map[int]float64
		rhs   float64
		slack bool
	}
	var eqs, ineqs []stdRow
	for _, r := range s.rows {
		act := 0.0
		coef := make(map[int]float64)
		for k, j := range r.idx {
			if fixed[j] == 1 {
				act += r.coef[k]
			} else if fixed[j] == free {
				coef[col[j]] = r.coef[k]
			}
		}
		if len(coef) == 0 {
			continue
		}
		lo, hi := r.lo-act, r.hi-act
		if lo == hi {
			eqs = append(eqs, stdRow{coef: coef, rhs: hi})
			continue
		}
		if !math.IsInf(hi, 1) {
			ineqs = append(ineqs, stdRow{coef: coef, rhs: hi, slack: true})
		}
		if !math.IsInf(lo, -1) {
			neg := make(map[int]float64, len(coef))
			for k, c := range coef {
				neg[k] = -c
			}
			ineqs = append(ineqs, stdRow{coef: neg, rhs: -lo, slack: true})
		}
	}

	m := len(eqs) + len(ineqs) + nf
	n := nf + len(ineqs) + nf
	if m > n {
		return 0, nil, false
	}
	A := mat.NewDense(m, n, nil)
	b := make([]float64, m)
	i := 0
	for _, r := range eqs {
		sign := 1.0
		if r.rhs < 0 {
			sign = -1.0
		}
		for k, c := range r.coef {
			A.Set(i, k, sign*c)
		}
		b[i] = sign * r.rhs
		i++
	}
	for si, r := range ineqs {
		sign := 1.0
		if r.rhs < 0 {
			sign = -1.0
		}
		for k, c := range r.coef {
			A.Set(i, k, sign*c)
		}
		A.Set(i, nf+si, sign)
		b[i] = sign * r.rhs
		i++
	}
	for k := 0; k < nf; k++ {
		A.Set(i, k, 1)
		A.Set(i, nf+len(ineqs)+k, 1)
		b[i] = 1
		i++
	}

	c := make([]float64, n)
	for k, j := range open {
		c[k] = -s.obj[j]
	}
	optF, x, err := simplex(c, A, b)
	if err != nil || len(x) < nf {
		return 0, nil, false
	}
	return fixedVal - optF, x[:nf], true
}

func simplex(c []float64, A mat.Matrix, b []float64) (f float64, x []float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lp: simplex: %v", r)
		}
	}()
	return glp.Simplex(c, A, b, 1e-10, nil)
}

func (s *search) branchVar(open []int, xs []float64, lpOK bool) (int, int8) {
	if lpOK {
		bestK, bestFrac := 0, -1.0
		for k := range open {
			frac := math.Min(xs[k], 1-xs[k])
			if frac > bestFrac+1e-12 {
				bestK, bestFrac = k, frac
			}
		}
		first := int8(0)
		if xs[bestK] >= 0.5 {
			first = 1
		}
		return open[bestK], first
	}
	best := open[0]
	for _, j := range open[1:] {
		if s.obj[j] > s.obj[best] {
			best = j
		}
	}
	return best, 1
}

func integral(xs []float64, tol float64) bool {
	for _, v := range xs {
		if math.Abs(v-math.Round(v)) > tol {
			return false
		}
	}
	return true
}

func assignment(fixed []int8, open []int, xs []float64) []float64 {
	x := make([]float64, len(fixed))
	for j, v := range fixed {
		if v == 1 {
			x[j] = 1
		}
	}
	for k, j := range open {
		x[j] = math.Round(xs[k])
	}
	return x
}
