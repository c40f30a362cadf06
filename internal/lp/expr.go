// Package lp models small binary integer programs and solves them by
// branch-and-bound, bounding each node with gonum's simplex.
package lp

import (
	"fmt"
	"sort"
)

// Var is a binary decision variable owned by a Problem.
type Var struct {
	ID   int
	Name string
}

// Expr is a linear expression: a sum of coefficient*variable terms plus a constant.
// Expressions are values; every operation returns a new Expr.
type Expr struct {
	coefs    map[int]float64
	constant float64
}

// Const returns a constant expression.
func Const(c float64) Expr {
	return Expr{constant: c}
}

// Term returns coef*v.
func Term(v Var, coef float64) Expr {
	return Expr{coefs: map[int]float64{v.ID: coef}}
}

// Sum adds expressions together.
func Sum(exprs ...Expr) Expr {
	out := Expr{coefs: make(map[int]float64)}
	for _, e := range exprs {
		for id, c := range e.coefs {
			out.coefs[id] += c
		}
		out.constant += e.constant
	}
	return out
}

func (e Expr) Add(o Expr) Expr { return Sum(e, o) }

func (e Expr) Sub(o Expr) Expr { return Sum(e, o.Scale(-1)) }

// Scale multiplies every term and the constant by k.
func (e Expr) Scale(k float64) Expr {
	out := Expr{coefs: make(map[int]float64, len(e.coefs)), constant: e.constant * k}
	for id, c := range e.coefs {
		out.coefs[id] = c * k
	}
	return out
}

// Constant returns the constant part.
func (e Expr) Constant() float64 { return e.constant }

// Coef returns the coefficient of v (zero when absent).
func (e Expr) Coef(v Var) float64 { return e.coefs[v.ID] }

// Len is the number of terms, including terms with a zero coefficient.
func (e Expr) Len() int { return len(e.coefs) }

// Eval computes the expression for an assignment indexed by variable id.
func (e Expr) Eval(x []float64) float64 {
	v := e.constant
	for id, c := range e.coefs {
		v += c * x[id]
	}
	return v
}

func (e Expr) ids() []int {
	ids := make([]int, 0, len(e.coefs))
	for id := range e.coefs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Sense is the comparison used by a Constraint.
type Sense int

const (
	LessEq Sense = iota
	GreaterEq
	Equal
)

func (s Sense) String() string {
	switch s {
	case LessEq:
		return "<="
	case GreaterEq:
		return ">="
	case Equal:
		return "=="
	default:
		return fmt.Sprintf("Sense(%d)", int(s))
	}
}

// Constraint is Expr (sense) RHS with the expression's constant folded into RHS.
type Constraint struct {
	Name  string
	Expr  Expr
	Sense Sense
	RHS   float64
}

func newConstraint(e Expr, s Sense, rhs float64) Constraint {
	return Constraint{
		Expr:  Expr{coefs: e.coefs, constant: 0},
		Sense: s,
		RHS:   rhs - e.constant,
	}
}

// Le builds e <= rhs.
func (e Expr) Le(rhs float64) Constraint { return newConstraint(e, LessEq, rhs) }

// Ge builds e >= rhs.
func (e Expr) Ge(rhs float64) Constraint { return newConstraint(e, GreaterEq, rhs) }

// Eq builds e == rhs.
func (e Expr) Eq(rhs float64) Constraint { return newConstraint(e, Equal, rhs) }

// LeExpr builds e <= o.
func (e Expr) LeExpr(o Expr) Constraint { return e.Sub(o).Le(0) }

// GeExpr builds e >= o.
func (e Expr) GeExpr(o Expr) Constraint { return e.Sub(o).Ge(0) }

// Named returns a copy of c with a name, used in error messages.
func (c Constraint) Named(name string) Constraint {
	c.Name = name
	return c
}

// Satisfied reports whether the assignment x meets the constraint within tol.
func (c Constraint) Satisfied(x []float64, tol float64) bool {
	v := c.Expr.Eval(x)
	switch c.Sense {
	case LessEq:
		return v <= c.RHS+tol
	case GreaterEq:
		return v >= c.RHS-tol
	default:
		return v >= c.RHS-tol && v <= c.RHS+tol
	}
}

func (c Constraint) bounds() (lo, hi float64) {
	switch c.Sense {
	case LessEq:
		return negInf, c.RHS
	case GreaterEq:
		return c.RHS, posInf
	default:
		return c.RHS, c.RHS
	}
}
