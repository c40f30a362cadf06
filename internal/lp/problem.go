package lp

import (
	"errors"
	"fmt"
)

// Direction is the optimisation direction.
type Direction int

const (
	Maximize Direction = iota
	Minimize
)

var ErrNoObjective = errors.New("lp: problem has no objective")

// Problem is a binary integer program under construction.
type Problem struct {
	Name        string
	Direction   Direction
	vars        []Var
	objective   Expr
	hasObj      bool
	constraints []Constraint
}

func NewProblem(name string, dir Direction) *Problem {
	return &Problem{Name: name, Direction: dir}
}

// NewBinary adds a 0/1 variable.
func (p *Problem) NewBinary(name string) Var {
	v := Var{ID: len(p.vars), Name: name}
	p.vars = append(p.vars, v)
	return v
}

func (p *Problem) Vars() []Var { return append([]Var(nil), p.vars...) }

func (p *Problem) NumVars() int { return len(p.vars) }

// SetObjective replaces the objective.
func (p *Problem) SetObjective(e Expr) {
	p.objective = e
	p.hasObj = true
}

// Objective returns the objective and whether one was set.
func (p *Problem) Objective() (Expr, bool) { return p.objective, p.hasObj }

// Add appends constraints. A constraint naming a variable from another
// problem is rejected.
func (p *Problem) Add(cs ...Constraint) error {
	for _, c := range cs {
		for id := range c.Expr.coefs {
			if id < 0 || id >= len(p.vars) {
				return fmt.Errorf("lp: constraint %q references unknown variable %d", c.Name, id)
			}
		}
		p.constraints = append(p.constraints, c)
	}
	return nil
}

func (p *Problem) Constraints() []Constraint {
	return append([]Constraint(nil), p.constraints...)
}
