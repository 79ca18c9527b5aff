// Package lp is a small linear-program representation with named
// variables and constraints, independent of any solver.
package lp

import (
	"fmt"
	"math"
)

// Sense is the optimization direction of a model.
type Sense int

const (
	Minimize Sense = iota
	Maximize
)

func (s Sense) String() string {
	if s == Maximize {
		return "maximize"
	}
	return "minimize"
}

// Relation is the comparison operator of a linear constraint.
type Relation int

const (
	LessEqual Relation = iota
	GreaterEqual
	Equal
)

func (r Relation) String() string {
	switch r {
	case GreaterEqual:
		return ">="
	case Equal:
		return "="
	default:
		return "<="
	}
}

// VarID identifies a variable inside its Model.
type VarID int

// Variable is a continuous decision variable with bounds. Lower may be
// -Inf and Upper may be +Inf.
type Variable struct {
	Name  string
	Lower float64
	Upper float64
}

// Term is a coefficient applied to a variable.
type Term struct {
	Var  VarID
	Coef float64
}

// Expr is a linear expression without constant.
type Expr []Term

// Add appends coef*v to the expression. Zero coefficients are skipped.
func (e Expr) Add(v VarID, coef float64) Expr {
	if coef == 0 {
		return e
	}
	return append(e, Term{Var: v, Coef: coef})
}

// Constraint is a named linear row: Terms Rel RHS.
type Constraint struct {
	Name  string
	Terms Expr
	Rel   Relation
	RHS   float64
}

// Model is a solver-independent linear program. It is built once and never
// mutated by solvers.
type Model struct {
	Name      string
	Sense     Sense
	vars      []Variable
	index     map[string]VarID
	cons      []Constraint
	conNames  map[string]struct{}
	objective Expr
	objConst  float64
}

// NewModel creates an empty model.
func NewModel(name string, sense Sense) *Model {
	return &Model{
		Name:     name,
		Sense:    sense,
		index:    make(map[string]VarID),
		conNames: make(map[string]struct{}),
	}
}

// AddVariable declares a variable. Declaring the same name twice or passing
// lower > upper is a programming error and panics.
func (m *Model) AddVariable(name string, lower, upper float64) VarID {
	if _, ok := m.index[name]; ok {
		panic(fmt.Sprintf("lp: variable %q declared twice", name))
	}
	if math.IsNaN(lower) || math.IsNaN(upper) || lower > upper {
		panic(fmt.Sprintf("lp: variable %q has invalid bounds [%v, %v]", name, lower, upper))
	}
	id := VarID(len(m.vars))
	m.vars = append(m.vars, Variable{Name: name, Lower: lower, Upper: upper})
	m.index[name] = id
	return id
}

// AddConstraint appends a row. Terms must reference declared variables.
func (m *Model) AddConstraint(name string, terms Expr, rel Relation, rhs float64) {
	if _, ok := m.conNames[name]; ok {
		panic(fmt.Sprintf("lp: constraint %q declared twice", name))
	}
	for _, t := range terms {
		m.mustHave(t.Var, name)
	}
	m.conNames[name] = struct{}{}
	m.cons = append(m.cons, Constraint{Name: name, Terms: terms, Rel: rel, RHS: rhs})
}

// SetObjective replaces the objective with terms + constant.
func (m *Model) SetObjective(terms Expr, constant float64) {
	for _, t := range terms {
		m.mustHave(t.Var, "objective")
	}
	m.objective = terms
	m.objConst = constant
}

func (m *Model) mustHave(id VarID, where string) {
	if id < 0 || int(id) >= len(m.vars) {
		panic(fmt.Sprintf("lp: %s references undeclared variable %d", where, id))
	}
}

// Lookup returns the id of a named variable.
func (m *Model) Lookup(name string) (VarID, bool) {
	id, ok := m.index[name]
	return id, ok
}

// Variable returns the declaration of id.
func (m *Model) Variable(id VarID) Variable { return m.vars[id] }

// Variables returns the declared variables in declaration order.
func (m *Model) Variables() []Variable { return m.vars }

// Constraints returns the rows in declaration order.
func (m *Model) Constraints() []Constraint { return m.cons }

// Objective returns the objective terms and constant.
func (m *Model) Objective() (Expr, float64) { return m.objective, m.objConst }

// NumVariables returns the number of declared variables.
func (m *Model) NumVariables() int { return len(m.vars) }

// NumConstraints returns the number of rows.
func (m *Model) NumConstraints() int { return len(m.cons) }

// Evaluate computes the objective for the given values indexed by VarID.
func (m *Model) Evaluate(x []float64) float64 {
	v := m.objConst
	for _, t := range m.objective {
		v += t.Coef * x[t.Var]
	}
	return v
}
