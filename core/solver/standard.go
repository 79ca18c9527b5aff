package solver

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/kilianp07/esom/core/lp"
)

// colRef maps a standard-form column back onto a model variable:
// x = offset + sign*y.
type colRef struct {
	col  int
	sign float64
}

type sparseRow struct {
	coef  map[int]float64 // structural column -> coefficient
	slack float64         // +1 for <=, -1 for >=, 0 for =
	rhs   float64
	name  string
}

// standardForm is min cᵀy s.t. Ay = b, y >= 0 obtained from a general model
// by shifting bounds, splitting free variables and adding slack columns.
type standardForm struct {
	c          []float64
	a          *mat.Dense
	b          []float64
	offset     []float64  // per model variable
	refs       [][]colRef // per model variable, structural columns
	keep       []int      // structural column -> dense column, -1 if dropped
	nStruct    int
	unbounded  bool
	infeasible bool
}

func (sf *standardForm) rows() int {
	if sf.a == nil {
		return 0
	}
	r, _ := sf.a.Dims()
	return r
}

// toStandard converts m. Empty rows are checked and removed, columns that
// appear in no row are fixed at their lower bound (or flag the model as
// unbounded when their cost is negative) since the simplex rejects zero
// columns. maxCells bounds the dense matrix size; 0 disables the check.
func toStandard(m *lp.Model, tol float64, maxCells int) (*standardForm, error) {
	vars := m.Variables()
	sf := &standardForm{
		offset: make([]float64, len(vars)),
		refs:   make([][]colRef, len(vars)),
	}
	var cost []float64
	var rows []sparseRow
	newCol := func() int {
		cost = append(cost, 0)
		return len(cost) - 1
	}

	for j, v := range vars {
		lowInf, upInf := math.IsInf(v.Lower, -1), math.IsInf(v.Upper, 1)
		switch {
		case !lowInf:
			sf.offset[j] = v.Lower
			col := newCol()
			sf.refs[j] = []colRef{{col: col, sign: 1}}
			if !upInf {
				rows = append(rows, sparseRow{
					coef:  map[int]float64{col: 1},
					slack: 1,
					rhs:   v.Upper - v.Lower,
					name:  "bound_" + v.Name,
				})
			}
		case !upInf:
			sf.offset[j] = v.Upper
			sf.refs[j] = []colRef{{col: newCol(), sign: -1}}
		default:
			sf.refs[j] = []colRef{{col: newCol(), sign: 1}, {col: newCol(), sign: -1}}
		}
	}

	sense := 1.0
	if m.Sense == lp.Maximize {
		sense = -1
	}
	obj, _ := m.Objective()
	for _, t := range obj {
		for _, r := range sf.refs[t.Var] {
			cost[r.col] += sense * t.Coef * r.sign
		}
	}

	for _, c := range m.Constraints() {
		row := sparseRow{coef: make(map[int]float64, len(c.Terms)), rhs: c.RHS, name: c.Name}
		switch c.Rel {
		case lp.LessEqual:
			row.slack = 1
		case lp.GreaterEqual:
			row.slack = -1
		}
		for _, t := range c.Terms {
			row.rhs -= t.Coef * sf.offset[t.Var]
			for _, r := range sf.refs[t.Var] {
				row.coef[r.col] += t.Coef * r.sign
			}
		}
		for col, v := range row.coef {
			if v == 0 {
				delete(row.coef, col)
			}
		}
		rows = append(rows, row)
	}

	// drop empty rows after checking them
	kept := rows[:0]
	for _, r := range rows {
		if len(r.coef) > 0 {
			kept = append(kept, r)
			continue
		}
		switch {
		case r.slack > 0 && r.rhs < -tol,
			r.slack < 0 && r.rhs > tol,
			r.slack == 0 && math.Abs(r.rhs) > tol:
			sf.infeasible = true
		}
	}
	rows = kept

	used := make([]bool, len(cost))
	for _, r := range rows {
		for col := range r.coef {
			used[col] = true
		}
	}
	sf.keep = make([]int, len(cost))
	n := 0
	for col := range cost {
		if !used[col] {
			sf.keep[col] = -1
			if cost[col] < -tol {
				sf.unbounded = true
			}
			continue
		}
		sf.keep[col] = n
		n++
	}
	sf.nStruct = n

	nSlack := 0
	for _, r := range rows {
		if r.slack != 0 {
			nSlack++
		}
	}
	nRows, nCols := len(rows), n+nSlack
	if nRows == 0 {
		return sf, nil
	}
	if maxCells > 0 && nRows*nCols > maxCells {
		return nil, ErrTooLarge
	}

	sf.c = make([]float64, nCols)
	for col, c := range cost {
		if k := sf.keep[col]; k >= 0 {
			sf.c[k] = c
		}
	}
	sf.a = mat.NewDense(nRows, nCols, nil)
	sf.b = make([]float64, nRows)
	slackCol := n
	for i, r := range rows {
		// keep b non-negative
		sign := 1.0
		if r.rhs < 0 {
			sign = -1
		}
		for col, v := range r.coef {
			sf.a.Set(i, sf.keep[col], sign*v)
		}
		if r.slack != 0 {
			sf.a.Set(i, slackCol, sign*r.slack)
			slackCol++
		}
		sf.b[i] = sign * r.rhs
	}
	return sf, nil
}

// recover maps a standard-form solution back onto model variables.
func (sf *standardForm) recover(y []float64) []float64 {
	x := make([]float64, len(sf.offset))
	for j := range x {
		x[j] = sf.offset[j]
		for _, r := range sf.refs[j] {
			k := sf.keep[r.col]
			if k < 0 || k >= len(y) {
				continue
			}
			v := y[k]
			if v < 0 {
				v = 0
			}
			x[j] += r.sign * v
		}
	}
	return x
}
