package lp

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
)

// maxLineTerms keeps written rows below the 255 character line limit of
// common LP readers.
const maxLineTerms = 8

// WriteLP writes the model in CPLEX LP format so it can be handed to an
// external solver (CBC, HiGHS, GLPK, CPLEX).
func WriteLP(w io.Writer, m *Model) error {
	bw := bufio.NewWriter(w)
	obj, constant := m.Objective()
	fmt.Fprintf(bw, "\\* %s *\\\n", m.Name)
	if constant != 0 {
		fmt.Fprintf(bw, "\\* objective constant: %s *\\\n", formatNum(constant))
	}
	if m.Sense == Maximize {
		bw.WriteString("Maximize\n")
	} else {
		bw.WriteString("Minimize\n")
	}
	bw.WriteString(" obj:")
	if len(obj) == 0 {
		// LP readers reject an empty objective.
		if len(m.vars) > 0 {
			fmt.Fprintf(bw, " 0 %s", m.vars[0].Name)
		}
	} else {
		writeExpr(bw, m, obj)
	}
	bw.WriteString("\nSubject To\n")
	for _, c := range m.cons {
		fmt.Fprintf(bw, " %s:", c.Name)
		if len(c.Terms) == 0 && len(m.vars) > 0 {
			bw.WriteString(" 0 " + m.vars[0].Name)
		} else {
			writeExpr(bw, m, c.Terms)
		}
		fmt.Fprintf(bw, " %s %s\n", c.Rel, formatNum(c.RHS))
	}
	bw.WriteString("Bounds\n")
	for _, v := range m.vars {
		writeBounds(bw, v)
	}
	bw.WriteString("End\n")
	return bw.Flush()
}

func writeExpr(bw *bufio.Writer, m *Model, e Expr) {
	for i, t := range e {
		if i > 0 && i%maxLineTerms == 0 {
			bw.WriteString("\n  ")
		}
		sign := "+"
		coef := t.Coef
		if coef < 0 {
			sign = "-"
			coef = -coef
		}
		fmt.Fprintf(bw, " %s %s %s", sign, formatNum(coef), m.vars[t.Var].Name)
	}
}

func writeBounds(bw *bufio.Writer, v Variable) {
	lowInf := math.IsInf(v.Lower, -1)
	upInf := math.IsInf(v.Upper, 1)
	switch {
	case lowInf && upInf:
		fmt.Fprintf(bw, " %s free\n", v.Name)
	case v.Lower == v.Upper:
		fmt.Fprintf(bw, " %s = %s\n", v.Name, formatNum(v.Lower))
	case lowInf:
		fmt.Fprintf(bw, " -inf <= %s <= %s\n", v.Name, formatNum(v.Upper))
	case upInf:
		if v.Lower != 0 {
			fmt.Fprintf(bw, " %s >= %s\n", v.Name, formatNum(v.Lower))
		}
	default:
		fmt.Fprintf(bw, " %s <= %s <= %s\n", formatNum(v.Lower), v.Name, formatNum(v.Upper))
	}
}

func formatNum(f float64) string {
	return strconv.FormatFloat(f, 'g', 12, 64)
}
