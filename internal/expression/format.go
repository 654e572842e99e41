package expression

import (
	"strings"

	"github.com/roach88/chainq/internal/ir"
)

// Format renders e as stable, human-readable text.
//
// Output is deterministic and used in error messages, logs, and golden
// files. Source references print as [name], where name is the referent's
// range-variable name.
//
//	(s => (s.Age > 18))
//	([s].Age > 18)
//	new {s = [s], c = [c]}
func Format(e Expr) string {
	var b strings.Builder
	writeExpr(&b, e)
	return b.String()
}

func writeExpr(b *strings.Builder, e Expr) {
	switch n := e.(type) {
	case nil:
		b.WriteString("<nil>")
	case *Parameter:
		writeParam(b, n)
	case *Constant:
		if n == nil || n.Value == nil {
			b.WriteString("null")
			return
		}
		b.WriteString(ir.FormatValue(n.Value))
	case *QuerySource:
		b.WriteString(n.Name)
	case *Member:
		writeExpr(b, n.Target)
		b.WriteByte('.')
		b.WriteString(n.Name)
	case *Binary:
		b.WriteByte('(')
		writeExpr(b, n.Left)
		b.WriteByte(' ')
		b.WriteString(string(n.Op))
		b.WriteByte(' ')
		writeExpr(b, n.Right)
		b.WriteByte(')')
	case *Unary:
		b.WriteString(string(n.Op))
		writeExpr(b, n.Operand)
	case *Call:
		if n.Object != nil {
			writeExpr(b, n.Object)
			b.WriteByte('.')
		}
		b.WriteString(n.Method)
		b.WriteByte('(')
		for i, arg := range n.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			writeExpr(b, arg)
		}
		b.WriteByte(')')
	case *New:
		b.WriteString("new {")
		for i, m := range n.Members {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(m.Name)
			b.WriteString(" = ")
			writeExpr(b, m.Value)
		}
		b.WriteByte('}')
	case *Conditional:
		b.WriteByte('(')
		writeExpr(b, n.Test)
		b.WriteString(" ? ")
		writeExpr(b, n.IfTrue)
		b.WriteString(" : ")
		writeExpr(b, n.IfFalse)
		b.WriteByte(')')
	case *Lambda:
		if n == nil {
			b.WriteString("<nil>")
			return
		}
		b.WriteByte('(')
		if len(n.Params) == 1 {
			writeParam(b, n.Params[0])
		} else {
			b.WriteByte('(')
			for i, p := range n.Params {
				if i > 0 {
					b.WriteString(", ")
				}
				writeParam(b, p)
			}
			b.WriteByte(')')
		}
		b.WriteString(" => ")
		writeExpr(b, n.Body)
		b.WriteByte(')')
	case *SourceReference:
		b.WriteByte('[')
		if n.Source != nil {
			b.WriteString(n.Source.ReferenceName())
		}
		b.WriteByte(']')
	}
}

func writeParam(b *strings.Builder, p *Parameter) {
	if p == nil {
		b.WriteString("<nil>")
		return
	}
	b.WriteString(p.Name)
}
