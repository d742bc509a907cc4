package mir

import (
	"fmt"
	"io"
	"strconv"

	"drift/internal/types"
)

// DumpOptions configures MIR module dumping.
type DumpOptions struct {
	// OmitProvenance drops !... annotations from the output.
	OmitProvenance bool
}

// DumpModule writes the canonical textual form of a MIR module. The output
// parses back through mirtext; provenance ranges are emitted explicitly so
// they survive the round trip.
func DumpModule(w io.Writer, m *Module, typesIn *types.Interner, opts DumpOptions) error {
	if w == nil || m == nil {
		return nil
	}

	if m.Name != "" {
		if _, err := fmt.Fprintf(w, "module %s\n\n", m.Name); err != nil {
			return err
		}
	}

	for i, f := range m.Funcs {
		if f == nil {
			continue
		}
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := dumpFunc(w, f, typesIn, opts); err != nil {
			return err
		}
	}
	return nil
}

func dumpFunc(w io.Writer, f *Func, typesIn *types.Interner, opts DumpOptions) error {
	fmt.Fprintf(w, "fn @%s(", f.Name)
	for i := 0; i < f.NumParams && i < len(f.Locals); i++ {
		if i > 0 {
			io.WriteString(w, ", ")
		}
		fmt.Fprintf(w, "%%%s: %s", f.Locals[i].Name, types.Label(typesIn, f.Locals[i].Type))
	}
	io.WriteString(w, ")")
	if !typesIn.IsUnit(f.Result) {
		fmt.Fprintf(w, " -> %s", types.Label(typesIn, f.Result))
	}
	if f.NoReturn {
		io.WriteString(w, " noreturn")
	}
	if f.IsClosure() && !opts.OmitProvenance {
		io.WriteString(w, " !closure")
	}
	io.WriteString(w, " {\n")

	for i := range f.Blocks {
		bb := &f.Blocks[i]
		fmt.Fprintf(w, "bb%d:\n", bb.ID)
		for j := range bb.Instrs {
			if err := dumpInstr(w, f, &bb.Instrs[j], typesIn, opts); err != nil {
				return err
			}
		}
		if err := dumpTerm(w, f, &bb.Term, opts); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "}\n")
	return err
}

func dumpInstr(w io.Writer, f *Func, in *Instr, typesIn *types.Interner, opts DumpOptions) error {
	io.WriteString(w, "  ")
	switch in.Kind {
	case InstrAssign:
		src := in.Assign.Src
		if src.Kind == OperandConst {
			fmt.Fprintf(w, "%%%s = const %s %s", localName(f, in.Assign.Dst),
				types.Label(typesIn, src.Const.Type), constText(src.Const))
		} else {
			fmt.Fprintf(w, "%%%s = copy %%%s", localName(f, in.Assign.Dst), localName(f, src.Local))
		}
	case InstrCall:
		if in.Call.HasDst {
			fmt.Fprintf(w, "%%%s = ", localName(f, in.Call.Dst))
		}
		io.WriteString(w, "call ")
		if in.Call.Callee.Kind == CalleeBuiltin {
			fmt.Fprintf(w, "builtin.%s", in.Call.Callee.Name)
		} else {
			fmt.Fprintf(w, "@%s", in.Call.Callee.Name)
		}
		io.WriteString(w, "(")
		for i, a := range in.Call.Args {
			if i > 0 {
				io.WriteString(w, ", ")
			}
			dumpOperand(w, f, a)
		}
		io.WriteString(w, ")")
	case InstrNop:
		io.WriteString(w, "nop")
	}
	dumpProv(w, in.Prov, opts)
	_, err := io.WriteString(w, "\n")
	return err
}

func dumpTerm(w io.Writer, f *Func, term *Terminator, opts DumpOptions) error {
	io.WriteString(w, "  ")
	switch term.Kind {
	case TermReturn:
		io.WriteString(w, "ret")
		if term.Return.HasValue {
			io.WriteString(w, " ")
			dumpOperand(w, f, term.Return.Value)
		}
	case TermGoto:
		fmt.Fprintf(w, "goto bb%d", term.Goto.Target)
	case TermBr:
		io.WriteString(w, "br ")
		dumpOperand(w, f, term.Br.Cond)
		fmt.Fprintf(w, ", bb%d, bb%d", term.Br.Then, term.Br.Else)
	case TermSwitch:
		io.WriteString(w, "switch ")
		dumpOperand(w, f, term.Switch.Value)
		io.WriteString(w, " [")
		for i, c := range term.Switch.Cases {
			if i > 0 {
				io.WriteString(w, ", ")
			}
			fmt.Fprintf(w, "%d: bb%d", c.Value, c.Target)
		}
		fmt.Fprintf(w, "] else bb%d", term.Switch.Default)
	case TermUnreachable:
		io.WriteString(w, "unreachable")
	case TermNone:
		io.WriteString(w, "<unterminated>")
	}
	dumpProv(w, term.Prov, opts)
	_, err := io.WriteString(w, "\n")
	return err
}

// dumpOperand prints an operand. f may be nil for terminator positions where
// the local name is unavailable; the raw index is printed instead.
func dumpOperand(w io.Writer, f *Func, o Operand) {
	switch o.Kind {
	case OperandConst:
		io.WriteString(w, constText(o.Const))
	case OperandCopy:
		if f != nil {
			fmt.Fprintf(w, "%%%s", localName(f, o.Local))
		} else {
			fmt.Fprintf(w, "%%l%d", o.Local)
		}
	}
}

func dumpProv(w io.Writer, p Provenance, opts DumpOptions) {
	if opts.OmitProvenance || p.Kind == ProvNone {
		return
	}
	tag := p.Kind.String()
	if p.Kind == ProvReturn {
		tag = "ret"
		if p.Implicit {
			tag = "iret"
		}
	}
	fmt.Fprintf(w, " !%s(%d..%d)", tag, p.Span.Start, p.Span.End)
}

func localName(f *Func, id LocalID) string {
	if f != nil && id >= 0 && int(id) < len(f.Locals) && f.Locals[id].Name != "" {
		return f.Locals[id].Name
	}
	return fmt.Sprintf("l%d", id)
}

func constText(c Const) string {
	if c.Text != "" {
		return c.Text
	}
	switch c.Kind {
	case ConstInt:
		return strconv.FormatInt(c.IntValue, 10)
	case ConstUint:
		return strconv.FormatUint(c.UintValue, 10)
	case ConstFloat:
		return strconv.FormatFloat(c.FloatValue, 'g', -1, 64)
	case ConstBool:
		return strconv.FormatBool(c.BoolValue)
	case ConstString:
		return strconv.Quote(c.StringValue)
	case ConstUnit:
		return "unit"
	}
	return "?"
}
