package mir

// FoldConsts performs constant propagation and branch folding on a function.
// Transformations:
//  1. Locals assigned a constant exactly once (and never written elsewhere)
//     are propagated into every operand that copies them
//  2. br over a constant condition becomes goto
//  3. switch over a constant value becomes goto
//
// Folded terminators keep the span and provenance of the original.
func FoldConsts(f *Func) {
	if f == nil || len(f.Blocks) == 0 {
		return
	}

	consts := collectConstLocals(f)
	if len(consts) > 0 {
		propagateConsts(f, consts)
	}
	foldTerminators(f)
}

// collectConstLocals finds locals with exactly one assignment whose source
// is a constant. Params and call results never qualify.
func collectConstLocals(f *Func) map[LocalID]Const {
	writes := make(map[LocalID]int)
	lastConst := make(map[LocalID]Const)

	for i := range f.Blocks {
		bb := &f.Blocks[i]
		for j := range bb.Instrs {
			in := &bb.Instrs[j]
			switch in.Kind {
			case InstrAssign:
				writes[in.Assign.Dst]++
				if in.Assign.Src.Kind == OperandConst {
					lastConst[in.Assign.Dst] = in.Assign.Src.Const
				}
			case InstrCall:
				if in.Call.HasDst {
					writes[in.Call.Dst]++
					delete(lastConst, in.Call.Dst)
				}
			}
		}
	}

	consts := make(map[LocalID]Const)
	for id, c := range lastConst {
		if writes[id] == 1 && !isParam(f, id) {
			consts[id] = c
		}
	}
	return consts
}

func isParam(f *Func, id LocalID) bool {
	return id >= 0 && int(id) < len(f.Locals) && f.Locals[id].Param
}

func propagateConsts(f *Func, consts map[LocalID]Const) {
	rewrite := func(o *Operand) {
		if o.Kind != OperandCopy {
			return
		}
		c, ok := consts[o.Local]
		if !ok {
			return
		}
		o.Kind = OperandConst
		o.Const = c
		o.Local = NoLocalID
	}

	for i := range f.Blocks {
		bb := &f.Blocks[i]
		for j := range bb.Instrs {
			in := &bb.Instrs[j]
			switch in.Kind {
			case InstrAssign:
				rewrite(&in.Assign.Src)
			case InstrCall:
				for k := range in.Call.Args {
					rewrite(&in.Call.Args[k])
				}
			}
		}
		switch bb.Term.Kind {
		case TermReturn:
			if bb.Term.Return.HasValue {
				rewrite(&bb.Term.Return.Value)
			}
		case TermBr:
			rewrite(&bb.Term.Br.Cond)
		case TermSwitch:
			rewrite(&bb.Term.Switch.Value)
		}
	}
}

// foldTerminators rewrites br/switch over constants into goto.
func foldTerminators(f *Func) {
	for i := range f.Blocks {
		term := &f.Blocks[i].Term
		switch term.Kind {
		case TermBr:
			cond := term.Br.Cond
			if cond.Kind != OperandConst || cond.Const.Kind != ConstBool {
				continue
			}
			target := term.Br.Else
			if cond.Const.BoolValue {
				target = term.Br.Then
			}
			*term = Terminator{
				Kind: TermGoto,
				Span: term.Span,
				Prov: term.Prov,
				Goto: GotoTerm{Target: target},
			}
		case TermSwitch:
			v, ok := term.Switch.Value.IsIntLiteral()
			if !ok {
				continue
			}
			target := term.Switch.Default
			for _, c := range term.Switch.Cases {
				if c.Value == v {
					target = c.Target
					break
				}
			}
			*term = Terminator{
				Kind: TermGoto,
				Span: term.Span,
				Prov: term.Prov,
				Goto: GotoTerm{Target: target},
			}
		}
	}
}
