package mir

import (
	"fmt"

	"drift/internal/diag"
	"drift/internal/types"
)

// EmitDataflowDiagnostics reports control-flow findings for one function:
// missing returns, non-exhaustive switches, returns from noreturn functions
// and triggered static reports. It visits every block and instruction
// exactly once, in structural order, mutates nothing, and emits each finding
// immediately through pc.Reporter. Running it twice on the same function
// produces identical diagnostics in identical order.
//
// Correctness depends on scheduling: constant folding and dead-block pruning
// must already have run.
func EmitDataflowDiagnostics(pc *PassContext, f *Func) error {
	if f == nil {
		return nil
	}
	for bi := range f.Blocks {
		bb := &f.Blocks[bi]
		for ii := range bb.Instrs {
			diagnoseStaticReport(pc, &bb.Instrs[ii])
		}
		if err := diagnoseUnreachable(pc, f, &bb.Term); err != nil {
			return err
		}
		diagnoseReturnPath(pc, f, &bb.Term)
	}
	return nil
}

// diagnoseUnreachable classifies an unreachable terminator by the syntax
// construct it originated from.
func diagnoseUnreachable(pc *PassContext, f *Func, term *Terminator) error {
	if term.Kind != TermUnreachable {
		return nil
	}
	switch term.Prov.Kind {
	case ProvNone:
		// Synthesized by an earlier transform (folding, pruning); not user
		// code, nothing to report.
		return nil
	case ProvFuncDecl, ProvClosure:
		// Falling off the end of the body. The common missing-return case.
		diagnoseMissingReturn(pc, f, term)
		return nil
	case ProvSwitch:
		// The type checker accepted the switch but the synthesized
		// fallthrough block survived optimization: a reachable gap.
		diag.ReportError(pc.Reporter, diag.FlowNonExhaustiveSwitch, term.Prov.EndSpan(),
			"switch may fall through without matching a case").Emit()
		return nil
	default:
		// Lowering never attaches any other kind to unreachable. Silently
		// skipping would hide an upstream bug class.
		return fmt.Errorf("unreachable terminator has %s provenance", term.Prov.Kind)
	}
}

func diagnoseMissingReturn(pc *PassContext, f *Func, term *Terminator) {
	// Falling off the end is legal for unit results and noreturn functions.
	if pc.Types.IsUnit(f.Result) || f.NoReturn {
		return
	}

	what := "function"
	if f.IsClosure() {
		what = "closure"
	}
	msg := fmt.Sprintf("missing return in a %s expected to return '%s'",
		what, types.Label(pc.Types, f.Result))
	diag.ReportError(pc.Reporter, diag.FlowMissingReturn, term.Prov.EndSpan(), msg).Emit()
}

// diagnoseReturnPath warns when a return path survives in a function
// declared noreturn. Closures are not checked here.
func diagnoseReturnPath(pc *PassContext, f *Func, term *Terminator) {
	if term.Kind != TermReturn && term.Kind != TermGoto {
		return
	}
	if f.Prov.Kind != ProvFuncDecl || !f.NoReturn {
		return
	}
	// Only locations lowered from a return statement count; a plain jump is
	// not a return path.
	if term.Prov.Kind != ProvReturn {
		return
	}
	diag.ReportWarning(pc.Reporter, diag.FlowReturnFromNoReturn, term.Prov.StartSpan(),
		"a 'noreturn' function should not return").Emit()
}

// diagnoseStaticReport fires when a static_report call's condition folded to
// the triggering value. The primitive reports on 1, not on 0: the polarity
// is part of its contract.
func diagnoseStaticReport(pc *PassContext, in *Instr) {
	if in.Kind != InstrCall {
		return
	}
	call := &in.Call
	if call.Callee.Kind != CalleeBuiltin || call.Callee.Builtin != BuiltinStaticReport {
		return
	}
	if len(call.Args) == 0 {
		return
	}
	// An unfolded condition is not an error, just nothing to diagnose yet.
	v, ok := call.Args[0].IsIntLiteral()
	if !ok || v != 1 {
		return
	}
	diag.ReportError(pc.Reporter, diag.FlowStaticReport, in.Span,
		"static report triggered").Emit()
}
