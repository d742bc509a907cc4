package mir

import (
	"fmt"

	"drift/internal/diag"
	"drift/internal/types"
)

// PassContext carries the shared services passes may need. Passes hold no
// state of their own across functions.
type PassContext struct {
	Types    *types.Interner
	Reporter diag.Reporter
}

// FuncPass is a named per-function transform or analysis.
type FuncPass struct {
	Name string
	Run  func(pc *PassContext, f *Func) error
}

// RunPasses applies each pass to every function in module order. The first
// pass error aborts the whole run: a failing pass signals a broken upstream
// invariant, not a user-facing condition.
func RunPasses(pc *PassContext, m *Module, passes ...FuncPass) error {
	if m == nil {
		return nil
	}
	for _, p := range passes {
		for _, f := range m.Funcs {
			if f == nil {
				continue
			}
			if err := p.Run(pc, f); err != nil {
				return fmt.Errorf("pass %q: function %s: %w", p.Name, f.Name, err)
			}
		}
	}
	return nil
}

// FoldConstsPass propagates folded constants. Scheduling precondition for
// the dataflow diagnostics pass.
func FoldConstsPass() FuncPass {
	return FuncPass{
		Name: "fold-constants",
		Run: func(_ *PassContext, f *Func) error {
			FoldConsts(f)
			return nil
		},
	}
}

// PruneDeadBlocksPass removes unreachable blocks. Scheduling precondition
// for the dataflow diagnostics pass.
func PruneDeadBlocksPass() FuncPass {
	return FuncPass{
		Name: "prune-dead-blocks",
		Run: func(_ *PassContext, f *Func) error {
			PruneDeadBlocks(f)
			return nil
		},
	}
}

// DataflowDiagnosticsPass wraps EmitDataflowDiagnostics as a named
// per-function pass. It must be scheduled after folding and dead-block
// pruning.
func DataflowDiagnosticsPass() FuncPass {
	return FuncPass{
		Name: "emit-dataflow-diagnostics",
		Run:  EmitDataflowDiagnostics,
	}
}

// DefaultPasses is the standard check pipeline in its required order.
func DefaultPasses() []FuncPass {
	return []FuncPass{
		FoldConstsPass(),
		PruneDeadBlocksPass(),
		DataflowDiagnosticsPass(),
	}
}
