package mir_test

import (
	"testing"

	"drift/internal/mir"
)

func TestPruneDeadBlocks_RemovesUnreachable(t *testing.T) {
	f := &mir.Func{
		Name:  "test",
		Prov:  mir.Provenance{Kind: mir.ProvFuncDecl},
		Entry: 0,
		Blocks: []mir.Block{
			{ID: 0, Term: mir.Terminator{Kind: mir.TermGoto, Goto: mir.GotoTerm{Target: 2}}},
			// bb1 has no predecessors.
			{ID: 1, Term: mir.Terminator{Kind: mir.TermUnreachable}},
			{ID: 2, Term: mir.Terminator{Kind: mir.TermReturn}},
		},
	}

	mir.PruneDeadBlocks(f)

	if len(f.Blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(f.Blocks))
	}
	if f.Entry != 0 {
		t.Errorf("entry = bb%d, want bb0", f.Entry)
	}
	if f.Blocks[0].Term.Goto.Target != 1 {
		t.Errorf("goto target = bb%d, want remapped bb1", f.Blocks[0].Term.Goto.Target)
	}
	if f.Blocks[1].Term.Kind != mir.TermReturn {
		t.Errorf("surviving tail block should be the return block")
	}
}

func TestPruneDeadBlocks_KeepsBranchTargets(t *testing.T) {
	f := &mir.Func{
		Name:  "test",
		Prov:  mir.Provenance{Kind: mir.ProvFuncDecl},
		Entry: 0,
		Locals: []mir.Local{
			{Name: "c", Param: true},
		},
		NumParams: 1,
		Blocks: []mir.Block{
			{
				ID: 0,
				Term: mir.Terminator{
					Kind: mir.TermBr,
					Br:   mir.BrTerm{Cond: mir.Operand{Kind: mir.OperandCopy, Local: 0}, Then: 1, Else: 2},
				},
			},
			{ID: 1, Term: mir.Terminator{Kind: mir.TermReturn}},
			{ID: 2, Term: mir.Terminator{Kind: mir.TermReturn}},
		},
	}

	mir.PruneDeadBlocks(f)

	if len(f.Blocks) != 3 {
		t.Errorf("all blocks reachable, got %d, want 3", len(f.Blocks))
	}
}

func TestPruneDeadBlocks_FoldThenPruneLeavesNoSyntheticFindings(t *testing.T) {
	// br true, bb2 dead. After folding and pruning the dead block is gone
	// entirely; nothing is left for diagnostics to trip on.
	f := &mir.Func{
		Name:  "test",
		Prov:  mir.Provenance{Kind: mir.ProvFuncDecl},
		Entry: 0,
		Blocks: []mir.Block{
			{
				ID: 0,
				Term: mir.Terminator{
					Kind: mir.TermBr,
					Br:   mir.BrTerm{Cond: constBool(true), Then: 1, Else: 2},
				},
			},
			{ID: 1, Term: mir.Terminator{Kind: mir.TermReturn}},
			{ID: 2, Term: mir.Terminator{Kind: mir.TermUnreachable}},
		},
	}

	mir.FoldConsts(f)
	mir.PruneDeadBlocks(f)

	if len(f.Blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(f.Blocks))
	}
	for i := range f.Blocks {
		if f.Blocks[i].Term.Kind == mir.TermUnreachable {
			t.Error("dead unreachable block should have been pruned")
		}
	}
}
