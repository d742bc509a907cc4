package mir_test

import (
	"strings"
	"testing"

	"drift/internal/mir"
	"drift/internal/source"
	"drift/internal/types"
)

func TestDumpModule(t *testing.T) {
	in := types.NewInterner()
	int32ID := in.Intern(types.MakeInt(types.Width32))

	m := mir.NewModule("demo")
	m.AddFunc(&mir.Func{
		Name:      "pick",
		Prov:      mir.Provenance{Kind: mir.ProvFuncDecl, Span: source.Span{Start: 0, End: 50}},
		Result:    int32ID,
		Entry:     0,
		NumParams: 1,
		Locals: []mir.Local{
			{Name: "c", Type: in.Builtins().Bool, Param: true},
			{Name: "r", Type: int32ID},
		},
		Blocks: []mir.Block{
			{
				ID: 0,
				Instrs: []mir.Instr{
					{
						Kind: mir.InstrAssign,
						Assign: mir.AssignInstr{
							Dst: 1,
							Src: mir.Operand{
								Kind:  mir.OperandConst,
								Const: mir.Const{Kind: mir.ConstInt, Type: int32ID, IntValue: 41},
							},
						},
					},
				},
				Term: mir.Terminator{
					Kind: mir.TermBr,
					Br:   mir.BrTerm{Cond: mir.Operand{Kind: mir.OperandCopy, Local: 0}, Then: 1, Else: 2},
				},
			},
			{
				ID: 1,
				Term: mir.Terminator{
					Kind:   mir.TermReturn,
					Prov:   mir.Provenance{Kind: mir.ProvReturn, Span: source.Span{Start: 30, End: 38}},
					Return: mir.ReturnTerm{HasValue: true, Value: mir.Operand{Kind: mir.OperandCopy, Local: 1}},
				},
			},
			{
				ID: 2,
				Term: mir.Terminator{
					Kind: mir.TermUnreachable,
					Prov: mir.Provenance{Kind: mir.ProvFuncDecl, Span: source.Span{Start: 0, End: 50}},
				},
			},
		},
	})

	var b strings.Builder
	if err := mir.DumpModule(&b, m, in, mir.DumpOptions{}); err != nil {
		t.Fatal(err)
	}
	out := b.String()

	for _, want := range []string{
		"module demo",
		"fn @pick(%c: bool) -> int32 {",
		"bb0:",
		"%r = const int32 41",
		"br %c, bb1, bb2",
		"ret %r !ret(30..38)",
		"unreachable !fndecl(0..50)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dump missing %q:\n%s", want, out)
		}
	}
}

func TestDumpModule_OmitProvenance(t *testing.T) {
	in := types.NewInterner()
	m := mir.NewModule("")
	f := validUnitFunc(in)
	f.Blocks[0].Term.Prov = mir.Provenance{Kind: mir.ProvReturn, Span: source.Span{Start: 1, End: 2}}
	m.AddFunc(f)

	var b strings.Builder
	if err := mir.DumpModule(&b, m, in, mir.DumpOptions{OmitProvenance: true}); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(b.String(), "!") {
		t.Errorf("provenance should be omitted:\n%s", b.String())
	}
}
