package mir_test

import (
	"strings"
	"testing"

	"drift/internal/mir"
	"drift/internal/types"
)

func validUnitFunc(in *types.Interner) *mir.Func {
	return &mir.Func{
		Name:   "ok",
		Prov:   mir.Provenance{Kind: mir.ProvFuncDecl},
		Result: in.Builtins().Unit,
		Entry:  0,
		Blocks: []mir.Block{
			{ID: 0, Term: mir.Terminator{Kind: mir.TermReturn}},
		},
	}
}

func moduleWith(funcs ...*mir.Func) *mir.Module {
	m := mir.NewModule("test")
	for _, f := range funcs {
		m.AddFunc(f)
	}
	return m
}

func TestValidate_ValidModule(t *testing.T) {
	in := types.NewInterner()
	int32ID := in.Intern(types.MakeInt(types.Width32))

	f := &mir.Func{
		Name:      "add_one",
		Prov:      mir.Provenance{Kind: mir.ProvFuncDecl},
		Result:    int32ID,
		Entry:     0,
		NumParams: 1,
		Locals: []mir.Local{
			{Name: "x", Type: int32ID, Param: true},
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
							Src: mir.Operand{Kind: mir.OperandCopy, Local: 0},
						},
					},
				},
				Term: mir.Terminator{
					Kind:   mir.TermReturn,
					Return: mir.ReturnTerm{HasValue: true, Value: mir.Operand{Kind: mir.OperandCopy, Local: 1}},
				},
			},
		},
	}

	if err := mir.Validate(moduleWith(f), in); err != nil {
		t.Errorf("valid module rejected: %v", err)
	}
}

func TestValidate_Violations(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(in *types.Interner, f *mir.Func)
		wantMsg string
	}{
		{
			name: "unterminated_block",
			mutate: func(_ *types.Interner, f *mir.Func) {
				f.Blocks[0].Term = mir.Terminator{}
			},
			wantMsg: "unterminated block",
		},
		{
			name: "goto_target_missing",
			mutate: func(_ *types.Interner, f *mir.Func) {
				f.Blocks[0].Term = mir.Terminator{Kind: mir.TermGoto, Goto: mir.GotoTerm{Target: 7}}
			},
			wantMsg: "goto target bb7 does not exist",
		},
		{
			name: "entry_out_of_range",
			mutate: func(_ *types.Interner, f *mir.Func) {
				f.Entry = 3
			},
			wantMsg: "entry bb3 does not exist",
		},
		{
			name: "operand_local_missing",
			mutate: func(_ *types.Interner, f *mir.Func) {
				f.Blocks[0].Instrs = []mir.Instr{
					{
						Kind: mir.InstrCall,
						Call: mir.CallInstr{
							Callee: mir.Callee{Kind: mir.CalleeFn, Name: "g"},
							Args:   []mir.Operand{{Kind: mir.OperandCopy, Local: 5}},
						},
					},
				}
			},
			wantMsg: "local 5",
		},
		{
			name: "duplicate_switch_case",
			mutate: func(_ *types.Interner, f *mir.Func) {
				f.Blocks = append(f.Blocks, mir.Block{ID: 1, Term: mir.Terminator{Kind: mir.TermReturn}})
				f.Blocks[0].Term = mir.Terminator{
					Kind: mir.TermSwitch,
					Switch: mir.SwitchTerm{
						Value:   mir.Operand{Kind: mir.OperandConst, Const: mir.Const{Kind: mir.ConstInt}},
						Cases:   []mir.SwitchCase{{Value: 4, Target: 1}, {Value: 4, Target: 1}},
						Default: 1,
					},
				}
			},
			wantMsg: "duplicate case for value 4",
		},
		{
			name: "missing_declaring_node",
			mutate: func(_ *types.Interner, f *mir.Func) {
				f.Prov = mir.Provenance{}
			},
			wantMsg: "declaring node",
		},
		{
			name: "ret_value_in_unit_function",
			mutate: func(_ *types.Interner, f *mir.Func) {
				f.Blocks[0].Term.Return = mir.ReturnTerm{
					HasValue: true,
					Value:    mir.Operand{Kind: mir.OperandConst, Const: mir.Const{Kind: mir.ConstInt, IntValue: 1}},
				}
			},
			wantMsg: "ret with value in unit function",
		},
		{
			name: "ret_without_value_in_typed_function",
			mutate: func(in *types.Interner, f *mir.Func) {
				f.Result = in.Intern(types.MakeInt(types.Width32))
			},
			wantMsg: "ret without value",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := types.NewInterner()
			f := validUnitFunc(in)
			tt.mutate(in, f)

			err := mir.Validate(moduleWith(f), in)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q should contain %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestValidate_NilModule(t *testing.T) {
	if err := mir.Validate(nil, types.NewInterner()); err != nil {
		t.Errorf("nil module should validate: %v", err)
	}
}
