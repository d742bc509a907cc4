package mir_test

import (
	"math"
	"testing"

	"drift/internal/mir"
)

func TestOperand_IsIntLiteral(t *testing.T) {
	tests := []struct {
		name   string
		op     mir.Operand
		want   int64
		wantOK bool
	}{
		{
			"signed",
			mir.Operand{Kind: mir.OperandConst, Const: mir.Const{Kind: mir.ConstInt, IntValue: 1}},
			1, true,
		},
		{
			"unsigned_in_range",
			mir.Operand{Kind: mir.OperandConst, Const: mir.Const{Kind: mir.ConstUint, UintValue: math.MaxInt64}},
			math.MaxInt64, true,
		},
		{
			"unsigned_overflow",
			mir.Operand{Kind: mir.OperandConst, Const: mir.Const{Kind: mir.ConstUint, UintValue: math.MaxInt64 + 1}},
			0, false,
		},
		{
			"copy_is_not_a_literal",
			mir.Operand{Kind: mir.OperandCopy, Local: 0},
			0, false,
		},
		{
			"bool_is_not_a_literal",
			constBool(true),
			0, false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.op.IsIntLiteral()
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("IsIntLiteral() = %d, %v; want %d, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
