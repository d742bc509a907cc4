package mir

import (
	"fortio.org/safecast"

	"drift/internal/source"
	"drift/internal/types"
)

// InstrKind enumerates non-terminating instruction kinds in MIR.
type InstrKind uint8

const (
	// InstrAssign represents an assignment instruction.
	InstrAssign InstrKind = iota
	// InstrCall represents a call instruction.
	InstrCall
	// InstrNop represents a no-op instruction.
	InstrNop
)

// Instr represents a MIR instruction. Span is the instruction's own text
// location; Prov optionally links it to the originating syntax construct.
type Instr struct {
	Kind InstrKind
	Span source.Span
	Prov Provenance

	Assign AssignInstr
	Call   CallInstr
}

// AssignInstr represents an assignment instruction.
type AssignInstr struct {
	Dst LocalID
	Src Operand
}

// CalleeKind distinguishes call target types.
type CalleeKind uint8

const (
	// CalleeFn represents an ordinary function call target.
	CalleeFn CalleeKind = iota
	// CalleeBuiltin represents a builtin primitive call target.
	CalleeBuiltin
)

// BuiltinKind identifies the builtin primitives MIR knows about. The set is
// closed; names outside it parse as BuiltinUnknown and are never treated as
// a recognized primitive.
type BuiltinKind uint8

const (
	// BuiltinUnknown is the explicit "not a recognized primitive" case.
	BuiltinUnknown BuiltinKind = iota
	// BuiltinStaticReport surfaces compile-time-evaluated assertion results.
	// Convention: the primitive reports when its first operand folds to 1.
	BuiltinStaticReport
	// BuiltinTrap aborts execution at runtime.
	BuiltinTrap
)

func (k BuiltinKind) String() string {
	switch k {
	case BuiltinStaticReport:
		return "static_report"
	case BuiltinTrap:
		return "trap"
	default:
		return "unknown"
	}
}

// Callee represents a call target.
type Callee struct {
	Kind    CalleeKind
	Name    string
	Builtin BuiltinKind
}

// CallInstr represents a function call instruction.
type CallInstr struct {
	HasDst bool
	Dst    LocalID
	Callee Callee
	Args   []Operand
}

// OperandKind distinguishes operand types.
type OperandKind uint8

const (
	// OperandConst represents a constant operand.
	OperandConst OperandKind = iota
	// OperandCopy represents a copy of a local.
	OperandCopy
)

// Operand represents a MIR operand.
type Operand struct {
	Kind OperandKind
	Type types.TypeID

	Const Const
	Local LocalID
}

// IsIntLiteral reports whether the operand resolved (through folding) to an
// integer constant, and returns its value when it did.
func (o Operand) IsIntLiteral() (int64, bool) {
	if o.Kind != OperandConst {
		return 0, false
	}
	switch o.Const.Kind {
	case ConstInt:
		return o.Const.IntValue, true
	case ConstUint:
		// Значения за пределами int64 литералом не считаем.
		v, err := safecast.Conv[int64](o.Const.UintValue)
		if err != nil {
			return 0, false
		}
		return v, true
	default:
		return 0, false
	}
}

// ConstKind distinguishes constant kinds.
type ConstKind uint8

const (
	// ConstInt represents a signed integer constant.
	ConstInt ConstKind = iota
	// ConstUint represents an unsigned integer constant.
	ConstUint
	// ConstFloat represents a float constant.
	ConstFloat
	// ConstBool represents a boolean constant.
	ConstBool
	// ConstString represents a string constant.
	ConstString
	// ConstUnit represents the unit constant.
	ConstUnit
)

// Const represents a MIR constant.
type Const struct {
	Kind ConstKind
	Type types.TypeID

	// Text preserves raw literal text for numeric constants when available.
	Text string

	IntValue    int64
	UintValue   uint64
	FloatValue  float64
	BoolValue   bool
	StringValue string
}
