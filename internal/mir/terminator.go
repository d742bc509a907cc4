package mir

import "drift/internal/source"

type TermKind uint8

const (
	TermNone TermKind = iota
	TermReturn
	TermGoto
	TermBr
	TermSwitch
	TermUnreachable
)

func (k TermKind) String() string {
	switch k {
	case TermNone:
		return "none"
	case TermReturn:
		return "ret"
	case TermGoto:
		return "goto"
	case TermBr:
		return "br"
	case TermSwitch:
		return "switch"
	case TermUnreachable:
		return "unreachable"
	default:
		return "invalid"
	}
}

// Terminator ends a basic block. Exactly one sits at the block's tail;
// TermNone only ever appears in modules that fail validation.
type Terminator struct {
	Kind TermKind
	Span source.Span
	Prov Provenance

	Return ReturnTerm
	Goto   GotoTerm
	Br     BrTerm
	Switch SwitchTerm
}

type ReturnTerm struct {
	HasValue bool
	Value    Operand
}

type GotoTerm struct {
	Target BlockID
}

type BrTerm struct {
	Cond Operand
	Then BlockID
	Else BlockID
}

type SwitchCase struct {
	Value  int64
	Target BlockID
}

type SwitchTerm struct {
	Value   Operand
	Cases   []SwitchCase
	Default BlockID
}
