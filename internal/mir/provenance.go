package mir

import (
	"fmt"

	"drift/internal/source"
)

// ProvKind enumerates the syntax constructs a MIR location can originate
// from. The set is closed: classifiers match it exhaustively, and a kind
// outside this enumeration cannot be constructed.
type ProvKind uint8

const (
	// ProvNone marks a location synthesized by a transform (folding, block
	// pruning). It must never be attributed to user code.
	ProvNone ProvKind = iota
	// ProvFuncDecl ties a location to a function declaration.
	ProvFuncDecl
	// ProvClosure ties a location to a closure expression.
	ProvClosure
	// ProvSwitch ties a location to a switch statement.
	ProvSwitch
	// ProvReturn ties a location to a return statement, explicit or implicit.
	ProvReturn
)

func (k ProvKind) String() string {
	switch k {
	case ProvNone:
		return "none"
	case ProvFuncDecl:
		return "fndecl"
	case ProvClosure:
		return "closure"
	case ProvSwitch:
		return "switch"
	case ProvReturn:
		return "return"
	default:
		return fmt.Sprintf("ProvKind(%d)", k)
	}
}

// Provenance links a MIR location back to the syntax construct that produced
// it. The zero value means "no originating syntax" and is always a valid
// answer, never a failure.
type Provenance struct {
	Kind ProvKind
	// Span covers the full extent of the originating construct.
	Span source.Span
	// Implicit distinguishes a lowered end-of-body return from an explicit
	// return statement. Meaningful only for ProvReturn.
	Implicit bool
}

// HasNode reports whether the location has an associated syntax construct.
func (p Provenance) HasNode() bool {
	return p.Kind != ProvNone
}

// StartSpan collapses the provenance extent to its start position.
func (p Provenance) StartSpan() source.Span {
	return p.Span.StartPoint()
}

// EndSpan collapses the provenance extent to its end position. Diagnostics
// about a construct's fallthrough land here, not at its start.
func (p Provenance) EndSpan() source.Span {
	return p.Span.EndPoint()
}
