package mir

import (
	"drift/internal/source"
	"drift/internal/types"
)

type FuncID int32
type BlockID int32
type LocalID int32

const (
	NoFuncID  FuncID  = -1
	NoBlockID BlockID = -1
	NoLocalID LocalID = -1
)

// Local is a function-scoped virtual register. Params occupy the first
// NumParams slots of Func.Locals.
type Local struct {
	Name  string
	Type  types.TypeID
	Span  source.Span
	Param bool
}
