package mir

import (
	"drift/internal/source"
	"drift/internal/types"
)

type Func struct {
	ID   FuncID
	Name string
	Span source.Span

	// Prov is the declaring node: exactly one of ProvFuncDecl or
	// ProvClosure for lowered user code.
	Prov Provenance

	Result   types.TypeID
	NoReturn bool

	NumParams int
	Locals    []Local
	Blocks    []Block
	Entry     BlockID
}

// Block returns the block with the given ID, or nil when out of range.
func (f *Func) Block(id BlockID) *Block {
	if f == nil || id < 0 || int(id) >= len(f.Blocks) {
		return nil
	}
	return &f.Blocks[id]
}

// IsClosure reports whether the declaring node is a closure expression.
func (f *Func) IsClosure() bool {
	return f.Prov.Kind == ProvClosure
}
