package mir

import (
	"errors"
	"fmt"

	"drift/internal/types"
)

// Validate checks MIR module invariants.
// Returns error if any invariant is violated.
func Validate(m *Module, typesIn *types.Interner) error {
	if m == nil {
		return nil
	}
	var errs []error
	for _, f := range m.Funcs {
		if f == nil {
			continue
		}
		if err := validateFunc(f, typesIn); err != nil {
			errs = append(errs, fmt.Errorf("function %s: %w", f.Name, err))
		}
	}
	return errors.Join(errs...)
}

func validateFunc(f *Func, typesIn *types.Interner) error {
	var errs []error

	if err := validateEntry(f); err != nil {
		errs = append(errs, err)
	}
	if err := validateBlocksTerminated(f); err != nil {
		errs = append(errs, err)
	}
	if err := validateBlockTargets(f); err != nil {
		errs = append(errs, err)
	}
	if err := validateLocalIDs(f); err != nil {
		errs = append(errs, err)
	}
	if err := validateFuncProv(f); err != nil {
		errs = append(errs, err)
	}
	if err := validateReturnArity(f, typesIn); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func validateEntry(f *Func) error {
	if len(f.Blocks) == 0 {
		return fmt.Errorf("no blocks")
	}
	if f.Entry < 0 || int(f.Entry) >= len(f.Blocks) {
		return fmt.Errorf("entry bb%d does not exist", f.Entry)
	}
	return nil
}

// validateBlocksTerminated checks that every block ends with a terminator.
func validateBlocksTerminated(f *Func) error {
	var errs []error
	for i := range f.Blocks {
		if f.Blocks[i].Term.Kind == TermNone {
			errs = append(errs, fmt.Errorf("bb%d: unterminated block", i))
		}
	}
	return errors.Join(errs...)
}

// validateBlockTargets checks that all block target IDs exist and that switch
// terminators carry no duplicate case values.
func validateBlockTargets(f *Func) error {
	var errs []error

	blockExists := func(id BlockID) bool {
		return id >= 0 && int(id) < len(f.Blocks)
	}

	for i := range f.Blocks {
		bb := &f.Blocks[i]
		switch bb.Term.Kind {
		case TermGoto:
			if !blockExists(bb.Term.Goto.Target) {
				errs = append(errs, fmt.Errorf("bb%d: goto target bb%d does not exist", i, bb.Term.Goto.Target))
			}
		case TermBr:
			if !blockExists(bb.Term.Br.Then) {
				errs = append(errs, fmt.Errorf("bb%d: br then target bb%d does not exist", i, bb.Term.Br.Then))
			}
			if !blockExists(bb.Term.Br.Else) {
				errs = append(errs, fmt.Errorf("bb%d: br else target bb%d does not exist", i, bb.Term.Br.Else))
			}
		case TermSwitch:
			seen := make(map[int64]bool)
			for j, c := range bb.Term.Switch.Cases {
				if seen[c.Value] {
					errs = append(errs, fmt.Errorf("bb%d: switch has duplicate case for value %d", i, c.Value))
				}
				seen[c.Value] = true

				if !blockExists(c.Target) {
					errs = append(errs, fmt.Errorf("bb%d: switch case %d (value %d) target bb%d does not exist",
						i, j, c.Value, c.Target))
				}
			}
			if !blockExists(bb.Term.Switch.Default) {
				errs = append(errs, fmt.Errorf("bb%d: switch default target bb%d does not exist", i, bb.Term.Switch.Default))
			}
		}
	}
	return errors.Join(errs...)
}

// validateLocalIDs checks that every referenced local exists.
func validateLocalIDs(f *Func) error {
	var errs []error

	localExists := func(id LocalID) bool {
		return id >= 0 && int(id) < len(f.Locals)
	}
	checkOperand := func(bb int, o Operand) {
		if o.Kind == OperandCopy && !localExists(o.Local) {
			errs = append(errs, fmt.Errorf("bb%d: operand references local %d which does not exist", bb, o.Local))
		}
	}

	for i := range f.Blocks {
		bb := &f.Blocks[i]
		for j := range bb.Instrs {
			in := &bb.Instrs[j]
			switch in.Kind {
			case InstrAssign:
				if !localExists(in.Assign.Dst) {
					errs = append(errs, fmt.Errorf("bb%d: assign to local %d which does not exist", i, in.Assign.Dst))
				}
				checkOperand(i, in.Assign.Src)
			case InstrCall:
				if in.Call.HasDst && !localExists(in.Call.Dst) {
					errs = append(errs, fmt.Errorf("bb%d: call result local %d does not exist", i, in.Call.Dst))
				}
				for _, a := range in.Call.Args {
					checkOperand(i, a)
				}
			}
		}
		switch bb.Term.Kind {
		case TermReturn:
			if bb.Term.Return.HasValue {
				checkOperand(i, bb.Term.Return.Value)
			}
		case TermBr:
			checkOperand(i, bb.Term.Br.Cond)
		case TermSwitch:
			checkOperand(i, bb.Term.Switch.Value)
		}
	}
	return errors.Join(errs...)
}

// validateFuncProv checks that the declaring node is one of the two legal
// kinds. Lowering produces exactly one per function, never both and never
// any other kind.
func validateFuncProv(f *Func) error {
	switch f.Prov.Kind {
	case ProvFuncDecl, ProvClosure:
		return nil
	default:
		return fmt.Errorf("declaring node has %s provenance, want fndecl or closure", f.Prov.Kind)
	}
}

// validateReturnArity checks that return terminators match the declared
// result type: unit functions return nothing, others return a value.
func validateReturnArity(f *Func, typesIn *types.Interner) error {
	if typesIn == nil {
		return nil
	}
	unit := typesIn.IsUnit(f.Result)

	var errs []error
	for i := range f.Blocks {
		term := &f.Blocks[i].Term
		if term.Kind != TermReturn {
			continue
		}
		if unit && term.Return.HasValue {
			errs = append(errs, fmt.Errorf("bb%d: ret with value in unit function", i))
		}
		if !unit && !term.Return.HasValue {
			errs = append(errs, fmt.Errorf("bb%d: ret without value, function returns %s", i, types.Label(typesIn, f.Result)))
		}
	}
	return errors.Join(errs...)
}
