package types

import "fmt"

// Label returns a user-friendly label for a TypeID, suitable for diagnostics
// and for the canonical MIR text form.
func Label(typesIn *Interner, id TypeID) string {
	if typesIn == nil || id == NoTypeID {
		return "?"
	}
	tt, ok := typesIn.Lookup(id)
	if !ok {
		return "?"
	}
	switch tt.Kind {
	case KindUnit:
		return "unit"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindInt:
		return numericLabel("int", tt.Width)
	case KindUint:
		return numericLabel("uint", tt.Width)
	case KindFloat:
		return numericLabel("float", tt.Width)
	default:
		return "?"
	}
}

func numericLabel(base string, w Width) string {
	if w == WidthAny {
		return base
	}
	return fmt.Sprintf("%s%d", base, w)
}
