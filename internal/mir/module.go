package mir

// Module owns the functions produced by one lowering unit. Funcs preserves
// declaration order; passes and diagnostics iterate it in that order.
type Module struct {
	Name      string
	Funcs     []*Func
	FuncByName map[string]FuncID
}

func NewModule(name string) *Module {
	return &Module{
		Name:      name,
		FuncByName: make(map[string]FuncID),
	}
}

// AddFunc appends f, assigns its ID and indexes it by name.
func (m *Module) AddFunc(f *Func) FuncID {
	id := FuncID(len(m.Funcs))
	f.ID = id
	m.Funcs = append(m.Funcs, f)
	if m.FuncByName == nil {
		m.FuncByName = make(map[string]FuncID)
	}
	m.FuncByName[f.Name] = id
	return id
}

// FuncNamed returns the function with the given name, or nil.
func (m *Module) FuncNamed(name string) *Func {
	id, ok := m.FuncByName[name]
	if !ok {
		return nil
	}
	return m.Funcs[id]
}
