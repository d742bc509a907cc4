package mirtext_test

import (
	"strings"
	"testing"

	"drift/internal/diag"
	"drift/internal/mir"
	"drift/internal/mirtext"
	"drift/internal/source"
	"drift/internal/types"
)

func parse(t *testing.T, src string) (*mir.Module, *types.Interner, *diag.Bag, bool) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.mir", []byte(src))
	in := types.NewInterner()
	bag := diag.NewBag(64)
	m, ok := mirtext.ParseFile(fs.Get(id), in, diag.BagReporter{Bag: bag})
	return m, in, bag, ok
}

func mustParse(t *testing.T, src string) (*mir.Module, *types.Interner) {
	t.Helper()
	m, in, bag, ok := parse(t, src)
	if !ok {
		t.Fatalf("parse failed:\n%v", bag.Items())
	}
	return m, in
}

const sampleModule = `module sample

fn @classify(%v: int32) -> int32 {
bb0:
  switch %v [0: bb1, 1: bb2] else bb3
bb1:
  %r = const int32 10
  ret %r !ret(120..128)
bb2:
  %r = copy %v
  ret %r !ret
bb3:
  unreachable !switch(40..76)
}

fn @main() noreturn {
bb0:
  call builtin.static_report(1)
  call @classify(7)
  goto bb0
}
`

func TestParseFile_Structure(t *testing.T) {
	m, in := mustParse(t, sampleModule)

	if m.Name != "sample" {
		t.Errorf("module name = %q", m.Name)
	}
	if len(m.Funcs) != 2 {
		t.Fatalf("got %d functions, want 2", len(m.Funcs))
	}

	f := m.FuncNamed("classify")
	if f == nil {
		t.Fatal("missing @classify")
	}
	if f.NumParams != 1 || f.Locals[0].Name != "v" || !f.Locals[0].Param {
		t.Errorf("params parsed wrong: %+v", f.Locals)
	}
	if types.Label(in, f.Result) != "int32" {
		t.Errorf("result type = %s", types.Label(in, f.Result))
	}
	if len(f.Blocks) != 4 {
		t.Fatalf("got %d blocks, want 4", len(f.Blocks))
	}
	sw := f.Blocks[0].Term
	if sw.Kind != mir.TermSwitch || len(sw.Switch.Cases) != 2 || sw.Switch.Default != 3 {
		t.Errorf("switch parsed wrong: %+v", sw)
	}
	if sw.Switch.Cases[1].Value != 1 || sw.Switch.Cases[1].Target != 2 {
		t.Errorf("case parsed wrong: %+v", sw.Switch.Cases)
	}
	if f.Blocks[3].Term.Prov.Kind != mir.ProvSwitch {
		t.Errorf("unreachable prov = %v", f.Blocks[3].Term.Prov.Kind)
	}
	if f.Blocks[3].Term.Prov.Span.Start != 40 || f.Blocks[3].Term.Prov.Span.End != 76 {
		t.Errorf("explicit range ignored: %v", f.Blocks[3].Term.Prov.Span)
	}

	main := m.FuncNamed("main")
	if main == nil || !main.NoReturn {
		t.Fatal("@main should be noreturn")
	}
	call := main.Blocks[0].Instrs[0]
	if call.Kind != mir.InstrCall || call.Call.Callee.Builtin != mir.BuiltinStaticReport {
		t.Errorf("builtin call parsed wrong: %+v", call)
	}
	if v, ok := call.Call.Args[0].IsIntLiteral(); !ok || v != 1 {
		t.Errorf("literal arg parsed wrong: %+v", call.Call.Args)
	}
	if main.Blocks[0].Instrs[1].Call.Callee.Kind != mir.CalleeFn {
		t.Error("ordinary call parsed as builtin")
	}
}

func TestParseFile_DefaultProvenanceSpans(t *testing.T) {
	src := "fn @f() -> int32 !closure {\nbb0:\n  unreachable !closure\n}\n"
	m, _ := mustParse(t, src)

	f := m.Funcs[0]
	if !f.IsClosure() {
		t.Fatal("header !closure should mark the function a closure")
	}
	wantStart := uint32(strings.Index(src, "fn"))
	if f.Span.Start != wantStart {
		t.Errorf("fn span starts at %d, want %d", f.Span.Start, wantStart)
	}
	if f.Prov.Span != f.Span {
		t.Errorf("header prov span %v, want fn span %v", f.Prov.Span, f.Span)
	}

	term := f.Blocks[0].Term
	if term.Prov.Kind != mir.ProvClosure {
		t.Fatalf("term prov = %v", term.Prov.Kind)
	}
	// Без явного диапазона fndecl/closure получают охват всей функции.
	if term.Prov.Span != f.Span {
		t.Errorf("term prov span %v, want fn span %v", term.Prov.Span, f.Span)
	}
}

func TestParseFile_RetProvDefaultsToOwnSpan(t *testing.T) {
	m, _ := mustParse(t, "fn @f() {\nbb0:\n  ret !iret\n}\n")

	term := m.Funcs[0].Blocks[0].Term
	if term.Prov.Kind != mir.ProvReturn || !term.Prov.Implicit {
		t.Fatalf("prov = %+v", term.Prov)
	}
	if term.Prov.Span != term.Span {
		t.Errorf("prov span %v should default to the ret's own span %v", term.Prov.Span, term.Span)
	}
}

func TestParseFile_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code diag.Code
	}{
		{
			name: "unknown_local",
			src:  "fn @f() {\nbb0:\n  %x = copy %nope\n  ret\n}\n",
			code: diag.ParseUnknownLocal,
		},
		{
			name: "label_out_of_sequence",
			src:  "fn @f() {\nbb1:\n  ret\n}\n",
			code: diag.ParseDuplicateBlock,
		},
		{
			name: "missing_terminator",
			src:  "fn @f() {\nbb0:\n  %x = const int 1\n}\n",
			code: diag.ParseMissingTerminator,
		},
		{
			name: "bad_provenance_kind",
			src:  "fn @f() {\nbb0:\n  ret !mystery\n}\n",
			code: diag.ParseBadProvenance,
		},
		{
			name: "inverted_provenance_range",
			src:  "fn @f() {\nbb0:\n  ret !ret(9..3)\n}\n",
			code: diag.ParseBadProvenance,
		},
		{
			name: "duplicate_function",
			src:  "fn @f() {\nbb0:\n  ret\n}\nfn @f() {\nbb0:\n  ret\n}\n",
			code: diag.ParseDuplicateFunc,
		},
		{
			name: "unknown_type",
			src:  "fn @f(%x: quaternion) {\nbb0:\n  ret\n}\n",
			code: diag.ParseUnknownType,
		},
		{
			name: "duplicate_parameter",
			src:  "fn @f(%x: int, %x: int) {\nbb0:\n  ret\n}\n",
			code: diag.ParseDuplicateLocal,
		},
		{
			name: "statement_after_terminator",
			src:  "fn @f() {\nbb0:\n  ret\n  nop\n}\n",
			code: diag.ParseUnexpectedToken,
		},
		{
			name: "unterminated_string",
			src:  "fn @f() {\nbb0:\n  %s = const string \"oops\n  ret\n}\n",
			code: diag.ParseUnterminatedString,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, bag, ok := parse(t, tt.src)
			if ok {
				t.Fatal("expected parse failure")
			}
			found := false
			for _, d := range bag.Items() {
				if d.Code == tt.code {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("no %s diagnostic in %v", tt.code.ID(), bag.Items())
			}
		})
	}
}

func TestParseFile_UnknownBuiltinWarns(t *testing.T) {
	m, _, bag, ok := parse(t, "fn @f() {\nbb0:\n  call builtin.frobnicate()\n  ret\n}\n")
	if !ok {
		t.Fatalf("unknown builtin must not fail the parse: %v", bag.Items())
	}
	if !bag.HasWarnings() {
		t.Error("expected a warning for the unknown builtin")
	}
	in := m.Funcs[0].Blocks[0].Instrs[0]
	if in.Call.Callee.Builtin != mir.BuiltinUnknown {
		t.Errorf("builtin kind = %v, want unknown", in.Call.Callee.Builtin)
	}
}

func TestParseFile_RecoversAcrossFunctions(t *testing.T) {
	src := "fn @broken() {\nbb0:\n  %x = const int\n  ret\n}\nfn @fine() {\nbb0:\n  ret\n}\n"
	m, _, _, ok := parse(t, src)
	if ok {
		t.Fatal("expected parse failure")
	}
	if m.FuncNamed("fine") == nil {
		t.Error("parser should recover and read the next function")
	}
}

func TestParseFile_RoundTripsThroughDump(t *testing.T) {
	m, in := mustParse(t, sampleModule)

	var first strings.Builder
	if err := mir.DumpModule(&first, m, in, mir.DumpOptions{}); err != nil {
		t.Fatal(err)
	}

	fs := source.NewFileSet()
	id := fs.AddVirtual("dump.mir", []byte(first.String()))
	bag := diag.NewBag(64)
	m2, ok := mirtext.ParseFile(fs.Get(id), in, diag.BagReporter{Bag: bag})
	if !ok {
		t.Fatalf("dump does not reparse:\n%s\n%v", first.String(), bag.Items())
	}

	var second strings.Builder
	if err := mir.DumpModule(&second, m2, in, mir.DumpOptions{}); err != nil {
		t.Fatal(err)
	}
	if first.String() != second.String() {
		t.Errorf("dump not stable:\n--- first\n%s\n--- second\n%s", first.String(), second.String())
	}
}
