package driver_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"drift/internal/diag"
	"drift/internal/driver"
	"drift/internal/source"
	"drift/internal/types"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const missingReturnMIR = `fn @f() -> int32 {
bb0:
  unreachable !fndecl
}
`

const staticReportMIR = `fn @sr() {
bb0:
  %c = const int 1
  call builtin.static_report(%c)
  ret
}
`

const cleanMIR = `fn @ok() -> int32 {
bb0:
  %r = const int32 7
  ret %r !ret
}
`

func codes(bag *diag.Bag) []diag.Code {
	var out []diag.Code
	for _, d := range bag.Items() {
		out = append(out, d.Code)
	}
	return out
}

func TestCheckFile_MissingReturn(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "f.mir", missingReturnMIR)

	fs := source.NewFileSetWithBase(dir)
	res, err := driver.CheckFile(fs, types.NewInterner(), path, driver.CheckOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if got := codes(res.Bag); len(got) != 1 || got[0] != diag.FlowMissingReturn {
		t.Errorf("codes = %v, want [FLW3001]", got)
	}
	if !res.Bag.HasErrors() {
		t.Error("missing return must be an error")
	}
}

func TestCheckFile_StaticReportNeedsFolding(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "sr.mir", staticReportMIR)

	t.Run("folded", func(t *testing.T) {
		fs := source.NewFileSetWithBase(dir)
		res, err := driver.CheckFile(fs, types.NewInterner(), path, driver.CheckOptions{})
		if err != nil {
			t.Fatal(err)
		}
		if got := codes(res.Bag); len(got) != 1 || got[0] != diag.FlowStaticReport {
			t.Errorf("codes = %v, want [FLW3004]", got)
		}
	})

	t.Run("nofold", func(t *testing.T) {
		fs := source.NewFileSetWithBase(dir)
		res, err := driver.CheckFile(fs, types.NewInterner(), path, driver.CheckOptions{NoFold: true})
		if err != nil {
			t.Fatal(err)
		}
		if res.Bag.Len() != 0 {
			t.Errorf("unfolded operand must stay silent, got %v", res.Bag.Items())
		}
	})
}

func TestCheckFile_BrokenInvariant(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.mir", "fn @f() {\nbb0:\n  goto bb7\n}\n")

	fs := source.NewFileSetWithBase(dir)
	res, err := driver.CheckFile(fs, types.NewInterner(), path, driver.CheckOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if got := codes(res.Bag); len(got) != 1 || got[0] != diag.VerBrokenInvariant {
		t.Errorf("codes = %v, want [VER2001]", got)
	}
}

func TestCheckFile_MissingFile(t *testing.T) {
	fs := source.NewFileSet()
	res, err := driver.CheckFile(fs, types.NewInterner(), "/nonexistent/x.mir", driver.CheckOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if got := codes(res.Bag); len(got) != 1 || got[0] != diag.IOReadError {
		t.Errorf("codes = %v, want [IO4002]", got)
	}
}

func TestCheckFile_Timings(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "ok.mir", cleanMIR)

	fs := source.NewFileSetWithBase(dir)
	res, err := driver.CheckFile(fs, types.NewInterner(), path, driver.CheckOptions{Timings: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.Timing == nil || len(res.Timing.Phases) != 3 {
		t.Fatalf("timing = %+v, want parse/verify/analyze", res.Timing)
	}
	if res.Timing.Phases[0].Name != "parse" || res.Timing.Phases[2].Name != "analyze" {
		t.Errorf("stages = %+v", res.Timing.Phases)
	}
}

func TestCheckDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.mir", missingReturnMIR)
	writeFile(t, dir, "a.mir", cleanMIR)
	writeFile(t, dir, "ignored.txt", "not mir")

	fs, results, err := driver.CheckDir(context.Background(), dir, driver.CheckOptions{Jobs: 2})
	if err != nil {
		t.Fatal(err)
	}
	if fs.Len() != 2 {
		t.Errorf("loaded %d files, want 2", fs.Len())
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	// Результаты отсортированы по пути.
	if filepath.Base(results[0].Path) != "a.mir" || filepath.Base(results[1].Path) != "b.mir" {
		t.Errorf("order = %q, %q", results[0].Path, results[1].Path)
	}
	if results[0].Bag.Len() != 0 {
		t.Errorf("a.mir should be clean: %v", results[0].Bag.Items())
	}
	if got := codes(results[1].Bag); len(got) != 1 || got[0] != diag.FlowMissingReturn {
		t.Errorf("b.mir codes = %v", got)
	}

	merged := driver.MergeBags(results, 64)
	if merged.Len() != 1 {
		t.Errorf("merged = %v", merged.Items())
	}
}

func TestCheckDir_EmptyDir(t *testing.T) {
	_, results, err := driver.CheckDir(context.Background(), t.TempDir(), driver.CheckOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("results = %v", results)
	}
}
