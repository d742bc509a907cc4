package driver_test

import (
	"testing"

	"drift/internal/diag"
	"drift/internal/driver"
	"drift/internal/source"
	"drift/internal/types"
)

func TestDiskCache_PutGet(t *testing.T) {
	cache, err := driver.OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	key := driver.HashBytes([]byte("content"))
	payload := &driver.DiskPayload{
		Schema:      1,
		Path:        "x.mir",
		ContentHash: key,
		Diags: []driver.CachedDiagnostic{
			{Severity: uint8(diag.SevError), Code: uint16(diag.FlowMissingReturn), Start: 3, End: 9, Message: "m"},
		},
	}
	if err := cache.Put(key, payload); err != nil {
		t.Fatal(err)
	}

	var out driver.DiskPayload
	hit, err := cache.Get(key, &out)
	if err != nil || !hit {
		t.Fatalf("hit=%v err=%v", hit, err)
	}
	if out.Path != "x.mir" || len(out.Diags) != 1 || out.Diags[0].Message != "m" {
		t.Errorf("payload = %+v", out)
	}
}

func TestDiskCache_MissAndNil(t *testing.T) {
	cache, err := driver.OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	var out driver.DiskPayload
	hit, err := cache.Get(driver.HashBytes([]byte("absent")), &out)
	if err != nil || hit {
		t.Errorf("expected clean miss, hit=%v err=%v", hit, err)
	}

	var nilCache *driver.DiskCache
	if err := nilCache.Put(driver.Digest{}, &driver.DiskPayload{}); err != nil {
		t.Errorf("nil cache Put: %v", err)
	}
	if hit, err := nilCache.Get(driver.Digest{}, &out); err != nil || hit {
		t.Errorf("nil cache Get: hit=%v err=%v", hit, err)
	}
}

func TestCheckFile_CacheRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "f.mir", missingReturnMIR)
	cache, err := driver.OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	opts := driver.CheckOptions{Cache: cache}

	fs1 := source.NewFileSetWithBase(dir)
	first, err := driver.CheckFile(fs1, types.NewInterner(), path, opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.FromCache {
		t.Fatal("first run must not come from cache")
	}

	fs2 := source.NewFileSetWithBase(dir)
	second, err := driver.CheckFile(fs2, types.NewInterner(), path, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.FromCache {
		t.Fatal("second run should hit the cache")
	}

	want := diag.FormatShortDiagnostics(first.Bag.Items(), fs1, true)
	got := diag.FormatShortDiagnostics(second.Bag.Items(), fs2, true)
	if want != got {
		t.Errorf("cached diagnostics differ:\n%s\n---\n%s", want, got)
	}
}

func TestCheckFile_CacheKeyedByConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "sr.mir", staticReportMIR)
	cache, err := driver.OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	fs1 := source.NewFileSetWithBase(dir)
	folded, err := driver.CheckFile(fs1, types.NewInterner(), path, driver.CheckOptions{Cache: cache})
	if err != nil {
		t.Fatal(err)
	}
	if folded.Bag.Len() != 1 {
		t.Fatalf("folded run diags = %v", folded.Bag.Items())
	}

	// Другая конфигурация не должна подхватить чужую запись.
	fs2 := source.NewFileSetWithBase(dir)
	unfolded, err := driver.CheckFile(fs2, types.NewInterner(), path, driver.CheckOptions{Cache: cache, NoFold: true})
	if err != nil {
		t.Fatal(err)
	}
	if unfolded.FromCache {
		t.Error("NoFold run must not reuse the folded cache entry")
	}
	if unfolded.Bag.Len() != 0 {
		t.Errorf("unfolded run diags = %v", unfolded.Bag.Items())
	}
}
