package driver

import (
	"errors"
	"fmt"
	"time"

	"drift/internal/diag"
	"drift/internal/mir"
	"drift/internal/mirtext"
	"drift/internal/observ"
	"drift/internal/source"
	"drift/internal/types"
)

// CheckOptions управляет проверкой одного файла или директории.
type CheckOptions struct {
	// MaxDiagnostics ограничивает размер Bag (0 — значение по умолчанию).
	MaxDiagnostics int
	// NoFold skips constant folding and dead block pruning before the
	// dataflow pass. Mostly useful for debugging lowered input as-is.
	NoFold bool
	// Timings enables per-stage timing collection.
	Timings bool
	// Cache, when non-nil, is consulted by content hash before checking
	// and updated after a successful run.
	Cache *DiskCache

	// Jobs limits parallelism in CheckDir (0 — GOMAXPROCS).
	Jobs int

	// Observer, when non-nil, receives phase transitions per file.
	Observer PhaseObserver
}

const defaultMaxDiagnostics = 256

func (o CheckOptions) maxDiags() int {
	if o.MaxDiagnostics > 0 {
		return o.MaxDiagnostics
	}
	return defaultMaxDiagnostics
}

// configDigest fingerprints the options that change check results, so cache
// entries from different configurations never collide.
func (o CheckOptions) configDigest() Digest {
	var b [1]byte
	if o.NoFold {
		b[0] = 1
	}
	return HashBytes(b[:])
}

// FileResult is the outcome of checking one MIR file.
type FileResult struct {
	Path      string
	FileID    source.FileID
	Module    *mir.Module
	Bag       *diag.Bag
	FromCache bool
	Timing    *observ.Report
}

// CheckFile loads and checks a single file. IO and parse problems come back
// as diagnostics in the result; a non-nil error means the checker itself hit
// an internal inconsistency and the run must abort.
func CheckFile(fileSet *source.FileSet, typesIn *types.Interner, path string, opts CheckOptions) (*FileResult, error) {
	bag := diag.NewBag(opts.maxDiags())
	res := &FileResult{Path: path, Bag: bag}

	fileID, err := fileSet.Load(path)
	if err != nil {
		bag.Add(diag.Diagnostic{
			Severity: diag.SevError,
			Code:     diag.IOReadError,
			Message:  "failed to load file: " + err.Error(),
		})
		return res, nil
	}
	res.FileID = fileID
	return res, checkLoaded(fileSet, typesIn, res, opts)
}

// checkLoaded runs the parse/verify/analyze stages over an already loaded
// file, filling res.Bag and res.Module in place.
func checkLoaded(fileSet *source.FileSet, typesIn *types.Interner, res *FileResult, opts CheckOptions) error {
	file := fileSet.Get(res.FileID)

	var key Digest
	if opts.Cache != nil {
		key = combineDigest(Digest(file.Hash), opts.configDigest())
		var payload DiskPayload
		if hit, err := opts.Cache.Get(key, &payload); err == nil && hit {
			payloadToBag(&payload, res.FileID, res.Bag)
			res.FromCache = true
			return nil
		}
	}

	var timer *observ.Timer
	if opts.Timings {
		timer = observ.NewTimer()
	}
	begin := func(name string) (int, time.Time) {
		notifyPhase(opts.Observer, res.Path, name, PhaseWorking, nil, 0)
		if timer == nil {
			return -1, time.Now()
		}
		return timer.Begin(name), time.Now()
	}
	finish := func(idx int, start time.Time, name, note string, err error) {
		if timer != nil {
			timer.End(idx, note)
		}
		status := PhaseDone
		if err != nil {
			status = PhaseError
		}
		notifyPhase(opts.Observer, res.Path, name, status, err, time.Since(start))
	}
	defer func() {
		if timer != nil {
			report := timer.Report()
			res.Timing = &report
		}
	}()

	idx, started := begin("parse")
	m, ok := mirtext.ParseFile(file, typesIn, diag.BagReporter{Bag: res.Bag})
	res.Module = m
	finish(idx, started, "parse", fmt.Sprintf("%d functions", len(m.Funcs)), nil)
	if !ok {
		// Повреждённый модуль дальше не проверяем.
		return nil
	}

	idx, started = begin("verify")
	verifyErr := mir.Validate(m, typesIn)
	finish(idx, started, "verify", "", nil)
	if verifyErr != nil {
		for _, e := range flatten(verifyErr) {
			diag.ReportError(diag.BagReporter{Bag: res.Bag}, diag.VerBrokenInvariant,
				source.Span{File: res.FileID}, e.Error()).Emit()
		}
		return nil
	}

	idx, started = begin("analyze")
	passes := []mir.FuncPass{mir.DataflowDiagnosticsPass()}
	if !opts.NoFold {
		passes = mir.DefaultPasses()
	}
	pc := &mir.PassContext{Types: typesIn, Reporter: diag.BagReporter{Bag: res.Bag}}
	err := mir.RunPasses(pc, m, passes...)
	finish(idx, started, "analyze", "", err)
	if err != nil {
		// Внутренняя несогласованность: не кэшируем и не продолжаем.
		return err
	}

	if opts.Cache != nil {
		// Ошибку записи в кэш пользователю не показываем.
		_ = opts.Cache.Put(key, bagToPayload(res.Path, Digest(file.Hash), res.Bag))
	}
	return nil
}

// flatten unwraps errors.Join results into a flat list.
func flatten(err error) []error {
	if err == nil {
		return nil
	}
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		var out []error
		for _, e := range joined.Unwrap() {
			out = append(out, flatten(e)...)
		}
		return out
	}
	return []error{err}
}
