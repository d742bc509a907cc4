package checkpipeline

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"drift/internal/driver"
	"drift/internal/source"
	"drift/internal/types"
)

// CheckRequest describes one pipeline run over a file or a directory.
type CheckRequest struct {
	// Target is a .mir file or a directory to scan.
	Target string
	// Options are passed through to the driver; Observer is overwritten
	// when Progress is set.
	Options driver.CheckOptions
	// Progress, when non-nil, receives per-file stage events.
	Progress ProgressSink
}

// Result aggregates everything the pipeline produced.
type Result struct {
	FileSet *source.FileSet
	Results []driver.FileResult
	// Timings sums stage durations across files (filled only when
	// Options.Timings is set).
	Timings Timings
	Elapsed time.Duration
}

// progressObserver переводит фазы драйвера в события пайплайна.
type progressObserver struct {
	mu   sync.Mutex
	sink ProgressSink
}

func (o *progressObserver) OnPhase(path, phase string, status driver.PhaseStatus, err error, elapsed time.Duration) {
	evt := Event{
		File:    path,
		Stage:   Stage(phase),
		Elapsed: elapsed,
		Err:     err,
	}
	switch status {
	case driver.PhaseWorking:
		evt.Status = StatusWorking
	case driver.PhaseError:
		evt.Status = StatusError
	default:
		evt.Status = StatusDone
	}
	// События из параллельных воркеров сериализуем, чтобы sink мог быть
	// наивным (stdout, срез в тесте).
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sink.OnEvent(evt)
}

// Check runs the full pipeline: discover files, check them, aggregate
// timings, and stream progress events to the sink.
func Check(ctx context.Context, req CheckRequest) (*Result, error) {
	startedAt := time.Now()

	info, err := os.Stat(req.Target)
	if err != nil {
		return nil, err
	}

	if req.Progress != nil {
		req.Options.Observer = &progressObserver{sink: req.Progress}
	}

	var (
		fileSet *source.FileSet
		results []driver.FileResult
	)
	if info.IsDir() {
		files, listErr := driver.ListMIRFiles(req.Target)
		if listErr != nil {
			return nil, listErr
		}
		emitQueued(req.Progress, files)

		fileSet, results, err = driver.CheckDir(ctx, req.Target, req.Options)
	} else {
		emitQueued(req.Progress, []string{req.Target})

		fileSet = source.NewFileSetWithBase(filepath.Dir(req.Target))
		var res *driver.FileResult
		res, err = driver.CheckFile(fileSet, types.NewInterner(), req.Target, req.Options)
		if res != nil {
			results = []driver.FileResult{*res}
		}
	}
	if err != nil {
		return nil, err
	}

	out := &Result{
		FileSet: fileSet,
		Results: results,
		Elapsed: time.Since(startedAt),
	}
	for i := range results {
		if results[i].Timing == nil {
			continue
		}
		for _, phase := range results[i].Timing.Phases {
			out.Timings.Add(Stage(phase.Name), time.Duration(phase.DurationMS*float64(time.Millisecond)))
		}
	}

	if req.Progress != nil {
		req.Progress.OnEvent(Event{Status: StatusDone, Elapsed: out.Elapsed})
	}
	return out, nil
}

func emitQueued(sink ProgressSink, files []string) {
	if sink == nil {
		return
	}
	for _, f := range files {
		sink.OnEvent(Event{File: f, Stage: StageLoad, Status: StatusQueued})
	}
}
