package driver

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"drift/internal/diag"
	"drift/internal/source"
	"drift/internal/types"
)

// ListMIRFiles возвращает отсортированный список всех *.mir файлов в директории
func ListMIRFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".mir") {
			files = append(files, path)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	// Сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}

// CheckDir проверяет все *.mir файлы в директории параллельно. Каждый файл
// получает собственный Bag; срез результатов упорядочен по пути, поэтому
// вывод детерминирован независимо от порядка завершения горутин.
func CheckDir(ctx context.Context, dir string, opts CheckOptions) (*source.FileSet, []FileResult, error) {
	files, err := ListMIRFiles(dir)
	if err != nil {
		return nil, nil, err
	}

	fileSet := source.NewFileSetWithBase(dir)
	if len(files) == 0 {
		return fileSet, nil, nil
	}

	// Файлы загружаем последовательно: FileSet не потокобезопасен на запись.
	fileIDs := make(map[string]source.FileID, len(files))
	loadErrors := make(map[string]error, len(files))
	for _, path := range files {
		fileID, err := fileSet.Load(path)
		if err != nil {
			loadErrors[path] = err
			continue
		}
		fileIDs[path] = fileID
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Результаты (индексы уникальны для каждой горутины, мьютекс не нужен)
	results := make([]FileResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			// Проверка отмены
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			bag := diag.NewBag(opts.maxDiags())
			results[i] = FileResult{Path: path, Bag: bag}

			if loadErr, hadError := loadErrors[path]; hadError {
				bag.Add(diag.Diagnostic{
					Severity: diag.SevError,
					Code:     diag.IOReadError,
					Message:  "failed to load file: " + loadErr.Error(),
				})
				return nil
			}

			results[i].FileID = fileIDs[path]
			// Интернер типов общий быть не может: он не потокобезопасен,
			// поэтому каждый файл получает свой.
			return checkLoaded(fileSet, types.NewInterner(), &results[i], opts)
		})
	}

	if err := g.Wait(); err != nil {
		return fileSet, results, err
	}
	return fileSet, results, nil
}

// MergeBags собирает диагностики всех результатов в один Bag в порядке
// следования файлов.
func MergeBags(results []FileResult, capacity int) *diag.Bag {
	merged := diag.NewBag(capacity)
	for i := range results {
		if results[i].Bag != nil {
			merged.Merge(results[i].Bag)
		}
	}
	return merged
}
