package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"drift/internal/checkpipeline"
	"drift/internal/diag"
	"drift/internal/diagfmt"
	"drift/internal/driver"
	"drift/internal/source"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [file.mir|directory]",
	Short: "Run control-flow diagnostics over MIR files",
	Long: `Run control-flow diagnostics on a single .mir file or on every *.mir file
within a directory. With no argument the target comes from drift.toml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

// init registers CLI flags for the check command used by runCheck.
// It configures output format, warning handling, concurrency, the result
// cache and the interactive progress display.
func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|json|short)")
	checkCmd.Flags().Bool("no-warnings", false, "ignore warnings in diagnostics")
	checkCmd.Flags().Bool("warnings-as-errors", false, "treat warnings as errors")
	checkCmd.Flags().Bool("no-fold", false, "skip constant folding and dead block pruning before analysis")
	checkCmd.Flags().Int("jobs", 0, "max parallel workers for directory processing (0=auto)")
	checkCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	checkCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	checkCmd.Flags().Bool("disk-cache", false, "enable persistent result cache keyed by content hash")
	checkCmd.Flags().String("ui", "auto", "interactive progress display (auto|on|off)")
}

// runCheck executes the "check" command: it resolves the target (argument or
// drift.toml), runs the pipeline, applies the warning policy, renders the
// results in the chosen format and exits non-zero when errors remain.
func runCheck(cmd *cobra.Command, args []string) error {
	// Получаем флаги
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	switch format {
	case "pretty", "json", "short":
		// supported
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}

	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}

	noWarnings, err := cmd.Flags().GetBool("no-warnings")
	if err != nil {
		return fmt.Errorf("failed to get no-warnings flag: %w", err)
	}

	warningsAsErrors, err := cmd.Flags().GetBool("warnings-as-errors")
	if err != nil {
		return fmt.Errorf("failed to get warnings-as-errors flag: %w", err)
	}

	if noWarnings && warningsAsErrors {
		return fmt.Errorf("no-warnings and warnings-as-errors flags cannot be used together")
	}

	noFold, err := cmd.Flags().GetBool("no-fold")
	if err != nil {
		return fmt.Errorf("failed to get no-fold flag: %w", err)
	}

	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}

	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}

	fullPath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return fmt.Errorf("failed to get fullpath flag: %w", err)
	}

	enableDiskCache, err := cmd.Flags().GetBool("disk-cache")
	if err != nil {
		return fmt.Errorf("failed to get disk-cache flag: %w", err)
	}

	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}

	// Цель: аргумент или drift.toml
	target := ""
	if len(args) == 1 {
		target = args[0]
	} else {
		manifest, ok, manifestErr := loadProjectManifest(".")
		if manifestErr != nil {
			return manifestErr
		}
		if !ok {
			return fmt.Errorf("%s", noDriftTomlMessage)
		}
		target, err = resolveCheckTarget(manifest)
		if err != nil {
			return err
		}
		// Манифест задаёт базовый режим, флаг командной строки важнее.
		if manifest.Config.Check.NoFold && !cmd.Flags().Changed("no-fold") {
			noFold = true
		}
	}

	st, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("failed to stat path: %w", err)
	}

	opts := driver.CheckOptions{
		MaxDiagnostics: maxDiagnostics,
		NoFold:         noFold,
		Timings:        showTimings,
		Jobs:           jobs,
	}
	if enableDiskCache {
		cache, cacheErr := driver.OpenDiskCache("drift")
		if cacheErr != nil {
			return fmt.Errorf("failed to open disk cache: %w", cacheErr)
		}
		opts.Cache = cache
	}

	req := checkpipeline.CheckRequest{Target: target, Options: opts}

	var res *checkpipeline.Result
	if mode.shouldUseTUI() && !quiet {
		files := []string{target}
		if st.IsDir() {
			files, err = driver.ListMIRFiles(target)
			if err != nil {
				return fmt.Errorf("failed to list MIR files: %w", err)
			}
		}
		res, err = runCheckWithUI(cmd.Context(), "drift check", files, req)
	} else {
		res, err = checkpipeline.Check(cmd.Context(), req)
	}
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	for i := range res.Results {
		res.Results[i].Bag = applyWarningPolicy(res.Results[i].Bag, noWarnings, warningsAsErrors)
	}

	exit := 0
	for _, r := range res.Results {
		if r.Bag.HasErrors() {
			exit = 1
			break
		}
	}

	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return err
	}
	useColor := colorFlag == "on" || (colorFlag == "auto" && isTerminal(os.Stdout))

	pathMode := diagfmt.PathModeAuto
	if fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}
	prettyOpts := diagfmt.PrettyOpts{
		Color:     useColor,
		PathMode:  pathMode,
		ShowNotes: withNotes,
	}
	jsonOpts := diagfmt.JSONOpts{
		IncludePositions: true,
		PathMode:         pathMode,
		IncludeNotes:     withNotes,
	}

	fs := res.FileSet
	switch format {
	case "short":
		merged := driver.MergeBags(res.Results, maxDiagnostics)
		merged.Sort()
		output := diag.FormatShortDiagnostics(merged.Items(), fs, withNotes)
		if output != "" {
			fmt.Fprintln(os.Stdout, output)
		}
	case "pretty":
		if st.IsDir() {
			for idx, r := range res.Results {
				if idx > 0 {
					fmt.Fprintln(os.Stdout)
				}
				fmt.Fprintf(os.Stdout, "== %s ==\n", displayPathFor(r, fs, fullPath))
				r.Bag.Sort()
				diagfmt.Pretty(os.Stdout, r.Bag, fs, prettyOpts)
			}
		} else {
			for _, r := range res.Results {
				r.Bag.Sort()
				diagfmt.Pretty(os.Stdout, r.Bag, fs, prettyOpts)
			}
		}
	case "json":
		if st.IsDir() {
			output := make(map[string]diagfmt.DiagnosticsOutput, len(res.Results))
			for _, r := range res.Results {
				r.Bag.Sort()
				output[displayPathFor(r, fs, fullPath)] = diagfmt.BuildDiagnosticsOutput(r.Bag, fs, jsonOpts)
			}
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(output); err != nil {
				return fmt.Errorf("failed to encode diagnostics output: %w", err)
			}
		} else {
			for _, r := range res.Results {
				r.Bag.Sort()
				if err := diagfmt.JSON(os.Stdout, r.Bag, fs, jsonOpts); err != nil {
					return fmt.Errorf("failed to format diagnostics: %w", err)
				}
			}
		}
	}

	if showTimings && !quiet {
		printTimings(os.Stderr, res)
	}

	if exit != 0 {
		// Suppress cobra usage output on diagnostic errors
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return fmt.Errorf("") // Silent error - diagnostics already printed
	}
	return nil
}

// applyWarningPolicy drops or promotes warnings per the command flags. The
// original bag is returned untouched when no policy is in effect.
func applyWarningPolicy(bag *diag.Bag, noWarnings, warningsAsErrors bool) *diag.Bag {
	if bag == nil || (!noWarnings && !warningsAsErrors) {
		return bag
	}
	out := diag.NewBag(int(bag.Cap()))
	for _, d := range bag.Items() {
		if d.Severity == diag.SevWarning {
			if noWarnings {
				continue
			}
			d.Severity = diag.SevError
		}
		out.Add(d)
	}
	return out
}

// displayPathFor picks the path shown in per-file headers. Files that failed
// to load never made it into the FileSet, so the raw path is used.
func displayPathFor(r driver.FileResult, fs *source.FileSet, fullPath bool) string {
	if f, ok := fs.GetByPath(r.Path); ok {
		mode := "auto"
		if fullPath {
			mode = "absolute"
		}
		return f.FormatPath(mode, fs.BaseDir())
	}
	if fullPath {
		if abs, err := filepath.Abs(r.Path); err == nil {
			return filepath.ToSlash(abs)
		}
	}
	return r.Path
}

func printTimings(w io.Writer, res *checkpipeline.Result) {
	stages := []checkpipeline.Stage{
		checkpipeline.StageParse,
		checkpipeline.StageVerify,
		checkpipeline.StageAnalyze,
	}
	fmt.Fprintln(w, "timings:")
	for _, stage := range stages {
		if !res.Timings.Has(stage) {
			continue
		}
		fmt.Fprintf(w, "  %-20s %7.2f ms\n", string(stage), millis(res.Timings.Duration(stage)))
	}
	fmt.Fprintf(w, "  %-20s %7.2f ms\n", "total", millis(res.Timings.Sum(stages...)))
	fmt.Fprintf(w, "  %-20s %7.2f ms\n", "wall", millis(res.Elapsed))
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
