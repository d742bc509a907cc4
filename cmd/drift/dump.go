package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"drift/internal/diag"
	"drift/internal/mir"
	"drift/internal/mirtext"
	"drift/internal/source"
	"drift/internal/types"
)

var dumpCmd = &cobra.Command{
	Use:   "dump [flags] <file.mir>",
	Short: "Print the canonical textual form of a MIR file",
	Long: `Parse a .mir file and print it back in canonical form. Optionally runs
constant folding and dead block pruning first, which is handy for seeing
exactly what the analyzer sees`,
	Args: cobra.ExactArgs(1),
	RunE: runDump,
}

func init() {
	dumpCmd.Flags().Bool("fold", false, "fold constants before dumping")
	dumpCmd.Flags().Bool("prune", false, "prune dead blocks before dumping")
	dumpCmd.Flags().Bool("omit-provenance", false, "drop !... annotations from the output")
}

func runDump(cmd *cobra.Command, args []string) error {
	fold, err := cmd.Flags().GetBool("fold")
	if err != nil {
		return fmt.Errorf("failed to get fold flag: %w", err)
	}
	prune, err := cmd.Flags().GetBool("prune")
	if err != nil {
		return fmt.Errorf("failed to get prune flag: %w", err)
	}
	omitProv, err := cmd.Flags().GetBool("omit-provenance")
	if err != nil {
		return fmt.Errorf("failed to get omit-provenance flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	path := args[0]
	fileSet := source.NewFileSetWithBase(filepath.Dir(path))
	fileID, err := fileSet.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load file: %w", err)
	}

	typesIn := types.NewInterner()
	bag := diag.NewBag(maxDiagnostics)
	m, ok := mirtext.ParseFile(fileSet.Get(fileID), typesIn, diag.BagReporter{Bag: bag})
	if !ok {
		bag.Sort()
		if output := diag.FormatShortDiagnostics(bag.Items(), fileSet, false); output != "" {
			fmt.Fprintln(os.Stderr, output)
		}
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return fmt.Errorf("") // Silent error - diagnostics already printed
	}

	var passes []mir.FuncPass
	if fold {
		passes = append(passes, mir.FoldConstsPass())
	}
	if prune {
		passes = append(passes, mir.PruneDeadBlocksPass())
	}
	if len(passes) > 0 {
		pc := &mir.PassContext{Types: typesIn, Reporter: diag.NopReporter{}}
		if err := mir.RunPasses(pc, m, passes...); err != nil {
			return fmt.Errorf("pass pipeline failed: %w", err)
		}
	}

	return mir.DumpModule(os.Stdout, m, typesIn, mir.DumpOptions{OmitProvenance: omitProv})
}
