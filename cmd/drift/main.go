package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"drift/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "drift",
	Short: "Drift MIR control-flow checker",
	Long:  `Drift analyzes lowered MIR modules for control-flow mistakes: missing returns, non-exhaustive switches and returns that escape noreturn functions`,
}

// main wires up the root command: sets the version, registers subcommands and
// persistent flags, then executes. A failed command exits with status 1.
func main() {
	// Устанавливаем версию для автоматического флага --version
	rootCmd.Version = version.Version

	// Добавляем команды
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
