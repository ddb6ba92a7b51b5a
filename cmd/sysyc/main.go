// Command sysyc compiles SysY sources to Koopa IR and RISC-V assembly.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"sysyc/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// exitError carries a process exit status without an error message.
type exitError struct {
	code int
}

func (e exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

// execute runs the CLI on args and returns the process exit status.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var cleanup func()
	root := newRootCmd(&cleanup)
	root.SetArgs(rewriteLegacyArgs(args))
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if cleanup != nil {
		cleanup()
	}
	if err == nil {
		return 0
	}
	var ee exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	fmt.Fprintf(stderr, "sysyc: %v\n", err)
	return 1
}

func newRootCmd(cleanup *func()) *cobra.Command {
	root := &cobra.Command{
		Use:           "sysyc",
		Short:         "SysY compiler targeting Koopa IR and RISC-V",
		Long:          `sysyc lowers a straight-line subset of SysY to Koopa IR text and RV32 assembly`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
			if err != nil {
				return err
			}
			if _, err := readColorMode(colorFlag); err != nil {
				return err
			}
			done, err := setupTracing(cmd)
			if err != nil {
				return err
			}
			*cleanup = done
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.Bool("quiet", false, "suppress non-essential output")
	flags.Bool("timings", false, "show timing information")
	flags.Int("max-diagnostics", 100, "maximum number of diagnostics to show")
	flags.String("trace", "", "trace output file (- for stderr)")
	flags.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	flags.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	flags.Duration("trace-heartbeat", 0, "emit a trace heartbeat at this interval (0 disables)")

	root.AddCommand(
		newCompileCmd(),
		newTokenizeCmd(),
		newRunCmd(),
		newBuildCmd(),
		newWatchCmd(),
		newVersionCmd(),
	)
	return root
}

// rewriteLegacyArgs maps "-koopa in -o out" and "-riscv in -o out" onto the
// compile subcommand. Any other argv is returned unchanged.
func rewriteLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}
	var mode string
	switch args[0] {
	case "-koopa":
		mode = "koopa"
	case "-riscv":
		mode = "riscv"
	default:
		return args
	}
	out := make([]string, 0, len(args)+2)
	out = append(out, "compile", "--mode", mode)
	return append(out, args[1:]...)
}

type colorMode string

const (
	colorAuto colorMode = "auto"
	colorOn   colorMode = "on"
	colorOff  colorMode = "off"
)

func readColorMode(value string) (colorMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return colorAuto, nil
	case "on":
		return colorOn, nil
	case "off":
		return colorOff, nil
	default:
		return "", fmt.Errorf("invalid --color value %q (expected auto|on|off)", value)
	}
}

// useColor resolves --color against w.
func useColor(cmd *cobra.Command, w io.Writer) bool {
	value, _ := cmd.Root().PersistentFlags().GetString("color")
	mode, _ := readColorMode(value)
	switch mode {
	case colorOn:
		return true
	case colorOff:
		return false
	default:
		return isTerminal(w)
	}
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func commonFlags(cmd *cobra.Command) (maxDiagnostics int, timings, quiet bool, err error) {
	flags := cmd.Root().PersistentFlags()
	if maxDiagnostics, err = flags.GetInt("max-diagnostics"); err != nil {
		return 0, false, false, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if timings, err = flags.GetBool("timings"); err != nil {
		return 0, false, false, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if quiet, err = flags.GetBool("quiet"); err != nil {
		return 0, false, false, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	return maxDiagnostics, timings, quiet, nil
}
