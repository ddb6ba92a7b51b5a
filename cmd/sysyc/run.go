package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sysyc/internal/driver"
	"sysyc/internal/rvsim"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [flags] file.sy",
		Short: "Compile a file and execute it on the RISC-V simulator",
		Long: `Run compiles the file to assembly, executes the entry function on the
built-in RV32 simulator and prints the value left in a0.`,
		Args: cobra.ExactArgs(1),
		RunE: runRun,
	}
	cmd.Flags().String("entry", "main", "function to call")
	cmd.Flags().Int("max-steps", rvsim.DefaultMaxSteps, "abort after this many instructions")
	cmd.Flags().Bool("exit-code", false, "exit with the returned value masked to 0..255")
	return cmd
}

func runRun(cmd *cobra.Command, args []string) error {
	entry, err := cmd.Flags().GetString("entry")
	if err != nil {
		return fmt.Errorf("failed to get entry flag: %w", err)
	}
	maxSteps, err := cmd.Flags().GetInt("max-steps")
	if err != nil {
		return fmt.Errorf("failed to get max-steps flag: %w", err)
	}
	exitCode, err := cmd.Flags().GetBool("exit-code")
	if err != nil {
		return fmt.Errorf("failed to get exit-code flag: %w", err)
	}
	maxDiagnostics, timings, _, err := commonFlags(cmd)
	if err != nil {
		return err
	}

	input := args[0]
	res, err := driver.CompileFile(cmd.Context(), input, driver.Options{
		Mode:           driver.ModeRiscv,
		MaxDiagnostics: maxDiagnostics,
		EnableTimings:  timings,
	})
	if res != nil {
		reportDiagnostics(cmd, res.Bag, res.FileSet)
	}
	if err != nil {
		return fmt.Errorf("compile %s: %w", input, err)
	}
	if timings {
		printTimings(cmd.ErrOrStderr(), input, res.Timings)
	}

	prog, err := rvsim.Assemble(res.Asm)
	if err != nil {
		return err
	}
	m := rvsim.NewMachine(prog)
	if maxSteps > 0 {
		m.MaxSteps = maxSteps
	}
	value, err := m.Call(entry)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), value)

	if code := int(uint32(value) & 0xff); exitCode && code != 0 {
		return exitError{code: code}
	}
	return nil
}
