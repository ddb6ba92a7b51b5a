package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sysyc/internal/driver"
)

func newCompileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile [flags] input [output]",
		Short: "Compile a SysY file to Koopa IR or RISC-V assembly",
		Long: `Compile lowers one SysY source file. The output path may be given
positionally or with -o; "-" or no output writes to stdout.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runCompile,
	}
	cmd.Flags().String("mode", "riscv", "output kind (koopa|riscv)")
	cmd.Flags().StringP("output", "o", "", "output path")
	return cmd
}

func runCompile(cmd *cobra.Command, args []string) error {
	modeValue, err := cmd.Flags().GetString("mode")
	if err != nil {
		return fmt.Errorf("failed to get mode flag: %w", err)
	}
	mode, err := driver.ParseMode(modeValue)
	if err != nil {
		return err
	}
	outFlag, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output flag: %w", err)
	}
	output, err := resolveOutput(args, outFlag)
	if err != nil {
		return err
	}
	maxDiagnostics, timings, _, err := commonFlags(cmd)
	if err != nil {
		return err
	}

	input := args[0]
	res, err := driver.CompileFile(cmd.Context(), input, driver.Options{
		Mode:           mode,
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
	return writeArtifact(cmd, output, res.Output(mode))
}

// resolveOutput picks the output path from the positional argument or -o.
func resolveOutput(args []string, flag string) (string, error) {
	positional := ""
	if len(args) > 1 {
		positional = args[1]
	}
	switch {
	case positional != "" && flag != "" && positional != flag:
		return "", fmt.Errorf("output given twice: %q and -o %q", positional, flag)
	case positional != "":
		return positional, nil
	case flag != "":
		return flag, nil
	}
	return "-", nil
}
