package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sysyc/internal/diagfmt"
	"sysyc/internal/driver"
)

func newTokenizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokenize [flags] file.sy",
		Short: "Tokenize a SysY source file",
		Args:  cobra.ExactArgs(1),
		RunE:  runTokenize,
	}
	cmd.Flags().String("format", "pretty", "output format (pretty|json)")
	return cmd
}

func runTokenize(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unknown format: %s", format)
	}
	maxDiagnostics, _, _, err := commonFlags(cmd)
	if err != nil {
		return err
	}

	result, err := driver.Tokenize(args[0], maxDiagnostics)
	if err != nil {
		return fmt.Errorf("tokenization failed: %w", err)
	}
	reportDiagnostics(cmd, result.Bag, result.FileSet)

	if format == "json" {
		return diagfmt.FormatTokensJSON(cmd.OutOrStdout(), result.Tokens)
	}
	return diagfmt.FormatTokensPretty(cmd.OutOrStdout(), result.Tokens, result.FileSet)
}
