package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"sysyc/internal/version"
)

type versionPayload struct {
	Tool string `json:"tool"`
	version.Info
}

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show sysyc build information",
		Args:  cobra.NoArgs,
		RunE:  runVersion,
	}
	cmd.Flags().String("format", "pretty", "output format (pretty|json)")
	return cmd
}

func runVersion(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	info := version.Current()
	out := cmd.OutOrStdout()
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(versionPayload{Tool: "sysyc", Info: info})
	case "pretty":
		renderVersionPretty(out, info, useColor(cmd, out))
		return nil
	}
	return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
}

func renderVersionPretty(out io.Writer, info version.Info, color bool) {
	fmt.Fprintf(out, "sysyc %s\n", version.Colored(color))
	if info.GitCommit != "" {
		fmt.Fprintf(out, "  commit: %s\n", info.GitCommit)
	}
	if info.BuildDate != "" {
		fmt.Fprintf(out, "  built:  %s\n", info.BuildDate)
	}
}
