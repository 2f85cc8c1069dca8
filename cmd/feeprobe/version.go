package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Set via -ldflags at build time.
var (
	Version     = "dev"
	GitRevision = "unknown"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display the current version of feeprobe",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "feeprobe:")
			fmt.Fprintf(out, "  - Version: %s\n", Version)
			fmt.Fprintf(out, "  - Git Revision: %s\n", GitRevision)
			fmt.Fprintf(out, "  - Go Version: %s\n", runtime.Version())
		},
	}
}
