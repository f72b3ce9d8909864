package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information - will be set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "relmeta",
		Short: "Resolve relational metadata",
		Long: `relmeta resolves entity relations declared in YAML manifests into join columns,
foreign keys and unique constraints for a database dialect.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newResolveCmd())
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}
