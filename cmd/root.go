// Package cmd wires the operator's command line interface. The same binary
// runs the controller manager (`apimctl run`) and the offline manifest
// validator used in CI pipelines (`apimctl validate`).
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "apimctl",
	Short: "GitOps reconciler for gateway API definitions",
	Long: `apimctl converges ApiDefinition, ApiPlan and ManagementContext custom
resources against a remote API management platform.

Run the controller manager inside a cluster with "apimctl run", or check
manifests offline before committing them with "apimctl validate <dir>".`,
	SilenceUsage: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
