package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/baechuer/admin-dashboard/services/account-service/internal/bootstrap"
)

// appBuilder builds the wired core. Tests swap it for injected deps.
type appBuilder func() (*bootstrap.App, error)

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	rootCmd := newRootCmd(bootstrap.NewApp)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd(build appBuilder) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "accountctl",
		Short:         "Account service maintenance CLI",
		Long:          "Out-of-band maintenance for the account service: role migration, bootstrap account, credentials.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newMigrateRolesCmd(build),
		newEnsureDefaultCmd(build),
		newHashPasswordCmd(),
		newIssueTokensCmd(),
	)
	return rootCmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
