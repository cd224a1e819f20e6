package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "hintgate",
	Short: "SSO gateway and record services for chatbot hints",
	Long: `Hintgate fronts the chatbot hint record services with a single gateway
that exchanges SSO tickets for signed session tokens, enforces role-based
access control, and reverse-proxies authorized requests to the backends.

The same binary also runs the backend record services (see "hints").`,
}

func init() {
	// Configuration is environment-driven; flags only document the env names.
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging (env: DEBUG)")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
