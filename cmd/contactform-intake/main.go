// Contactform-intake is a local stand-in for a hosted form backend.
//
// It accepts the same multipart POSTs the contact form sends to its hosted
// endpoints, keeps the leads in memory and streams them to watchers over a
// WebSocket. A reject mode answers every submission with 503 so endpoint
// fallback can be exercised end to end.
//
// Usage:
//
//	contactform-intake serve [flags]
//	contactform-intake watch [flags]
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/contactform/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "contactform-intake",
	Short: "Local contact form intake service",
	Long: `A local HTTP intake for contact form submissions.

Point the contact form at it with --endpoint, or let the form find it over
mDNS with --discover. Accepted leads are listed at /leads and streamed to
'contactform-intake watch'.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("contactform-intake %s\n", version.Full())
	},
}
