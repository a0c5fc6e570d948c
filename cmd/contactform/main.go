// Contactform is the terminal front end for the contact form.
//
// Running without arguments on a terminal opens the interactive form. The
// submit subcommand validates and delivers a message non-interactively,
// trying each configured endpoint in order until one accepts it.
//
// Usage:
//
//	contactform [command] [flags]
//
// See 'contactform --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/contactform/internal/form"
	"github.com/muurk/contactform/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode is 2 when the form was rejected by validation and 1 for any
// other failure.
func exitCode(err error) int {
	if form.IsValidationError(err) {
		return 2
	}
	return 1
}

var rootCmd = &cobra.Command{
	Use:   "contactform",
	Short: "Contact form with validation and multi-endpoint delivery",
	Long: `A contact form for the terminal.

Fields are validated as you leave them, the first invalid field is focused
when you submit, and a valid message is posted to each configured endpoint
in turn until one accepts it.

If no command is specified, the interactive form opens automatically.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runForm,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("contactform %s\n", version.Full())
	},
}
