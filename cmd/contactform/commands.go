package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/muurk/contactform/internal/clock"
	"github.com/muurk/contactform/internal/config"
	"github.com/muurk/contactform/internal/discovery"
	"github.com/muurk/contactform/internal/form"
	"github.com/muurk/contactform/internal/logging"
	"github.com/muurk/contactform/internal/page"
	"github.com/muurk/contactform/internal/tui"
	"github.com/muurk/contactform/internal/ui"
)

// Common flags
var (
	configPath string
	logLevel   string
	logFile    string
)

// Form and submit flags
var (
	jumpToContact bool
	endpoints     []string
	useDiscovered bool
	fieldValues   = map[string]*string{}
	outputFormat  string
	forceInit     bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: OS config directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to this file instead of stderr")
	rootCmd.PersistentFlags().StringSliceVar(&endpoints, "endpoint", nil, "Endpoint URL to submit to, in order (repeatable; replaces configured endpoints)")
	rootCmd.PersistentFlags().BoolVar(&useDiscovered, "discover", false, "Try intake services found via mDNS before the configured endpoints")
	rootCmd.Flags().BoolVar(&jumpToContact, "jump", false, "Open the form scrolled to the contact section")

	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(endpointsCmd)
	rootCmd.AddCommand(configCmd)
}

// loadConfig reads the config file, applies command-line overrides and
// starts logging. Interactive sessions log to a file so nothing is drawn
// over the form.
func loadConfig(ctx context.Context, interactive bool) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	level := logLevel
	if level == "" {
		level = cfg.Logging.Level
	}
	out := logFile
	if out == "" {
		out = cfg.Logging.File
	}
	if interactive && out == "" && level != "" {
		dir, err := config.GetConfigDir()
		if err != nil {
			return nil, err
		}
		out = filepath.Join(dir, "contactform.log")
	}
	if err := logging.InitializeWithOutput(level, out); err != nil {
		return nil, err
	}

	if len(endpoints) > 0 {
		cfg.Endpoints = endpoints
	}
	if useDiscovered {
		scanner := discovery.NewScanner()
		scanner.Timeout = cfg.Discovery.Timeout
		local, err := scanner.Endpoints(ctx)
		if err != nil {
			logging.Warn("Discovery failed", zap.Error(err))
		}
		cfg.Endpoints = append(local, cfg.Endpoints...)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// signalContext is canceled on interrupt or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runForm(cmd *cobra.Command, args []string) error {
	if !ui.IsInteractive() {
		return errors.New("the interactive form needs a terminal; use 'contactform submit' instead")
	}

	ctx, cancel := signalContext()
	defer cancel()

	cfg, err := loadConfig(ctx, true)
	if err != nil {
		return err
	}
	defer logging.Sync()

	return tui.Run(ctx, cfg, tui.Options{JumpToContact: jumpToContact})
}

// submitCmd validates and delivers a message without the interactive form
var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Validate and send a message",
	Long: `Validate the given field values and send them to the configured endpoints.

Endpoints are tried in order. The first one to answer with a 2xx status wins;
any other status or a network error moves on to the next. Validation errors
are reported per field and nothing is sent.`,
	Example: `  # Send a message using the configured endpoints
  contactform submit --name "Jane Doe" --email jane@example.com \
    --service "Study Abroad" --destination Canada --message "I would like to study in Canada."

  # Send to a local intake service only
  contactform submit --endpoint http://127.0.0.1:8787/f/local ...

  # Prefer intake services advertised on the local network
  contactform submit --discover ...`,
	RunE: runSubmit,
}

func init() {
	for _, f := range []struct{ name, usage string }{
		{"name", "Full name"},
		{"email", "Email address"},
		{"phone", "Phone number (optional)"},
		{"service", "Service of interest"},
		{"destination", "Destination"},
		{"message", "Message text"},
	} {
		fieldValues[f.name] = submitCmd.Flags().String(f.name, "", f.usage)
	}
}

func runSubmit(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg, err := loadConfig(ctx, false)
	if err != nil {
		return err
	}
	defer logging.Sync()

	pg, err := page.New(cfg, clock.NewReal())
	if err != nil {
		return err
	}

	values := map[string]string{}
	for name, v := range fieldValues {
		if cmd.Flags().Changed(name) {
			values[name] = *v
		}
	}
	if err := pg.Fill(values); err != nil {
		return err
	}

	printer := ui.NewPrinter(os.Stdout)
	printer.PrintHeader("Contact Form", "submit",
		ui.Param{Key: "Endpoints", Value: fmt.Sprintf("%d", len(cfg.Endpoints))},
		ui.Param{Key: "Phone", Value: cfg.Form.PhonePolicy},
	)

	report, err := pg.Form.Submit(ctx)
	if report == nil {
		return err
	}
	if !report.Submitted {
		printer.PrintValidation(report.Validation)
		return validationError(report.Validation)
	}

	printer.PrintDelivery(cfg.Endpoints, report.Result, report.Err)
	if report.Err != nil {
		return errors.New("message was not delivered")
	}
	return nil
}

// validationError wraps every field failure so callers can tell a rejected
// form from a delivery problem.
func validationError(res form.ValidationResult) error {
	errs := res.Errors()
	logging.Debug("submit blocked by validation",
		zap.String("errors", form.FormatValidationErrors(errs)))
	return fmt.Errorf("%d field(s) failed validation: %w", len(errs), errors.Join(errs...))
}

// endpointsCmd shows where messages go
var endpointsCmd = &cobra.Command{
	Use:   "endpoints",
	Short: "List or discover submission endpoints",
}

var endpointsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List endpoints in the order they are tried",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		cfg, err := loadConfig(ctx, false)
		if err != nil {
			return err
		}
		for i, ep := range cfg.Endpoints {
			fmt.Printf("%d. %s\n", i+1, ep)
		}
		return nil
	},
}

var endpointsDiscoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find intake services advertised on the local network",
	Long: `Browse mDNS for contactform intake services.

Intake services started with 'contactform-intake serve --advertise' announce
themselves as _contactform._tcp. Each one found can be used with --endpoint.`,
	RunE: runDiscover,
}

var discoverTimeout int

func init() {
	endpointsDiscoverCmd.Flags().IntVar(&discoverTimeout, "timeout", 0, "Scan timeout in seconds (default from config)")
	endpointsDiscoverCmd.Flags().StringVar(&outputFormat, "format", "detailed", "Output format (detailed, json)")
	endpointsCmd.AddCommand(endpointsListCmd)
	endpointsCmd.AddCommand(endpointsDiscoverCmd)
}

func runDiscover(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := logging.InitializeWithOutput(logLevel, logFile); err != nil {
		return err
	}
	defer logging.Sync()

	scanner := discovery.NewScanner()
	scanner.Timeout = cfg.Discovery.Timeout
	if discoverTimeout > 0 {
		scanner.Timeout = time.Duration(discoverTimeout) * time.Second
	}

	if outputFormat != "json" {
		fmt.Printf("Scanning for intake services (timeout: %s)...\n\n", scanner.Timeout)
	}
	services, err := scanner.Scan(ctx)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if outputFormat == "json" {
		data, err := json.MarshalIndent(services, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	if len(services) == 0 {
		fmt.Println("No intake services found.")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Start one with 'contactform-intake serve --advertise'")
		fmt.Println("  - Check that multicast traffic is allowed on this network")
		fmt.Println("  - Try increasing --timeout")
		return nil
	}

	fmt.Printf("Found %d service(s):\n\n", len(services))
	for i, svc := range services {
		fmt.Printf("%d. %s\n", i+1, svc.Instance)
		fmt.Printf("   Form:     %s\n", svc.FormID)
		fmt.Printf("   Endpoint: %s\n", svc.EndpointURL())
		if len(svc.Metadata) > 0 {
			fmt.Printf("   Metadata: %v\n", svc.Metadata)
		}
		fmt.Println()
	}
	fmt.Println("Use 'contactform submit --endpoint <url>' to send to one of them")
	return nil
}

// configCmd manages the config file
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			p, err := config.GetConfigPath()
			if err != nil {
				return err
			}
			path = p
		}
		force := forceInit
		if _, err := os.Stat(path); err == nil && !force {
			if !ui.IsInteractive() {
				return fmt.Errorf("config file already exists: %s (use --force to overwrite)", path)
			}
			if !ui.ConfirmOverwrite(os.Stdin, os.Stdout, path) {
				fmt.Println("Aborted.")
				return nil
			}
			force = true
		}
		written, err := config.CreateDefaultConfig(path, force)
		if err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", written)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		fmt.Print(string(data))
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file location",
	RunE: func(cmd *cobra.Command, args []string) error {
		if configPath != "" {
			fmt.Println(configPath)
			return nil
		}
		path, err := config.GetConfigPath()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
}
