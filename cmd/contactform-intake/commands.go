package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/muurk/contactform/internal/config"
	"github.com/muurk/contactform/internal/intake"
	"github.com/muurk/contactform/internal/logging"
	"github.com/muurk/contactform/internal/ui"
)

// Common flags
var (
	configPath string
	logLevel   string
)

// Serve flags
var (
	listenAddr string
	formID     string
	reject     bool
	advertise  bool
	capacity   int
	origins    []string
)

// Watch flags
var (
	serverURL string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: OS config directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "Address to listen on (default from config)")
	serveCmd.Flags().StringVar(&formID, "form", "", "Form id accepted at /f/<form> (default from config)")
	serveCmd.Flags().BoolVar(&reject, "reject", false, "Answer every submission with 503")
	serveCmd.Flags().BoolVar(&advertise, "advertise", false, "Announce the service over mDNS")
	serveCmd.Flags().IntVar(&capacity, "capacity", intake.DefaultCapacity, "Leads kept in memory")
	serveCmd.Flags().StringSliceVar(&origins, "origin", nil, "Allowed CORS origin (repeatable; default from config)")

	watchCmd.Flags().StringVar(&serverURL, "server", "", "Intake base URL (default: http://<listen from config>)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the intake server",
	Long: `Start the intake server.

Routes:
  POST /f/<form>  accept a submission (multipart or urlencoded)
  GET  /leads     list accepted leads as JSON
  PUT  /mode      switch reject mode: {"reject": true}
  GET  /ws        WebSocket stream of new leads
  GET  /health    status`,
	Example: `  # Serve the form id from the config file
  contactform-intake serve

  # Serve form "demo" on all interfaces and announce it over mDNS
  contactform-intake serve --listen 0.0.0.0:8787 --form demo --advertise

  # Reject everything to exercise endpoint fallback
  contactform-intake serve --reject`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := logging.Initialize(logLevel); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	settings := intake.FromSettings(cfg.Intake)
	if listenAddr != "" {
		settings.Listen = listenAddr
	}
	if formID != "" {
		settings.FormID = formID
	}
	if len(origins) > 0 {
		settings.AllowedOrigins = origins
	}
	if cmd.Flags().Changed("advertise") {
		settings.Advertise = advertise
	}
	settings.Reject = reject
	settings.Capacity = capacity

	srv, err := intake.New(settings)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	if err := srv.Listen(); err != nil {
		return err
	}

	printer := ui.NewPrinter(os.Stdout)
	printer.PrintHeader("Contact Form Intake", "serve",
		ui.Param{Key: "Endpoint", Value: srv.EndpointURL()},
		ui.Param{Key: "Reject", Value: fmt.Sprintf("%v", settings.Reject)},
		ui.Param{Key: "Advertise", Value: fmt.Sprintf("%v", settings.Advertise)},
	)

	return srv.Start(context.Background())
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream leads from a running intake server",
	Example: `  # Watch the server from the config file
  contactform-intake watch

  # Watch a server on another machine
  contactform-intake watch --server http://192.168.1.20:8787`,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	base := serverURL
	if base == "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		base = "http://" + cfg.Intake.Listen
	}
	if err := logging.Initialize(logLevel); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logging.Sync()

	feed, err := intake.FeedURL(base)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	fmt.Printf("Watching %s (Ctrl+C to stop)\n\n", feed)
	return intake.Watch(ctx, feed, printLead)
}

func printLead(l intake.Lead) {
	fmt.Printf("%s  %s  %s\n", l.ReceivedAt.Format("15:04:05"), l.ID, l.FormID)
	width := 0
	for _, f := range l.Fields {
		if len(f.Name) > width {
			width = len(f.Name)
		}
	}
	for _, f := range l.Fields {
		value := strings.ReplaceAll(f.Value, "\n", "\n"+strings.Repeat(" ", width+5))
		fmt.Printf("   %-*s  %s\n", width, f.Name, value)
	}
	fmt.Println()
}
