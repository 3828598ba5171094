package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/SvenSonnborn/e-invoice-processor/internal/server"
)

var (
	serverAddr   string
	serverDebug  bool
	readTimeout  time.Duration
	writeTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP API server for generating and validating e-invoices.

The API provides endpoints for:
  - POST /api/v1/generate/xrechnung - Generate XRechnung XML
  - POST /api/v1/generate/zugferd   - Package a ZUGFeRD hybrid PDF
  - POST /api/v1/validate/xrechnung - Validate XRechnung XML
  - POST /api/v1/validate/zugferd   - Validate a ZUGFeRD PDF
  - GET  /health                    - Health check

Examples:
  # Start server on default port
  einvoice serve

  # Start on custom port
  einvoice serve --address :9090

  # Start in debug mode
  einvoice serve --debug`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverAddr, "address", "", "Server listen address (env: EINVOICE_LISTEN_ADDR)")
	serveCmd.Flags().BoolVar(&serverDebug, "debug", false, "Enable debug mode")
	serveCmd.Flags().DurationVar(&readTimeout, "read-timeout", 30*time.Second, "HTTP read timeout")
	serveCmd.Flags().DurationVar(&writeTimeout, "write-timeout", 5*time.Minute, "HTTP write timeout")
}

func runServe(cmd *cobra.Command, args []string) error {
	address := serverAddr
	if address == "" {
		address = cfg.ListenAddr
	}

	srv := server.NewServer(&server.Config{
		Address:      address,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		Debug:        serverDebug,
	}, newEngine())

	// Handle graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		fmt.Println("\nShutting down server...")
		os.Exit(0)
	}()

	fmt.Printf("Starting server on %s\n", address)
	if cfg.XRechnungValidatorCmd != "" {
		fmt.Println("Official XRechnung validator enabled")
	} else {
		fmt.Println("Official XRechnung validator disabled (not configured)")
	}

	return srv.Run()
}
