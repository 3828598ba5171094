package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/SvenSonnborn/e-invoice-processor/internal/config"
	"github.com/SvenSonnborn/e-invoice-processor/internal/logger"
	"github.com/SvenSonnborn/e-invoice-processor/pkg/einvoice"
)

var (
	version = "1.0.0"

	// Global flags
	verbose      bool
	outputFormat string
	schemaPath   string
	schemaTool   string
	xrValidator  string
	zfValidator  string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "einvoice",
	Short: "Generate and validate German e-invoices (XRechnung and ZUGFeRD)",
	Long: `einvoice converts structured invoice records into legally compliant
German/EU e-invoice documents.

Supports:
  - XRechnung 3.0 CII XML generation
  - ZUGFeRD hybrid PDF/A-3 packaging with embedded XML
  - Builtin profile + XSD validation (xmllint)
  - Optional official validator integration

Examples:
  # Generate XRechnung XML from a stored invoice record
  einvoice generate invoice.json -o invoice.xml

  # Package a ZUGFeRD hybrid PDF
  einvoice zugferd invoice.json

  # Validate existing artifacts
  einvoice validate invoice.xml rechnung-zugferd.pdf`,
	Version: version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "table", "Output format (json, table)")
	rootCmd.PersistentFlags().StringVar(&schemaPath, "schema", "", "CII XSD schema path (env: EINVOICE_SCHEMA_PATH)")
	rootCmd.PersistentFlags().StringVar(&schemaTool, "xmllint", "", "Schema validation executable (env: EINVOICE_XMLLINT)")
	rootCmd.PersistentFlags().StringVar(&xrValidator, "xrechnung-validator", "", "Official XRechnung validator command template (env: EINVOICE_XRECHNUNG_VALIDATOR)")
	rootCmd.PersistentFlags().StringVar(&zfValidator, "zugferd-validator", "", "Official ZUGFeRD validator command template (env: EINVOICE_ZUGFERD_VALIDATOR)")

	cobra.OnInitialize(initConfig)
}

func initConfig() {
	cfg = config.Load()

	// Flags take precedence over environment values
	if schemaPath != "" {
		cfg.SchemaPath = schemaPath
	}
	if schemaTool != "" {
		cfg.SchemaTool = schemaTool
	}
	if xrValidator != "" {
		cfg.XRechnungValidatorCmd = xrValidator
	}
	if zfValidator != "" {
		cfg.ZugferdValidatorCmd = zfValidator
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	if err := logger.Setup(cfg.LoggerConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
}

func newEngine() *einvoice.Engine {
	return newEngineWithAttachment("factur-x.xml")
}

func newEngineWithAttachment(attachmentName string) *einvoice.Engine {
	return einvoice.NewEngine(einvoice.EngineOptions{
		SchemaPath:            cfg.SchemaPath,
		SchemaTool:            cfg.SchemaTool,
		SchemaTimeout:         cfg.SchemaTimeout,
		XRechnungValidatorCmd: cfg.XRechnungValidatorCmd,
		ZugferdValidatorCmd:   cfg.ZugferdValidatorCmd,
		OfficialTimeout:       cfg.OfficialTimeout,
		AttachmentName:        attachmentName,
	})
}

func printVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}
