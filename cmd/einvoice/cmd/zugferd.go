package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	zugferdOutput     string
	zugferdAttachment string
)

var zugferdCmd = &cobra.Command{
	Use:   "zugferd [file]",
	Short: "Package a ZUGFeRD hybrid PDF/A-3 from a stored invoice record",
	Long: `Generate the XRechnung XML for a stored invoice record (JSON),
validate it, and package it into a ZUGFeRD hybrid PDF/A-3 document with the
XML embedded as factur-x.xml.

Packaging is refused while the XML fails validation.

Examples:
  einvoice zugferd invoice.json
  einvoice zugferd invoice.json -o rechnung.pdf
  einvoice zugferd invoice.json --attachment-name zugferd-invoice.xml`,
	Args: cobra.ExactArgs(1),
	RunE: runZugferd,
}

func init() {
	rootCmd.AddCommand(zugferdCmd)

	zugferdCmd.Flags().StringVarP(&zugferdOutput, "output", "o", "", "Output file (default: derived from the invoice number)")
	zugferdCmd.Flags().StringVar(&zugferdAttachment, "attachment-name", "factur-x.xml", "Embedded XML file name (factur-x.xml or zugferd-invoice.xml)")
}

func runZugferd(cmd *cobra.Command, args []string) error {
	stored, err := readStoredInvoice(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	engine := newEngineWithAttachment(zugferdAttachment)
	export, err := engine.GenerateZugferdFromStored(ctx, stored)
	if err != nil {
		return err
	}

	if len(export.Validation.Issues) > 0 {
		printIssues(export.Validation)
	}
	if !export.Validation.Valid {
		return fmt.Errorf("packaged document failed validation")
	}

	output := zugferdOutput
	if output == "" {
		output = export.Filename
	}
	if err := os.WriteFile(output, export.PDF, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}

	if outputFormat == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(map[string]interface{}{
			"filename":   output,
			"metadata":   export.Metadata,
			"validation": export.Validation,
		})
	}

	fmt.Printf("Wrote %s (%d bytes)\n", output, len(export.PDF))
	return nil
}
