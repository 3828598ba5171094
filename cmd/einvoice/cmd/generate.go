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
	generateOutput string
	allowInvalid   bool
)

var generateCmd = &cobra.Command{
	Use:   "generate [file]",
	Short: "Generate XRechnung CII XML from a stored invoice record",
	Long: `Generate an XRechnung 3.0 conformant CII XML document from a stored
invoice record (JSON). The generated document is validated with the builtin
profile + XSD check and, if configured, the official validator.

By default the XML is only written when validation passes.

Examples:
  einvoice generate invoice.json
  einvoice generate invoice.json -o invoice.xml
  cat invoice.json | einvoice generate - --allow-invalid`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "Output file (default: stdout)")
	generateCmd.Flags().BoolVar(&allowInvalid, "allow-invalid", false, "Write the XML even when validation fails")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	stored, err := readStoredInvoice(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	engine := newEngine()
	result, err := engine.GenerateXRechnung(ctx, stored)
	if err != nil {
		return err
	}

	if !result.Validation.Valid {
		fmt.Fprintf(os.Stderr, "Validation failed for %s:\n", args[0])
		printIssues(result.Validation)
		if !allowInvalid {
			return fmt.Errorf("generated XML failed validation")
		}
	} else if len(result.Validation.Issues) > 0 {
		printIssues(result.Validation)
	}

	if outputFormat == "json" {
		out := os.Stdout
		if generateOutput != "" {
			f, err := os.Create(generateOutput)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	}

	if generateOutput != "" {
		if err := os.WriteFile(generateOutput, []byte(result.XML), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", generateOutput, err)
		}
		printVerbose("Wrote %s\n", generateOutput)
		return nil
	}

	fmt.Print(result.XML)
	return nil
}
