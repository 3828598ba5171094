package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/SvenSonnborn/e-invoice-processor/pkg/einvoice"
)

var validateCmd = &cobra.Command{
	Use:   "validate [files...]",
	Short: "Validate XRechnung XML or ZUGFeRD PDF files",
	Long: `Validate one or more e-invoice artifacts.

XML files are checked against the XRechnung 3.0 profile marker and the CII
XSD schema; PDF files additionally have their embedded XML extracted and
cross-checked and their PDF/A metadata markers inspected. If official
validators are configured they run as a second tier.

Examples:
  einvoice validate invoice.xml
  einvoice validate rechnung-zugferd.pdf
  einvoice validate *.xml --format json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

// fileValidation is the per-file validation outcome for CLI output.
type fileValidation struct {
	File   string                     `json:"file"`
	Valid  bool                       `json:"valid"`
	Issues []einvoice.ValidationIssue `json:"issues,omitempty"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	engine := newEngine()
	results := make([]*fileValidation, 0, len(args))
	allValid := true

	for _, file := range args {
		result := validateFile(engine, file)
		results = append(results, result)
		if !result.Valid {
			allValid = false
		}
	}

	if outputFormat == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			if r.Valid {
				fmt.Printf("✓ %s: VALID\n", r.File)
			} else {
				fmt.Printf("✗ %s: INVALID\n", r.File)
			}
			for _, issue := range r.Issues {
				marker := "⚠"
				if issue.Severity == einvoice.SeverityError {
					marker = "-"
				}
				fmt.Printf("  %s [%s] %s\n", marker, issue.Source, issue.Message)
			}
		}
	}

	if !allValid {
		return fmt.Errorf("validation failed for some files")
	}
	return nil
}

func validateFile(engine *einvoice.Engine, path string) *fileValidation {
	out := &fileValidation{File: path, Valid: false}

	data, err := os.ReadFile(path)
	if err != nil {
		out.Issues = append(out.Issues, einvoice.ValidationIssue{
			Severity: einvoice.SeverityError,
			Source:   einvoice.SourceBuiltin,
			Message:  fmt.Sprintf("failed to read file: %v", err),
		})
		return out
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var result *einvoice.ValidationResult
	if bytes.HasPrefix(data, []byte("%PDF")) {
		result, err = engine.ValidateZugferd(ctx, data)
	} else {
		result, err = engine.ValidateXRechnung(ctx, string(data))
	}
	if err != nil {
		out.Issues = append(out.Issues, einvoice.ValidationIssue{
			Severity: einvoice.SeverityError,
			Source:   einvoice.SourceBuiltin,
			Message:  err.Error(),
		})
		return out
	}

	out.Valid = result.Valid
	out.Issues = result.Issues
	return out
}
