package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/SvenSonnborn/e-invoice-processor/pkg/einvoice"
)

// readStoredInvoice loads a stored invoice record from a JSON file, or from
// stdin when path is "-".
func readStoredInvoice(path string) (*einvoice.StoredInvoice, error) {
	var data []byte
	var err error

	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var stored einvoice.StoredInvoice
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("failed to parse invoice record %s: %w", path, err)
	}
	return &stored, nil
}

func printIssues(result *einvoice.ValidationResult) {
	for _, issue := range result.Issues {
		marker := "⚠"
		if issue.Severity == einvoice.SeverityError {
			marker = "✗"
		}
		fmt.Fprintf(os.Stderr, "  %s [%s] %s\n", marker, issue.Source, issue.Message)
	}
}
