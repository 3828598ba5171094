package zugferd

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Inspector reads packaged hybrid PDFs back for validation: it recovers the
// embedded XML attachment and checks the XMP metadata stream for the markers
// a ZUGFeRD document must carry.
type Inspector struct{}

// NewInspector creates an Inspector.
func NewInspector() *Inspector {
	return &Inspector{}
}

// EmbeddedXML extracts the first embedded file from the PDF's
// EmbeddedFiles name tree.
func (i *Inspector) EmbeddedXML(pdf []byte) ([]byte, error) {
	ctx, err := api.ReadContext(bytes.NewReader(pdf), model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}

	catalog, err := ctx.Catalog()
	if err != nil {
		return nil, err
	}
	names, err := ctx.DereferenceDict(catalog["Names"])
	if err != nil || names == nil {
		return nil, fmt.Errorf("PDF has no embedded files")
	}
	embedded, err := ctx.DereferenceDict(names["EmbeddedFiles"])
	if err != nil || embedded == nil {
		return nil, fmt.Errorf("PDF has no embedded files")
	}

	content, err := extractFromNameTree(ctx, embedded)
	if err != nil {
		return nil, err
	}
	if content == nil {
		return nil, fmt.Errorf("PDF has no embedded files")
	}
	return content, nil
}

func extractFromNameTree(ctx *model.Context, node types.Dict) ([]byte, error) {
	if entries, err := ctx.DereferenceArray(node["Names"]); err == nil && len(entries) >= 2 {
		// entries alternate name, filespec
		for j := 1; j < len(entries); j += 2 {
			spec, err := ctx.DereferenceDict(entries[j])
			if err != nil || spec == nil {
				continue
			}
			content, err := extractFileSpec(ctx, spec)
			if err != nil {
				return nil, err
			}
			if content != nil {
				return content, nil
			}
		}
	}
	kids, err := ctx.DereferenceArray(node["Kids"])
	if err != nil {
		return nil, err
	}
	for _, kid := range kids {
		kidDict, err := ctx.DereferenceDict(kid)
		if err != nil || kidDict == nil {
			continue
		}
		content, err := extractFromNameTree(ctx, kidDict)
		if err != nil {
			return nil, err
		}
		if content != nil {
			return content, nil
		}
	}
	return nil, nil
}

func extractFileSpec(ctx *model.Context, spec types.Dict) ([]byte, error) {
	ef, err := ctx.DereferenceDict(spec["EF"])
	if err != nil || ef == nil {
		return nil, err
	}
	for _, key := range []string{"F", "UF"} {
		obj, ok := ef[key]
		if !ok {
			continue
		}
		sd, _, err := ctx.DereferenceStreamDict(obj)
		if err != nil || sd == nil {
			continue
		}
		if err := sd.Decode(); err != nil {
			return nil, fmt.Errorf("failed to decode embedded file: %w", err)
		}
		return sd.Content, nil
	}
	return nil, nil
}

// MetadataFindings checks the document-level XMP stream for the three
// markers a ZUGFeRD PDF must carry and returns one finding per missing
// marker. A nil return means the metadata is complete.
func (i *Inspector) MetadataFindings(pdf []byte) []string {
	xmp, err := i.metadataStream(pdf)
	if err != nil {
		return []string{err.Error()}
	}

	var findings []string
	if !bytes.Contains(xmp, []byte("pdfaid:part>3<")) && !bytes.Contains(xmp, []byte(`pdfaid:part="3"`)) {
		findings = append(findings, "XMP metadata does not declare PDF/A part 3")
	}
	if !bytes.Contains(xmp, []byte("pdfaid:conformance>B<")) && !bytes.Contains(xmp, []byte(`pdfaid:conformance="B"`)) {
		findings = append(findings, "XMP metadata does not declare PDF/A conformance level B")
	}
	if !bytes.Contains(xmp, []byte("fx:DocumentFileName")) {
		findings = append(findings, "XMP metadata is missing the Factur-X document file name")
	}
	return findings
}

func (i *Inspector) metadataStream(pdf []byte) ([]byte, error) {
	ctx, err := api.ReadContext(bytes.NewReader(pdf), model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}
	catalog, err := ctx.Catalog()
	if err != nil {
		return nil, err
	}
	sd, _, err := ctx.DereferenceStreamDict(catalog["Metadata"])
	if err != nil || sd == nil {
		return nil, fmt.Errorf("PDF has no XMP metadata stream")
	}
	if err := sd.Decode(); err != nil {
		return nil, fmt.Errorf("failed to decode XMP metadata stream: %w", err)
	}
	return sd.Content, nil
}
