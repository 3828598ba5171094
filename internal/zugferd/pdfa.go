package zugferd

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// document wraps a pdfcpu context and exposes the handful of high-level
// operations ZUGFeRD packaging needs, keeping the imperative object-model
// work out of the call sites.
type document struct {
	ctx *model.Context
}

func openDocument(pdf []byte) (*document, error) {
	ctx, err := api.ReadContext(bytes.NewReader(pdf), model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}
	if err := api.ValidateContext(ctx); err != nil {
		return nil, fmt.Errorf("invalid PDF: %w", err)
	}
	return &document{ctx: ctx}, nil
}

func (d *document) write() ([]byte, error) {
	var buf bytes.Buffer
	if err := api.WriteContext(d.ctx, &buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// embedAttachment attaches content as an embedded file with MIME type
// text/xml and the Alternative relationship, marking it as an equally
// authoritative representation of the visual document.
func (d *document) embedAttachment(name string, content []byte, description string) error {
	catalog, err := d.ctx.Catalog()
	if err != nil {
		return err
	}

	sd, err := d.ctx.NewStreamDictForBuf(content)
	if err != nil {
		return err
	}
	sd.Insert("Type", types.Name("EmbeddedFile"))
	sd.Insert("Subtype", types.Name("text/xml"))
	sd.Insert("Params", types.Dict{"Size": types.Integer(len(content))})
	if err := sd.Encode(); err != nil {
		return err
	}
	fileRef, err := d.ctx.IndRefForNewObject(*sd)
	if err != nil {
		return err
	}

	fileSpec := types.Dict{
		"Type":           types.Name("Filespec"),
		"F":              types.StringLiteral(name),
		"UF":             types.StringLiteral(name),
		"Desc":           types.StringLiteral(description),
		"AFRelationship": types.Name("Alternative"),
		"EF":             types.Dict{"F": *fileRef, "UF": *fileRef},
	}
	specRef, err := d.ctx.IndRefForNewObject(fileSpec)
	if err != nil {
		return err
	}

	catalog["Names"] = types.Dict{
		"EmbeddedFiles": types.Dict{
			"Names": types.Array{types.StringLiteral(name), *specRef},
		},
	}
	catalog["AF"] = types.Array{*specRef}
	return nil
}

// setOutputIntent installs an sRGB ICC output intent, required for PDF/A
// documents that use device color spaces.
func (d *document) setOutputIntent(iccProfile []byte) error {
	catalog, err := d.ctx.Catalog()
	if err != nil {
		return err
	}

	sd, err := d.ctx.NewStreamDictForBuf(iccProfile)
	if err != nil {
		return err
	}
	sd.Insert("N", types.Integer(3))
	if err := sd.Encode(); err != nil {
		return err
	}
	profileRef, err := d.ctx.IndRefForNewObject(*sd)
	if err != nil {
		return err
	}

	intent := types.Dict{
		"Type":                      types.Name("OutputIntent"),
		"S":                         types.Name("GTS_PDFA1"),
		"OutputConditionIdentifier": types.StringLiteral("sRGB IEC61966-2.1"),
		"Info":                      types.StringLiteral("sRGB IEC61966-2.1"),
		"RegistryName":              types.StringLiteral("http://www.color.org"),
		"DestOutputProfile":         *profileRef,
	}
	intentRef, err := d.ctx.IndRefForNewObject(intent)
	if err != nil {
		return err
	}

	catalog["OutputIntents"] = types.Array{*intentRef}
	return nil
}

// markStructured flags the document as tagged: MarkInfo plus an empty
// structure tree root.
func (d *document) markStructured() error {
	catalog, err := d.ctx.Catalog()
	if err != nil {
		return err
	}

	structRef, err := d.ctx.IndRefForNewObject(types.Dict{"Type": types.Name("StructTreeRoot")})
	if err != nil {
		return err
	}
	catalog["StructTreeRoot"] = *structRef
	catalog["MarkInfo"] = types.Dict{"Marked": types.Boolean(true)}
	return nil
}

// fixLinkAnnotations sets the no-zoom flag on every link annotation.
func (d *document) fixLinkAnnotations() error {
	catalog, err := d.ctx.Catalog()
	if err != nil {
		return err
	}
	pages, err := d.ctx.DereferenceDict(catalog["Pages"])
	if err != nil || pages == nil {
		return err
	}
	return d.fixPageTreeAnnotations(pages)
}

func (d *document) fixPageTreeAnnotations(node types.Dict) error {
	kids, err := d.ctx.DereferenceArray(node["Kids"])
	if err != nil {
		return err
	}
	for _, kid := range kids {
		kidDict, err := d.ctx.DereferenceDict(kid)
		if err != nil {
			return err
		}
		if kidDict == nil {
			continue
		}
		if kidDict["Kids"] != nil {
			if err := d.fixPageTreeAnnotations(kidDict); err != nil {
				return err
			}
			continue
		}
		if err := d.fixPageAnnotations(kidDict); err != nil {
			return err
		}
	}
	return nil
}

func (d *document) fixPageAnnotations(page types.Dict) error {
	annots, err := d.ctx.DereferenceArray(page["Annots"])
	if err != nil {
		return err
	}
	for _, annot := range annots {
		annotDict, err := d.ctx.DereferenceDict(annot)
		if err != nil {
			return err
		}
		if annotDict == nil {
			continue
		}
		if subtype, ok := annotDict["Subtype"].(types.Name); !ok || subtype != "Link" {
			continue
		}
		flags := types.Integer(0)
		if f, ok := annotDict["F"].(types.Integer); ok {
			flags = f
		}
		// bit 4: NoZoom
		annotDict["F"] = flags | 8
	}
	return nil
}

// setXMPMetadata installs the metadata stream. PDF/A requires the packet to
// be stored unfiltered.
func (d *document) setXMPMetadata(data xmpData) error {
	catalog, err := d.ctx.Catalog()
	if err != nil {
		return err
	}

	packet := buildXMP(data)
	sd := types.StreamDict{
		Dict: types.Dict{
			"Type":    types.Name("Metadata"),
			"Subtype": types.Name("XML"),
		},
		Content: packet,
	}
	if err := sd.Encode(); err != nil {
		return err
	}
	metaRef, err := d.ctx.IndRefForNewObject(sd)
	if err != nil {
		return err
	}
	catalog["Metadata"] = *metaRef
	return nil
}

// setTrailerID derives a deterministic trailer ID from the document subject
// and the embedded XML, so identical input yields an identical file identity.
func (d *document) setTrailerID(subject, embeddedXML string) {
	sum := sha256.Sum256([]byte(subject + embeddedXML))
	id := types.NewHexLiteral(sum[:16])
	d.ctx.ID = types.Array{id, id}
}
