package zugferd

import (
	"fmt"
	"strings"
	"time"
)

// facturxNamespace is the Factur-X extension schema namespace declared both
// on the fx description block and inside the pdfaExtension schema section.
const facturxNamespace = "urn:factur-x:pdfa:CrossIndustryDocument:invoice:1p0#"

// xmpData carries everything the metadata packet declares.
type xmpData struct {
	Title            string
	Author           string
	Producer         string
	AttachmentName   string
	ZugferdVersion   string
	ConformanceLevel string
	Created          time.Time
}

// buildXMP renders the XMP packet combining Dublin Core, the standard PDF
// fields, the PDF/A identification (part 3, conformance B), and the Factur-X
// extension schema declaring the embedded attachment.
func buildXMP(d xmpData) []byte {
	created := d.Created.UTC().Format("2006-01-02T15:04:05Z")

	var b strings.Builder
	b.WriteString(`<?xpacket begin="` + "\uFEFF" + `" id="W5M0MpCehiHzreSzNTczkc9d"?>` + "\n")
	b.WriteString(`<x:xmpmeta xmlns:x="adobe:ns:meta/">` + "\n")
	b.WriteString(` <rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">` + "\n")

	fmt.Fprintf(&b, `  <rdf:Description rdf:about="" xmlns:dc="http://purl.org/dc/elements/1.1/">
   <dc:title><rdf:Alt><rdf:li xml:lang="x-default">%s</rdf:li></rdf:Alt></dc:title>
   <dc:creator><rdf:Seq><rdf:li>%s</rdf:li></rdf:Seq></dc:creator>
   <dc:description><rdf:Alt><rdf:li xml:lang="x-default">%s</rdf:li></rdf:Alt></dc:description>
  </rdf:Description>
`, xmlEscape(d.Title), xmlEscape(d.Author), xmlEscape(d.Title))

	fmt.Fprintf(&b, `  <rdf:Description rdf:about="" xmlns:pdf="http://ns.adobe.com/pdf/1.3/">
   <pdf:Producer>%s</pdf:Producer>
   <pdf:PDFVersion>1.7</pdf:PDFVersion>
  </rdf:Description>
`, xmlEscape(d.Producer))

	fmt.Fprintf(&b, `  <rdf:Description rdf:about="" xmlns:xmp="http://ns.adobe.com/xap/1.0/">
   <xmp:CreatorTool>%s</xmp:CreatorTool>
   <xmp:CreateDate>%s</xmp:CreateDate>
   <xmp:ModifyDate>%s</xmp:ModifyDate>
  </rdf:Description>
`, xmlEscape(d.Producer), created, created)

	b.WriteString(`  <rdf:Description rdf:about="" xmlns:pdfaid="http://www.aiim.org/pdfa/ns/id/">
   <pdfaid:part>3</pdfaid:part>
   <pdfaid:conformance>B</pdfaid:conformance>
  </rdf:Description>
`)

	fmt.Fprintf(&b, `  <rdf:Description rdf:about="" xmlns:fx="%s">
   <fx:DocumentFileName>%s</fx:DocumentFileName>
   <fx:DocumentType>INVOICE</fx:DocumentType>
   <fx:Version>%s</fx:Version>
   <fx:ConformanceLevel>%s</fx:ConformanceLevel>
  </rdf:Description>
`, facturxNamespace, xmlEscape(d.AttachmentName), xmlEscape(d.ZugferdVersion), xmlEscape(d.ConformanceLevel))

	b.WriteString(facturxExtensionSchema())

	b.WriteString(` </rdf:RDF>` + "\n")
	b.WriteString(`</x:xmpmeta>` + "\n")
	b.WriteString(`<?xpacket end="w"?>`)
	return []byte(b.String())
}

// facturxExtensionSchema declares the fx properties for PDF/A validators,
// which reject XMP properties outside the predefined schemas unless an
// extension schema describes them.
func facturxExtensionSchema() string {
	properties := [][2]string{
		{"DocumentFileName", "Name of the embedded XML invoice file"},
		{"DocumentType", "INVOICE"},
		{"Version", "The actual version of the standard applying to the embedded XML document"},
		{"ConformanceLevel", "The conformance level of the embedded XML document"},
	}

	var b strings.Builder
	b.WriteString(`  <rdf:Description rdf:about=""
    xmlns:pdfaExtension="http://www.aiim.org/pdfa/ns/extension/"
    xmlns:pdfaSchema="http://www.aiim.org/pdfa/ns/schema#"
    xmlns:pdfaProperty="http://www.aiim.org/pdfa/ns/property#">
   <pdfaExtension:schemas>
    <rdf:Bag>
     <rdf:li rdf:parseType="Resource">
      <pdfaSchema:schema>Factur-X PDFA Extension Schema</pdfaSchema:schema>
      <pdfaSchema:namespaceURI>` + facturxNamespace + `</pdfaSchema:namespaceURI>
      <pdfaSchema:prefix>fx</pdfaSchema:prefix>
      <pdfaSchema:property>
       <rdf:Seq>
`)
	for _, p := range properties {
		fmt.Fprintf(&b, `        <rdf:li rdf:parseType="Resource">
         <pdfaProperty:name>%s</pdfaProperty:name>
         <pdfaProperty:valueType>Text</pdfaProperty:valueType>
         <pdfaProperty:category>external</pdfaProperty:category>
         <pdfaProperty:description>%s</pdfaProperty:description>
        </rdf:li>
`, p[0], p[1])
	}
	b.WriteString(`       </rdf:Seq>
      </pdfaSchema:property>
     </rdf:li>
    </rdf:Bag>
   </pdfaExtension:schemas>
  </rdf:Description>
`)
	return b.String()
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

func xmlEscape(s string) string {
	return xmlEscaper.Replace(s)
}
