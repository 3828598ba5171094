package validate

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// ProfileMarker is the substring the guideline identifier of a conformant
// document must contain.
const ProfileMarker = "xrechnung_3.0"

// Paths tried to locate the guideline/context-parameter identifier. CII
// places it in the exchanged document context; the UBL equivalent is the
// customization ID.
var guidelinePaths = []string{
	"rsm:ExchangedDocumentContext/ram:GuidelineSpecifiedDocumentContextParameter/ram:ID",
	"ExchangedDocumentContext/GuidelineSpecifiedDocumentContextParameter/ID",
	"cbc:CustomizationID",
	"CustomizationID",
}

// ProfileCheck parses the XML and requires the guideline context-parameter
// identifier to declare the XRechnung 3.0 profile. A well-formed document
// without the marker is a validation error. The returned slice is empty when
// the check passes.
func ProfileCheck(xmlContent string) []string {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(xmlContent); err != nil {
		return []string{fmt.Sprintf("XML parsing failed: %v", err)}
	}

	root := doc.Root()
	if root == nil {
		return []string{"empty XML document"}
	}

	id := findGuidelineID(root)
	if id == nil {
		return []string{"guideline context parameter not found in document"}
	}
	if !strings.Contains(id.Text(), ProfileMarker) {
		return []string{fmt.Sprintf("guideline identifier %q does not declare the %s profile", id.Text(), ProfileMarker)}
	}
	return nil
}

func findGuidelineID(root *etree.Element) *etree.Element {
	for _, path := range guidelinePaths {
		if el := root.FindElement(path); el != nil {
			return el
		}
	}
	// Fallback: recursive search by local name, ignoring namespace prefixes.
	if param := findElementByLocalName(root, "GuidelineSpecifiedDocumentContextParameter"); param != nil {
		for _, child := range param.ChildElements() {
			if localName(child) == "ID" {
				return child
			}
		}
	}
	return findElementByLocalName(root, "CustomizationID")
}

func findElementByLocalName(el *etree.Element, name string) *etree.Element {
	if localName(el) == name {
		return el
	}
	for _, child := range el.ChildElements() {
		if found := findElementByLocalName(child, name); found != nil {
			return found
		}
	}
	return nil
}

func localName(el *etree.Element) string {
	tag := el.Tag
	if idx := strings.IndexByte(tag, ':'); idx >= 0 {
		tag = tag[idx+1:]
	}
	return tag
}
