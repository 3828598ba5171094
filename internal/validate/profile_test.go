package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SvenSonnborn/e-invoice-processor/internal/validate"
)

const conformantXML = `<?xml version="1.0" encoding="UTF-8"?>
<rsm:CrossIndustryInvoice xmlns:rsm="urn:un:unece:uncefact:data:standard:CrossIndustryInvoice:100" xmlns:ram="urn:un:unece:uncefact:data:standard:ReusableAggregateBusinessInformationEntity:100">
	<rsm:ExchangedDocumentContext>
		<ram:GuidelineSpecifiedDocumentContextParameter>
			<ram:ID>urn:cen.eu:en16931:2017#compliant#urn:xeinkauf.de:kosit:xrechnung_3.0</ram:ID>
		</ram:GuidelineSpecifiedDocumentContextParameter>
	</rsm:ExchangedDocumentContext>
</rsm:CrossIndustryInvoice>`

func TestProfileCheck_Conformant(t *testing.T) {
	errs := validate.ProfileCheck(conformantXML)
	assert.Empty(t, errs)
}

func TestProfileCheck_UBLCustomizationID(t *testing.T) {
	xml := `<?xml version="1.0"?>
<Invoice xmlns:cbc="urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2">
	<cbc:CustomizationID>urn:cen.eu:en16931:2017#compliant#urn:xeinkauf.de:kosit:xrechnung_3.0</cbc:CustomizationID>
</Invoice>`
	errs := validate.ProfileCheck(xml)
	assert.Empty(t, errs)
}

func TestProfileCheck_WrongProfile(t *testing.T) {
	xml := `<?xml version="1.0"?>
<rsm:CrossIndustryInvoice xmlns:rsm="urn:un:unece:uncefact:data:standard:CrossIndustryInvoice:100" xmlns:ram="urn:un:unece:uncefact:data:standard:ReusableAggregateBusinessInformationEntity:100">
	<rsm:ExchangedDocumentContext>
		<ram:GuidelineSpecifiedDocumentContextParameter>
			<ram:ID>urn:cen.eu:en16931:2017#compliant#urn:xeinkauf.de:kosit:xrechnung_2.3</ram:ID>
		</ram:GuidelineSpecifiedDocumentContextParameter>
	</rsm:ExchangedDocumentContext>
</rsm:CrossIndustryInvoice>`
	errs := validate.ProfileCheck(xml)
	assert.Len(t, errs, 1)
	assert.Contains(t, errs[0], "does not declare the xrechnung_3.0 profile")
}

func TestProfileCheck_MarkerMissing(t *testing.T) {
	errs := validate.ProfileCheck(`<Invoice><ID>R-1</ID></Invoice>`)
	assert.Len(t, errs, 1)
	assert.Contains(t, errs[0], "guideline context parameter not found")
}

func TestProfileCheck_MalformedXML(t *testing.T) {
	errs := validate.ProfileCheck("not xml at all <<<")
	assert.Len(t, errs, 1)
	assert.Contains(t, errs[0], "XML parsing failed")
}
