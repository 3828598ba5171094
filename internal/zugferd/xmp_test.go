package zugferd

import (
	"encoding/binary"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildXMP_RequiredMarkers(t *testing.T) {
	packet := string(buildXMP(xmpData{
		Title:            "Rechnung RE-1",
		Author:           "Musterfirma GmbH",
		Producer:         "e-invoice-processor",
		AttachmentName:   "factur-x.xml",
		ZugferdVersion:   "2.1",
		ConformanceLevel: "EN 16931",
		Created:          time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}))

	assert.Contains(t, packet, "<pdfaid:part>3</pdfaid:part>")
	assert.Contains(t, packet, "<pdfaid:conformance>B</pdfaid:conformance>")
	assert.Contains(t, packet, "<fx:DocumentFileName>factur-x.xml</fx:DocumentFileName>")
	assert.Contains(t, packet, "<fx:DocumentType>INVOICE</fx:DocumentType>")
	assert.Contains(t, packet, "<fx:Version>2.1</fx:Version>")
	assert.Contains(t, packet, "<fx:ConformanceLevel>EN 16931</fx:ConformanceLevel>")
	assert.Contains(t, packet, "2024-03-01T12:00:00Z")
	// header carries the zero-width no-break space marker
	assert.True(t, strings.HasPrefix(packet, "<?xpacket begin=\"\uFEFF\" id="))
	assert.True(t, strings.HasSuffix(strings.TrimSpace(packet), `<?xpacket end="w"?>`))
}

func TestBuildXMP_EscapesMetadataValues(t *testing.T) {
	packet := string(buildXMP(xmpData{
		Title:  `Rechnung <&"RE-2">`,
		Author: "A & B GmbH",
	}))
	assert.NotContains(t, packet, `Rechnung <&"RE-2">`)
	assert.Contains(t, packet, "Rechnung &lt;&amp;&quot;RE-2&quot;&gt;")
}

func TestSRGBProfile_WellFormedHeader(t *testing.T) {
	profile := sRGBProfile()
	require.Greater(t, len(profile), 128)

	// declared size matches actual size
	assert.Equal(t, uint32(len(profile)), binary.BigEndian.Uint32(profile[0:4]))
	// profile/device class "mntr", color space "RGB ", PCS "XYZ "
	assert.Equal(t, "mntr", string(profile[12:16]))
	assert.Equal(t, "RGB ", string(profile[16:20]))
	assert.Equal(t, "XYZ ", string(profile[20:24]))
	// file signature "acsp"
	assert.Equal(t, "acsp", string(profile[36:40]))
	// 4-byte aligned
	assert.Zero(t, len(profile)%4)
}
