package zugferd

import (
	"bytes"
	"encoding/binary"
)

// sRGBProfile returns a minimal sRGB ICC v2 display profile used as the
// PDF/A output intent destination profile. The profile is generated rather
// than bundled: header, tag table, and the required tags (description,
// white point, RGB colorant matrix, tone curves, copyright) are laid out
// per the ICC.1 byte format.
func sRGBProfile() []byte {
	tags := []iccTag{
		{sig: "desc", data: iccDesc("sRGB IEC61966-2.1")},
		{sig: "cprt", data: iccText("Public Domain")},
		{sig: "wtpt", data: iccXYZ(0x0000F351, 0x00010000, 0x000116CC)},
		{sig: "rXYZ", data: iccXYZ(0x00006FA2, 0x000038F5, 0x00000390)},
		{sig: "gXYZ", data: iccXYZ(0x00006299, 0x0000B785, 0x000018DA)},
		{sig: "bXYZ", data: iccXYZ(0x000024A0, 0x00000F84, 0x0000B6C3)},
		{sig: "rTRC", data: iccGammaCurve()},
		{sig: "gTRC", data: iccGammaCurve()},
		{sig: "bTRC", data: iccGammaCurve()},
	}

	const headerSize = 128
	tagTableSize := 4 + 12*len(tags)
	offset := headerSize + tagTableSize

	var table bytes.Buffer
	binary.Write(&table, binary.BigEndian, uint32(len(tags)))
	var data bytes.Buffer
	for _, tag := range tags {
		table.WriteString(tag.sig)
		binary.Write(&table, binary.BigEndian, uint32(offset+data.Len()))
		binary.Write(&table, binary.BigEndian, uint32(len(tag.data)))
		data.Write(tag.data)
		for data.Len()%4 != 0 {
			data.WriteByte(0)
		}
	}

	size := headerSize + table.Len() + data.Len()

	var header bytes.Buffer
	binary.Write(&header, binary.BigEndian, uint32(size))
	header.WriteString("none")                            // preferred CMM
	binary.Write(&header, binary.BigEndian, uint32(0x02100000)) // version 2.1
	header.WriteString("mntr")                            // device class
	header.WriteString("RGB ")                            // color space
	header.WriteString("XYZ ")                            // PCS
	header.Write(make([]byte, 12))                        // creation date, zeroed
	header.WriteString("acsp")                            // profile signature
	header.Write(make([]byte, 24))                        // platform, flags, manufacturer, model, attributes
	binary.Write(&header, binary.BigEndian, uint32(0))    // rendering intent: perceptual
	// PCS illuminant D50
	binary.Write(&header, binary.BigEndian, uint32(0x0000F6D6))
	binary.Write(&header, binary.BigEndian, uint32(0x00010000))
	binary.Write(&header, binary.BigEndian, uint32(0x0000D32D))
	header.Write(make([]byte, headerSize-header.Len())) // creator + reserved

	out := make([]byte, 0, size)
	out = append(out, header.Bytes()...)
	out = append(out, table.Bytes()...)
	out = append(out, data.Bytes()...)
	return out
}

type iccTag struct {
	sig  string
	data []byte
}

func iccXYZ(x, y, z uint32) []byte {
	var b bytes.Buffer
	b.WriteString("XYZ ")
	b.Write(make([]byte, 4))
	binary.Write(&b, binary.BigEndian, x)
	binary.Write(&b, binary.BigEndian, y)
	binary.Write(&b, binary.BigEndian, z)
	return b.Bytes()
}

// iccGammaCurve encodes a single-entry curve with gamma 2.2 (u8.8 fixed).
func iccGammaCurve() []byte {
	var b bytes.Buffer
	b.WriteString("curv")
	b.Write(make([]byte, 4))
	binary.Write(&b, binary.BigEndian, uint32(1))
	binary.Write(&b, binary.BigEndian, uint16(0x0233))
	return b.Bytes()
}

func iccDesc(desc string) []byte {
	var b bytes.Buffer
	b.WriteString("desc")
	b.Write(make([]byte, 4))
	binary.Write(&b, binary.BigEndian, uint32(len(desc)+1))
	b.WriteString(desc)
	b.WriteByte(0)
	// Unicode and ScriptCode blocks, unused
	b.Write(make([]byte, 12))
	b.Write(make([]byte, 67))
	return b.Bytes()
}

func iccText(s string) []byte {
	var b bytes.Buffer
	b.WriteString("text")
	b.Write(make([]byte, 4))
	b.WriteString(s)
	b.WriteByte(0)
	return b.Bytes()
}
