package utils

import (
	"bytes"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DecodeText converts arbitrary text bytes to UTF-8 on a best-effort basis.
// It understands:
// - UTF-8 (with or without BOM)
// - UTF-16 LE/BE with BOM
// - GB18030/GBK (common for Simplified Chinese)
// Undecodable input is returned as-is: a garbled placeholder chapter is
// still better than a failed load.
func DecodeText(data []byte) string {
	if len(data) == 0 {
		return ""
	}

	if bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) {
		data = data[3:]
	}

	if bytes.HasPrefix(data, []byte{0xFE, 0xFF}) {
		r := transform.NewReader(bytes.NewReader(data), unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder())
		if b, err := io.ReadAll(r); err == nil {
			return string(b)
		}
	}
	if bytes.HasPrefix(data, []byte{0xFF, 0xFE}) {
		r := transform.NewReader(bytes.NewReader(data), unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder())
		if b, err := io.ReadAll(r); err == nil {
			return string(b)
		}
	}

	if utf8.Valid(data) {
		return string(data)
	}

	for _, dec := range []transform.Transformer{
		simplifiedchinese.GB18030.NewDecoder(),
		simplifiedchinese.GBK.NewDecoder(),
		simplifiedchinese.HZGB2312.NewDecoder(),
	} {
		r := transform.NewReader(bytes.NewReader(data), dec)
		if b, err := io.ReadAll(r); err == nil && utf8.Valid(b) {
			return string(b)
		}
	}

	return string(data)
}
