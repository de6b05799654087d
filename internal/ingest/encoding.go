package ingest

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Encoding names reported by DetectAndDecode.
const (
	EncodingUTF8    = "utf-8"
	EncodingUTF8BOM = "utf-8-bom"
	EncodingUTF16LE = "utf-16le"
	EncodingUTF16BE = "utf-16be"
	EncodingLatin1  = "latin-1"
)

//nolint:gochecknoglobals // BOM lookup values.
var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// DetectAndDecode converts input bytes to UTF-8 and strips any byte order mark.
// BOM-marked UTF-8 and UTF-16 are honoured; BOM-less input that is not valid
// UTF-8 is read as Latin-1, which is what spreadsheet exports usually are.
func DetectAndDecode(data []byte) ([]byte, string, error) {
	if len(data) == 0 {
		return data, EncodingUTF8, nil
	}

	var name string
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		name = EncodingUTF8BOM
	case bytes.HasPrefix(data, bomUTF16LE):
		name = EncodingUTF16LE
	case bytes.HasPrefix(data, bomUTF16BE):
		name = EncodingUTF16BE
	case utf8.Valid(data):
		return data, EncodingUTF8, nil
	default:
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return nil, "", fmt.Errorf("decoding latin-1 input: %w", err)
		}
		return decoded, EncodingLatin1, nil
	}

	decoded, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return nil, "", fmt.Errorf("decoding %s input: %w", name, err)
	}
	return decoded, name, nil
}
