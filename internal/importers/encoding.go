package importers

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodeContent returns content as UTF-8. Files exported from spreadsheet
// tools on Windows arrive as cp1252; anything that is not valid UTF-8 is
// decoded that way.
func decodeContent(content []byte) ([]byte, string, error) {
	content = bytes.TrimPrefix(content, utf8BOM)
	if utf8.Valid(content) {
		return content, "utf-8", nil
	}

	decoded, err := charmap.Windows1252.NewDecoder().Bytes(content)
	if err != nil {
		return nil, "", err
	}
	return decoded, "windows-1252", nil
}

// isBlank reports whether content holds nothing but whitespace.
func isBlank(content []byte) bool {
	return len(bytes.TrimSpace(bytes.TrimPrefix(content, utf8BOM))) == 0
}
