// Package utils holds small string helpers shared by the transports.
package utils

import (
	"regexp"
	"strings"
)

const maxFilenameLength = 200

var (
	// Characters invalid in filenames on most filesystems
	invalidFilenameChars = regexp.MustCompile(`[<>:"|?*\x00-\x1f]`)
	// Multiple spaces to collapse
	multipleSpaces = regexp.MustCompile(`\s+`)
)

// SanitizeFilename cleans a client supplied file name before it is stored
// with an import run or audit event. Directory parts sent by some browsers
// are dropped, control and reserved characters removed and the result is
// truncated without losing its extension. An empty name stays empty so that
// file validation can reject it.
func SanitizeFilename(filename string) string {
	if i := strings.LastIndexAny(filename, `/\`); i >= 0 {
		filename = filename[i+1:]
	}

	filename = multipleSpaces.ReplaceAllString(filename, " ")
	filename = invalidFilenameChars.ReplaceAllString(filename, "")
	filename = strings.TrimSpace(filename)

	if len(filename) > maxFilenameLength {
		ext := ""
		if dot := strings.LastIndex(filename, "."); dot > 0 && len(filename)-dot <= 10 {
			ext = filename[dot:]
		}
		filename = strings.TrimSpace(filename[:maxFilenameLength-len(ext)]) + ext
	}

	return filename
}
