package utils

import (
	"strings"
	"time"

	"github.com/gosimple/slug"
)

const maxFilenameLength = 120

// SanitizeFilename turns an arbitrary display name into a lowercase,
// ASCII-only file name stem.
func SanitizeFilename(name string) string {
	s := slug.Make(name)
	if len(s) > maxFilenameLength {
		s = strings.TrimRight(s[:maxFilenameLength], "-")
	}
	if s == "" {
		s = "untitled"
	}
	return s
}

// RollFilename builds the export file name for a roll, e.g.
// "2024-05-01-portra-in-lisbon_csv.txt". A zero date is left out.
func RollFilename(rollName string, date time.Time, suffix, ext string) string {
	var b strings.Builder
	if !date.IsZero() {
		b.WriteString(date.Format("2006-01-02"))
		b.WriteByte('-')
	}
	b.WriteString(SanitizeFilename(rollName))
	if suffix != "" {
		b.WriteByte('_')
		b.WriteString(suffix)
	}
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	b.WriteString(ext)
	return b.String()
}
