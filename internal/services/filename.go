package services

import (
	"path/filepath"
	"regexp"
	"strings"
)

var unsafeNameChars = regexp.MustCompile(`[^a-z0-9_-]`)

// SanitizeFilename turns a local path into an object name: the base name,
// lower-cased, spaces replaced by underscores and anything outside
// [a-z0-9_-] dropped from the stem.
func SanitizeFilename(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	if ext == base {
		ext = ""
	}
	name := strings.TrimSuffix(base, ext)

	name = strings.ReplaceAll(strings.ToLower(name), " ", "_")
	name = unsafeNameChars.ReplaceAllString(name, "")
	if name == "" {
		name = "file"
	}
	return name + strings.ToLower(ext)
}
