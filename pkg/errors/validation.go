package errors

import (
	"slices"
	"strings"
	"unicode"
)

// maxPathLength bounds cost image references in scenes.
const maxPathLength = 500

// ValidatePath checks a cost image reference taken from a scene. The path
// is resolved against the scene's directory, so it must be relative,
// slash-separated and must not climb out with "..".
func ValidatePath(path string) error {
	switch {
	case path == "":
		return New(ErrCodeInvalidPath, "path cannot be empty")
	case len(path) > maxPathLength:
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	case strings.IndexFunc(path, unicode.IsControl) >= 0:
		return New(ErrCodeInvalidPath, "path contains control characters")
	case strings.HasPrefix(path, "/"):
		return New(ErrCodeInvalidPath, "path %q must be relative to the scene", path)
	case strings.Contains(path, "\\"):
		return New(ErrCodeInvalidPath, "path %q must use forward slashes", path)
	}
	if slices.Contains(strings.Split(path, "/"), "..") {
		return New(ErrCodeInvalidPath, "path %q leaves the scene directory", path)
	}
	return nil
}

// ValidateFormat checks that format is one of allowed (case-sensitive).
func ValidateFormat(format string, allowed ...string) error {
	if format == "" {
		return New(ErrCodeInvalidFormat, "format cannot be empty")
	}
	if !slices.Contains(allowed, format) {
		return New(ErrCodeInvalidFormat, "unsupported format %q (want one of %s)", format, strings.Join(allowed, ", "))
	}
	return nil
}

// ValidateID validates a caller-chosen node or link identifier. IDs end up
// in SVG attributes and DOT labels, so they are restricted to a safe
// character set.
//
//   - No empty IDs
//   - Maximum length of 128 characters
//   - Letters, digits, '-', '_', '.' and ':' only
func ValidateID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "id cannot be empty")
	}
	if len(id) > 128 {
		return New(ErrCodeInvalidInput, "id too long (max 128 characters)")
	}
	for _, r := range id {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune("-_.:", r) {
			continue
		}
		return New(ErrCodeInvalidInput, "id %q contains invalid character %q", id, r)
	}
	return nil
}
