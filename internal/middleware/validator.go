package middleware

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bryanwahyu/archscope/internal/domain/inspection"
)

// Input parsing and sanitization for the analysis form

// ParseDepth reads the depth field; empty means the form default.
func ParseDepth(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return inspection.DefaultDepth, nil
	}
	d, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: depth must be a number", inspection.ErrValidation)
	}
	return d, nil
}

// ParseToggle reads a checkbox-style field; empty means def.
func ParseToggle(raw string, def bool) (bool, error) {
	raw = strings.TrimSpace(strings.ToLower(raw))
	switch raw {
	case "":
		return def, nil
	case "1", "true", "on", "yes":
		return true, nil
	case "0", "false", "off", "no":
		return false, nil
	}
	return false, fmt.Errorf("%w: invalid boolean %q", inspection.ErrValidation, raw)
}

// ValidateUploadName keeps only the base name and checks the extension.
func ValidateUploadName(name string) (string, error) {
	name = SanitizeString(filepath.Base(strings.ReplaceAll(name, "\\", "/")))
	if name == "" || name == "." || name == "/" {
		return "", fmt.Errorf("%w: image file name is empty", inspection.ErrValidation)
	}
	if !inspection.AllowedUpload(name) {
		return "", fmt.Errorf("%w: unsupported image %q (allowed: %s)", inspection.ErrValidation, name, strings.Join(inspection.AllowedExtensions, ", "))
	}
	return name, nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters
	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

// ValidateLimit validates how many history entries to return. ceiling is
// both the default and the upper bound.
func ValidateLimit(limit, ceiling int) int {
	if limit <= 0 || limit > ceiling {
		return ceiling
	}
	return limit
}
