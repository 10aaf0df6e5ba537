package inspection

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"path/filepath"
	"strings"
)

// DefaultMIMEType is used for any extension outside AllowedExtensions.
const DefaultMIMEType = "image/jpeg"

// AllowedExtensions are the upload extensions accepted by the form.
var AllowedExtensions = []string{"jpg", "jpeg", "png"}

// Extension returns the lower-cased final dot-separated segment of name.
func Extension(name string) string {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return strings.ToLower(name)
	}
	return strings.ToLower(name[i+1:])
}

// AllowedUpload reports whether name carries one of AllowedExtensions.
func AllowedUpload(name string) bool {
	ext := Extension(filepath.Base(name))
	for _, a := range AllowedExtensions {
		if ext == a {
			return true
		}
	}
	return false
}

// MIMEType trusts the extension and falls back to JPEG. "jpg" yields the
// nonstandard "image/jpg" on purpose.
func MIMEType(fileName string) string {
	ext := Extension(fileName)
	for _, a := range AllowedExtensions {
		if ext == a {
			return "image/" + ext
		}
	}
	return DefaultMIMEType
}

// ImageInfo holds what the preview read could learn about the upload.
// Zero values mean the header could not be decoded.
type ImageInfo struct {
	Format string `json:"format,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// ReadImage does the preview read, rewinds, then reads the full payload.
// A bad image header is not an error: nothing is validated before
// submission, the provider decides.
func ReadImage(rs io.ReadSeeker) (ImageInfo, []byte, error) {
	var info ImageInfo
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return info, nil, fmt.Errorf("rewind image: %w", err)
	}
	if cfg, format, err := image.DecodeConfig(rs); err == nil {
		info = ImageInfo{Format: format, Width: cfg.Width, Height: cfg.Height}
	}

	// cursor harus balik ke awal sebelum dibaca untuk dikirim
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return info, nil, fmt.Errorf("rewind image: %w", err)
	}
	data, err := io.ReadAll(rs)
	if err != nil {
		return info, nil, fmt.Errorf("read image: %w", err)
	}
	return info, data, nil
}
