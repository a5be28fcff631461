package middleware

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Input validation and sanitization utilities

// ValidateAssetKind checks if the asset kind is in the allowed list
func ValidateAssetKind(kind string) error {
	allowed := map[string]bool{
		"image":        true,
		"video":        true,
		"document":     true,
		"presentation": true,
		"podcast":      true,
	}
	if !allowed[strings.ToLower(kind)] {
		return fmt.Errorf("invalid asset kind: %s (allowed: image, video, document, presentation, podcast)", kind)
	}
	return nil
}

// ValidateUploadFilename rejects path traversal and control characters
func ValidateUploadFilename(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("filename cannot be empty")
	}
	if name != filepath.Base(name) {
		return fmt.Errorf("filename must not contain path separators")
	}
	dangerous := []string{"..", "\n", "\r", "\x00"}
	for _, d := range dangerous {
		if strings.Contains(name, d) {
			return fmt.Errorf("filename contains forbidden sequence")
		}
	}
	return nil
}

// ValidateContentType allows only the media families the reviewer understands
func ValidateContentType(ct string) error {
	if ct == "" || ct == "application/octet-stream" {
		// generic uploads are sniffed by extension instead
		return nil
	}
	ct = strings.ToLower(ct)
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	ok := strings.HasPrefix(ct, "image/") ||
		strings.HasPrefix(ct, "video/") ||
		strings.HasPrefix(ct, "audio/") ||
		strings.HasPrefix(ct, "text/") ||
		ct == "application/pdf" ||
		strings.Contains(ct, "presentation") ||
		strings.Contains(ct, "powerpoint") ||
		strings.Contains(ct, "msword") ||
		strings.Contains(ct, "wordprocessing")
	if !ok {
		return fmt.Errorf("unsupported content type: %s", ct)
	}
	return nil
}
