package upload

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
)

// Magic byte signatures for allowed file types
// Maps lowercase extension to possible magic byte prefixes
var magicBytes = map[string][][]byte{
	".jpg":  {{0xFF, 0xD8, 0xFF}},
	".jpeg": {{0xFF, 0xD8, 0xFF}},
	".png":  {{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}},
	".gif":  {{0x47, 0x49, 0x46, 0x38, 0x37, 0x61}, {0x47, 0x49, 0x46, 0x38, 0x39, 0x61}}, // GIF87a & GIF89a
	".webp": {{0x52, 0x49, 0x46, 0x46}},                                                   // RIFF header
	".pdf":  {{0x25, 0x50, 0x44, 0x46}},                                                   // %PDF
	".docx": {{0x50, 0x4B, 0x03, 0x04}},                                                   // ZIP (PK..)
}

// Allowed file extensions (strict whitelist)
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".pdf":  true,
	".docx": true,
}

var contentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// Validate checks the file name against the extension whitelist, verifies
// the content matches the extension via magic bytes and enforces the size
// limit. It returns the canonical content type for storage.
func Validate(filename string, data []byte, maxSize int64) (contentType string, err error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return "", fmt.Errorf("file has no extension")
	}
	if !allowedExtensions[ext] {
		return "", fmt.Errorf("file extension not allowed: %s", ext)
	}
	if int64(len(data)) > maxSize {
		return "", fmt.Errorf("file exceeds maximum size of %d bytes", maxSize)
	}
	if !validateMagicBytes(ext, data) {
		return "", fmt.Errorf("file content does not match extension")
	}
	return contentTypes[ext], nil
}

// ContentTypeFor returns the canonical content type for an allowed file
// name, without inspecting content. Used when only the name is known, e.g.
// when presigning a direct upload.
func ContentTypeFor(filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	contentType, ok := contentTypes[ext]
	if !ok {
		return "", fmt.Errorf("file extension not allowed: %s", ext)
	}
	return contentType, nil
}

// IsImage reports whether the file name carries an allowed image extension.
func IsImage(filename string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(filename))]
}

// validateMagicBytes checks if file content starts with expected magic bytes
func validateMagicBytes(ext string, data []byte) bool {
	if len(data) < 4 {
		return false
	}

	signatures, ok := magicBytes[ext]
	if !ok {
		return false
	}

	for _, sig := range signatures {
		if len(data) >= len(sig) && bytes.HasPrefix(data, sig) {
			return true
		}
	}
	return false
}
