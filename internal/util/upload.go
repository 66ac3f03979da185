package util

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"
)

const (
	MaxCVSizeMB = 5
	MaxCVSize   = MaxCVSizeMB * 1024 * 1024
)

var allowedCVTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// UploadError describes why a file was refused before reaching storage.
type UploadError struct {
	Filename string
	Message  string
}

func (e *UploadError) Error() string {
	return e.Message
}

// ValidateCVFile checks the declared size, the extension and the declared
// MIME type. Browsers that cannot sniff a type send octet-stream or nothing;
// those are accepted when the extension is allowed.
func ValidateCVFile(filename string, size int64, contentType string) error {
	if size > MaxCVSize {
		return &UploadError{
			Filename: filename,
			Message:  fmt.Sprintf("%s exceeds maximum limit of %dMB", filename, MaxCVSizeMB),
		}
	}
	if size <= 0 {
		return &UploadError{Filename: filename, Message: fmt.Sprintf("%s is empty", filename)}
	}

	ext := strings.ToLower(filepath.Ext(filename))
	want, ok := allowedCVTypes[ext]
	if !ok {
		return &UploadError{
			Filename: filename,
			Message:  fmt.Sprintf("%s has unsupported file type, allowed: PDF, DOC, DOCX", filename),
		}
	}

	mediaType := strings.TrimSpace(contentType)
	if parsed, _, err := mime.ParseMediaType(contentType); err == nil {
		mediaType = parsed
	}
	switch mediaType {
	case want, "", "application/octet-stream":
		return nil
	}
	return &UploadError{
		Filename: filename,
		Message:  fmt.Sprintf("%s has content type %s which does not match its extension", filename, mediaType),
	}
}
