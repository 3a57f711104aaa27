package content

import (
	"io"
	"strings"
	"time"
)

// Content types, fixed at creation from the payload's media kind.
const (
	TypeText  = "text"
	TypeImage = "image"
	TypeVideo = "video"
	TypeAudio = "audio"
	TypeFile  = "file"
)

// ContentRecord represents one board post. Wire names match the web client.
type ContentRecord struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Text      string                 `json:"text"`
	Data      string                 `json:"data,omitempty"`
	Filename  string                 `json:"filename,omitempty"`
	Size      int64                  `json:"size,omitempty"`
	Mimetype  string                 `json:"mimetype,omitempty"`
	Original  *ConversionProvenance  `json:"original,omitempty"`
	CreatedAt time.Time              `json:"createdAt"`
	UpdatedAt time.Time              `json:"updatedAt"`
	DeletedAt *time.Time             `json:"deletedAt,omitempty"`
}

// ConversionProvenance preserves the original upload when the stored payload
// is a derived conversion (e.g. HEIC converted to JPEG). Lets clients offer
// "download original".
type ConversionProvenance struct {
	OriginalData     string `json:"originalData"`
	OriginalFilename string `json:"originalFilename"`
	OriginalSize     int64  `json:"originalSize"`
	OriginalMimetype string `json:"originalMimetype"`
}

// UploadedFile is one multipart file part handed to the service.
type UploadedFile struct {
	Filename string
	Mimetype string
	Size     int64
	Reader   io.Reader
}

// CreateRequest carries a new post: optional text plus zero or more files.
type CreateRequest struct {
	Text  string
	Files []UploadedFile
}

// TypeFromMimetype derives the content type from the payload's MIME type.
func TypeFromMimetype(mimetype string) string {
	switch {
	case strings.HasPrefix(mimetype, "image/"):
		return TypeImage
	case strings.HasPrefix(mimetype, "video/"):
		return TypeVideo
	case strings.HasPrefix(mimetype, "audio/"):
		return TypeAudio
	default:
		return TypeFile
	}
}
