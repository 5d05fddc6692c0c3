package resolver

import "time"

// SourceType represents the type of source being resolved
type SourceType int

const (
	// SourceTypeUnknown represents an unknown source type
	SourceTypeUnknown SourceType = iota
	// SourceTypeFile represents a single image file
	SourceTypeFile
	// SourceTypeFolder represents a directory containing images
	SourceTypeFolder
)

// String returns the string representation of a SourceType
func (st SourceType) String() string {
	switch st {
	case SourceTypeFile:
		return "file"
	case SourceTypeFolder:
		return "folder"
	default:
		return "unknown"
	}
}

// ResolverMetadata contains information about the resolved source
type ResolverMetadata struct {
	// Name of the source
	Name string
	// Type is the source type (file, folder)
	Type SourceType
	// Path is the path to the source
	Path string
	// Size is the total size of the resolved images in bytes
	Size int64
	// ModTime is the last modification time of the source
	ModTime time.Time
	// Extra contains additional metadata specific to the source type
	Extra map[string]interface{}
}
