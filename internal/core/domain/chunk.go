package domain

import (
	"path"
	"strings"
)

// ChunkType classifies the content of a documentation chunk.
type ChunkType string

const (
	// ChunkTypeCode marks chunks extracted from code blocks or example files.
	ChunkTypeCode ChunkType = "code"

	// ChunkTypeText marks prose chunks (tutorial text, API descriptions).
	ChunkTypeText ChunkType = "text"
)

// Chunk represents a searchable unit of documentation.
// Chunks are produced by the offline processing pipeline and are
// immutable once ingested; their IDs are stable across runs and serve
// as cache and index keys.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// Text is the chunk content.
	Text string

	// Type classifies the chunk as code or prose.
	Type ChunkType

	// Source is the originating file path within the documentation set.
	Source string

	// Title is the human-readable title, usually derived from Source.
	Title string

	// Section is the heading or symbol the chunk was extracted under.
	Section string

	// Language is the programming language for code chunks, if known.
	Language string
}

// DisplayTitle returns the best available title for the chunk,
// falling back to the source path when no title was extracted.
func (c Chunk) DisplayTitle() string {
	if c.Title != "" {
		return c.Title
	}
	return TitleFromSource(c.Source)
}

// TitleFromSource derives a human-readable title from a source path.
// "tutorials/beginner/dataloader_tutorial.py" becomes
// "dataloader tutorial".
func TitleFromSource(source string) string {
	if source == "" {
		return ""
	}

	base := path.Base(source)
	base = strings.TrimSuffix(base, path.Ext(base))
	base = strings.ReplaceAll(base, "_", " ")
	base = strings.ReplaceAll(base, "-", " ")
	return strings.TrimSpace(base)
}
