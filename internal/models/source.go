package models

import (
	"io"
	"strings"
)

// SourceKind records where the active track reference came from.
type SourceKind int

const (
	SourceNone SourceKind = iota
	SourceDefault
	SourcePersisted
	SourceUpload
)

func (k SourceKind) String() string {
	switch k {
	case SourceDefault:
		return "default"
	case SourcePersisted:
		return "persisted"
	case SourceUpload:
		return "upload"
	default:
		return "none"
	}
}

// MarshalText implements [encoding.TextMarshaler] so kinds serialize by name.
func (k SourceKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Source is the currently selected playable track reference.
//
// URI is either a path to the bundled default asset or a transient blob reference created from an upload.
// An empty URI means no source is active.
type Source struct {
	Kind SourceKind `json:"kind"`
	URI  string     `json:"uri"`
}

// Empty reports whether no source is active.
func (s Source) Empty() bool {
	return s.URI == ""
}

// TrackInfo holds tag metadata for display. Any field may be empty.
type TrackInfo struct {
	Title  string `json:"title,omitempty"`
	Artist string `json:"artist,omitempty"`
	Album  string `json:"album,omitempty"`
	Format string `json:"format,omitempty"`
}

// Label renders "Artist - Title", falling back to whichever part is present.
func (t TrackInfo) Label() string {
	switch {
	case t.Artist != "" && t.Title != "":
		return t.Artist + " - " + t.Title
	case t.Title != "":
		return t.Title
	default:
		return t.Artist
	}
}

// File is a user-selected file: its name, the media type it declares, and its content.
type File struct {
	Name      string
	MediaType string
	Content   io.Reader
}

// IsAudio reports whether the declared media type is in the audio category.
func (f File) IsAudio() bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(f.MediaType)), "audio/")
}
