package models

import (
	"fmt"
	"time"
)

// Upload records a track uploaded during a session.
//
// The blob behind URI only lives as long as the process that created it; the record outlives it.
type Upload struct {
	id        string
	uri       string
	filename  string
	mediaType string
	size      int64
	createdAt time.Time
	revokedAt *time.Time
}

var _ Model = (*Upload)(nil)

// NewUpload creates an Upload for a freshly created blob.
func NewUpload(uri, filename, mediaType string, size int64) *Upload {
	return &Upload{
		uri:       uri,
		filename:  filename,
		mediaType: mediaType,
		size:      size,
		createdAt: time.Now().UTC(),
	}
}

// RestoreUpload rebuilds an Upload from stored columns.
func RestoreUpload(id, uri, filename, mediaType string, size int64, createdAt time.Time, revokedAt *time.Time) *Upload {
	return &Upload{
		id:        id,
		uri:       uri,
		filename:  filename,
		mediaType: mediaType,
		size:      size,
		createdAt: createdAt,
		revokedAt: revokedAt,
	}
}

func (u *Upload) ID() string            { return u.id }
func (u *Upload) SetID(id string)       { u.id = id }
func (u *Upload) URI() string           { return u.uri }
func (u *Upload) Filename() string      { return u.filename }
func (u *Upload) MediaType() string     { return u.mediaType }
func (u *Upload) Size() int64           { return u.size }
func (u *Upload) CreatedAt() time.Time  { return u.createdAt }
func (u *Upload) RevokedAt() *time.Time { return u.revokedAt }
func (u *Upload) Revoked() bool         { return u.revokedAt != nil }

// Validate checks required fields.
func (u *Upload) Validate() error {
	if u.uri == "" {
		return fmt.Errorf("upload uri is required")
	}
	if u.filename == "" {
		return fmt.Errorf("upload filename is required")
	}
	if u.size < 0 {
		return fmt.Errorf("upload size must not be negative")
	}
	return nil
}
