package media

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/edubrasil/internal/models"
	"github.com/dhowden/tag"
)

var audioExtensions = map[string]string{
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".flac": "audio/flac",
	".ogg":  "audio/ogg",
	".oga":  "audio/ogg",
	".opus": "audio/opus",
	".m4a":  "audio/mp4",
	".aac":  "audio/aac",
}

var tagFileTypes = map[tag.FileType]string{
	tag.MP3:  "audio/mpeg",
	tag.FLAC: "audio/flac",
	tag.OGG:  "audio/ogg",
	tag.M4A:  "audio/mp4",
	tag.ALAC: "audio/mp4",
}

// DetectMediaType returns the media type a file declares: by extension first, then by identifying its
// container, then by sniffing its first bytes.
func DetectMediaType(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if t, ok := audioExtensions[ext]; ok {
		return t, nil
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	if _, fileType, err := tag.Identify(f); err == nil {
		if t, ok := tagFileTypes[fileType]; ok {
			return t, nil
		}
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind %s: %w", path, err)
	}
	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return http.DetectContentType(head[:n]), nil
}

// OpenFile opens path as a [models.File] with its detected media type. The caller closes the returned file.
func OpenFile(path string) (models.File, io.Closer, error) {
	mediaType, err := DetectMediaType(path)
	if err != nil {
		return models.File{}, nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return models.File{}, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return models.File{Name: filepath.Base(path), MediaType: mediaType, Content: f}, f, nil
}

// TagInspector reads track metadata with dhowden/tag.
type TagInspector struct{}

// Inspect returns the tags found in the file at location.
func (TagInspector) Inspect(location string) (models.TrackInfo, error) {
	f, err := os.Open(location)
	if err != nil {
		return models.TrackInfo{}, fmt.Errorf("failed to open %s: %w", location, err)
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return models.TrackInfo{}, fmt.Errorf("failed to read tags: %w", err)
	}

	return models.TrackInfo{
		Title:  strings.TrimSpace(m.Title()),
		Artist: strings.TrimSpace(m.Artist()),
		Album:  strings.TrimSpace(m.Album()),
		Format: string(m.FileType()),
	}, nil
}
