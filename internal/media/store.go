package media

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// ErrInvalidImage is returned when an upload cannot be decoded as an image.
var ErrInvalidImage = errors.New("upload is not a supported image")

// Stored describes a saved image.
type Stored struct {
	Key    string
	URL    string
	Width  int
	Height int
}

// Store persists room photos.
type Store interface {
	Save(prefix string, src io.Reader) (*Stored, error)
	Delete(key string) error
}

// LocalStore writes JPEG renditions under a directory served at baseURL.
type LocalStore struct {
	dir      string
	baseURL  string
	maxWidth int
}

// NewLocalStore creates dir if needed.
func NewLocalStore(dir, baseURL string, maxWidth int) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	if maxWidth <= 0 {
		maxWidth = 1600
	}
	return &LocalStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/"), maxWidth: maxWidth}, nil
}

// Dir returns the root directory, for static serving.
func (s *LocalStore) Dir() string {
	return s.dir
}

// Save decodes src, shrinks it to the configured width and stores it as JPEG.
func (s *LocalStore) Save(prefix string, src io.Reader) (*Stored, error) {
	img, err := imaging.Decode(src, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if img.Bounds().Dx() > s.maxWidth {
		img = imaging.Resize(img, s.maxWidth, 0, imaging.Lanczos)
	}

	key := path.Join(sanitize(prefix), uuid.NewString()+".jpg")
	target := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return nil, fmt.Errorf("create image dir: %w", err)
	}
	if err := imaging.Save(img, target, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("save image: %w", err)
	}

	b := img.Bounds()
	return &Stored{
		Key:    key,
		URL:    s.baseURL + "/" + key,
		Width:  b.Dx(),
		Height: b.Dy(),
	}, nil
}

// Delete removes the file for key. Missing files are not an error.
func (s *LocalStore) Delete(key string) error {
	clean := path.Clean("/" + key)[1:]
	if clean == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, filepath.FromSlash(clean)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func sanitize(prefix string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(prefix) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "misc"
	}
	return b.String()
}
