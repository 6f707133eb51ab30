// Package media validates uploaded images and stores them below the media root.
package media

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"recipes/internal/errors"
)

// RecipeDir is the directory, relative to the media root, holding recipe images.
const RecipeDir = "uploads/recipe"

// DefaultMaxBytes bounds an upload when no limit is configured.
const DefaultMaxBytes = 10 << 20

const msgInvalidImage = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."

// Storage manages image files under a root directory.
// Thread-safe for concurrent operations.
type Storage struct {
	root     string
	subdir   string
	maxBytes int64
	mu       sync.Mutex
}

// NewStorage creates a Storage writing recipe images below root.
func NewStorage(root string, maxBytes int64) (*Storage, error) {
	return NewStorageWithSubdir(root, RecipeDir, maxBytes)
}

// NewStorageWithSubdir creates a Storage writing into root/subdir.
func NewStorageWithSubdir(root, subdir string, maxBytes int64) (*Storage, error) {
	if root == "" {
		return nil, fmt.Errorf("media root cannot be empty")
	}
	if subdir == "" {
		return nil, fmt.Errorf("subdirectory cannot be empty")
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	if err := os.MkdirAll(filepath.Join(root, filepath.FromSlash(subdir)), 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s directory: %w", subdir, err)
	}

	return &Storage{root: root, subdir: subdir, maxBytes: maxBytes}, nil
}

// Save validates content as an image and writes it under a fresh unique
// name keeping the extension of filename. It returns the stored path
// relative to the media root, using forward slashes.
func (s *Storage) Save(filename string, content io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(content, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) == 0 {
		return "", errors.NewValidationError("image", "The submitted file is empty.")
	}
	if int64(len(data)) > s.maxBytes {
		return "", errors.NewValidationError("image", fmt.Sprintf("Ensure the file is at most %d bytes.", s.maxBytes))
	}

	format, err := Detect(data)
	if err != nil {
		return "", errors.NewValidationError("image", msgInvalidImage)
	}

	rel := path.Join(s.subdir, uuid.New().String()+Extension(filename, format))

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.WriteFile(s.abs(rel), data, 0644); err != nil {
		return "", fmt.Errorf("failed to write image file: %w", err)
	}
	return rel, nil
}

// Delete removes a stored image. Missing files are not an error.
func (s *Storage) Delete(rel string) error {
	if rel == "" {
		return fmt.Errorf("path cannot be empty")
	}
	clean := path.Clean("/" + rel)[1:]
	if !strings.HasPrefix(clean, s.subdir+"/") {
		return fmt.Errorf("path %q is outside %s", rel, s.subdir)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.abs(clean)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete image file: %w", err)
	}
	return nil
}

// Exists reports whether a stored image is present.
func (s *Storage) Exists(rel string) bool {
	_, err := os.Stat(s.abs(rel))
	return err == nil
}

func (s *Storage) abs(rel string) string {
	return filepath.Join(s.root, filepath.FromSlash(rel))
}

// Detect returns the registered image format of data.
func Detect(data []byte) (string, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	return format, nil
}

// Extension returns the lower-cased extension of filename, falling back to
// one derived from the detected format.
func Extension(filename, format string) string {
	if ext := strings.ToLower(filepath.Ext(filename)); ext != "" && ext != "." {
		return ext
	}
	if format == "jpeg" {
		return ".jpg"
	}
	return "." + format
}

// URL joins a stored path onto the public media URL prefix.
func URL(prefix, rel string) string {
	if rel == "" {
		return ""
	}
	return strings.TrimSuffix(prefix, "/") + "/" + strings.TrimPrefix(rel, "/")
}
