// Package upload stores user-submitted images on local disk and hands back
// the public URL they are served under.
package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInvalidFileType is returned for extensions or MIME types
	// outside the image allow-list.
	ErrInvalidFileType = errors.New("file type is not allowed")

	// ErrFileTooLarge is returned when the upload exceeds the size cap.
	ErrFileTooLarge = errors.New("file exceeds the maximum allowed size")
)

var allowedExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true, ".bmp": true,
}

var allowedContentTypes = map[string]bool{
	"image/jpeg": true, "image/png": true, "image/gif": true, "image/webp": true, "image/bmp": true,
}

// Service validates and stores uploaded images.
type Service struct {
	dir     string
	maxSize int64
}

// NewService creates an upload service rooted at dir; the directory is
// created on first use.
func NewService(dir string, maxSize int64) *Service {
	return &Service{dir: dir, maxSize: maxSize}
}

// Dir returns the directory uploads are stored in.
func (s *Service) Dir() string {
	return s.dir
}

// Save validates the uploaded file and writes it to disk under a generated
// name. It returns the URL path the file is served under.
func (s *Service) Save(file *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		return "", fmt.Errorf("%w: %s", ErrInvalidFileType, ext)
	}
	if contentType := file.Header.Get("Content-Type"); contentType != "" && !allowedContentTypes[contentType] {
		return "", fmt.Errorf("%w: %s", ErrInvalidFileType, contentType)
	}
	if file.Size > s.maxSize {
		return "", fmt.Errorf("%w: %d bytes", ErrFileTooLarge, file.Size)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := fmt.Sprintf("%s_%s%s", time.Now().Format("20060102"), uuid.New().String(), ext)
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}

	return "/uploads/" + name, nil
}

// Delete removes a previously uploaded file by its serving URL. It
// reports whether a file was actually removed; a missing file is not an
// error.
func (s *Service) Delete(url string) (bool, error) {
	name := strings.TrimPrefix(url, "/uploads/")
	// Reject anything that could escape the upload directory.
	name = filepath.Base(name)
	if name == "" || name == "." || name == string(filepath.Separator) {
		return false, nil
	}

	err := os.Remove(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("delete file: %w", err)
	}
	return true, nil
}
