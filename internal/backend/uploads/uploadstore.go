package uploads

import (
	"errors"
	"fmt"
	"image"
	"io"
	"io/fs"
	"log/slog"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const maxCreateAttempts = 8

var formatExtensions = map[string]string{
	"png":  ".png",
	"jpeg": ".jpg",
	"gif":  ".gif",
	"bmp":  ".bmp",
	"tiff": ".tiff",
	"webp": ".webp",
}

// UploadStore writes uploaded files verbatim into a single directory and
// hands out the public URL path they are served under.
type UploadStore struct {
	directory string
	urlPrefix string
	names     *nameGenerator
}

func NewUploadStore(directory, urlPrefix string) (*UploadStore, error) {
	if err := os.MkdirAll(directory, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", directory, err)
	}
	return &UploadStore{
		directory: directory,
		urlPrefix: "/" + strings.Trim(urlPrefix, "/"),
		names:     newNameGenerator(),
	}, nil
}

func (s *UploadStore) Directory() string {
	return s.directory
}

func (s *UploadStore) URLPrefix() string {
	return s.urlPrefix
}

// Save stores an uploaded multipart file and returns its public path.
func (s *UploadStore) Save(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file %s: %w", file.Filename, err)
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			slog.Error("failed to close uploaded file reader", "error", cerr, "filename", file.Filename)
		}
	}()

	return s.Store(file.Filename, src)
}

// Store writes the content of src under a new unique name that keeps the
// extension of originalName. Without an extension the image format of the
// content decides it, if it can be recognized.
func (s *UploadStore) Store(originalName string, src io.ReadSeeker) (string, error) {
	extension := uploadExtension(originalName)
	if extension == "" {
		sniffed, err := sniffExtension(src)
		if err != nil {
			return "", err
		}
		extension = sniffed
	}

	dst, name, err := s.createUnique(extension)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return "", fmt.Errorf("failed to write upload %s: %w", name, err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("failed to close upload %s: %w", name, err)
	}

	slog.Info("stored upload", "filename", name, "original", originalName)
	return path.Join(s.urlPrefix, name), nil
}

func (s *UploadStore) createUnique(extension string) (*os.File, string, error) {
	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		name := s.names.nextName(extension)
		dst, err := os.OpenFile(filepath.Join(s.directory, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return nil, "", fmt.Errorf("failed to create upload %s: %w", name, err)
		}
		return dst, name, nil
	}
	return nil, "", fmt.Errorf("failed to find a free upload name after %d attempts", maxCreateAttempts)
}

// uploadExtension returns the extension of the base name. A name whose only
// dot is the leading one, like ".bashrc", has no extension.
func uploadExtension(originalName string) string {
	base := filepath.Base(originalName)
	extension := filepath.Ext(base)
	if extension == base {
		return ""
	}
	return extension
}

// sniffExtension leaves src rewound to its start.
func sniffExtension(src io.ReadSeeker) (string, error) {
	_, format, decodeErr := image.DecodeConfig(src)
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind upload: %w", err)
	}
	if decodeErr != nil {
		return "", nil
	}
	return formatExtensions[format], nil
}
