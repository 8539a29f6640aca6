// Package storage keeps uploaded photos on local disk and serves them back
// under a public URL prefix.
package storage

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/clinika/clinika-backend/pkg/logger"
)

// FileStore writes uploads into a flat directory. File names are generated
// server-side so a client-supplied name can never escape the directory.
type FileStore struct {
	dir     string
	baseURL string
	log     *logger.Logger
}

// NewFileStore creates the upload directory if needed.
func NewFileStore(dir, baseURL string, log *logger.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &FileStore{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log.WithComponent("storage"),
	}, nil
}

// Dir returns the directory files are stored in.
func (s *FileStore) Dir() string {
	return s.dir
}

// Save writes r to disk under a fresh name, keeping origName's extension.
// It returns the stored file name.
func (s *FileStore) Save(r io.Reader, origName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(origName))
	name := uuid.New().String() + ext

	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return name, nil
}

// Delete removes a stored file. Deleting a missing file is not an error.
func (s *FileStore) Delete(name string) error {
	if name == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, filepath.Base(name)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// TryDelete removes a stored file, logging instead of failing. Used when a
// replaced photo should be cleaned up without aborting the request.
func (s *FileStore) TryDelete(name string) {
	if err := s.Delete(name); err != nil {
		s.log.Warn().Err(err).Str("file", name).Msg("failed to delete stored file")
	}
}

// PublicURL returns the URL a stored file is served under.
func (s *FileStore) PublicURL(name string) string {
	if name == "" {
		return ""
	}
	return s.baseURL + "/" + path.Base(name)
}

// NameFromURL maps a public URL (or bare name) back to the stored file name.
func (s *FileStore) NameFromURL(url string) string {
	url = strings.TrimSpace(url)
	if url == "" {
		return ""
	}
	return path.Base(url)
}
