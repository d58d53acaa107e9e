package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// FileSystemStore stores sheets in a local directory.
type FileSystemStore struct {
	dir    string
	logger *zap.Logger
}

// NewFileSystemStore creates dir if needed.
func NewFileSystemStore(dir string, logger *zap.Logger) (*FileSystemStore, error) {
	if dir == "" {
		dir = "generated_tickets"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory %s: %w", dir, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileSystemStore{dir: dir, logger: logger}, nil
}

// Save writes data to dir/name through a temp file so readers never see a
// partial PDF.
func (s *FileSystemStore) Save(ctx context.Context, name string, data []byte) (string, error) {
	if err := checkContext(ctx); err != nil {
		return "", err
	}
	if err := validName(name); err != nil {
		return "", err
	}
	path := filepath.Join(s.dir, name)
	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	s.logger.Info("ticket sheet stored", zap.String("path", path), zap.Int("size", len(data)))
	return path, nil
}

// Open accepts either a bare name or a path returned by Save.
func (s *FileSystemStore) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	name := location
	if filepath.Dir(location) == filepath.Clean(s.dir) {
		name = filepath.Base(location)
	}
	if err := validName(name); err != nil {
		s.logger.Warn("blocked storage path", zap.String("location", location))
		return nil, err
	}
	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", location, err)
	}
	return f, nil
}
