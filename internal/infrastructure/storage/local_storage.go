package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"shareboard/internal/config"
)

// PublicPrefix is the URL prefix under which stored payloads are served.
const PublicPrefix = "/uploads/"

// LocalStorage keeps uploaded payloads on the local filesystem. Stored names
// are random, so concurrent uploads never collide.
type LocalStorage struct {
	baseDir string
	log     zerolog.Logger
}

// NewLocalStorage creates the upload directory if needed.
func NewLocalStorage(cfg *config.Config, log zerolog.Logger) (*LocalStorage, error) {
	logger := log.With().Str("component", "local-storage").Logger()

	baseDir := strings.TrimSpace(cfg.UploadDir)
	if baseDir == "" {
		baseDir = "uploads"
	}
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}

	logger.Info().Str("path", baseDir).Msg("local storage initialized")

	return &LocalStorage{
		baseDir: baseDir,
		log:     logger,
	}, nil
}

// Dir returns the upload directory path for static file serving.
func (l *LocalStorage) Dir() string {
	return l.baseDir
}

// Save writes the payload under a fresh random name, keeping the original
// file extension. Returns the public /uploads/... path and the byte count.
func (l *LocalStorage) Save(originalFilename string, body io.Reader) (string, int64, error) {
	name := uuid.NewString() + sanitizeExt(originalFilename)
	fullPath := filepath.Join(l.baseDir, name)

	file, err := os.Create(fullPath)
	if err != nil {
		return "", 0, fmt.Errorf("create payload file: %w", err)
	}
	defer file.Close()

	written, err := io.Copy(file, body)
	if err != nil {
		_ = os.Remove(fullPath)
		return "", 0, fmt.Errorf("write payload file: %w", err)
	}

	l.log.Debug().Str("file", name).Int64("bytes", written).Msg("payload stored")
	return PublicPrefix + name, written, nil
}

// SaveAs stores the payload under the given generated name (used by the
// transcode and synthesis pipelines that pick their own output names).
func (l *LocalStorage) SaveAs(name string, body io.Reader) (string, int64, error) {
	fullPath := filepath.Join(l.baseDir, filepath.Base(name))

	file, err := os.Create(fullPath)
	if err != nil {
		return "", 0, fmt.Errorf("create payload file: %w", err)
	}
	defer file.Close()

	written, err := io.Copy(file, body)
	if err != nil {
		_ = os.Remove(fullPath)
		return "", 0, fmt.Errorf("write payload file: %w", err)
	}
	return PublicPrefix + filepath.Base(name), written, nil
}

// AbsolutePath maps a public /uploads/... path to the on-disk location.
// Returns false for paths outside the upload directory.
func (l *LocalStorage) AbsolutePath(publicPath string) (string, bool) {
	if !strings.HasPrefix(publicPath, PublicPrefix) {
		return "", false
	}
	name := filepath.Base(strings.TrimPrefix(publicPath, PublicPrefix))
	if name == "" || name == "." || name == ".." {
		return "", false
	}
	return filepath.Join(l.baseDir, name), true
}

// NewName reserves a fresh random public path with the given extension,
// for pipelines that write their output file directly.
func (l *LocalStorage) NewName(ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return PublicPrefix + uuid.NewString() + ext
}

// Remove unlinks the payload behind a public /uploads/... path.
func (l *LocalStorage) Remove(publicPath string) error {
	fullPath, ok := l.AbsolutePath(publicPath)
	if !ok {
		return fmt.Errorf("not a stored payload path: %s", publicPath)
	}
	if err := os.Remove(fullPath); err != nil {
		return fmt.Errorf("unlink payload: %w", err)
	}
	return nil
}

// Stat returns the size of a stored payload.
func (l *LocalStorage) Stat(publicPath string) (int64, error) {
	fullPath, ok := l.AbsolutePath(publicPath)
	if !ok {
		return 0, fmt.Errorf("not a stored payload path: %s", publicPath)
	}
	info, err := os.Stat(fullPath)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// Reset removes every stored payload. .gitkeep survives.
func (l *LocalStorage) Reset(ctx context.Context) error {
	files, err := os.ReadDir(l.baseDir)
	if err != nil {
		return fmt.Errorf("read upload directory: %w", err)
	}
	for _, file := range files {
		if file.IsDir() || file.Name() == ".gitkeep" {
			continue
		}
		if err := os.Remove(filepath.Join(l.baseDir, file.Name())); err != nil {
			l.log.Error().Err(err).Str("file", file.Name()).Msg("failed to remove payload during reset")
		}
	}
	return nil
}

// Health checks if the upload directory is writable.
func (l *LocalStorage) Health(ctx context.Context) error {
	testFile := filepath.Join(l.baseDir, ".health_check")
	if err := os.WriteFile(testFile, []byte("ok"), 0644); err != nil {
		return fmt.Errorf("upload directory not writable: %w", err)
	}
	_ = os.Remove(testFile)
	return nil
}

func sanitizeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if len(ext) > 16 {
		return ""
	}
	for _, r := range ext {
		if r != '.' && (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
