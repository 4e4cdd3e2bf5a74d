package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/smallbiznis/invoicedesk/internal/config"
)

// LocalRoute is where the HTTP server exposes files written by LocalStorage.
const LocalRoute = "/files"

// LocalStorage writes under a directory served by the API itself.
type LocalStorage struct {
	dir     string
	baseURL string
}

func NewLocalStorage(dir, publicBaseURL string) *LocalStorage {
	return &LocalStorage{
		dir:     dir,
		baseURL: strings.TrimRight(publicBaseURL, "/") + LocalRoute,
	}
}

func (s *LocalStorage) Driver() string { return config.StorageDriverLocal }

// Dir is the root directory files are written to.
func (s *LocalStorage) Dir() string { return s.dir }

func (s *LocalStorage) Upload(ctx context.Context, key string, data []byte, _ string) (string, error) {
	if err := validate(key, data); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	target := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("create storage dir: %w", err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", key, err)
	}
	return s.baseURL + "/" + key, nil
}
