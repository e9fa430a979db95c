package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Service archives finished mixes to object storage.
type Service struct {
	client Client
}

func NewService(client Client) *Service {
	return &Service{client: client}
}

// ObjectKey places each mix under the date it was rendered.
func (s *Service) ObjectKey(filename string) string {
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("%s/%s", date, filepath.Base(filename))
}

// SaveMix uploads the finished mix and returns its public URL.
func (s *Service) SaveMix(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open mix: %w", err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat mix: %w", err)
	}

	return s.client.PutObject(ctx, s.ObjectKey(path), f, st.Size(), contentTypeFor(path))
}

func contentTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return "audio/wav"
	case ".mp3":
		return "audio/mpeg"
	default:
		return "application/octet-stream"
	}
}
