package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStore persists uploads and training archives onto the local
// filesystem, addressed by sanitized relative keys.
type FileStore struct {
	basePath string
}

// NewFileStore initializes a FileStore rooted at basePath.
func NewFileStore(basePath string) (*FileStore, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("storage: base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure base path: %w", err)
	}
	return &FileStore{basePath: basePath}, nil
}

// BasePath returns the configured root directory.
func (s *FileStore) BasePath() string {
	if s == nil {
		return ""
	}
	return s.basePath
}

// Write persists the provided bytes at the given relative key and returns the
// canonicalized storage key. Keys are cleaned to prevent directory traversal.
func (s *FileStore) Write(ctx context.Context, key string, data []byte) (string, error) {
	if s == nil {
		return "", errors.New("storage: no store configured")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(cleanKey))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("storage: ensure directory: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", fmt.Errorf("storage: write file: %w", err)
	}
	return cleanKey, nil
}

// WriteBlob persists raw bytes under keyPrefix with an extension derived
// from the media type and returns the storage key.
func (s *FileStore) WriteBlob(ctx context.Context, keyPrefix, name, mediaType string, data []byte) (string, error) {
	key := name + "." + extensionFor(mediaType)
	if keyPrefix != "" {
		key = strings.TrimRight(keyPrefix, "/") + "/" + key
	}
	return s.Write(ctx, key, data)
}

// WriteDataURL decodes a base64 data URL and persists it under keyPrefix
// with an extension derived from the declared media type. It returns the
// storage key and the media type.
func (s *FileStore) WriteDataURL(ctx context.Context, keyPrefix, name, dataURL string) (string, string, error) {
	mediaType, data, err := ParseDataURL(dataURL)
	if err != nil {
		return "", "", err
	}
	cleanKey, err := s.WriteBlob(ctx, keyPrefix, name, mediaType, data)
	if err != nil {
		return "", "", err
	}
	return cleanKey, mediaType, nil
}

// Resolve maps a stored key back to an absolute path, verifying the file
// exists. Used to locate previously uploaded training archives.
func (s *FileStore) Resolve(key string) (string, error) {
	if s == nil {
		return "", errors.New("storage: no store configured")
	}
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(cleanKey))
	if _, err := os.Stat(fullPath); err != nil {
		return "", fmt.Errorf("storage: resolve %s: %w", cleanKey, err)
	}
	return fullPath, nil
}

// ParseDataURL splits a base64 data URL into its media type and payload.
// Only the base64 encoding is accepted.
func ParseDataURL(s string) (string, []byte, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "data:") {
		return "", nil, errors.New("storage: not a data url")
	}
	header, payload, found := strings.Cut(s[len("data:"):], ",")
	if !found {
		return "", nil, errors.New("storage: malformed data url")
	}
	if !strings.HasSuffix(header, ";base64") {
		return "", nil, errors.New("storage: data url must be base64 encoded")
	}
	mediaType := strings.TrimSuffix(header, ";base64")
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("storage: decode data url: %w", err)
	}
	if len(data) == 0 {
		return "", nil, errors.New("storage: empty data url payload")
	}
	return mediaType, data, nil
}

// EncodeDataURL renders bytes as a base64 data URL with an explicit media
// type prefix, the encoding the prediction gateway expects for binary
// inputs.
func EncodeDataURL(mediaType string, data []byte) string {
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func extensionFor(mediaType string) string {
	switch strings.ToLower(mediaType) {
	case "image/png":
		return "png"
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	case "audio/mpeg":
		return "mp3"
	case "audio/wav", "audio/x-wav":
		return "wav"
	case "video/mp4":
		return "mp4"
	case "application/zip":
		return "zip"
	default:
		return "bin"
	}
}

// sanitizeKey normalizes a key and prevents escaping the storage root.
func sanitizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("storage: key is required")
	}
	key = strings.ReplaceAll(key, "\\", "/")
	key = strings.TrimPrefix(key, "./")
	key = strings.TrimLeft(key, "/")
	cleaned := filepath.Clean(key)
	cleaned = strings.ReplaceAll(cleaned, "\\", "/")
	if cleaned == "." || strings.HasPrefix(cleaned, "../") {
		return "", errors.New("storage: invalid key")
	}
	return cleaned, nil
}
