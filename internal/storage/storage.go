// Package storage persists uploaded media and issues the URLs posts refer to.
package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"unicode"

	"skillshare-backend/internal/apperr"
	"skillshare-backend/internal/config"

	"github.com/google/uuid"
)

// Storage stores a file and returns the URL it can be fetched from
type Storage interface {
	Store(ctx context.Context, data []byte, contentType, originalName string) (string, error)
}

// New builds the backend selected by cfg.Driver
func New(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch cfg.Driver {
	case "s3":
		return NewS3Storage(ctx, cfg)
	case "minio":
		return NewMinioStorage(cfg)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// objectKey builds media/<uuid>-<name> so uploads never collide
func objectKey(originalName string) string {
	name := sanitizeName(originalName)
	if name == "" {
		return "media/" + uuid.New().String()
	}
	return "media/" + uuid.New().String() + "-" + name
}

// sanitizeName keeps the base name and replaces anything outside [A-Za-z0-9._-]
func sanitizeName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" {
		return ""
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

// publicURL joins the configured base URL with the object key
func publicURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}

func storageErr(err error, name string) error {
	return apperr.Wrap(apperr.StorageError, err, "failed to store %s", name)
}
