// Package storage keeps generated documents and hands back durable URLs.
package storage

import (
	"context"
	"errors"
	"path"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/oklog/ulid/v2"
)

//go:generate mockgen -source=storage.go -destination=mock/storage_mock.go -package=mock

// Storage uploads a blob under key and returns a URL that keeps working.
type Storage interface {
	Driver() string
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

var (
	ErrEmptyKey  = errors.New("storage_key_required")
	ErrEmptyBody = errors.New("storage_body_required")
	ErrBadKey    = errors.New("storage_key_invalid")
)

// InvoiceKey builds "invoices/<owner>/<ulid>-<filename>". The ULID keeps
// repeated exports of the same invoice from overwriting each other.
func InvoiceKey(ownerID snowflake.ID, filename string, at time.Time) string {
	ext := path.Ext(filename)
	base := slug.Make(strings.TrimSuffix(filename, ext))
	if base == "" {
		base = "document"
	}
	id := ulid.MustNew(ulid.Timestamp(at), ulid.DefaultEntropy())
	return path.Join("invoices", ownerID.String(), strings.ToLower(id.String())+"-"+base+ext)
}

func validate(key string, data []byte) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	if strings.Contains(key, "..") || strings.HasPrefix(key, "/") {
		return ErrBadKey
	}
	if len(data) == 0 {
		return ErrEmptyBody
	}
	return nil
}
