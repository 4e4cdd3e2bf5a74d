package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateDocumentConfig(t *testing.T) {
	assert.NoError(t, validateDocumentConfig(DefaultDocumentConfig()))

	cfg := DefaultDocumentConfig()
	cfg.NumberFormat = ""
	assert.Error(t, validateDocumentConfig(cfg))

	cfg = DefaultDocumentConfig()
	cfg.NumberFormat = "not a tag!"
	assert.Error(t, validateDocumentConfig(cfg))

	cfg = DefaultDocumentConfig()
	cfg.DateLayout = " "
	assert.Error(t, validateDocumentConfig(cfg))
}

func TestDocumentConfigHolder_NilFallsBackToDefaults(t *testing.T) {
	var holder *DocumentConfigHolder
	assert.Equal(t, DefaultDocumentConfig(), holder.Get())

	custom := DefaultDocumentConfig()
	custom.NumberFormat = "de-DE"
	assert.Equal(t, "de-DE", NewStaticDocumentConfigHolder(custom).Get().NumberFormat)
}

func TestLoad_StorageDefaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "S3")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("PUBLIC_BASE_URL", "")

	cfg := Load()
	assert.Equal(t, StorageDriverS3, cfg.Storage.Driver)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "http://localhost:9090", cfg.PublicBaseURL)
	assert.True(t, cfg.Storage.UsePathStyle)
}
