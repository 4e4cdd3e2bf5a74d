package storage

import (
	"fmt"

	"github.com/smallbiznis/invoicedesk/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("storage",
	fx.Provide(New),
)

// New picks the driver named by STORAGE_DRIVER.
func New(cfg config.Config, log *zap.Logger) (Storage, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverS3:
		return NewS3Storage(cfg.Storage, log)
	case config.StorageDriverLocal, "":
		return NewLocalStorage(cfg.Storage.LocalDir, cfg.PublicBaseURL), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
