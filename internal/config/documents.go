package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"golang.org/x/text/language"
)

// DocumentConfig carries presentation defaults for generated invoice documents.
type DocumentConfig struct {
	NumberFormat   string `mapstructure:"numberFormat"`
	DateLayout     string `mapstructure:"dateLayout"`
	FilenamePrefix string `mapstructure:"filenamePrefix"`
	DefaultFooter  string `mapstructure:"defaultFooter"`
}

func DefaultDocumentConfig() DocumentConfig {
	return DocumentConfig{
		NumberFormat:   "en-US",
		DateLayout:     "Jan 2, 2006",
		FilenamePrefix: "invoice",
	}
}

type DocumentConfigHolder struct {
	current atomic.Value // holds DocumentConfig
}

// NewStaticDocumentConfigHolder returns a holder that never reloads.
func NewStaticDocumentConfigHolder(cfg DocumentConfig) *DocumentConfigHolder {
	holder := &DocumentConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func NewDocumentConfigHolder() (*DocumentConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("documents")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/invoicedesk")
	v.AddConfigPath(".")

	v.SetEnvPrefix("INVOICEDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultDocumentConfig()
	v.SetDefault("documents.numberFormat", defaults.NumberFormat)
	v.SetDefault("documents.dateLayout", defaults.DateLayout)
	v.SetDefault("documents.filenamePrefix", defaults.FilenamePrefix)
	v.SetDefault("documents.defaultFooter", defaults.DefaultFooter)

	fileLoaded := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileLoaded = false
	}

	var cfg DocumentConfig
	if err := v.UnmarshalKey("documents", &cfg); err != nil {
		return nil, err
	}
	if err := validateDocumentConfig(cfg); err != nil {
		return nil, err
	}

	holder := NewStaticDocumentConfigHolder(cfg)
	if !fileLoaded {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated DocumentConfig
		if err := v.UnmarshalKey("documents", &updated); err != nil {
			log.Printf("[documents-config] reload failed: %v", err)
			return
		}
		if err := validateDocumentConfig(updated); err != nil {
			log.Printf("[documents-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[documents-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *DocumentConfigHolder) Get() DocumentConfig {
	if h == nil {
		return DefaultDocumentConfig()
	}
	return h.current.Load().(DocumentConfig)
}

func validateDocumentConfig(cfg DocumentConfig) error {
	if strings.TrimSpace(cfg.NumberFormat) == "" {
		return errors.New("documents.numberFormat cannot be empty")
	}
	if _, err := language.Parse(cfg.NumberFormat); err != nil {
		return errors.New("documents.numberFormat must be a BCP-47 tag")
	}
	if strings.TrimSpace(cfg.DateLayout) == "" {
		return errors.New("documents.dateLayout cannot be empty")
	}
	if strings.TrimSpace(cfg.FilenamePrefix) == "" {
		return errors.New("documents.filenamePrefix cannot be empty")
	}
	return nil
}
