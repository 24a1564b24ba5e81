package internal

import (
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/text/encoding/ianaindex"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Storage StorageConfig     `yaml:"storage"`
	Hook    HookConfig        `yaml:"hook"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	return c.Storage.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return nil
}

// StorageConfig holds the collection storage layout.
//
// Base is the directory holding one sub-directory per collection.
// Fileext is the item file extension, leading dot included. Encoding is
// an IANA charset name; empty means UTF-8.
type StorageConfig struct {
	Base     string `yaml:"base"`
	Fileext  string `yaml:"fileext"`
	Encoding string `yaml:"encoding"`
}

// Validate validates the storage configuration.
func (c *StorageConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Base, validation.Required),
		validation.Field(&c.Fileext, validation.Required),
	); err != nil {
		return err
	}
	if !strings.HasPrefix(c.Fileext, ".") {
		return fmt.Errorf("storage: fileext must start with '.': %q", c.Fileext)
	}
	if c.Encoding != "" && !strings.EqualFold(c.Encoding, "utf-8") && !strings.EqualFold(c.Encoding, "utf8") {
		enc, err := ianaindex.IANA.Encoding(c.Encoding)
		if err != nil || enc == nil {
			return fmt.Errorf("storage: unsupported encoding %q", c.Encoding)
		}
	}
	return nil
}

// HookConfig holds the optional post-write hook command. An empty
// command disables the hook.
type HookConfig struct {
	Command string `yaml:"command"`
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
		},
		Storage: StorageConfig{
			Base:     "./collections",
			Fileext:  ".txt",
			Encoding: "utf-8",
		},
		Hook: HookConfig{
			Command: "",
		},
	}
}
