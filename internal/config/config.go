// ABOUTME: Environment configuration for the command line tools
// ABOUTME: Loads an optional .env file and SPEEX_* variables into decode settings
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/Resonate-Protocol/resonate-speex/internal/version"
	"github.com/Resonate-Protocol/resonate-speex/pkg/audio/decode"
	"github.com/Resonate-Protocol/resonate-speex/pkg/codec"
	"github.com/joho/godotenv"
)

// Environment variable names
const (
	EnvStreamBufferSize = "SPEEX_STREAM_BUFFER_SIZE"
	EnvMaxFileSize      = "SPEEX_MAX_FILE_SIZE"
	EnvContainer        = "SPEEX_CONTAINER"
	EnvStrictChecksum   = "SPEEX_STRICT_CRC"
	EnvEnhance          = "SPEEX_ENHANCE"
	EnvOutputRate       = "SPEEX_OUTPUT_RATE"
)

// Config holds settings shared by the command line tools
type Config struct {
	StreamingBufferSize int
	MaxFileSize         int
	Container           codec.Container
	StrictChecksum      bool
	Enhanced            bool

	// OutputRate resamples decoded audio when non-zero
	OutputRate int
}

// Default returns the built-in settings
func Default() Config {
	return Config{
		StreamingBufferSize: codec.DefaultStreamingBufferSize,
		MaxFileSize:         codec.DefaultMaxFileSize,
		Enhanced:            true,
	}
}

// Load reads the given env files (".env" when none are named), then applies
// SPEEX_* variables on top of the defaults. Variables already set in the
// environment win over file values. Missing files are ignored.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from a lookup function such as os.LookupEnv
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if err := intVar(lookup, EnvStreamBufferSize, &cfg.StreamingBufferSize); err != nil {
		return Config{}, err
	}
	if err := intVar(lookup, EnvMaxFileSize, &cfg.MaxFileSize); err != nil {
		return Config{}, err
	}
	if err := intVar(lookup, EnvOutputRate, &cfg.OutputRate); err != nil {
		return Config{}, err
	}
	if err := boolVar(lookup, EnvStrictChecksum, &cfg.StrictChecksum); err != nil {
		return Config{}, err
	}
	if err := boolVar(lookup, EnvEnhance, &cfg.Enhanced); err != nil {
		return Config{}, err
	}

	if v, ok := lookup(EnvContainer); ok {
		c, err := codec.ParseContainer(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvContainer, err)
		}
		cfg.Container = c
	}

	if cfg.StreamingBufferSize <= 0 {
		return Config{}, fmt.Errorf("%s must be positive, got %d", EnvStreamBufferSize, cfg.StreamingBufferSize)
	}
	if cfg.MaxFileSize <= 0 {
		return Config{}, fmt.Errorf("%s must be positive, got %d", EnvMaxFileSize, cfg.MaxFileSize)
	}
	if cfg.OutputRate < 0 {
		return Config{}, fmt.Errorf("%s must not be negative, got %d", EnvOutputRate, cfg.OutputRate)
	}

	return cfg, nil
}

// Codec converts the settings into a stream configuration
func (c Config) Codec(newDecoder decode.FrameDecoderFactory) codec.Config {
	return codec.Config{
		Container:           c.Container,
		StreamingBufferSize: c.StreamingBufferSize,
		MaxFileSize:         c.MaxFileSize,
		NewDecoder:          newDecoder,
		Enhanced:            c.Enhanced,
		StrictChecksum:      c.StrictChecksum,
		UserAgent:           version.UserAgent(),
	}
}

// IsURL reports whether source names an http(s) resource
func IsURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// Open opens source as an http(s) URL or a local path
func (c Config) Open(ctx context.Context, source string, newDecoder decode.FrameDecoderFactory) (*codec.Stream, error) {
	cfg := c.Codec(newDecoder)
	if IsURL(source) {
		return codec.OpenURL(ctx, source, cfg)
	}
	return codec.OpenFile(source, cfg)
}

func intVar(lookup func(string) (string, bool), name string, dst *int) error {
	v, ok := lookup(name)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: invalid integer %q", name, v)
	}
	*dst = n
	return nil
}

func boolVar(lookup func(string) (string, bool), name string, dst *bool) error {
	v, ok := lookup(name)
	if !ok || v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: invalid boolean %q", name, v)
	}
	*dst = b
	return nil
}
