// ABOUTME: Command line overrides for environment configuration
// ABOUTME: Flags that were set explicitly win over SPEEX_* variables
package config

import (
	"flag"
	"fmt"

	"github.com/Resonate-Protocol/resonate-speex/pkg/codec"
)

// Flags holds the shared decode flags of the command line tools
type Flags struct {
	container   *string
	bufferSize  *int
	maxFileSize *int
	outputRate  *int
	strictCRC   *bool
	noEnhance   *bool
	envFile     *string
}

// BindFlags registers the shared flags on fs
func BindFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		container:   fs.String("container", "", "Container format: ogg or wav (default: from file extension, then "+EnvContainer+")"),
		bufferSize:  fs.Int("buffer", codec.DefaultStreamingBufferSize, "Approximate bytes decoded per streaming read"),
		maxFileSize: fs.Int("max-size", codec.DefaultMaxFileSize, "Approximate byte limit for whole-file decodes"),
		outputRate:  fs.Int("rate", 0, "Resample output to this rate in Hz (0 keeps the stream rate)"),
		strictCRC:   fs.Bool("strict-crc", false, "Fail on Ogg page checksum mismatches"),
		noEnhance:   fs.Bool("no-enhance", false, "Disable perceptual enhancement in the decoder"),
		envFile:     fs.String("env", ".env", "Environment file with SPEEX_* settings"),
	}
}

// Load reads the environment file named by the flags and applies every flag
// that was set explicitly on top of it. fs must already be parsed.
func (f *Flags) Load(fs *flag.FlagSet) (Config, error) {
	cfg, err := Load(*f.envFile)
	if err != nil {
		return Config{}, err
	}
	if err := f.Apply(fs, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Apply copies explicitly set flags into cfg
func (f *Flags) Apply(fs *flag.FlagSet, cfg *Config) error {
	var err error
	fs.Visit(func(fl *flag.Flag) {
		if err != nil {
			return
		}
		switch fl.Name {
		case "container":
			cfg.Container, err = codec.ParseContainer(*f.container)
		case "buffer":
			if *f.bufferSize <= 0 {
				err = fmt.Errorf("-buffer must be positive, got %d", *f.bufferSize)
			}
			cfg.StreamingBufferSize = *f.bufferSize
		case "max-size":
			if *f.maxFileSize <= 0 {
				err = fmt.Errorf("-max-size must be positive, got %d", *f.maxFileSize)
			}
			cfg.MaxFileSize = *f.maxFileSize
		case "rate":
			if *f.outputRate < 0 {
				err = fmt.Errorf("-rate must not be negative, got %d", *f.outputRate)
			}
			cfg.OutputRate = *f.outputRate
		case "strict-crc":
			cfg.StrictChecksum = *f.strictCRC
		case "no-enhance":
			cfg.Enhanced = !*f.noEnhance
		}
	})
	return err
}
