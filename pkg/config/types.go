package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Config represents the persistent restream configuration stored as
// config.toml in the .restream/ directory. The TOML layout uses sections for
// logical grouping.
type Config struct {
	Version     int               `toml:"version"`
	Parse       ParseConfig       `toml:"parse"`
	Watch       WatchConfig       `toml:"watch"`
	API         APIConfig         `toml:"api"`
	Storage     StorageConfig     `toml:"storage"`
	EventStream EventStreamConfig `toml:"eventstream"`
}

// ParseConfig holds reconstruction settings shared by parse, watch and serve.
type ParseConfig struct {
	// Repair enables JSON repair of malformed object chunks.
	Repair bool `toml:"repair,omitempty"`

	// Format is the CLI output format: "text" or "json".
	Format string `toml:"format,omitempty"`
}

// WatchConfig holds settings for restream watch.
type WatchConfig struct {
	DebounceMS uint `toml:"debounce_ms,omitempty"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// StorageConfig selects where reconstructed transcripts are stored.
// Postgres wins when both are set; neither means in-memory.
type StorageConfig struct {
	SQLitePath  string `toml:"sqlite_path,omitempty"`
	PostgresDSN string `toml:"postgres_dsn,omitempty"`
}

// EventStreamConfig configures publishing of transcript events to Kafka.
// Publishing is disabled while KafkaBrokers is empty.
type EventStreamConfig struct {
	KafkaBrokers string `toml:"kafka_brokers,omitempty"`
	KafkaTopic   string `toml:"kafka_topic,omitempty"`
}

// Brokers splits the comma separated broker list, dropping empty entries.
func (e EventStreamConfig) Brokers() []string {
	return SplitList(e.KafkaBrokers)
}

// SplitList splits a comma separated list and trims each entry.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"parse.repair": {
		get: func(c *Config) string { return strconv.FormatBool(c.Parse.Repair) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for parse.repair: %w", err)
			}
			c.Parse.Repair = b
			return nil
		},
	},
	"parse.format": {
		get: func(c *Config) string { return c.Parse.Format },
		set: func(c *Config, v string) error {
			if !IsValidFormat(v) {
				return fmt.Errorf("invalid value for parse.format: %q (supported: %v)", v, ValidFormats())
			}
			c.Parse.Format = v
			return nil
		},
	},
	"watch.debounce_ms": {
		get: func(c *Config) string {
			if c.Watch.DebounceMS == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Watch.DebounceMS), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for watch.debounce_ms: %w", err)
			}
			c.Watch.DebounceMS = uint(n)
			return nil
		},
	},
	"api.listen": {
		get: func(c *Config) string { return c.API.Listen },
		set: func(c *Config, v string) error { c.API.Listen = v; return nil },
	},
	"storage.sqlite_path": {
		get: func(c *Config) string { return c.Storage.SQLitePath },
		set: func(c *Config, v string) error { c.Storage.SQLitePath = v; return nil },
	},
	"storage.postgres_dsn": {
		get: func(c *Config) string { return c.Storage.PostgresDSN },
		set: func(c *Config, v string) error { c.Storage.PostgresDSN = v; return nil },
	},
	"eventstream.kafka_brokers": {
		get: func(c *Config) string { return c.EventStream.KafkaBrokers },
		set: func(c *Config, v string) error { c.EventStream.KafkaBrokers = v; return nil },
	},
	"eventstream.kafka_topic": {
		get: func(c *Config) string { return c.EventStream.KafkaTopic },
		set: func(c *Config, v string) error { c.EventStream.KafkaTopic = v; return nil },
	},
}

// Output formats for restream parse and watch.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// ValidFormats returns the supported output formats.
func ValidFormats() []string {
	return []string{FormatText, FormatJSON}
}

// IsValidFormat reports whether f is a supported output format.
func IsValidFormat(f string) bool {
	return f == FormatText || f == FormatJSON
}
