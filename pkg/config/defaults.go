package config

const (
	defaultFormat     = FormatText
	defaultDebounceMS = 150
	defaultAPIListen  = ":8081"
	defaultKafkaTopic = "restream.transcripts"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Parse: ParseConfig{
			Format: defaultFormat,
		},
		Watch: WatchConfig{
			DebounceMS: defaultDebounceMS,
		},
		API: APIConfig{
			Listen: defaultAPIListen,
		},
		EventStream: EventStreamConfig{
			KafkaTopic: defaultKafkaTopic,
		},
	}
}
