package config

// Config holds the configuration of the application
// Use cmd.NewAppState to wire it into the running services
type Config struct {
	Store      StoreConfig      `mapstructure:"store"`
	Steward    StewardConfig    `mapstructure:"steward"`
	Enrichment EnrichmentConfig `mapstructure:"enrichment"`
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Auth       AuthConfig       `mapstructure:"auth"`
}

type StoreConfig struct {
	Type     string         `mapstructure:"type"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

// StewardConfig configures the client for the Content Steward, the
// platform service that holds parsed file payloads and content metadata.
type StewardConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	RetryMax       int    `mapstructure:"retry_max"`
}

// EnrichmentConfig bounds sampling during embedding creation. SampleLimit
// is clamped to 100 and PreviewLimit to 10; zero values select the maximums.
type EnrichmentConfig struct {
	SampleLimit  int `mapstructure:"sample_limit"`
	PreviewLimit int `mapstructure:"preview_limit"`
}

type ServerConfig struct {
	Port                  int `mapstructure:"port"`
	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type AuthConfig struct {
	Secret   string `mapstructure:"secret"`
	Required bool   `mapstructure:"required"`
}
