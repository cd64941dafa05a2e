package domain

import "time"

// Config represents the application configuration
type Config struct {
	Server       ServerConfig       `mapstructure:"server" yaml:"server"`
	Backend      BackendConfig      `mapstructure:"backend" yaml:"backend"`
	Providers    []ProviderConfig   `mapstructure:"providers" yaml:"providers"`
	HTTP         HTTPConfig         `mapstructure:"http" yaml:"http"`
	Classifier   ClassifierConfig   `mapstructure:"classifier" yaml:"classifier"`
	Progress     ProgressConfig     `mapstructure:"progress" yaml:"progress"`
	Download     DownloadConfig     `mapstructure:"download" yaml:"download"`
	Notification NotificationConfig `mapstructure:"notification" yaml:"notification"`
	Logging      LoggingConfig      `mapstructure:"logging" yaml:"logging"`
}

// ServerConfig contains the local API server configuration
type ServerConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port"`
}

// BackendConfig locates the remote media-download service
type BackendConfig struct {
	BaseURL      string `mapstructure:"base_url" yaml:"base_url"`
	MetadataPath string `mapstructure:"metadata_path" yaml:"metadata_path"`
}

// ProviderConfig is one download provider; list order is fallback priority
type ProviderConfig struct {
	Name     string `mapstructure:"name" yaml:"name"`
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"` // relative to backend.base_url, or absolute
}

// HTTPConfig contains outbound HTTP settings
type HTTPConfig struct {
	MetadataTimeout       time.Duration     `mapstructure:"metadata_timeout" yaml:"metadata_timeout"`
	ResponseHeaderTimeout time.Duration     `mapstructure:"response_header_timeout" yaml:"response_header_timeout"`
	KeepAliveTimeout      time.Duration     `mapstructure:"keep_alive_timeout" yaml:"keep_alive_timeout"`
	UserAgent             string            `mapstructure:"user_agent" yaml:"user_agent"`
	ProxyURL              string            `mapstructure:"proxy_url" yaml:"proxy_url"`
	Headers               map[string]string `mapstructure:"headers" yaml:"headers"`
}

// ClassifierConfig tunes how provider responses are interpreted
type ClassifierConfig struct {
	AuthMarkers      []string `mapstructure:"auth_markers" yaml:"auth_markers"`
	MissingOutputKey string   `mapstructure:"missing_output_key" yaml:"missing_output_key"`
	MaxErrorBody     int64    `mapstructure:"max_error_body" yaml:"max_error_body"`
}

// ProgressConfig controls simulated progress when the total size is unknown
type ProgressConfig struct {
	TickInterval time.Duration `mapstructure:"tick_interval" yaml:"tick_interval"`
	MinStep      int           `mapstructure:"min_step" yaml:"min_step"`
	MaxStep      int           `mapstructure:"max_step" yaml:"max_step"`
	Ceiling      int           `mapstructure:"ceiling" yaml:"ceiling"`
}

// DownloadConfig contains download-related configuration
type DownloadConfig struct {
	BaseDir   string `mapstructure:"base_dir" yaml:"base_dir"`
	ChunkSize int    `mapstructure:"chunk_size" yaml:"chunk_size"`
}

// IncomingDir holds partially written files
func (c DownloadConfig) IncomingDir() string {
	return c.BaseDir + "/incoming"
}

// CompletedDir holds finished downloads
func (c DownloadConfig) CompletedDir() string {
	return c.BaseDir + "/completed"
}

// LogsDir holds the server's session and error journals
func (c DownloadConfig) LogsDir() string {
	return c.BaseDir + "/logs"
}

// NotificationConfig contains notification-related configuration
type NotificationConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Method  string `mapstructure:"method" yaml:"method"` // osascript, notify-send
}

// LoggingConfig contains logging-related configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`             // debug, info, warn, error
	Format     string `mapstructure:"format" yaml:"format"`           // json, console
	OutputPath string `mapstructure:"output_path" yaml:"output_path"` // stdout, stderr, or file path
}

// DefaultAuthMarkers are substrings of bot-check and sign-in walls
var DefaultAuthMarkers = []string{
	"sign in to confirm",
	"confirm you're not a bot",
	"confirm you’re not a bot",
	"login required",
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8090,
		},
		Backend: BackendConfig{
			BaseURL:      "http://localhost:5000",
			MetadataPath: "/download_youtube",
		},
		Providers: []ProviderConfig{
			{Name: "youtube", Endpoint: "/download_youtube"},
			{Name: "social", Endpoint: "/video_download"},
		},
		HTTP: HTTPConfig{
			MetadataTimeout:       30 * time.Second,
			ResponseHeaderTimeout: 2 * time.Minute,
			KeepAliveTimeout:      90 * time.Second,
			UserAgent:             "mediafetch/1.0",
		},
		Classifier: ClassifierConfig{
			AuthMarkers:      append([]string(nil), DefaultAuthMarkers...),
			MissingOutputKey: "missingOutput",
			MaxErrorBody:     64 * 1024,
		},
		Progress: ProgressConfig{
			TickInterval: 600 * time.Millisecond,
			MinStep:      2,
			MaxStep:      8,
			Ceiling:      90,
		},
		Download: DownloadConfig{
			BaseDir:   "$HOME/Downloads/mediafetch",
			ChunkSize: 32 * 1024,
		},
		Notification: NotificationConfig{
			Enabled: false,
			Method:  "notify-send",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			OutputPath: "stderr",
		},
	}
}
