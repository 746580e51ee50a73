package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Map      MapConfig      `yaml:"map" mapstructure:"map"`
	Locate   LocateConfig   `yaml:"locate" mapstructure:"locate"`
	Source   SourceConfig   `yaml:"source" mapstructure:"source"`
	Static   StaticConfig   `yaml:"static" mapstructure:"static"`
	Overpass OverpassConfig `yaml:"overpass" mapstructure:"overpass"`
	Classify ClassifyConfig `yaml:"classify" mapstructure:"classify"`
	Render   RenderConfig   `yaml:"render" mapstructure:"render"`
	View     ViewConfig     `yaml:"view" mapstructure:"view"`
	Session  SessionConfig  `yaml:"session" mapstructure:"session"`
	S3       S3Config       `yaml:"s3" mapstructure:"s3"`
	IPLocate IPLocateConfig `yaml:"iplocate" mapstructure:"iplocate"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	StaticDir   string   `yaml:"static_dir" mapstructure:"static_dir"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// MapConfig holds the fallback camera used when no device location is known.
type MapConfig struct {
	DefaultLat float64 `yaml:"default_lat" mapstructure:"default_lat"`
	DefaultLng float64 `yaml:"default_lng" mapstructure:"default_lng"`
	Zoom       int     `yaml:"zoom" mapstructure:"zoom"`
}

// LocateConfig bounds a single geolocation attempt.
type LocateConfig struct {
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// SourceConfig selects the spot source variant ("static" or "live").
type SourceConfig struct {
	Kind string `yaml:"kind" mapstructure:"kind"`
}

// StaticConfig configures the static spot document.
type StaticConfig struct {
	// Location is a file path, an http(s):// URL or an s3://bucket/key reference.
	Location string  `yaml:"location" mapstructure:"location"`
	RadiusM  float64 `yaml:"radius_m" mapstructure:"radius_m"`
}

// OverpassConfig configures the live geodata query service.
type OverpassConfig struct {
	URL       string        `yaml:"url" mapstructure:"url"`
	RadiusM   float64       `yaml:"radius_m" mapstructure:"radius_m"`
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent string        `yaml:"user_agent" mapstructure:"user_agent"`
}

// ClassifyConfig configures category handling.
type ClassifyConfig struct {
	// Unknown is the policy for unrecognized categories: "default" or "skip".
	Unknown string `yaml:"unknown" mapstructure:"unknown"`
}

// RenderConfig configures marker rendering.
type RenderConfig struct {
	IconSet           string `yaml:"icon_set" mapstructure:"icon_set"`
	Cluster           bool   `yaml:"cluster" mapstructure:"cluster"`
	ClusterZoomOffset int    `yaml:"cluster_zoom_offset" mapstructure:"cluster_zoom_offset"`
}

// ViewConfig configures view controller behavior.
type ViewConfig struct {
	FetchOnDefault bool `yaml:"fetch_on_default" mapstructure:"fetch_on_default"`
}

// SessionConfig bounds the viewer session registry.
type SessionConfig struct {
	MaxEntries int           `yaml:"max_entries" mapstructure:"max_entries"`
	TTL        time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// S3Config holds MinIO/S3 credentials for s3:// static documents.
type S3Config struct {
	Endpoint  string `yaml:"endpoint" mapstructure:"endpoint"`
	AccessKey string `yaml:"access_key" mapstructure:"access_key"`
	SecretKey string `yaml:"secret_key" mapstructure:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl" mapstructure:"use_ssl"`
}

// IPLocateConfig configures IP geolocation. A non-empty MMDBPath selects the
// offline MaxMind database over the HTTP endpoint.
type IPLocateConfig struct {
	BaseURL  string  `yaml:"base_url" mapstructure:"base_url"`
	RPS      float64 `yaml:"rps" mapstructure:"rps"`
	MMDBPath string  `yaml:"mmdb_path" mapstructure:"mmdb_path"`
}

// Load reads configuration from .env, config file and environment.
func Load() (*Config, error) {
	// A missing .env is the normal case outside development.
	_ = godotenv.Load()

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("KINDNESS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.static_dir", "")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("map.default_lat", 51.5074)
	v.SetDefault("map.default_lng", -0.1278)
	v.SetDefault("map.zoom", 13)
	v.SetDefault("locate.timeout", 10*time.Second)
	v.SetDefault("source.kind", "static")
	v.SetDefault("static.location", "kindnessSpots.json")
	v.SetDefault("static.radius_m", 0)
	v.SetDefault("overpass.url", "https://overpass-api.de/api/interpreter")
	v.SetDefault("overpass.radius_m", 10000)
	v.SetDefault("overpass.timeout", 30*time.Second)
	v.SetDefault("overpass.user_agent", "kindness-map/1.0")
	v.SetDefault("classify.unknown", "default")
	v.SetDefault("render.icon_set", "color")
	v.SetDefault("render.cluster", true)
	v.SetDefault("render.cluster_zoom_offset", 2)
	v.SetDefault("view.fetch_on_default", true)
	v.SetDefault("session.max_entries", 10000)
	v.SetDefault("session.ttl", 30*time.Minute)
	v.SetDefault("iplocate.base_url", "http://ip-api.com/json")
	v.SetDefault("iplocate.rps", 0.75)
	v.SetDefault("iplocate.mmdb_path", "")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects values the pipeline cannot run with.
func (c *Config) Validate() error {
	switch c.Source.Kind {
	case "static", "live":
	default:
		return eris.Errorf("config: unknown source.kind %q", c.Source.Kind)
	}
	switch c.Classify.Unknown {
	case "default", "skip":
	default:
		return eris.Errorf("config: unknown classify.unknown %q", c.Classify.Unknown)
	}
	if c.Map.Zoom < 0 || c.Map.Zoom > 22 {
		return eris.Errorf("config: map.zoom %d out of range", c.Map.Zoom)
	}
	if c.Overpass.RadiusM <= 0 {
		return eris.New("config: overpass.radius_m must be positive")
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
