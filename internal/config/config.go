package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Sources SourcesConfig `yaml:"sources" mapstructure:"sources"`
	Layers  LayersConfig  `yaml:"layers" mapstructure:"layers"`
	Render  RenderConfig  `yaml:"render" mapstructure:"render"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// SourcesConfig points at the three raw input files and the column schema.
type SourcesConfig struct {
	Stations   string `yaml:"stations" mapstructure:"stations"`
	Boundaries string `yaml:"boundaries" mapstructure:"boundaries"`
	Residents  string `yaml:"residents" mapstructure:"residents"`
	SchemaFile string `yaml:"schema_file" mapstructure:"schema_file"`
	// Charset applies to the delimited text sources; some vintages of the
	// German open-data exports are still published as ISO-8859-1.
	Charset   string `yaml:"charset" mapstructure:"charset"`
	Delimiter string `yaml:"delimiter" mapstructure:"delimiter"`
	// SheetName selects the worksheet of the station registry workbook.
	SheetName string `yaml:"sheet_name" mapstructure:"sheet_name"`
	// SkipRows skips preamble rows above the station registry header.
	SkipRows int `yaml:"skip_rows" mapstructure:"skip_rows"`
}

// LayerStyle configures one named map layer.
type LayerStyle struct {
	ValueColumn string   `yaml:"value_column" mapstructure:"value_column"`
	ColorRange  []string `yaml:"color_range" mapstructure:"color_range"`
	Tooltip     string   `yaml:"tooltip" mapstructure:"tooltip"`
}

// LayersConfig styles the two standard layers.
type LayersConfig struct {
	Residents LayerStyle `yaml:"residents" mapstructure:"residents"`
	Stations  LayerStyle `yaml:"stations" mapstructure:"stations"`
}

// RenderConfig configures artifact output.
type RenderConfig struct {
	OutDir string `yaml:"out_dir" mapstructure:"out_dir"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
	// RatePerSecond caps request throughput; 0 disables the limiter.
	RatePerSecond float64 `yaml:"rate_per_second" mapstructure:"rate_per_second"`
	RateBurst     int     `yaml:"rate_burst" mapstructure:"rate_burst"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PLZATLAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("sources.stations", "datasets/Ladesaeulenregister_SEP.xlsx")
	v.SetDefault("sources.boundaries", "datasets/geodata_berlin_plz.csv")
	v.SetDefault("sources.residents", "datasets/plz_einwohner.csv")
	v.SetDefault("sources.charset", "utf-8")
	v.SetDefault("sources.delimiter", ";")
	v.SetDefault("sources.skip_rows", 0)
	v.SetDefault("layers.residents.value_column", "Einwohner")
	v.SetDefault("layers.residents.color_range", []string{"yellow", "red"})
	v.SetDefault("layers.residents.tooltip", "PLZ: {PLZ}, Einwohner: {Einwohner}")
	v.SetDefault("layers.stations.value_column", "Number")
	v.SetDefault("layers.stations.color_range", []string{"yellow", "blue"})
	v.SetDefault("layers.stations.tooltip", "PLZ: {PLZ}, Number: {Number}")
	v.SetDefault("render.out_dir", "out")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_per_second", 20)
	v.SetDefault("server.rate_burst", 40)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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

	return &cfg, nil
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
