package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"gorm.io/relmeta/logger"
	"gorm.io/relmeta/schema"
	"gorm.io/relmeta/utils"
)

// Config settings of the resolve command, read from flags, relmeta.yaml and RELMETA_* env vars
type Config struct {
	Manifests     []string      `mapstructure:"manifests"`
	Dialect       string        `mapstructure:"dialect"`
	Format        string        `mapstructure:"format"`
	LogLevel      string        `mapstructure:"log_level"`
	Logger        string        `mapstructure:"logger"`
	SlowThreshold time.Duration `mapstructure:"slow_threshold"`
	TablePrefix   string        `mapstructure:"table_prefix"`
	SingularTable bool          `mapstructure:"singular_table"`
	NoColor       bool          `mapstructure:"no_color"`
}

var (
	errInvalidConfig = errors.New("invalid config")

	formats = []string{"text", "json", "yaml"}
	loggers = []string{"text", "zap", "zerolog", "logrus"}
)

// loadConfig reads relmeta.yaml from dir, or configFile when set, flags take precedence
func loadConfig(flags *pflag.FlagSet, dir, configFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("dialect", "mysql")
	v.SetDefault("format", "text")
	v.SetDefault("log_level", "warn")
	v.SetDefault("logger", "text")
	v.SetDefault("slow_threshold", 200*time.Millisecond)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("relmeta")
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
	}

	v.SetEnvPrefix("relmeta")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	flags.VisitAll(func(flag *pflag.Flag) {
		key := strings.ReplaceAll(flag.Name, "-", "_")
		switch flag.Name {
		case "config":
			return
		case "file":
			key = "manifests"
		}
		_ = v.BindPFlag(key, flag)
	})

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (config *Config) validate() error {
	if len(config.Manifests) == 0 {
		return fmt.Errorf("%w: no manifest given, use --file", errInvalidConfig)
	}

	if !utils.Contains(formats, config.Format) {
		return fmt.Errorf("%w: unknown format %q, expected one of %v", errInvalidConfig, config.Format, formats)
	}

	if _, err := logger.ParseLevel(config.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", errInvalidConfig, err)
	}

	if !utils.Contains(loggers, config.Logger) {
		return fmt.Errorf("%w: unknown logger %q, expected one of %v", errInvalidConfig, config.Logger, loggers)
	}
	return nil
}

// NamingStrategy naming strategy configured by the table settings
func (config *Config) NamingStrategy() schema.Namer {
	return schema.NamingStrategy{TablePrefix: config.TablePrefix, SingularTable: config.SingularTable}
}

// NewLogger creates the configured logger writing to w
func (config *Config) NewLogger(w io.Writer) logger.Interface {
	level, _ := logger.ParseLevel(config.LogLevel)
	loggerConfig := logger.Config{
		SlowThreshold: config.SlowThreshold,
		Colorful:      !config.NoColor,
		LogLevel:      level,
	}

	switch config.Logger {
	case "zap":
		core := zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), zapcore.AddSync(w), logger.ZapLevel(level))
		return logger.NewZapLogger(zap.New(core), loggerConfig)
	case "zerolog":
		return logger.NewZerologLogger(zerolog.New(w).Level(logger.ZerologLevel(level)).With().Timestamp().Logger(), loggerConfig)
	case "logrus":
		l := logrus.New()
		l.SetOutput(w)
		l.SetFormatter(&logrus.JSONFormatter{})
		l.SetLevel(logger.LogrusLevel(level))
		return logger.NewLogrusLogger(l, loggerConfig)
	}

	return logger.New(log.New(w, "\r\n", log.LstdFlags), loggerConfig)
}
