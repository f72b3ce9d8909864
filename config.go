package relmeta

import (
	"sync"

	"gorm.io/relmeta/logger"
	"gorm.io/relmeta/schema"
)

// Config catalog config
type Config struct {
	// NamingStrategy tables, columns and constraints naming strategy
	NamingStrategy schema.Namer
	// Logger
	Logger logger.Interface
	// Dialector driver capabilities, join columns of generated uuids depend on it
	Dialector schema.Dialector

	cacheStore *sync.Map
}

// Option catalog option
type Option interface {
	Apply(*Config) error
}

// Apply update config to new config
func (c *Config) Apply(config *Config) error {
	if config != c {
		*config = *c
	}
	return nil
}

// ConfigOption use functional option for Config.
type ConfigOption func(c *Config)

// Apply calls the option
func (fn ConfigOption) Apply(c *Config) error {
	fn(c)
	return nil
}

// WithNamingStrategy set schema namer.
func WithNamingStrategy(namer schema.Namer) ConfigOption {
	return func(c *Config) {
		c.NamingStrategy = namer
	}
}

// WithLogger set logger.
func WithLogger(logger logger.Interface) ConfigOption {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithLogLevel set log level of the logger set so far, logger.Default if none.
func WithLogLevel(level logger.LogLevel) ConfigOption {
	return func(c *Config) {
		if c.Logger == nil {
			c.Logger = logger.Default
		}
		c.Logger = c.Logger.LogMode(level)
	}
}

// WithCacheStore share parsed schemas between catalogs.
func WithCacheStore(cacheStore *sync.Map) ConfigOption {
	return func(c *Config) {
		c.cacheStore = cacheStore
	}
}
