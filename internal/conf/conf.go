// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package conf

import (
	"io"
	"os"

	"github.com/millwright-dev/millwright/internal/shopfloor"
	"gopkg.in/yaml.v3"
)

// Database configuration.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// Configuration for the scheduler module.
type SchedulerConfig struct {
	// Default scheduling policy applied when a request does not
	// override it.
	DefaultPolicy shopfloor.SchedulingPolicy `yaml:"defaultPolicy"`

	// If request bodies should be logged out.
	// This feature is intended for debugging purposes only.
	LogRequestBodies bool `yaml:"logRequestBodies"`

	// The port to use for the scheduler API.
	Port int `yaml:"port"`
}

// Configuration for the shop floor calendar and changeover times.
type ShopFloorConfig struct {
	Calendar    shopfloor.Calendar           `yaml:"calendar"`
	SetupMatrix []shopfloor.SetupMatrixEntry `yaml:"setupMatrix"`
}

// Configuration of a single KPI plugin by name, with custom options.
type KPIPluginConfig struct {
	// The name of the KPI plugin.
	Name string `yaml:"name"`
	// Custom options for the plugin, as a raw yaml map.
	Options RawOpts `yaml:"options,omitempty"`
}

// Configuration for the kpis module.
type KPIsConfig struct {
	Plugins []KPIPluginConfig `yaml:"plugins"`
}

// Configuration for the monitoring module.
type MonitoringConfig struct {
	// The labels to add to all metrics.
	Labels map[string]string `yaml:"labels"`

	// The port to expose the metrics on.
	Port int `yaml:"port"`
}

// Configuration for the mqtt module.
type MQTTConfig struct {
	URL      string `yaml:"url"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Configuration for the logging module.
type LoggingConfig struct {
	// The log level, one of "debug", "info", "warn", "error".
	LevelStr string `yaml:"level"`
	// The log format, one of "text", "json".
	Format string `yaml:"format"`
}

// Configuration for the millwright service.
type Config interface {
	GetDBConfig() DBConfig
	GetSchedulerConfig() SchedulerConfig
	GetShopFloorConfig() ShopFloorConfig
	GetKPIsConfig() KPIsConfig
	GetMonitoringConfig() MonitoringConfig
	GetMQTTConfig() MQTTConfig
	GetLoggingConfig() LoggingConfig
	// Check if the configuration is valid.
	Validate() error
}

type config struct {
	DBConfig         `yaml:"db"`
	SchedulerConfig  `yaml:"scheduler"`
	ShopFloorConfig  `yaml:"shopFloor"`
	KPIsConfig       `yaml:"kpis"`
	MonitoringConfig `yaml:"monitoring"`
	MQTTConfig       `yaml:"mqtt"`
	LoggingConfig    `yaml:"logging"`
}

// Create a new configuration from the default config yaml file.
func NewConfig() Config {
	return NewConfigFromFile("/etc/config/conf.yaml")
}

// Create a new configuration from the given file.
func NewConfigFromFile(filepath string) Config {
	file, err := os.Open(filepath)
	if err != nil {
		panic(err)
	}
	defer file.Close()
	bytes, err := io.ReadAll(file)
	if err != nil {
		panic(err)
	}
	return NewConfigFromBytes(bytes)
}

// Create a new configuration from the given bytes.
func NewConfigFromBytes(bytes []byte) Config {
	var c config
	if err := yaml.Unmarshal(bytes, &c); err != nil {
		panic(err)
	}
	return &c
}

func (c *config) GetDBConfig() DBConfig                 { return c.DBConfig }
func (c *config) GetSchedulerConfig() SchedulerConfig   { return c.SchedulerConfig }
func (c *config) GetShopFloorConfig() ShopFloorConfig   { return c.ShopFloorConfig }
func (c *config) GetKPIsConfig() KPIsConfig             { return c.KPIsConfig }
func (c *config) GetMonitoringConfig() MonitoringConfig { return c.MonitoringConfig }
func (c *config) GetMQTTConfig() MQTTConfig             { return c.MQTTConfig }
func (c *config) GetLoggingConfig() LoggingConfig       { return c.LoggingConfig }
