// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package conf

import "os"

// Database credentials taken from the environment. They override the
// values in the config file so that secrets stay out of it.
func NewSecretDBConfig(c DBConfig) DBConfig {
	return DBConfig{
		Host:     Getenv("POSTGRES_HOST", c.Host),
		Port:     Getenv("POSTGRES_PORT", c.Port),
		User:     Getenv("POSTGRES_USER", c.User),
		Password: Getenv("POSTGRES_PASSWORD", c.Password),
		Database: Getenv("POSTGRES_DB", c.Database),
	}
}

// Retrieve the value of the environment variable named by the key.
// If the variable is empty, it returns the provided default value.
func Getenv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
