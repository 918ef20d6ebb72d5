// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package conf

import "testing"

func TestNewSecretDBConfig(t *testing.T) {
	base := DBConfig{
		Host: "db.example.com", Port: "5432",
		User: "millwright", Password: "from-file", Database: "millwright",
	}

	t.Run("environment overrides the file", func(t *testing.T) {
		t.Setenv("POSTGRES_HOST", "override-host")
		t.Setenv("POSTGRES_PASSWORD", "override-secret")
		config := NewSecretDBConfig(base)
		if config.Host != "override-host" || config.Password != "override-secret" {
			t.Errorf("unexpected config: %+v", config)
		}
		// Unset variables keep the file values.
		if config.Port != "5432" || config.User != "millwright" || config.Database != "millwright" {
			t.Errorf("unexpected fallback values: %+v", config)
		}
	})
}

func TestGetenv(t *testing.T) {
	t.Setenv("MILLWRIGHT_TEST_KEY", "value")
	if got := Getenv("MILLWRIGHT_TEST_KEY", "default"); got != "value" {
		t.Errorf("Getenv() = %q, expected \"value\"", got)
	}
	if got := Getenv("MILLWRIGHT_TEST_UNSET", "default"); got != "default" {
		t.Errorf("Getenv() = %q, expected \"default\"", got)
	}
}
