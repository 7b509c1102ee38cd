// SPDX-FileCopyrightText: Copyright © 2024-2026 crosspub developers
//
// SPDX-License-Identifier: MPL-2.0

package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Run is the optional .crosspub.yml file with run defaults. Zero values mean
// "not set"; explicit flags always win over file values.
type Run struct {
	Image      string `yaml:"image"`
	Command    string `yaml:"command"`
	Descriptor string `yaml:"descriptor"`
	LogsDir    string `yaml:"logsDir"`
	Parallel   int    `yaml:"parallel"`
	MaxRetries int    `yaml:"maxRetries"`
	RetryDelay int    `yaml:"retryDelay"`
}

// Settings are the effective publish parameters once file defaults have been
// applied.
type Settings struct {
	Image      string
	Command    string
	Descriptor string
	LogsDir    string
	Parallel   int
	MaxRetries int
	RetryDelay int
}

// Merge fills in every setting whose flag the user left alone with the file
// value; changed reports whether the named flag was set explicitly. The sbt
// command has no flag, so a file value always applies.
func Merge(s Settings, cfg Run, changed func(string) bool) Settings {
	if cfg.Image != "" && !changed("image") {
		s.Image = cfg.Image
	}
	if cfg.Descriptor != "" && !changed("descriptor") {
		s.Descriptor = cfg.Descriptor
	}
	if cfg.LogsDir != "" && !changed("logs") {
		s.LogsDir = cfg.LogsDir
	}
	if cfg.Parallel > 0 && !changed("parallel") {
		s.Parallel = cfg.Parallel
	}
	if cfg.MaxRetries > 0 && !changed("max-retries") {
		s.MaxRetries = cfg.MaxRetries
	}
	if cfg.RetryDelay > 0 && !changed("retry-delay") {
		s.RetryDelay = cfg.RetryDelay
	}
	if cfg.Command != "" {
		s.Command = cfg.Command
	}
	return s
}

func Load(path string) (cfg Run, err error) {
	raw, err := os.Open(path)
	if err != nil {
		return
	}
	defer raw.Close()
	dec := yaml.NewDecoder(raw)
	err = dec.Decode(&cfg)
	return
}
