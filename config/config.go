// SPDX-FileCopyrightText: Copyright © 2024-2026 crosspub developers
//
// SPDX-License-Identifier: MPL-2.0

package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Nexus holds the credentials and endpoint of the target Maven repository.
// Every value is read from the environment and handed through unchanged to
// the publish container.
type Nexus struct {
	Username string `env:"NEXUS_USERNAME"`
	Password string `env:"NEXUS_PASSWORD"`
	Host     string `env:"NEXUS_HOST" envDefault:"localhost:8081"`
	URL      string `env:"NEXUS_URL"`
}

func NexusFromEnv() (cfg Nexus, err error) {
	if err = env.Parse(&cfg); err != nil {
		return
	}
	if cfg.URL == "" {
		cfg.URL = fmt.Sprintf("http://%s/repository/maven-releases/", cfg.Host)
	}
	return
}

// Environ renders the config as the variable map the publish container sees.
func (c Nexus) Environ() map[string]string {
	return map[string]string{
		"NEXUS_USERNAME": c.Username,
		"NEXUS_PASSWORD": c.Password,
		"NEXUS_HOST":     c.Host,
		"NEXUS_URL":      c.URL,
	}
}
