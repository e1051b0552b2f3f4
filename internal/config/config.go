// Package config parses the step inputs that drive the setup and teardown
// routines into an explicit configuration value, so the routines never read
// globals and tests can construct any input combination directly.
package config

import (
	"fmt"
	"strings"

	"github.com/biome-sh/biomeci/internal/ci"
)

// DefaultVersion is the pinned bio release installed when the binary is
// absent and no version input overrides it.
const DefaultVersion = "1.6.652"

// DefaultBldrURL is the default package repository.
const DefaultBldrURL = "https://bldr.biome.sh"

// Supervisor is the parsed supervisor directive: disabled, enabled with no
// services, or enabled with an ordered list of service load lines.
type Supervisor struct {
	Enabled  bool
	Services []string
}

// Config carries every parsed input for one job.
type Config struct {
	Deps       []string
	Supervisor Supervisor
	CacheKey   string
	Version    string
	BldrURL    string
}

// Load reads and parses all step inputs.
func Load() *Config {
	return &Config{
		Deps:       ParseDeps(ci.GetInput("deps")),
		Supervisor: ParseSupervisor(ci.GetInput("supervisor")),
		CacheKey:   resolveCacheKey(ci.GetInput("cache-key")),
		Version:    resolveOr(ci.GetInput("version"), DefaultVersion),
		BldrURL:    resolveOr(ci.GetInput("bldr-url"), DefaultBldrURL),
	}
}

// ParseDeps splits a dependency list on runs of whitespace, dropping empty
// tokens. Duplicates and ordering are caller-controlled.
func ParseDeps(input string) []string {
	return strings.Fields(input)
}

// ParseSupervisor parses the supervisor input. An empty value disables the
// supervisor; the literal "true" enables it with no services; anything else
// enables it with one service load line per non-empty trimmed input line.
func ParseSupervisor(input string) Supervisor {
	input = strings.TrimSpace(input)
	if input == "" {
		return Supervisor{}
	}
	if input == "true" {
		return Supervisor{Enabled: true}
	}

	var services []string
	for _, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			services = append(services, line)
		}
	}
	return Supervisor{Enabled: true, Services: services}
}

// Env returns the environment variables exported at the start of setup and
// forwarded explicitly across every elevation boundary.
func (c *Config) Env() []string {
	return []string{
		"HAB_NONINTERACTIVE=true",
		"HAB_BLDR_URL=" + c.BldrURL,
		"HAB_STUDIO_TYPE=default",
	}
}

func resolveCacheKey(input string) string {
	if input != "" {
		return input
	}
	return fmt.Sprintf("biome-cache-%s", ci.WorkflowName())
}

func resolveOr(input, def string) string {
	if input != "" {
		return input
	}
	return def
}
