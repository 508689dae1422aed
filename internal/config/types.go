package config

import (
	"path/filepath"
	"time"
)

// RuntimeConfig represents the complete runtime configuration
// This is injected into use cases and contains all resolved settings
type RuntimeConfig struct {
	// Core settings
	ProjectRoot string
	DataDir     string

	// Profile is the foundry profile the build output belongs to
	Profile string

	// Network is the resolved RPC target, nil if none was selected
	Network *Network

	// Execution settings
	Debug          bool
	NonInteractive bool
	JSON           bool // Output in JSON format
	Timeout        time.Duration

	// Resolved configurations
	FoundryConfig *FoundryConfig
}

// Network is a resolved RPC target
type Network struct {
	Name   string
	RPCURL string
}

// OutDir returns the forge build output directory for the active profile.
func (c *RuntimeConfig) OutDir() string {
	if c.FoundryConfig != nil {
		if profile, ok := c.FoundryConfig.Profiles[c.Profile]; ok && profile.OutPath != "" {
			return filepath.Join(c.ProjectRoot, profile.OutPath)
		}
	}
	return filepath.Join(c.ProjectRoot, "out")
}

// PinnedArtifactsDir returns the directory holding pinned reference
// artifacts, organized as artifacts/<kind>/<Contract>.json.
func (c *RuntimeConfig) PinnedArtifactsDir() string {
	return filepath.Join(c.ProjectRoot, "artifacts")
}

// FoundryConfig represents the foundry.toml configuration
type FoundryConfig struct {
	Profiles     map[string]ProfileConfig `toml:"profile"`
	RpcEndpoints map[string]string        `toml:"rpc_endpoints"`
}

// ProfileConfig represents a profile's foundry configuration
type ProfileConfig struct {
	SrcPath       string   `toml:"src,omitempty"`
	OutPath       string   `toml:"out,omitempty"`
	LibPaths      []string `toml:"libs,omitempty"`
	Remappings    []string `toml:"remappings,omitempty"`
	SolcVersion   string   `toml:"solc_version,omitempty"`
	Optimizer     bool     `toml:"optimizer,omitempty"`
	OptimizerRuns int      `toml:"optimizer_runs,omitempty"`
}
