package models

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/trebuchet-org/treb-audit/internal/domain/bytecode"
)

// Contract is a compiled contract known to the artifact index
type Contract struct {
	Name         string    `json:"name"`
	Path         string    `json:"path"`
	ArtifactPath string    `json:"artifactPath,omitempty"`
	Artifact     *Artifact `json:"artifact,omitempty"`
}

// FullyQualifiedName returns the path:Name reference when the source path
// is known, the bare name otherwise (pinned artifacts).
func (c *Contract) FullyQualifiedName() string {
	if c.Path == "" {
		return c.Name
	}
	return fmt.Sprintf("%s:%s", c.Path, c.Name)
}

// CompilerVersion returns the solc version the artifact was built with.
func (c *Contract) CompilerVersion() string {
	if c.Artifact == nil {
		return ""
	}
	return c.Artifact.Metadata.Compiler.Version
}

// LinkReference is one byte range inside a bytecode object
type LinkReference struct {
	Start  int `json:"start"`
	Length int `json:"length"`
}

// BytecodeObject represents bytecode information in a Foundry artifact
type BytecodeObject struct {
	Object              string                                `json:"object"`
	SourceMap           string                                `json:"sourceMap"`
	LinkReferences      map[string]map[string][]LinkReference `json:"linkReferences"`
	ImmutableReferences map[string][]LinkReference            `json:"immutableReferences,omitempty"`
}

// LinkSites flattens link references into normalization sites keyed by
// fully qualified library name. Sites come out sorted by offset so callers
// see a stable order regardless of map iteration.
func (b *BytecodeObject) LinkSites() []bytecode.Site {
	var sites []bytecode.Site
	for src, libs := range b.LinkReferences {
		for lib, refs := range libs {
			name := fmt.Sprintf("%s:%s", src, lib)
			for _, ref := range refs {
				sites = append(sites, bytecode.Site{Name: name, Start: ref.Start, Length: ref.Length})
			}
		}
	}
	sort.Slice(sites, func(i, j int) bool { return sites[i].Start < sites[j].Start })
	return sites
}

// ImmutableSites flattens immutable references into normalization sites.
func (b *BytecodeObject) ImmutableSites() []bytecode.Site {
	var sites []bytecode.Site
	for _, refs := range b.ImmutableReferences {
		for _, ref := range refs {
			sites = append(sites, bytecode.Site{Start: ref.Start, Length: ref.Length})
		}
	}
	sort.Slice(sites, func(i, j int) bool { return sites[i].Start < sites[j].Start })
	return sites
}

// Artifact represents a Foundry compilation artifact
type Artifact struct {
	ABI              json.RawMessage  `json:"abi"`
	Bytecode         BytecodeObject   `json:"bytecode"`
	DeployedBytecode BytecodeObject   `json:"deployedBytecode"`
	RawMetadata      string           `json:"rawMetadata"`
	Metadata         ArtifactMetadata `json:"metadata"`
}

// HasBytecode reports whether the artifact is deployable. Interfaces and
// abstract contracts compile to an empty object.
func (a *Artifact) HasBytecode() bool {
	return a.Bytecode.Object != "" && a.Bytecode.Object != "0x"
}

// ArtifactMetadata represents the metadata section of a Foundry artifact
type ArtifactMetadata struct {
	Compiler struct {
		Version string `json:"version"`
	} `json:"compiler"`
	Language string `json:"language"`
	Settings struct {
		CompilationTarget map[string]string `json:"compilationTarget"`
		Optimizer         struct {
			Enabled bool `json:"enabled"`
			Runs    int  `json:"runs"`
		} `json:"optimizer"`
	} `json:"settings"`
}
