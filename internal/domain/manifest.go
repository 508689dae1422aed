package domain

import (
	"fmt"
	"maps"
	"slices"

	"github.com/ethereum/go-ethereum/common"
)

// AuditManifest is a declarative list of deployments to verify, loaded
// from a YAML file. Manifest-level fields act as defaults for every target.
type AuditManifest struct {
	Network string        `yaml:"network,omitempty"`
	Mode    string        `yaml:"mode,omitempty"`
	Targets []AuditTarget `yaml:"targets"`
}

// DefaultMode returns the manifest-level comparison mode, partial when
// unset.
func (m *AuditManifest) DefaultMode() (VerifyMode, error) {
	if m.Mode == "" {
		return ModePartial, nil
	}
	return ParseVerifyMode(m.Mode)
}

// AuditTarget is one deployment in an audit manifest. Fields stay strings
// until Request validates them, so a single bad entry reports its own
// error instead of failing the whole file.
type AuditTarget struct {
	Contract      string            `yaml:"contract,omitempty"`
	Library       string            `yaml:"library,omitempty"`
	Address       string            `yaml:"address"`
	Mode          string            `yaml:"mode,omitempty"`
	CreationTx    string            `yaml:"creation-tx,omitempty"`
	CodeFile      string            `yaml:"code-file,omitempty"`
	MetadataFile  string            `yaml:"metadata-file,omitempty"`
	Libraries     map[string]string `yaml:"libraries,omitempty"`
	ArtifactKind  string            `yaml:"artifact,omitempty"`
	OptimizerRuns string            `yaml:"optimizer-runs,omitempty"`
}

// Name returns the target's artifact reference for display.
func (t *AuditTarget) Name() string {
	if t.Library != "" {
		return t.Library
	}
	return t.Contract
}

// Request converts the manifest entry into a validated VerifyRequest.
func (t *AuditTarget) Request(defaultMode VerifyMode) (*VerifyRequest, error) {
	req := &VerifyRequest{
		ContractName:  t.Contract,
		LibraryName:   t.Library,
		Mode:          defaultMode,
		CodeFile:      t.CodeFile,
		MetadataFile:  t.MetadataFile,
		ArtifactKind:  t.ArtifactKind,
		OptimizerRuns: t.OptimizerRuns,
	}

	if t.Mode != "" {
		mode, err := ParseVerifyMode(t.Mode)
		if err != nil {
			return nil, err
		}
		req.Mode = mode
	}

	if !common.IsHexAddress(t.Address) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAddress, t.Address)
	}
	req.Address = common.HexToAddress(t.Address)

	if t.CreationTx != "" {
		hash, err := ParseTxHash(t.CreationTx)
		if err != nil {
			return nil, err
		}
		req.CreationTx = &hash
	}

	for _, name := range slices.Sorted(maps.Keys(t.Libraries)) {
		addr := t.Libraries[name]
		if !common.IsHexAddress(addr) {
			return nil, InvalidRequestErr{Field: "libraries", Reason: fmt.Sprintf("%q is not an address", addr)}
		}
		req.Libraries = append(req.Libraries, LibraryLink{Name: name, Address: common.HexToAddress(addr)})
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}
