package domain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// VerifyMode selects how strictly on-chain runtime code is compared against
// the compiled artifact.
type VerifyMode string

const (
	// ModePartial compares runtime code with the metadata trailer stripped
	ModePartial VerifyMode = "partial"
	// ModeFull compares runtime code byte for byte, trailer included
	ModeFull VerifyMode = "full"
)

// ParseVerifyMode parses a mode flag value.
func ParseVerifyMode(s string) (VerifyMode, error) {
	switch VerifyMode(strings.ToLower(s)) {
	case ModePartial:
		return ModePartial, nil
	case ModeFull:
		return ModeFull, nil
	default:
		return "", InvalidRequestErr{Field: "mode", Reason: fmt.Sprintf("unknown mode %q (expected partial or full)", s)}
	}
}

// CheckType identifies one comparison performed during verification.
type CheckType string

const (
	CheckConstructorCode CheckType = "constructor-code"
	CheckRuntimeFull     CheckType = "runtime-bytecode-full"
	CheckRuntimePartial  CheckType = "runtime-bytecode-partial"
	CheckMetadataHash    CheckType = "metadata-hash"
)

// CheckResult is the outcome of a single comparison. Equal is only
// meaningful when the check actually ran; a check that cannot be evaluated
// surfaces as an error on the whole verification instead.
type CheckResult struct {
	Type  CheckType `json:"type"`
	Equal bool      `json:"equal"`
}

// CreationSource records where the on-chain creation bytecode came from.
type CreationSource string

const (
	// CreationFromTransaction means the creation transaction deployed the
	// target directly and its input was used verbatim
	CreationFromTransaction CreationSource = "transaction"
	// CreationFromTrace means the creation bytecode was recovered from a
	// CREATE frame inside the transaction's call trace
	CreationFromTrace CreationSource = "trace"
)

// Report is the outcome of verifying one contract. Checks appear in the
// order they were evaluated: constructor code first when a creation
// transaction was supplied, then runtime code, then the metadata hash.
type Report struct {
	Contract       string         `json:"contract"`
	Address        common.Address `json:"address"`
	Mode           VerifyMode     `json:"mode"`
	CreationSource CreationSource `json:"creationSource,omitempty"`
	Checks         []CheckResult  `json:"checks"`
}

// Verified returns true when every check ran equal.
func (r *Report) Verified() bool {
	if len(r.Checks) == 0 {
		return false
	}
	for _, check := range r.Checks {
		if !check.Equal {
			return false
		}
	}
	return true
}

// FailedChecks returns the checks that compared unequal.
func (r *Report) FailedChecks() []CheckType {
	var failed []CheckType
	for _, check := range r.Checks {
		if !check.Equal {
			failed = append(failed, check.Type)
		}
	}
	return failed
}

// LibraryLink binds a fully qualified library name to its deployed address.
type LibraryLink struct {
	Name    string         `json:"name"`
	Address common.Address `json:"address"`
}

// ParseLibraryLink parses the forge-style <path>:<lib>:<address> format.
func ParseLibraryLink(s string) (LibraryLink, error) {
	idx := strings.LastIndex(s, ":")
	if idx < 0 {
		return LibraryLink{}, InvalidRequestErr{Field: "libraries", Reason: fmt.Sprintf("expected <path>:<lib>:<address>, got %q", s)}
	}
	name, addr := s[:idx], s[idx+1:]
	if name == "" {
		return LibraryLink{}, InvalidRequestErr{Field: "libraries", Reason: fmt.Sprintf("missing library name in %q", s)}
	}
	if !common.IsHexAddress(addr) {
		return LibraryLink{}, InvalidRequestErr{Field: "libraries", Reason: fmt.Sprintf("%q is not an address", addr)}
	}
	return LibraryLink{Name: name, Address: common.HexToAddress(addr)}, nil
}

// ParseTxHash parses a 32-byte transaction hash.
func ParseTxHash(s string) (common.Hash, error) {
	b, err := hexutil.Decode(s)
	if err != nil || len(b) != common.HashLength {
		return common.Hash{}, InvalidRequestErr{Field: "creation-tx", Reason: fmt.Sprintf("%q is not a transaction hash", s)}
	}
	return common.BytesToHash(b), nil
}

// ArtifactSpec describes which compiled artifact a verification needs.
type ArtifactSpec struct {
	// Reference is a contract name or path:Name artifact reference
	Reference string
	// Kind selects a pinned artifact under artifacts/<kind>/ instead of
	// the build output
	Kind string
	// OptimizerRuns, when non-empty, forces a fresh build with that
	// optimizer-runs setting. Raw string; validated before any process
	// is started.
	OptimizerRuns string
}

// CreationInfo is the creation-relevant view of a transaction.
type CreationInfo struct {
	TxHash          common.Hash     `json:"txHash"`
	Input           hexutil.Bytes   `json:"input"`
	To              *common.Address `json:"to"`
	ContractAddress common.Address  `json:"contractAddress"`
}

// IsDeployment reports whether the transaction created a contract directly.
// Factory deployments go through a call and need the trace instead.
func (ci *CreationInfo) IsDeployment() bool {
	return ci.To == nil
}

// VerifyRequest carries everything needed to verify one deployed contract.
type VerifyRequest struct {
	// ContractName references the artifact to verify ("Counter" or
	// "src/Counter.sol:Counter")
	ContractName string
	// LibraryName, when set, verifies the library artifact of that name
	// instead of a contract
	LibraryName string
	// Address is the deployed address to verify against
	Address common.Address
	// Mode selects full or partial runtime comparison
	Mode VerifyMode
	// CreationTx enables the constructor code check
	CreationTx *common.Hash
	// CodeFile, when set, is a hex capture used instead of fetching
	// runtime code over RPC
	CodeFile string
	// MetadataFile points at an exported metadata JSON document and
	// enables the metadata hash check in partial mode
	MetadataFile string
	// Libraries are link addresses substituted into linked byte ranges
	Libraries []LibraryLink
	// ArtifactKind selects a pinned artifact (artifacts/<kind>/) when no
	// optimizer-runs value is supplied
	ArtifactKind string
	// OptimizerRuns is the raw optimizer-runs flag value, empty when the
	// existing build output should be reused
	OptimizerRuns string
}

// Subject returns the artifact reference being verified.
func (r *VerifyRequest) Subject() string {
	if r.LibraryName != "" {
		return r.LibraryName
	}
	return r.ContractName
}

// IsLibrary reports whether the verification target is a library.
func (r *VerifyRequest) IsLibrary() bool {
	return r.LibraryName != ""
}

// Spec returns the artifact spec derived from the request.
func (r *VerifyRequest) Spec() ArtifactSpec {
	return ArtifactSpec{
		Reference:     r.Subject(),
		Kind:          r.ArtifactKind,
		OptimizerRuns: r.OptimizerRuns,
	}
}

// Validate checks the request for missing fields and contradictory
// combinations. It runs before any artifact, compiler, or RPC work.
func (r *VerifyRequest) Validate() error {
	if r.ContractName == "" && r.LibraryName == "" {
		return InvalidRequestErr{Field: "contract", Reason: "a contract or library name is required"}
	}
	if r.ContractName != "" && r.LibraryName != "" {
		return InvalidRequestErr{Field: "library", Reason: "contract and library names are mutually exclusive"}
	}
	if r.Address == (common.Address{}) {
		return InvalidRequestErr{Field: "address", Reason: "target address is required"}
	}
	if r.Mode != ModePartial && r.Mode != ModeFull {
		return InvalidRequestErr{Field: "mode", Reason: fmt.Sprintf("unknown mode %q (expected partial or full)", r.Mode)}
	}
	if r.IsLibrary() && r.ArtifactKind != "" {
		return InvalidRequestErr{Field: "artifact", Reason: "pinned artifacts cannot be used when verifying a library"}
	}
	if r.IsLibrary() && len(r.Libraries) > 0 {
		return InvalidRequestErr{Field: "libraries", Reason: "link addresses do not apply when verifying a library"}
	}
	if r.ArtifactKind != "" && r.OptimizerRuns != "" {
		return InvalidRequestErr{Field: "artifact", Reason: "pinned artifacts cannot be combined with --optimizer-runs"}
	}
	if r.ArtifactKind != "" && !validArtifactKind(r.ArtifactKind) {
		return InvalidRequestErr{Field: "artifact", Reason: fmt.Sprintf("invalid artifact kind %q", r.ArtifactKind)}
	}
	if r.MetadataFile != "" && r.Mode != ModePartial {
		return InvalidRequestErr{Field: "metadata-file", Reason: "the metadata hash check requires partial mode"}
	}
	if r.OptimizerRuns != "" {
		if _, err := ParseOptimizerRuns(r.OptimizerRuns); err != nil {
			return err
		}
	}
	return nil
}

// ParseOptimizerRuns validates a raw optimizer-runs value. The value is
// destined for a compiler command line, so only a plain positive base-10
// integer is accepted.
func ParseOptimizerRuns(raw string) (int, error) {
	if raw == "" {
		return 0, InvalidRequestErr{Field: "optimizer-runs", Reason: "value is empty"}
	}
	for _, c := range raw {
		if c < '0' || c > '9' {
			return 0, InvalidRequestErr{Field: "optimizer-runs", Reason: fmt.Sprintf("%q is not a positive integer", raw)}
		}
	}
	runs, err := strconv.Atoi(raw)
	if err != nil {
		return 0, InvalidRequestErr{Field: "optimizer-runs", Reason: fmt.Sprintf("%q is out of range", raw)}
	}
	if runs <= 0 {
		return 0, InvalidRequestErr{Field: "optimizer-runs", Reason: "must be greater than zero"}
	}
	return runs, nil
}

func validArtifactKind(kind string) bool {
	for _, c := range kind {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-' || c == '_' || c == '.':
		default:
			return false
		}
	}
	return kind != "" && kind != "." && kind != ".."
}
