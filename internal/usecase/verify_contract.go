package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/trebuchet-org/treb-audit/internal/config"
	"github.com/trebuchet-org/treb-audit/internal/domain"
	"github.com/trebuchet-org/treb-audit/internal/domain/bytecode"
	"github.com/trebuchet-org/treb-audit/internal/domain/models"
)

// VerifyContract checks a deployed contract against its compiled artifact.
type VerifyContract struct {
	cfg       *config.RuntimeConfig
	artifacts ArtifactResolver
	chain     ChainAccessor
	selector  ArtifactSelector
	progress  ProgressSink
	log       *slog.Logger
}

// NewVerifyContract creates a new verify contract use case
func NewVerifyContract(
	cfg *config.RuntimeConfig,
	artifacts ArtifactResolver,
	chain ChainAccessor,
	selector ArtifactSelector,
	progress ProgressSink,
	log *slog.Logger,
) *VerifyContract {
	return &VerifyContract{
		cfg:       cfg,
		artifacts: artifacts,
		chain:     chain,
		selector:  selector,
		progress:  progress,
		log:       log.With("component", "verify"),
	}
}

// Run verifies one deployment. Checks run in a fixed order: constructor
// code when a creation transaction was supplied, then runtime code, then
// the metadata hash. A comparison that cannot be evaluated aborts the run
// with an error; the report never records a mismatch it could not observe.
func (uc *VerifyContract) Run(ctx context.Context, req *domain.VerifyRequest) (*domain.Report, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	contract, err := uc.resolveArtifact(ctx, req)
	if err != nil {
		return nil, err
	}
	artifact := contract.Artifact

	uc.log.Debug("verifying contract",
		"contract", contract.FullyQualifiedName(),
		"address", req.Address.Hex(),
		"mode", req.Mode,
	)

	report := &domain.Report{
		Contract: contract.FullyQualifiedName(),
		Address:  req.Address,
		Mode:     req.Mode,
	}
	addresses := linkAddresses(req.Libraries)

	// Constructor code comes first so its verdict doesn't hide behind a
	// runtime mismatch when both are wrong.
	if req.CreationTx != nil {
		onchainInput, source, err := uc.creationInput(ctx, req)
		if err != nil {
			return nil, err
		}
		report.CreationSource = source

		compiled, err := bytecode.DecodeArtifactCode(artifact.Bytecode.Object)
		if err != nil {
			return nil, fmt.Errorf("creation bytecode of %s: %w", contract.Name, err)
		}
		refs := bytecode.NormalizeRefs{
			LinkSites: artifact.Bytecode.LinkSites(),
			Addresses: addresses,
		}
		report.Checks = append(report.Checks, domain.CheckResult{
			Type:  domain.CheckConstructorCode,
			Equal: constructorEqual(bytecode.Normalize(compiled, refs), bytecode.Normalize(onchainInput, refs)),
		})
	}

	// Runtime code, always.
	onchainRuntime, err := uc.runtimeCode(ctx, req)
	if err != nil {
		return nil, err
	}
	compiledRuntime, err := bytecode.DecodeArtifactCode(artifact.DeployedBytecode.Object)
	if err != nil {
		return nil, fmt.Errorf("runtime bytecode of %s: %w", contract.Name, err)
	}
	refs := bytecode.NormalizeRefs{
		LinkSites:      artifact.DeployedBytecode.LinkSites(),
		ImmutableSites: artifact.DeployedBytecode.ImmutableSites(),
		Addresses:      addresses,
	}
	if req.IsLibrary() {
		// Deployed libraries embed their own address right after the
		// first instruction (call protection); the artifact has zeros
		// there.
		refs.ImmutableSites = append([]bytecode.Site{{Start: 1, Length: common.AddressLength}}, refs.ImmutableSites...)
	}
	normCompiled := bytecode.Normalize(compiledRuntime, refs)
	normOnchain := bytecode.Normalize(onchainRuntime, refs)

	var onchainMeta *bytecode.Metadata
	switch req.Mode {
	case domain.ModeFull:
		report.Checks = append(report.Checks, domain.CheckResult{
			Type:  domain.CheckRuntimeFull,
			Equal: bytes.Equal(normCompiled, normOnchain),
		})
	case domain.ModePartial:
		strippedCompiled, _, err := bytecode.SplitMetadata(normCompiled)
		if err != nil {
			return nil, fmt.Errorf("compiled runtime code: %w", err)
		}
		var strippedOnchain []byte
		strippedOnchain, onchainMeta, err = bytecode.SplitMetadata(normOnchain)
		if err != nil {
			return nil, fmt.Errorf("on-chain runtime code: %w", err)
		}
		report.Checks = append(report.Checks, domain.CheckResult{
			Type:  domain.CheckRuntimePartial,
			Equal: bytes.Equal(strippedCompiled, strippedOnchain),
		})
	}

	// Metadata hash, when a document was supplied. Validation already
	// pinned the mode to partial, so the on-chain trailer is decoded.
	if req.MetadataFile != "" {
		doc, err := readMetadataDocument(req.MetadataFile)
		if err != nil {
			return nil, err
		}
		equal, err := onchainMeta.MatchesDocument(doc)
		if err != nil {
			return nil, fmt.Errorf("metadata hash check: %w", err)
		}
		report.Checks = append(report.Checks, domain.CheckResult{Type: domain.CheckMetadataHash, Equal: equal})
	}

	uc.log.Debug("verification finished",
		"contract", contract.FullyQualifiedName(),
		"verified", report.Verified(),
	)
	return report, nil
}

// resolveArtifact turns the request into a concrete compiled artifact,
// letting the user pick one when the reference is ambiguous.
func (uc *VerifyContract) resolveArtifact(ctx context.Context, req *domain.VerifyRequest) (*models.Contract, error) {
	uc.progress.OnProgress(ctx, ProgressEvent{Stage: "artifact", Message: "Resolving artifact", Spinner: true})

	contract, err := uc.artifacts.EnsureArtifact(ctx, req.Spec())
	if err != nil {
		var ambiguous domain.AmbiguousArtifactErr
		if !errors.As(err, &ambiguous) || uc.cfg.NonInteractive {
			return nil, err
		}
		chosen, err := uc.selector.SelectArtifact(ctx, ambiguous.Matches,
			fmt.Sprintf("Select artifact for %s", req.Subject()))
		if err != nil {
			return nil, err
		}
		spec := req.Spec()
		spec.Reference = chosen
		contract, err = uc.artifacts.EnsureArtifact(ctx, spec)
		if err != nil {
			return nil, err
		}
	}

	if contract.Artifact == nil || !contract.Artifact.HasBytecode() {
		return nil, fmt.Errorf("%s has no deployable bytecode", contract.FullyQualifiedName())
	}
	return contract, nil
}

// creationInput returns the bytes the target was created with. A
// transaction that deployed the contract directly carries them as calldata;
// factory deployments are recovered from the call trace.
func (uc *VerifyContract) creationInput(ctx context.Context, req *domain.VerifyRequest) (hexutil.Bytes, domain.CreationSource, error) {
	uc.progress.OnProgress(ctx, ProgressEvent{Stage: "chain", Message: "Fetching creation transaction", Spinner: true})

	info, err := uc.chain.CreationInfo(ctx, *req.CreationTx)
	if err != nil {
		return nil, "", err
	}

	if info.IsDeployment() {
		if info.ContractAddress != (common.Address{}) && info.ContractAddress != req.Address {
			uc.log.Warn("transaction deployed a different address",
				"tx", info.TxHash.Hex(),
				"created", info.ContractAddress.Hex(),
				"target", req.Address.Hex(),
			)
		}
		return info.Input, domain.CreationFromTransaction, nil
	}

	uc.progress.OnProgress(ctx, ProgressEvent{Stage: "chain", Message: "Walking deployment trace", Spinner: true})
	trace, err := uc.chain.DeploymentTrace(ctx, *req.CreationTx)
	if err != nil {
		return nil, "", err
	}
	input, err := trace.CreationBytecode(req.Address)
	if err != nil {
		return nil, "", err
	}
	return input, domain.CreationFromTrace, nil
}

// runtimeCode fetches the on-chain runtime code, or reads the capture file
// when one was supplied. Captures go through the same pipeline as RPC
// results.
func (uc *VerifyContract) runtimeCode(ctx context.Context, req *domain.VerifyRequest) (hexutil.Bytes, error) {
	var code hexutil.Bytes
	var err error
	if req.CodeFile != "" {
		code, err = readHexFile(req.CodeFile)
	} else {
		uc.progress.OnProgress(ctx, ProgressEvent{Stage: "chain", Message: "Fetching runtime code", Spinner: true})
		code, err = uc.chain.RuntimeCode(ctx, req.Address)
	}
	if err != nil {
		return nil, err
	}
	if len(code) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrNoCode, req.Address.Hex())
	}
	return code, nil
}

// constructorEqual compares compiled creation code against the on-chain
// creation input. The input carries the ABI-encoded constructor arguments
// after the code, so the compiled code must be a prefix of it.
func constructorEqual(compiled, onchain []byte) bool {
	if len(compiled) == 0 || len(onchain) < len(compiled) {
		return false
	}
	return bytes.Equal(onchain[:len(compiled)], compiled)
}

func linkAddresses(links []domain.LibraryLink) map[string]common.Address {
	if len(links) == 0 {
		return nil
	}
	addresses := make(map[string]common.Address, len(links))
	for _, link := range links {
		addresses[link.Name] = link.Address
	}
	return addresses
}

// readHexFile reads a hex-encoded bytecode capture.
func readHexFile(path string) (hexutil.Bytes, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bytecode capture: %w", err)
	}
	s := strings.TrimSpace(string(data))
	if !strings.HasPrefix(s, "0x") {
		s = "0x" + s
	}
	code, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("bytecode capture %s: %w", path, err)
	}
	return code, nil
}

// readMetadataDocument extracts the raw compiler metadata from an exported
// JSON document of the form {"metadata": "<json string>"}.
func readMetadataDocument(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read metadata document: %w", err)
	}
	var doc struct {
		Metadata string `json:"metadata"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("metadata document %s: %w", path, err)
	}
	if doc.Metadata == "" {
		return nil, fmt.Errorf("metadata document %s has no metadata field", path)
	}
	return []byte(doc.Metadata), nil
}
