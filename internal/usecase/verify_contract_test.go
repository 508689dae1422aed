package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trebuchet-org/treb-audit/internal/config"
	"github.com/trebuchet-org/treb-audit/internal/domain"
	"github.com/trebuchet-org/treb-audit/internal/domain/bytecode"
	"github.com/trebuchet-org/treb-audit/internal/domain/models"
)

// Simple mock implementations for testing

type mockArtifacts struct {
	ensureFunc func(context.Context, domain.ArtifactSpec) (*models.Contract, error)
	specs      []domain.ArtifactSpec
}

func (m *mockArtifacts) EnsureArtifact(ctx context.Context, spec domain.ArtifactSpec) (*models.Contract, error) {
	m.specs = append(m.specs, spec)
	if m.ensureFunc != nil {
		return m.ensureFunc(ctx, spec)
	}
	return nil, domain.ErrArtifactNotFound
}

type mockChain struct {
	runtimeCodeFunc     func(context.Context, common.Address) (hexutil.Bytes, error)
	creationInfoFunc    func(context.Context, common.Hash) (*domain.CreationInfo, error)
	deploymentTraceFunc func(context.Context, common.Hash) (*domain.DeploymentTrace, error)
	calls               atomic.Int64
}

func (m *mockChain) RuntimeCode(ctx context.Context, address common.Address) (hexutil.Bytes, error) {
	m.calls.Add(1)
	if m.runtimeCodeFunc != nil {
		return m.runtimeCodeFunc(ctx, address)
	}
	return nil, domain.ErrNoCode
}

func (m *mockChain) CreationInfo(ctx context.Context, txHash common.Hash) (*domain.CreationInfo, error) {
	m.calls.Add(1)
	if m.creationInfoFunc != nil {
		return m.creationInfoFunc(ctx, txHash)
	}
	return nil, domain.ErrNotFound
}

func (m *mockChain) DeploymentTrace(ctx context.Context, txHash common.Hash) (*domain.DeploymentTrace, error) {
	m.calls.Add(1)
	if m.deploymentTraceFunc != nil {
		return m.deploymentTraceFunc(ctx, txHash)
	}
	return nil, domain.ErrNotFound
}

type mockSelector struct {
	selectFunc func(context.Context, []string, string) (string, error)
}

func (m *mockSelector) SelectArtifact(ctx context.Context, candidates []string, prompt string) (string, error) {
	if m.selectFunc != nil {
		return m.selectFunc(ctx, candidates, prompt)
	}
	return "", domain.ErrNotFound
}

// Test fixtures

func hexStr(b []byte) string {
	return "0x" + common.Bytes2Hex(b)
}

// testTrailer builds a CBOR metadata trailer with its 2-byte length suffix.
func testTrailer(t *testing.T, fields map[string]any) []byte {
	t.Helper()
	blob, err := cbor.Marshal(fields)
	require.NoError(t, err)
	return append(blob, byte(len(blob)>>8), byte(len(blob)))
}

type fixture struct {
	contract *models.Contract
	runtime  []byte // on-chain runtime code, trailer included
	creation []byte // compiled creation code
	metaDoc  []byte // raw metadata document the trailer commits to
}

// newFixture builds a self-consistent contract: runtime code whose trailer
// commits to metaDoc, and creation code that embeds the runtime.
func newFixture(t *testing.T, name string, seed byte) *fixture {
	t.Helper()
	metaDoc := []byte(fmt.Sprintf(`{"language":"Solidity","contract":%q}`, name))
	tail := testTrailer(t, map[string]any{
		"ipfs": bytecode.DocumentHash(metaDoc),
		"solc": []byte{0, 8, 21},
	})
	stripped := []byte{0x60, 0x80, 0x60, 0x40, 0x52, seed, 0x15, 0x61}
	runtime := append(append([]byte{}, stripped...), tail...)
	creation := append([]byte{0x60, 0x0a, 0x60, 0x0c, 0x60, 0x00, 0x39, 0x60, 0x00, 0xf3}, runtime...)

	artifact := &models.Artifact{
		Bytecode:         models.BytecodeObject{Object: hexStr(creation)},
		DeployedBytecode: models.BytecodeObject{Object: hexStr(runtime)},
	}
	artifact.Metadata.Compiler.Version = "0.8.21"

	return &fixture{
		contract: &models.Contract{
			Name:         name,
			Path:         fmt.Sprintf("src/%s.sol", name),
			ArtifactPath: fmt.Sprintf("out/%s.sol/%s.json", name, name),
			Artifact:     artifact,
		},
		runtime:  runtime,
		creation: creation,
		metaDoc:  metaDoc,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newVerifyFor(fx *fixture, chain *mockChain) (*VerifyContract, *mockArtifacts) {
	artifacts := &mockArtifacts{
		ensureFunc: func(context.Context, domain.ArtifactSpec) (*models.Contract, error) {
			return fx.contract, nil
		},
	}
	cfg := &config.RuntimeConfig{NonInteractive: true}
	uc := NewVerifyContract(cfg, artifacts, chain, &mockSelector{}, NopProgress{}, discardLogger())
	return uc, artifacts
}

func writeMetadataDoc(t *testing.T, doc []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "metadata.json")
	payload, err := json.Marshal(map[string]string{"metadata": string(doc)})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, payload, 0o644))
	return path
}

func TestVerifyContract_Run(t *testing.T) {
	addr := common.HexToAddress("0x5fbdb2315678afecb367f032d93f642f64180aa3")
	txHash := common.HexToHash("0x" + strings.Repeat("11", 32))
	// ABI-encoded uint256 constructor argument
	args := common.LeftPadBytes([]byte{0x2a}, 32)

	t.Run("direct deployment with metadata document", func(t *testing.T) {
		fx := newFixture(t, "Counter", 0x01)
		chain := &mockChain{
			runtimeCodeFunc: func(_ context.Context, a common.Address) (hexutil.Bytes, error) {
				assert.Equal(t, addr, a)
				return fx.runtime, nil
			},
			creationInfoFunc: func(_ context.Context, h common.Hash) (*domain.CreationInfo, error) {
				return &domain.CreationInfo{
					TxHash:          h,
					Input:           append(append([]byte{}, fx.creation...), args...),
					ContractAddress: addr,
				}, nil
			},
		}
		uc, _ := newVerifyFor(fx, chain)

		report, err := uc.Run(context.Background(), &domain.VerifyRequest{
			ContractName: "Counter",
			Address:      addr,
			Mode:         domain.ModePartial,
			CreationTx:   &txHash,
			MetadataFile: writeMetadataDoc(t, fx.metaDoc),
		})
		require.NoError(t, err)

		assert.Equal(t, []domain.CheckResult{
			{Type: domain.CheckConstructorCode, Equal: true},
			{Type: domain.CheckRuntimePartial, Equal: true},
			{Type: domain.CheckMetadataHash, Equal: true},
		}, report.Checks)
		assert.Equal(t, domain.CreationFromTransaction, report.CreationSource)
		assert.Equal(t, "src/Counter.sol:Counter", report.Contract)
		assert.True(t, report.Verified())
	})

	t.Run("wrong address holds someone else's code", func(t *testing.T) {
		fx := newFixture(t, "Counter", 0x01)
		other := newFixture(t, "Token", 0x99)
		chain := &mockChain{
			runtimeCodeFunc: func(context.Context, common.Address) (hexutil.Bytes, error) {
				return other.runtime, nil
			},
		}
		uc, _ := newVerifyFor(fx, chain)

		report, err := uc.Run(context.Background(), &domain.VerifyRequest{
			ContractName: "Counter",
			Address:      addr,
			Mode:         domain.ModePartial,
		})
		require.NoError(t, err)

		assert.Equal(t, []domain.CheckResult{
			{Type: domain.CheckRuntimePartial, Equal: false},
		}, report.Checks)
		assert.False(t, report.Verified())
	})

	t.Run("wrong creation tx for the right address", func(t *testing.T) {
		fx := newFixture(t, "Counter", 0x01)
		other := newFixture(t, "Token", 0x99)
		chain := &mockChain{
			runtimeCodeFunc: func(context.Context, common.Address) (hexutil.Bytes, error) {
				return fx.runtime, nil
			},
			creationInfoFunc: func(_ context.Context, h common.Hash) (*domain.CreationInfo, error) {
				return &domain.CreationInfo{
					TxHash:          h,
					Input:           other.creation,
					ContractAddress: common.HexToAddress("0x9999999999999999999999999999999999999999"),
				}, nil
			},
		}
		uc, _ := newVerifyFor(fx, chain)

		report, err := uc.Run(context.Background(), &domain.VerifyRequest{
			ContractName: "Counter",
			Address:      addr,
			Mode:         domain.ModePartial,
			CreationTx:   &txHash,
		})
		require.NoError(t, err)

		assert.Equal(t, []domain.CheckResult{
			{Type: domain.CheckConstructorCode, Equal: false},
			{Type: domain.CheckRuntimePartial, Equal: true},
		}, report.Checks)
		assert.False(t, report.Verified())
	})

	t.Run("factory deployment in full mode from a pinned artifact", func(t *testing.T) {
		fx := newFixture(t, "Counter", 0x01)
		factory := common.HexToAddress("0xfac7fac7fac7fac7fac7fac7fac7fac7fac7fac7")
		chain := &mockChain{
			runtimeCodeFunc: func(context.Context, common.Address) (hexutil.Bytes, error) {
				return fx.runtime, nil
			},
			creationInfoFunc: func(_ context.Context, h common.Hash) (*domain.CreationInfo, error) {
				to := factory
				return &domain.CreationInfo{TxHash: h, Input: []byte{0xca, 0x11}, To: &to}, nil
			},
			deploymentTraceFunc: func(_ context.Context, h common.Hash) (*domain.DeploymentTrace, error) {
				parent := 0
				return &domain.DeploymentTrace{
					TxHash: h,
					Arena: []domain.TraceFrame{
						{Idx: 0, Kind: domain.FrameCall, To: factory, Children: []int{1}},
						{Idx: 1, Parent: &parent, Kind: domain.FrameCreate2, To: addr,
							Input: append(append([]byte{}, fx.creation...), args...)},
					},
				}, nil
			},
		}
		uc, artifacts := newVerifyFor(fx, chain)

		report, err := uc.Run(context.Background(), &domain.VerifyRequest{
			ContractName: "Counter",
			Address:      addr,
			Mode:         domain.ModeFull,
			CreationTx:   &txHash,
			ArtifactKind: "release",
		})
		require.NoError(t, err)

		assert.Equal(t, []domain.CheckResult{
			{Type: domain.CheckConstructorCode, Equal: true},
			{Type: domain.CheckRuntimeFull, Equal: true},
		}, report.Checks)
		assert.Equal(t, domain.CreationFromTrace, report.CreationSource)
		assert.True(t, report.Verified())

		require.Len(t, artifacts.specs, 1)
		assert.Equal(t, "release", artifacts.specs[0].Kind)
	})

	t.Run("invalid optimizer runs never reach any dependency", func(t *testing.T) {
		fx := newFixture(t, "Counter", 0x01)
		chain := &mockChain{}
		uc, artifacts := newVerifyFor(fx, chain)

		for _, runs := range []string{"1.1", "-1", `"1000"`, "200; rm -rf /"} {
			_, err := uc.Run(context.Background(), &domain.VerifyRequest{
				ContractName:  "Counter",
				Address:       addr,
				Mode:          domain.ModePartial,
				OptimizerRuns: runs,
			})
			require.Error(t, err, "runs %q", runs)
			var invalid domain.InvalidRequestErr
			assert.ErrorAs(t, err, &invalid, "runs %q", runs)
		}

		assert.Empty(t, artifacts.specs)
		assert.Zero(t, chain.calls.Load())
	})

	t.Run("capture file replaces the RPC lookup", func(t *testing.T) {
		fx := newFixture(t, "Counter", 0x01)
		chain := &mockChain{}
		uc, _ := newVerifyFor(fx, chain)

		capture := filepath.Join(t.TempDir(), "code.hex")
		require.NoError(t, os.WriteFile(capture, []byte(hexStr(fx.runtime)+"\n"), 0o644))

		report, err := uc.Run(context.Background(), &domain.VerifyRequest{
			ContractName: "Counter",
			Address:      addr,
			Mode:         domain.ModePartial,
			CodeFile:     capture,
		})
		require.NoError(t, err)
		assert.True(t, report.Verified())
		assert.Zero(t, chain.calls.Load(), "RPC must not be touched when a capture is supplied")
	})

	t.Run("metadata document mismatch is a failed check, not an error", func(t *testing.T) {
		fx := newFixture(t, "Counter", 0x01)
		chain := &mockChain{
			runtimeCodeFunc: func(context.Context, common.Address) (hexutil.Bytes, error) {
				return fx.runtime, nil
			},
		}
		uc, _ := newVerifyFor(fx, chain)

		report, err := uc.Run(context.Background(), &domain.VerifyRequest{
			ContractName: "Counter",
			Address:      addr,
			Mode:         domain.ModePartial,
			MetadataFile: writeMetadataDoc(t, []byte(`{"language":"Solidity","contract":"SomethingElse"}`)),
		})
		require.NoError(t, err)

		assert.Equal(t, []domain.CheckResult{
			{Type: domain.CheckRuntimePartial, Equal: true},
			{Type: domain.CheckMetadataHash, Equal: false},
		}, report.Checks)
	})
}

func TestVerifyContract_Normalization(t *testing.T) {
	addr := common.HexToAddress("0x5fbdb2315678afecb367f032d93f642f64180aa3")
	libAddr := common.HexToAddress("0x1111111111111111111111111111111111111111")

	t.Run("linked library ranges compare equal", func(t *testing.T) {
		metaDoc := []byte(`{"language":"Solidity","contract":"UsesMath"}`)
		tail := testTrailer(t, map[string]any{"ipfs": bytecode.DocumentHash(metaDoc)})

		pre := []byte{0x60, 0x80}
		post := append([]byte{0x60, 0x40}, tail...)
		placeholder := "__$" + strings.Repeat("ab", 17) + "$__"
		object := "0x" + common.Bytes2Hex(pre) + placeholder + common.Bytes2Hex(post)

		onchain := append(append(append([]byte{}, pre...), libAddr.Bytes()...), post...)

		artifact := &models.Artifact{
			Bytecode: models.BytecodeObject{Object: "0x6080"},
			DeployedBytecode: models.BytecodeObject{
				Object: object,
				LinkReferences: map[string]map[string][]models.LinkReference{
					"src/Math.sol": {"Math": {{Start: len(pre), Length: 20}}},
				},
			},
		}
		fx := &fixture{
			contract: &models.Contract{Name: "UsesMath", Path: "src/UsesMath.sol", Artifact: artifact},
		}
		chain := &mockChain{
			runtimeCodeFunc: func(context.Context, common.Address) (hexutil.Bytes, error) {
				return onchain, nil
			},
		}
		uc, _ := newVerifyFor(fx, chain)

		t.Run("with the link address supplied", func(t *testing.T) {
			report, err := uc.Run(context.Background(), &domain.VerifyRequest{
				ContractName: "UsesMath",
				Address:      addr,
				Mode:         domain.ModePartial,
				Libraries:    []domain.LibraryLink{{Name: "src/Math.sol:Math", Address: libAddr}},
			})
			require.NoError(t, err)
			assert.True(t, report.Verified())
		})

		t.Run("without a link address both sides are zeroed", func(t *testing.T) {
			report, err := uc.Run(context.Background(), &domain.VerifyRequest{
				ContractName: "UsesMath",
				Address:      addr,
				Mode:         domain.ModePartial,
			})
			require.NoError(t, err)
			assert.True(t, report.Verified())
		})
	})

	t.Run("immutable ranges are ignored on both sides", func(t *testing.T) {
		fx := newFixture(t, "Vault", 0x07)
		fx.contract.Artifact.DeployedBytecode.ImmutableReferences = map[string][]models.LinkReference{
			"7": {{Start: 5, Length: 2}},
		}
		onchain := append([]byte{}, fx.runtime...)
		onchain[5], onchain[6] = 0xde, 0xad

		chain := &mockChain{
			runtimeCodeFunc: func(context.Context, common.Address) (hexutil.Bytes, error) {
				return onchain, nil
			},
		}
		uc, _ := newVerifyFor(fx, chain)

		report, err := uc.Run(context.Background(), &domain.VerifyRequest{
			ContractName: "Vault",
			Address:      addr,
			Mode:         domain.ModeFull,
		})
		require.NoError(t, err)
		assert.Equal(t, []domain.CheckResult{
			{Type: domain.CheckRuntimeFull, Equal: true},
		}, report.Checks)
	})

	t.Run("library call protection slot is masked", func(t *testing.T) {
		metaDoc := []byte(`{"language":"Solidity","contract":"Math"}`)
		tail := testTrailer(t, map[string]any{"ipfs": bytecode.DocumentHash(metaDoc)})

		// PUSH20 <own address> is how deployed libraries guard direct calls;
		// the artifact carries zeros in that slot.
		stripped := append([]byte{0x73}, make([]byte, 20)...)
		stripped = append(stripped, 0x30, 0x14, 0x60, 0x80)
		runtime := append(append([]byte{}, stripped...), tail...)

		onchain := append([]byte{}, runtime...)
		copy(onchain[1:21], addr.Bytes())

		artifact := &models.Artifact{
			Bytecode:         models.BytecodeObject{Object: "0x6080"},
			DeployedBytecode: models.BytecodeObject{Object: hexStr(runtime)},
		}
		fx := &fixture{
			contract: &models.Contract{Name: "Math", Path: "src/Math.sol", Artifact: artifact},
		}
		chain := &mockChain{
			runtimeCodeFunc: func(context.Context, common.Address) (hexutil.Bytes, error) {
				return onchain, nil
			},
		}
		uc, _ := newVerifyFor(fx, chain)

		report, err := uc.Run(context.Background(), &domain.VerifyRequest{
			LibraryName: "Math",
			Address:     addr,
			Mode:        domain.ModePartial,
		})
		require.NoError(t, err)
		assert.True(t, report.Verified())
	})
}

func TestVerifyContract_AmbiguousArtifact(t *testing.T) {
	addr := common.HexToAddress("0x5fbdb2315678afecb367f032d93f642f64180aa3")
	fx := newFixture(t, "Counter", 0x01)
	matches := []string{"src/Counter.sol:Counter", "lib/dep/src/Counter.sol:Counter"}

	newAmbiguousArtifacts := func() *mockArtifacts {
		return &mockArtifacts{
			ensureFunc: func(_ context.Context, spec domain.ArtifactSpec) (*models.Contract, error) {
				if spec.Reference == "src/Counter.sol:Counter" {
					return fx.contract, nil
				}
				return nil, domain.AmbiguousArtifactErr{Reference: spec.Reference, Matches: matches}
			},
		}
	}
	chain := &mockChain{
		runtimeCodeFunc: func(context.Context, common.Address) (hexutil.Bytes, error) {
			return fx.runtime, nil
		},
	}

	t.Run("interactive runs ask the selector", func(t *testing.T) {
		var prompted string
		selector := &mockSelector{
			selectFunc: func(_ context.Context, candidates []string, prompt string) (string, error) {
				prompted = prompt
				assert.Equal(t, matches, candidates)
				return candidates[0], nil
			},
		}
		uc := NewVerifyContract(&config.RuntimeConfig{}, newAmbiguousArtifacts(), chain, selector, NopProgress{}, discardLogger())

		report, err := uc.Run(context.Background(), &domain.VerifyRequest{
			ContractName: "Counter",
			Address:      addr,
			Mode:         domain.ModePartial,
		})
		require.NoError(t, err)
		assert.True(t, report.Verified())
		assert.Contains(t, prompted, "Counter")
	})

	t.Run("non-interactive runs fail fast", func(t *testing.T) {
		uc := NewVerifyContract(&config.RuntimeConfig{NonInteractive: true},
			newAmbiguousArtifacts(), chain, &mockSelector{}, NopProgress{}, discardLogger())

		_, err := uc.Run(context.Background(), &domain.VerifyRequest{
			ContractName: "Counter",
			Address:      addr,
			Mode:         domain.ModePartial,
		})
		require.Error(t, err)
		var ambiguous domain.AmbiguousArtifactErr
		assert.ErrorAs(t, err, &ambiguous)
	})
}

func TestVerifyContract_Errors(t *testing.T) {
	addr := common.HexToAddress("0x5fbdb2315678afecb367f032d93f642f64180aa3")
	txHash := common.HexToHash("0x" + strings.Repeat("22", 32))

	t.Run("no code at address", func(t *testing.T) {
		fx := newFixture(t, "Counter", 0x01)
		chain := &mockChain{
			runtimeCodeFunc: func(context.Context, common.Address) (hexutil.Bytes, error) {
				return hexutil.Bytes{}, nil
			},
		}
		uc, _ := newVerifyFor(fx, chain)

		_, err := uc.Run(context.Background(), &domain.VerifyRequest{
			ContractName: "Counter", Address: addr, Mode: domain.ModePartial,
		})
		assert.ErrorIs(t, err, domain.ErrNoCode)
	})

	t.Run("trace without a creation frame", func(t *testing.T) {
		fx := newFixture(t, "Counter", 0x01)
		factory := common.HexToAddress("0xfac7fac7fac7fac7fac7fac7fac7fac7fac7fac7")
		chain := &mockChain{
			runtimeCodeFunc: func(context.Context, common.Address) (hexutil.Bytes, error) {
				return fx.runtime, nil
			},
			creationInfoFunc: func(_ context.Context, h common.Hash) (*domain.CreationInfo, error) {
				to := factory
				return &domain.CreationInfo{TxHash: h, Input: []byte{0xca, 0x11}, To: &to}, nil
			},
			deploymentTraceFunc: func(_ context.Context, h common.Hash) (*domain.DeploymentTrace, error) {
				return &domain.DeploymentTrace{
					TxHash: h,
					Arena:  []domain.TraceFrame{{Idx: 0, Kind: domain.FrameCall, To: factory}},
				}, nil
			},
		}
		uc, _ := newVerifyFor(fx, chain)

		_, err := uc.Run(context.Background(), &domain.VerifyRequest{
			ContractName: "Counter", Address: addr, Mode: domain.ModePartial, CreationTx: &txHash,
		})
		assert.ErrorIs(t, err, domain.ErrCreationNotFound)
	})

	t.Run("on-chain code without a metadata trailer in partial mode", func(t *testing.T) {
		fx := newFixture(t, "Counter", 0x01)
		chain := &mockChain{
			runtimeCodeFunc: func(context.Context, common.Address) (hexutil.Bytes, error) {
				return hexutil.Bytes{0x60, 0x80, 0x00, 0x00}, nil
			},
		}
		uc, _ := newVerifyFor(fx, chain)

		_, err := uc.Run(context.Background(), &domain.VerifyRequest{
			ContractName: "Counter", Address: addr, Mode: domain.ModePartial,
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, bytecode.ErrNoMetadata)
		assert.ErrorContains(t, err, "on-chain runtime code")
	})

	t.Run("swarm trailer cannot satisfy the metadata check", func(t *testing.T) {
		metaDoc := []byte(`{"language":"Solidity"}`)
		tail := testTrailer(t, map[string]any{"bzzr0": make([]byte, 32)})
		stripped := []byte{0x60, 0x80, 0x60, 0x40}
		runtime := append(append([]byte{}, stripped...), tail...)

		artifact := &models.Artifact{
			Bytecode:         models.BytecodeObject{Object: "0x6080"},
			DeployedBytecode: models.BytecodeObject{Object: hexStr(runtime)},
		}
		fx := &fixture{contract: &models.Contract{Name: "Old", Path: "src/Old.sol", Artifact: artifact}}
		chain := &mockChain{
			runtimeCodeFunc: func(context.Context, common.Address) (hexutil.Bytes, error) {
				return runtime, nil
			},
		}
		uc, _ := newVerifyFor(fx, chain)

		_, err := uc.Run(context.Background(), &domain.VerifyRequest{
			ContractName: "Old",
			Address:      addr,
			Mode:         domain.ModePartial,
			MetadataFile: writeMetadataDoc(t, metaDoc),
		})
		assert.ErrorIs(t, err, bytecode.ErrUnsupportedDocumentHash)
	})

	t.Run("artifact without bytecode", func(t *testing.T) {
		fx := &fixture{contract: &models.Contract{
			Name: "IERC20", Path: "src/IERC20.sol",
			Artifact: &models.Artifact{Bytecode: models.BytecodeObject{Object: "0x"}},
		}}
		uc, _ := newVerifyFor(fx, &mockChain{})

		_, err := uc.Run(context.Background(), &domain.VerifyRequest{
			ContractName: "IERC20", Address: addr, Mode: domain.ModePartial,
		})
		require.Error(t, err)
		assert.ErrorContains(t, err, "no deployable bytecode")
	})
}

func TestConstructorEqual(t *testing.T) {
	compiled := []byte{1, 2, 3}

	assert.True(t, constructorEqual(compiled, []byte{1, 2, 3}), "exact match")
	assert.True(t, constructorEqual(compiled, []byte{1, 2, 3, 9, 9}), "constructor args after the code")
	assert.False(t, constructorEqual(compiled, []byte{1, 2}), "input shorter than the code")
	assert.False(t, constructorEqual(compiled, []byte{1, 2, 4, 9}), "diverging byte")
	assert.False(t, constructorEqual(nil, []byte{1}), "empty compiled code")
}
