package usecase

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/trebuchet-org/treb-audit/internal/domain"
	"github.com/trebuchet-org/treb-audit/internal/domain/models"
)

// ContractRepository provides access to compiled contract artifacts
type ContractRepository interface {
	GetContract(ctx context.Context, key string) (*models.Contract, error)
	GetPinnedContract(ctx context.Context, kind, key string) (*models.Contract, error)
	SearchContracts(ctx context.Context, pattern string) []*models.Contract
	Refresh(ctx context.Context) error
}

// ArtifactResolver produces the compiled artifact a verification compares
// against, compiling the project first when the request pins compiler
// settings
type ArtifactResolver interface {
	EnsureArtifact(ctx context.Context, spec domain.ArtifactSpec) (*models.Contract, error)
}

// ChainAccessor reads on-chain state needed for verification
type ChainAccessor interface {
	RuntimeCode(ctx context.Context, address common.Address) (hexutil.Bytes, error)
	CreationInfo(ctx context.Context, txHash common.Hash) (*domain.CreationInfo, error)
	DeploymentTrace(ctx context.Context, txHash common.Hash) (*domain.DeploymentTrace, error)
}

// ArtifactSelector handles interactive selection of ambiguous artifact
// references
type ArtifactSelector interface {
	SelectArtifact(ctx context.Context, candidates []string, prompt string) (string, error)
}

// ManifestLoader loads audit manifests from disk
type ManifestLoader interface {
	Load(ctx context.Context, path string) (*domain.AuditManifest, error)
}

// Progress tracking interfaces

// ProgressEvent represents a progress update
type ProgressEvent struct {
	Stage    string
	Current  int
	Total    int
	Message  string
	Spinner  bool
	Metadata interface{}
}

// ProgressSink receives progress events
type ProgressSink interface {
	OnProgress(ctx context.Context, event ProgressEvent)
	Info(message string)
	Error(message string)
}

// NopProgress is a no-op implementation of ProgressSink
type NopProgress struct{}

func (NopProgress) OnProgress(context.Context, ProgressEvent) {}
func (NopProgress) Info(string)                               {}
func (NopProgress) Error(string)                              {}

// Use case result types

// ArtifactListResult contains the result of listing known artifacts
type ArtifactListResult struct {
	Contracts []*models.Contract
	Total     int
}
