package forge

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/trebuchet-org/treb-audit/internal/config"
	"github.com/trebuchet-org/treb-audit/internal/domain"
	"github.com/trebuchet-org/treb-audit/internal/domain/models"
	"github.com/trebuchet-org/treb-audit/internal/usecase"
)

// CommandRunner executes an external command and returns its combined
// output. The default implementation shells out; tests substitute it.
type CommandRunner interface {
	Run(ctx context.Context, dir, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

// Builder resolves artifact specs against the Foundry project,
// recompiling when a spec pins optimizer settings.
type Builder struct {
	cfg    *config.RuntimeConfig
	repo   usecase.ContractRepository
	runner CommandRunner
	log    *slog.Logger

	// forge rewrites out/ in place, so builds are serialized and
	// deduplicated per build key.
	buildMu sync.Mutex
	group   singleflight.Group
	cache   sync.Map
}

// NewBuilder creates a new artifact builder
func NewBuilder(cfg *config.RuntimeConfig, repo usecase.ContractRepository, log *slog.Logger) *Builder {
	return &Builder{
		cfg:    cfg,
		repo:   repo,
		runner: execRunner{},
		log:    log.With("component", "ForgeBuilder"),
	}
}

var _ usecase.ArtifactResolver = (*Builder)(nil)

// EnsureArtifact returns the compiled contract for a spec. Pinned kinds
// read straight from the pinned artifact store, plain references from the
// current build output. A spec with optimizer runs triggers a fresh
// forge build with that setting; concurrent requests for the same key
// share one build.
func (b *Builder) EnsureArtifact(ctx context.Context, spec domain.ArtifactSpec) (*models.Contract, error) {
	if spec.Kind != "" {
		return b.repo.GetPinnedContract(ctx, spec.Kind, spec.Reference)
	}
	if spec.OptimizerRuns == "" {
		return b.repo.GetContract(ctx, spec.Reference)
	}

	runs, err := domain.ParseOptimizerRuns(spec.OptimizerRuns)
	if err != nil {
		return nil, err
	}

	key := spec.Reference + "@" + strconv.Itoa(runs)
	if cached, ok := b.cache.Load(key); ok {
		return cached.(*models.Contract), nil
	}

	contract, err, _ := b.group.Do(key, func() (interface{}, error) {
		return b.buildAndLoad(ctx, spec.Reference, runs)
	})
	if err != nil {
		return nil, err
	}
	b.cache.Store(key, contract.(*models.Contract))
	return contract.(*models.Contract), nil
}

// buildAndLoad recompiles the project with the requested optimizer runs
// and reads the resulting artifact back through the repository.
func (b *Builder) buildAndLoad(ctx context.Context, reference string, runs int) (*models.Contract, error) {
	b.buildMu.Lock()
	defer b.buildMu.Unlock()

	start := time.Now()
	args := []string{"build", "--optimizer-runs", strconv.Itoa(runs)}
	b.log.Debug("running forge build", "dir", b.cfg.ProjectRoot, "args", args)

	output, err := b.runner.Run(ctx, b.cfg.ProjectRoot, "forge", args...)
	if err != nil {
		b.log.Error("forge build failed", "error", err, "output", string(output), "duration", time.Since(start))
		return nil, fmt.Errorf("forge build failed: %w\nOutput: %s", err, string(output))
	}
	b.log.Debug("forge build completed", "duration", time.Since(start))

	if err := b.repo.Refresh(ctx); err != nil {
		return nil, fmt.Errorf("reload artifacts after build: %w", err)
	}
	return b.repo.GetContract(ctx, reference)
}
