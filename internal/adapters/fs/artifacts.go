package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/trebuchet-org/treb-audit/internal/config"
	"github.com/trebuchet-org/treb-audit/internal/domain"
	"github.com/trebuchet-org/treb-audit/internal/domain/models"
	"github.com/trebuchet-org/treb-audit/internal/usecase"
)

// ArtifactRepository indexes Foundry build artifacts and pinned reference
// artifacts on disk.
type ArtifactRepository struct {
	cfg *config.RuntimeConfig
	log *slog.Logger

	mu     sync.RWMutex
	byKey  map[string]*models.Contract   // "path:Name", plus bare name when unique
	byName map[string][]*models.Contract // every artifact sharing a bare name
}

// NewArtifactRepository creates the repository and builds the initial index
func NewArtifactRepository(cfg *config.RuntimeConfig, log *slog.Logger) (*ArtifactRepository, error) {
	r := &ArtifactRepository{
		cfg: cfg,
		log: log.With("component", "ArtifactRepository"),
	}
	if err := r.Refresh(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to build artifact index: %w", err)
	}
	return r, nil
}

var _ usecase.ContractRepository = (*ArtifactRepository)(nil)

// Refresh rebuilds the index from the build output directory. A project
// that has never been built yields an empty index, not an error.
func (r *ArtifactRepository) Refresh(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byKey = make(map[string]*models.Contract)
	r.byName = make(map[string][]*models.Contract)

	outDir := r.cfg.OutDir()
	if _, err := os.Stat(outDir); os.IsNotExist(err) {
		r.log.Debug("build output directory missing", "dir", outDir)
		return nil
	}

	err := filepath.Walk(outDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		// Skip build info files
		if strings.Contains(path, "build-info") {
			return nil
		}
		contract, err := loadArtifact(path)
		if err != nil {
			r.log.Debug("skipping unreadable artifact", "path", path, "error", err)
			return nil
		}
		if contract != nil {
			r.index(contract)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("index artifacts in %s: %w", outDir, err)
	}

	r.log.Debug("artifact index built", "dir", outDir, "contracts", len(r.byName))
	return nil
}

// index registers a contract under its full key, and under its bare name
// while that stays unique. Callers hold the write lock.
func (r *ArtifactRepository) index(contract *models.Contract) {
	fullKey := contract.FullyQualifiedName()
	if _, dup := r.byKey[fullKey]; dup {
		// Versioned duplicate of an already-indexed artifact
		// (out/Foo.sol/Foo.json vs Foo.0.8.21.json).
		return
	}
	r.byKey[fullKey] = contract

	if existing, ok := r.byName[contract.Name]; ok {
		r.byName[contract.Name] = append(existing, contract)
		delete(r.byKey, contract.Name)
	} else {
		r.byName[contract.Name] = []*models.Contract{contract}
		r.byKey[contract.Name] = contract
	}
}

// GetContract retrieves a contract by bare name or path:Name reference.
func (r *ArtifactRepository) GetContract(ctx context.Context, key string) (*models.Contract, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if contract, ok := r.byKey[key]; ok {
		return contract, nil
	}
	if matches := r.byName[key]; len(matches) > 1 {
		names := make([]string, len(matches))
		for i, m := range matches {
			names[i] = m.FullyQualifiedName()
		}
		sort.Strings(names)
		return nil, domain.AmbiguousArtifactErr{Reference: key, Matches: names}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrArtifactNotFound, key)
}

// GetPinnedContract loads a pinned reference artifact from
// artifacts/<kind>/<Name>.json. Pinned artifacts are plain Foundry
// artifacts vendored into the repository at release time.
func (r *ArtifactRepository) GetPinnedContract(ctx context.Context, kind, key string) (*models.Contract, error) {
	name := key
	if idx := strings.LastIndex(key, ":"); idx >= 0 {
		name = key[idx+1:]
	}

	path := filepath.Join(r.cfg.PinnedArtifactsDir(), kind, name+".json")
	contract, err := loadArtifact(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: no pinned %q artifact for %s", domain.ErrArtifactNotFound, kind, name)
		}
		return nil, fmt.Errorf("pinned artifact %s: %w", path, err)
	}
	if contract == nil {
		return nil, fmt.Errorf("pinned artifact %s has no compilation target", path)
	}
	return contract, nil
}

// SearchContracts returns every indexed contract whose name or source path
// contains the pattern, sorted by fully qualified name. An empty pattern
// lists everything.
func (r *ArtifactRepository) SearchContracts(ctx context.Context, pattern string) []*models.Contract {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lowPattern := strings.ToLower(pattern)
	var results []*models.Contract
	for _, list := range r.byName {
		for _, contract := range list {
			if strings.Contains(strings.ToLower(contract.Name), lowPattern) ||
				strings.Contains(strings.ToLower(contract.Path), lowPattern) {
				results = append(results, contract)
			}
		}
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].FullyQualifiedName() < results[j].FullyQualifiedName()
	})
	return results
}

// loadArtifact parses one Foundry artifact file. Files without a
// compilation target (build metadata, debug output) come back nil.
func loadArtifact(path string) (*models.Contract, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var artifact models.Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("parse artifact: %w", err)
	}

	// Contract name and source live in the compilation target; there
	// should only be one entry.
	var name, source string
	for src, contract := range artifact.Metadata.Settings.CompilationTarget {
		source, name = src, contract
		break
	}
	if name == "" {
		return nil, nil
	}

	return &models.Contract{
		Name:         name,
		Path:         source,
		ArtifactPath: path,
		Artifact:     &artifact,
	}, nil
}
