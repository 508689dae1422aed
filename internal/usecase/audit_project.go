package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/trebuchet-org/treb-audit/internal/config"
	"github.com/trebuchet-org/treb-audit/internal/domain"
)

// DefaultAuditConcurrency bounds parallel manifest entries when the caller
// does not pick a limit.
const DefaultAuditConcurrency = 4

// AuditProject verifies every entry of an audit manifest.
type AuditProject struct {
	cfg       *config.RuntimeConfig
	manifests ManifestLoader
	verify    *VerifyContract
	progress  ProgressSink
	log       *slog.Logger
}

// NewAuditProject creates a new audit project use case
func NewAuditProject(
	cfg *config.RuntimeConfig,
	manifests ManifestLoader,
	verify *VerifyContract,
	progress ProgressSink,
	log *slog.Logger,
) *AuditProject {
	return &AuditProject{
		cfg:       cfg,
		manifests: manifests,
		verify:    verify,
		progress:  progress,
		log:       log.With("component", "audit"),
	}
}

// AuditParams contains parameters for a manifest run
type AuditParams struct {
	ManifestPath string
	Concurrency  int
}

// AuditEntry is the outcome of a single manifest target.
type AuditEntry struct {
	Target domain.AuditTarget
	Report *domain.Report
	Err    error
}

// Passed reports whether the entry ran cleanly and every check matched.
func (e *AuditEntry) Passed() bool {
	return e.Err == nil && e.Report.Verified()
}

// AuditResult contains the result of running a manifest
type AuditResult struct {
	ManifestPath string
	Network      string
	Entries      []AuditEntry
	Passed       int
	Failed       int
	Errored      int
}

// Success reports whether every entry verified.
func (r *AuditResult) Success() bool {
	return r.Failed == 0 && r.Errored == 0
}

// Run loads the manifest and verifies every target. Targets run
// concurrently; a failed or errored entry is recorded in its slot and never
// stops the others. Only manifest-level problems abort the run.
func (uc *AuditProject) Run(ctx context.Context, params AuditParams) (*AuditResult, error) {
	manifest, err := uc.manifests.Load(ctx, params.ManifestPath)
	if err != nil {
		return nil, err
	}
	if len(manifest.Targets) == 0 {
		return nil, fmt.Errorf("manifest %s has no targets", params.ManifestPath)
	}
	if manifest.Network != "" && uc.cfg.Network != nil && uc.cfg.Network.Name != manifest.Network {
		return nil, fmt.Errorf("manifest pins network %q but %q is selected",
			manifest.Network, uc.cfg.Network.Name)
	}

	defaultMode, err := manifest.DefaultMode()
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", params.ManifestPath, err)
	}

	// Fail on a malformed target before any entry has run.
	requests := make([]*domain.VerifyRequest, len(manifest.Targets))
	for i, target := range manifest.Targets {
		req, err := target.Request(defaultMode)
		if err != nil {
			return nil, fmt.Errorf("manifest target %s: %w", target.Name(), err)
		}
		requests[i] = req
	}

	concurrency := params.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultAuditConcurrency
	}

	uc.log.Debug("starting audit",
		"manifest", params.ManifestPath,
		"targets", len(requests),
		"concurrency", concurrency,
	)

	entries := make([]AuditEntry, len(manifest.Targets))
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i := range requests {
		g.Go(func() error {
			report, err := uc.verify.Run(gctx, requests[i])
			entries[i] = AuditEntry{Target: manifest.Targets[i], Report: report, Err: err}
			if err != nil {
				uc.log.Debug("audit entry errored", "target", manifest.Targets[i].Name(), "error", err)
			}
			uc.progress.OnProgress(gctx, ProgressEvent{
				Stage:   "audit",
				Current: int(done.Add(1)),
				Total:   len(requests),
				Message: manifest.Targets[i].Name(),
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &AuditResult{
		ManifestPath: params.ManifestPath,
		Network:      manifest.Network,
		Entries:      entries,
	}
	for i := range entries {
		switch {
		case entries[i].Err != nil:
			result.Errored++
		case entries[i].Report.Verified():
			result.Passed++
		default:
			result.Failed++
		}
	}

	uc.log.Debug("audit finished",
		"passed", result.Passed,
		"failed", result.Failed,
		"errored", result.Errored,
	)
	return result, nil
}
