package app

import (
	"github.com/trebuchet-org/treb-audit/internal/config"
	"github.com/trebuchet-org/treb-audit/internal/usecase"
)

// App is the main application container that holds all use cases
type App struct {
	// Configuration
	Config *config.RuntimeConfig

	// Use cases
	VerifyContract *usecase.VerifyContract
	AuditProject   *usecase.AuditProject
	ListArtifacts  *usecase.ListArtifacts

	// Progress is exposed so commands can halt the spinner before
	// rendering results
	Progress usecase.ProgressSink
}

// NewApp creates a new application instance with all use cases
func NewApp(
	cfg *config.RuntimeConfig,
	verifyContract *usecase.VerifyContract,
	auditProject *usecase.AuditProject,
	listArtifacts *usecase.ListArtifacts,
	progress usecase.ProgressSink,
) (*App, error) {
	return &App{
		Config:         cfg,
		VerifyContract: verifyContract,
		AuditProject:   auditProject,
		ListArtifacts:  listArtifacts,
		Progress:       progress,
	}, nil
}
