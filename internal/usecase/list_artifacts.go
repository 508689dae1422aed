package usecase

import (
	"context"
)

// ListArtifactsParams contains parameters for listing artifacts
type ListArtifactsParams struct {
	Filter string
}

// ListArtifacts is the use case for listing indexed artifacts
type ListArtifacts struct {
	repo ContractRepository
	sink ProgressSink
}

// NewListArtifacts creates a new ListArtifacts use case
func NewListArtifacts(repo ContractRepository, sink ProgressSink) *ListArtifacts {
	return &ListArtifacts{
		repo: repo,
		sink: sink,
	}
}

// Run executes the list artifacts use case. Results come back sorted by
// fully qualified name.
func (uc *ListArtifacts) Run(ctx context.Context, params ListArtifactsParams) (*ArtifactListResult, error) {
	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "loading",
		Message: "Indexing artifacts",
		Spinner: true,
	})

	contracts := uc.repo.SearchContracts(ctx, params.Filter)

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "complete",
		Current: len(contracts),
		Total:   len(contracts),
		Message: "Artifacts indexed",
	})

	return &ArtifactListResult{
		Contracts: contracts,
		Total:     len(contracts),
	}, nil
}
