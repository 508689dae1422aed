package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors for domain operations
var (
	// ErrNotFound is returned when a requested resource doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrArtifactNotFound is returned when no compiled artifact matches a reference
	ErrArtifactNotFound = errors.New("artifact not found")

	// ErrNoCode is returned when the target address holds no runtime code
	ErrNoCode = errors.New("no code at address")

	// ErrCreationNotFound is returned when a deployment trace contains no
	// creation frame for the target address
	ErrCreationNotFound = errors.New("creation frame not found in trace")

	// ErrNoNetwork is returned when an operation needs an RPC endpoint but
	// none was selected
	ErrNoNetwork = errors.New("no network selected (use --network or --rpc-url)")

	// ErrInvalidAddress is returned when an Ethereum address is invalid
	ErrInvalidAddress = errors.New("invalid address")
)

// InvalidRequestErr reports a verification request that failed validation.
// Requests are validated in full before any compiler or RPC work starts.
type InvalidRequestErr struct {
	Field  string
	Reason string
}

func (e InvalidRequestErr) Error() string {
	return fmt.Sprintf("invalid request: %s: %s", e.Field, e.Reason)
}

type AmbiguousArtifactErr struct {
	Reference string
	Matches   []string
}

func (e AmbiguousArtifactErr) Error() string {
	// Sort matches for consistent output
	sorted := make([]string, len(e.Matches))
	copy(sorted, e.Matches)
	sort.Strings(sorted)

	var suggestions []string
	for _, name := range sorted {
		suggestions = append(suggestions, fmt.Sprintf("  - %s", name))
	}

	return fmt.Sprintf("multiple artifacts found matching %q - use full path:contract format to disambiguate:\n%s",
		e.Reference, strings.Join(suggestions, "\n"))
}
