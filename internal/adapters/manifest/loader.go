package manifest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/trebuchet-org/treb-audit/internal/domain"
	"github.com/trebuchet-org/treb-audit/internal/usecase"
)

// Loader reads audit manifests from disk.
type Loader struct{}

// NewLoader creates a new manifest loader
func NewLoader() *Loader {
	return &Loader{}
}

var _ usecase.ManifestLoader = (*Loader)(nil)

// Load parses the YAML manifest at path. Unknown keys are rejected; a
// typoed field silently dropping a check would make a passing audit
// meaningless.
func (l *Loader) Load(ctx context.Context, path string) (*domain.AuditManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var manifest domain.AuditManifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&manifest); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	return &manifest, nil
}
