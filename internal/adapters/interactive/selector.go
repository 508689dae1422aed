package interactive

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"github.com/sahilm/fuzzy"

	"github.com/trebuchet-org/treb-audit/internal/config"
	"github.com/trebuchet-org/treb-audit/internal/usecase"
)

// SelectorAdapter prompts the user to pick between artifact references.
type SelectorAdapter struct {
	cfg *config.RuntimeConfig
}

// NewSelectorAdapter creates a new selector adapter
func NewSelectorAdapter(cfg *config.RuntimeConfig) *SelectorAdapter {
	return &SelectorAdapter{cfg: cfg}
}

var _ usecase.ArtifactSelector = (*SelectorAdapter)(nil)

// SelectArtifact asks the user to pick one of the candidate references.
func (s *SelectorAdapter) SelectArtifact(ctx context.Context, candidates []string, prompt string) (string, error) {
	if s.cfg.NonInteractive {
		return "", fmt.Errorf("interactive selection not available in non-interactive mode")
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("no artifacts provided for selection")
	}
	if len(candidates) == 1 {
		return candidates[0], nil
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "▸ {{ . | cyan }}",
		Inactive: "  {{ . | faint }}",
		Selected: "✓ {{ . | green }}",
		Help:     color.New(color.FgYellow).Sprint("Use arrow keys to navigate, Enter to select"),
	}

	promptSelect := promptui.Select{
		Label:             prompt,
		Items:             candidates,
		Templates:         templates,
		Size:              10,
		StartInSearchMode: true,
		Searcher:          fuzzySearchFunc(candidates),
	}

	index, _, err := promptSelect.Run()
	if err != nil {
		return "", fmt.Errorf("selection cancelled: %w", err)
	}
	return candidates[index], nil
}

// fuzzySearchFunc creates a fuzzy search function for promptui
func fuzzySearchFunc(items []string) func(input string, index int) bool {
	return func(input string, index int) bool {
		// Empty search shows all items
		if input == "" {
			return true
		}

		input = strings.ToLower(input)
		item := strings.ToLower(items[index])

		// First try simple substring match
		if strings.Contains(item, input) {
			return true
		}

		// Then try fuzzy match
		pattern := fuzzy.Find(input, []string{item})
		return len(pattern) > 0
	}
}
