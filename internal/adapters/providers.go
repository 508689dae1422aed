package adapters

import (
	"github.com/google/wire"
	"github.com/trebuchet-org/treb-audit/internal/adapters/blockchain"
	"github.com/trebuchet-org/treb-audit/internal/adapters/forge"
	"github.com/trebuchet-org/treb-audit/internal/adapters/fs"
	"github.com/trebuchet-org/treb-audit/internal/adapters/interactive"
	"github.com/trebuchet-org/treb-audit/internal/adapters/manifest"
	"github.com/trebuchet-org/treb-audit/internal/adapters/progress"
	"github.com/trebuchet-org/treb-audit/internal/config"
	"github.com/trebuchet-org/treb-audit/internal/usecase"
)

// ProvideProgressSink selects the progress reporter. Spinners only make
// sense on an interactive run; JSON output has to stay clean for parsers.
func ProvideProgressSink(cfg *config.RuntimeConfig) usecase.ProgressSink {
	if cfg.NonInteractive || cfg.JSON {
		return usecase.NopProgress{}
	}
	return progress.NewSpinnerSink()
}

// FSSet provides filesystem-based implementations
var FSSet = wire.NewSet(
	fs.NewArtifactRepository,
	wire.Bind(new(usecase.ContractRepository), new(*fs.ArtifactRepository)),
)

// ForgeSet provides forge-based implementations
var ForgeSet = wire.NewSet(
	forge.NewBuilder,
	wire.Bind(new(usecase.ArtifactResolver), new(*forge.Builder)),
)

// ManifestSet provides manifest loading
var ManifestSet = wire.NewSet(
	manifest.NewLoader,
	wire.Bind(new(usecase.ManifestLoader), new(*manifest.Loader)),
)

// InteractiveSet provides interactive implementations
var InteractiveSet = wire.NewSet(
	interactive.NewSelectorAdapter,
	wire.Bind(new(usecase.ArtifactSelector), new(*interactive.SelectorAdapter)),
)

// BlockchainSet provides blockchain-based implementations
var BlockchainSet = wire.NewSet(
	blockchain.NewAccessorAdapter,
	wire.Bind(new(usecase.ChainAccessor), new(*blockchain.AccessorAdapter)),
)

// AllAdapters includes all adapter sets
var AllAdapters = wire.NewSet(
	// Provider functions
	ProvideProgressSink,

	// Adapter sets
	FSSet,
	ForgeSet,
	ManifestSet,
	InteractiveSet,
	BlockchainSet,
)
