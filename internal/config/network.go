package config

import (
	"fmt"
	"os"
)

// NetworkResolver resolves network selections to RPC targets
type NetworkResolver struct {
	projectRoot   string
	foundryConfig *FoundryConfig
}

// NewNetworkResolver creates a new network resolver
func NewNetworkResolver(projectRoot string, foundryConfig *FoundryConfig) *NetworkResolver {
	return &NetworkResolver{
		projectRoot:   projectRoot,
		foundryConfig: foundryConfig,
	}
}

// Resolve picks the RPC target for a run. An explicit URL wins over a named
// endpoint from foundry.toml [rpc_endpoints], which wins over ETH_RPC_URL.
// A nil network with nil error means nothing was selected; commands that
// need the chain surface that as an error when they first dial.
func (r *NetworkResolver) Resolve(name, urlOverride string) (*Network, error) {
	if urlOverride != "" {
		network := &Network{Name: name, RPCURL: os.ExpandEnv(urlOverride)}
		if network.Name == "" {
			network.Name = "custom"
		}
		return network, nil
	}

	if name != "" {
		url, ok := r.foundryConfig.RpcEndpoints[name]
		if !ok {
			return nil, fmt.Errorf("network %q not found in foundry.toml [rpc_endpoints]", name)
		}
		return &Network{Name: name, RPCURL: url}, nil
	}

	if url := os.Getenv("ETH_RPC_URL"); url != "" {
		return &Network{Name: "env", RPCURL: url}, nil
	}

	return nil, nil
}
