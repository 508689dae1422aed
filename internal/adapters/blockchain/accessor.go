package blockchain

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/trebuchet-org/treb-audit/internal/config"
	"github.com/trebuchet-org/treb-audit/internal/domain"
	"github.com/trebuchet-org/treb-audit/internal/usecase"
)

const (
	callTimeout  = 5 * time.Second
	traceTimeout = 30 * time.Second
)

// AccessorAdapter reads on-chain state over JSON-RPC. The connection is
// opened on first use, so runs that never touch the chain (bytecode
// captures) work without a network.
type AccessorAdapter struct {
	cfg *config.RuntimeConfig
	log *slog.Logger

	mu     sync.Mutex
	rpc    *rpc.Client
	client *ethclient.Client
}

// NewAccessorAdapter creates a new chain accessor
func NewAccessorAdapter(cfg *config.RuntimeConfig, log *slog.Logger) *AccessorAdapter {
	return &AccessorAdapter{
		cfg: cfg,
		log: log.With("component", "ChainAccessor"),
	}
}

var _ usecase.ChainAccessor = (*AccessorAdapter)(nil)

func (a *AccessorAdapter) connect(ctx context.Context) (*ethclient.Client, *rpc.Client, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.client != nil {
		return a.client, a.rpc, nil
	}
	if a.cfg.Network == nil {
		return nil, nil, domain.ErrNoNetwork
	}

	rpcClient, err := rpc.DialContext(ctx, a.cfg.Network.RPCURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to RPC: %w", err)
	}
	a.rpc = rpcClient
	a.client = ethclient.NewClient(rpcClient)
	a.log.Debug("connected to RPC", "network", a.cfg.Network.Name)
	return a.client, a.rpc, nil
}

// RuntimeCode returns the code deployed at the address, at the latest block.
func (a *AccessorAdapter) RuntimeCode(ctx context.Context, address common.Address) (hexutil.Bytes, error) {
	client, _, err := a.connect(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	code, err := client.CodeAt(ctx, address, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get code at %s: %w", address.Hex(), err)
	}
	return code, nil
}

// CreationInfo fetches the transaction, plus the receipt when the
// transaction deployed a contract directly.
func (a *AccessorAdapter) CreationInfo(ctx context.Context, txHash common.Hash) (*domain.CreationInfo, error) {
	client, _, err := a.connect(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	tx, isPending, err := client.TransactionByHash(ctx, txHash)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction %s: %w", txHash.Hex(), err)
	}
	if isPending {
		return nil, fmt.Errorf("transaction %s is still pending", txHash.Hex())
	}

	info := &domain.CreationInfo{
		TxHash: txHash,
		Input:  tx.Data(),
		To:     tx.To(),
	}
	if info.IsDeployment() {
		receipt, err := client.TransactionReceipt(ctx, txHash)
		if err != nil {
			return nil, fmt.Errorf("failed to get receipt for %s: %w", txHash.Hex(), err)
		}
		info.ContractAddress = receipt.ContractAddress
	}
	return info, nil
}

// DeploymentTrace runs the node's callTracer over the transaction and
// flattens the call tree into an arena.
func (a *AccessorAdapter) DeploymentTrace(ctx context.Context, txHash common.Hash) (*domain.DeploymentTrace, error) {
	_, rpcClient, err := a.connect(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, traceTimeout)
	defer cancel()

	var root callFrame
	if err := rpcClient.CallContext(ctx, &root, "debug_traceTransaction", txHash,
		map[string]any{"tracer": "callTracer"}); err != nil {
		return nil, fmt.Errorf("failed to trace transaction %s: %w", txHash.Hex(), err)
	}

	trace := &domain.DeploymentTrace{TxHash: txHash}
	flattenFrames(&root, nil, trace)
	return trace, nil
}

// callFrame mirrors the callTracer output of debug_traceTransaction.
type callFrame struct {
	Type   string          `json:"type"`
	From   common.Address  `json:"from"`
	To     *common.Address `json:"to,omitempty"`
	Input  hexutil.Bytes   `json:"input"`
	Output hexutil.Bytes   `json:"output,omitempty"`
	Error  string          `json:"error,omitempty"`
	Calls  []callFrame     `json:"calls,omitempty"`
}

// flattenFrames appends the frame and then its children to the arena, so
// the arena keeps the tracer's recorded order.
func flattenFrames(frame *callFrame, parent *int, trace *domain.DeploymentTrace) {
	idx := len(trace.Arena)
	var to common.Address
	if frame.To != nil {
		to = *frame.To
	}
	trace.Arena = append(trace.Arena, domain.TraceFrame{
		Idx:    idx,
		Parent: parent,
		Kind:   strings.ToUpper(frame.Type),
		From:   frame.From,
		To:     to,
		Input:  frame.Input,
		Output: frame.Output,
		Error:  frame.Error,
	})
	if parent != nil {
		trace.Arena[*parent].Children = append(trace.Arena[*parent].Children, idx)
	}
	for i := range frame.Calls {
		flattenFrames(&frame.Calls[i], &idx, trace)
	}
}
