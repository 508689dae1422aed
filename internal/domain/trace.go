package domain

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Frame kinds as reported by the callTracer
const (
	FrameCreate  = "CREATE"
	FrameCreate2 = "CREATE2"
	FrameCall    = "CALL"
)

// TraceFrame is one call frame of a transaction trace. Frames reference
// each other by arena index instead of by pointer so traces stay acyclic
// and serialize cleanly.
type TraceFrame struct {
	Idx      int            `json:"idx"`
	Parent   *int           `json:"parent,omitempty"`
	Children []int          `json:"children,omitempty"`
	Kind     string         `json:"kind"`
	From     common.Address `json:"from"`
	To       common.Address `json:"to"`
	Input    hexutil.Bytes  `json:"input"`
	Output   hexutil.Bytes  `json:"output,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// IsCreation reports whether the frame deployed a contract.
func (f *TraceFrame) IsCreation() bool {
	return f.Kind == FrameCreate || f.Kind == FrameCreate2
}

// DeploymentTrace is the flattened call tree of one transaction. Children
// are stored in the order the tracer recorded them.
type DeploymentTrace struct {
	TxHash common.Hash  `json:"txHash"`
	Arena  []TraceFrame `json:"arena"`
}

// CreationFrame finds the frame that deployed the given address. Frames are
// visited depth-first in recorded order, each frame before its children, and
// the first creation frame targeting the address wins. That makes lookups
// deterministic even when the address was deployed more than once in the
// same transaction.
func (t *DeploymentTrace) CreationFrame(address common.Address) (*TraceFrame, error) {
	// Roots are pushed in reverse so they pop in recorded order.
	var stack []int
	for idx := len(t.Arena) - 1; idx >= 0; idx-- {
		if t.Arena[idx].Parent == nil {
			stack = append(stack, idx)
		}
	}

	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if idx < 0 || idx >= len(t.Arena) {
			return nil, fmt.Errorf("corrupt trace: frame index %d out of range", idx)
		}
		frame := &t.Arena[idx]
		if frame.IsCreation() && frame.To == address {
			return frame, nil
		}
		for i := len(frame.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame.Children[i])
		}
	}

	return nil, fmt.Errorf("%w: no creation of %s in transaction %s",
		ErrCreationNotFound, address.Hex(), t.TxHash.Hex())
}

// CreationBytecode returns the creation input of the frame that deployed
// the given address.
func (t *DeploymentTrace) CreationBytecode(address common.Address) (hexutil.Bytes, error) {
	frame, err := t.CreationFrame(address)
	if err != nil {
		return nil, err
	}
	return frame.Input, nil
}
