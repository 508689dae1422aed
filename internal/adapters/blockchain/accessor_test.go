package blockchain

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trebuchet-org/treb-audit/internal/config"
	"github.com/trebuchet-org/treb-audit/internal/domain"
)

func newTestAccessor(network *config.Network) *AccessorAdapter {
	cfg := &config.RuntimeConfig{Network: network}
	return NewAccessorAdapter(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestAccessor_NoNetwork(t *testing.T) {
	a := newTestAccessor(nil)
	ctx := context.Background()

	_, err := a.RuntimeCode(ctx, common.Address{})
	assert.ErrorIs(t, err, domain.ErrNoNetwork)

	_, err = a.CreationInfo(ctx, common.Hash{})
	assert.ErrorIs(t, err, domain.ErrNoNetwork)

	_, err = a.DeploymentTrace(ctx, common.Hash{})
	assert.ErrorIs(t, err, domain.ErrNoNetwork)
}

func TestFlattenFrames(t *testing.T) {
	factory := common.HexToAddress("0xfac7fac7fac7fac7fac7fac7fac7fac7fac7fac7")
	oracle := common.HexToAddress("0x0123012301230123012301230123012301230123")
	target := common.HexToAddress("0x5fbdb2315678afecb367f032d93f642f64180aa3")

	root := callFrame{
		Type:  "CALL",
		To:    &factory,
		Input: []byte{0xca, 0x11},
		Calls: []callFrame{
			{Type: "STATICCALL", To: &oracle, Input: []byte{0x01}},
			{Type: "CREATE2", To: &target, Input: []byte{0x60, 0x80}},
		},
	}

	trace := &domain.DeploymentTrace{}
	flattenFrames(&root, nil, trace)

	require.Len(t, trace.Arena, 3)

	assert.Nil(t, trace.Arena[0].Parent)
	assert.Equal(t, domain.FrameCall, trace.Arena[0].Kind)
	assert.Equal(t, []int{1, 2}, trace.Arena[0].Children)

	require.NotNil(t, trace.Arena[1].Parent)
	assert.Equal(t, 0, *trace.Arena[1].Parent)
	assert.Equal(t, "STATICCALL", trace.Arena[1].Kind)

	require.NotNil(t, trace.Arena[2].Parent)
	assert.Equal(t, 0, *trace.Arena[2].Parent)
	assert.Equal(t, domain.FrameCreate2, trace.Arena[2].Kind)
	assert.Equal(t, target, trace.Arena[2].To)
}

func TestFlattenFrames_FrameWithoutTo(t *testing.T) {
	// A CREATE frame that reverted before an address was assigned has no
	// "to" in the tracer output.
	root := callFrame{Type: "CREATE", Error: "out of gas"}

	trace := &domain.DeploymentTrace{}
	flattenFrames(&root, nil, trace)

	require.Len(t, trace.Arena, 1)
	assert.Equal(t, common.Address{}, trace.Arena[0].To)
	assert.Equal(t, "out of gas", trace.Arena[0].Error)
}

func TestFlattenFrames_CallTracerPayload(t *testing.T) {
	// Shape of a factory deployment as the callTracer reports it.
	payload := `{
		"type": "CALL",
		"from": "0x00000000000000000000000000000000000000aa",
		"to":   "0xfac7fac7fac7fac7fac7fac7fac7fac7fac7fac7",
		"input": "0xca110000",
		"calls": [
			{
				"type": "CREATE2",
				"from": "0xfac7fac7fac7fac7fac7fac7fac7fac7fac7fac7",
				"to":   "0x5fbdb2315678afecb367f032d93f642f64180aa3",
				"input": "0x60806040",
				"output": "0x6080"
			}
		]
	}`

	var root callFrame
	require.NoError(t, json.Unmarshal([]byte(payload), &root))

	trace := &domain.DeploymentTrace{TxHash: common.HexToHash("0x01")}
	flattenFrames(&root, nil, trace)

	target := common.HexToAddress("0x5fbdb2315678afecb367f032d93f642f64180aa3")
	input, err := trace.CreationBytecode(target)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x60, 0x80, 0x60, 0x40}, []byte(input))

	frame, err := trace.CreationFrame(target)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0xfac7fac7fac7fac7fac7fac7fac7fac7fac7fac7"), frame.From)
}
