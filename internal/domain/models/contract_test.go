package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBytecodeObject_Sites(t *testing.T) {
	raw := `{
		"object": "0x6080",
		"linkReferences": {
			"src/Math.sol": {"Math": [{"start": 120, "length": 20}, {"start": 40, "length": 20}]},
			"src/Str.sol": {"Str": [{"start": 80, "length": 20}]}
		},
		"immutableReferences": {
			"2471": [{"start": 200, "length": 32}],
			"103": [{"start": 60, "length": 32}]
		}
	}`
	var obj BytecodeObject
	require.NoError(t, json.Unmarshal([]byte(raw), &obj))

	links := obj.LinkSites()
	require.Len(t, links, 3)
	assert.Equal(t, 40, links[0].Start)
	assert.Equal(t, "src/Math.sol:Math", links[0].Name)
	assert.Equal(t, 80, links[1].Start)
	assert.Equal(t, "src/Str.sol:Str", links[1].Name)
	assert.Equal(t, 120, links[2].Start)

	immutables := obj.ImmutableSites()
	require.Len(t, immutables, 2)
	assert.Equal(t, 60, immutables[0].Start)
	assert.Equal(t, 200, immutables[1].Start)
	assert.Empty(t, immutables[0].Name)
}

func TestContract_FullyQualifiedName(t *testing.T) {
	c := &Contract{Name: "Counter", Path: "src/Counter.sol"}
	assert.Equal(t, "src/Counter.sol:Counter", c.FullyQualifiedName())

	pinned := &Contract{Name: "Counter"}
	assert.Equal(t, "Counter", pinned.FullyQualifiedName())
}

func TestArtifact_HasBytecode(t *testing.T) {
	assert.False(t, (&Artifact{}).HasBytecode())
	assert.False(t, (&Artifact{Bytecode: BytecodeObject{Object: "0x"}}).HasBytecode())
	assert.True(t, (&Artifact{Bytecode: BytecodeObject{Object: "0x6080"}}).HasBytecode())
}
