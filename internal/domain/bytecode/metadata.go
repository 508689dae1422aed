// Package bytecode implements the EVM bytecode transformations verification
// is built on: splitting the solc metadata trailer off runtime code and
// normalizing deployment-specific byte ranges.
package bytecode

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/fxamacker/cbor/v2"
)

var (
	// ErrNoMetadata is returned when bytecode carries no metadata trailer
	ErrNoMetadata = errors.New("bytecode has no metadata trailer")

	// ErrMetadataTruncated is returned when the trailing length field
	// claims more bytes than the bytecode holds
	ErrMetadataTruncated = errors.New("metadata trailer exceeds bytecode size")

	// ErrNoDocumentHash is returned when a trailer carries no source
	// document hash to compare against
	ErrNoDocumentHash = errors.New("metadata trailer carries no document hash")

	// ErrUnsupportedDocumentHash is returned when the trailer commits to a
	// document with a hash scheme we cannot recompute (swarm)
	ErrUnsupportedDocumentHash = errors.New("unsupported document hash scheme")
)

// sha256 multihash prefix: code 0x12, digest length 0x20
var sha256MultihashPrefix = []byte{0x12, 0x20}

// Metadata is the decoded CBOR trailer solc appends to bytecode. Raw holds
// the complete trailer (CBOR payload plus the 2-byte length suffix), so
// stripped code and Raw always reassemble into the original bytecode.
type Metadata struct {
	Raw          hexutil.Bytes `json:"raw"`
	Hash         common.Hash   `json:"hash"`
	IPFS         hexutil.Bytes `json:"ipfs,omitempty"`
	BzzR0        hexutil.Bytes `json:"bzzr0,omitempty"`
	BzzR1        hexutil.Bytes `json:"bzzr1,omitempty"`
	Solc         hexutil.Bytes `json:"solc,omitempty"`
	Experimental bool          `json:"experimental,omitempty"`
}

// SplitMetadata splits bytecode into the executable part and its decoded
// metadata trailer. The last two bytes are a big-endian length of the CBOR
// payload that precedes them; the returned code slice and the trailer
// partition the input exactly.
func SplitMetadata(code []byte) ([]byte, *Metadata, error) {
	if len(code) < 2 {
		return nil, nil, ErrNoMetadata
	}
	cborLen := int(binary.BigEndian.Uint16(code[len(code)-2:]))
	if cborLen == 0 {
		return nil, nil, ErrNoMetadata
	}
	if cborLen+2 > len(code) {
		return nil, nil, fmt.Errorf("%w: trailer wants %d bytes, bytecode has %d",
			ErrMetadataTruncated, cborLen+2, len(code))
	}

	split := len(code) - 2 - cborLen
	raw := bytes.Clone(code[split:])

	var fields map[string]cbor.RawMessage
	if err := cbor.Unmarshal(code[split:len(code)-2], &fields); err != nil {
		return nil, nil, fmt.Errorf("decode metadata trailer: %w", err)
	}

	meta := &Metadata{
		Raw:  raw,
		Hash: crypto.Keccak256Hash(raw),
	}
	for key, value := range fields {
		var err error
		switch key {
		case "ipfs":
			err = cbor.Unmarshal(value, &meta.IPFS)
		case "bzzr0":
			err = cbor.Unmarshal(value, &meta.BzzR0)
		case "bzzr1":
			err = cbor.Unmarshal(value, &meta.BzzR1)
		case "solc":
			err = decodeSolcVersion(value, &meta.Solc)
		case "experimental":
			err = cbor.Unmarshal(value, &meta.Experimental)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("decode metadata field %q: %w", key, err)
		}
	}

	return code[:split], meta, nil
}

// Release builds encode the version as 3 bytes, pre-release builds as a
// string.
func decodeSolcVersion(raw cbor.RawMessage, out *hexutil.Bytes) error {
	if err := cbor.Unmarshal(raw, out); err == nil {
		return nil
	}
	var s string
	if err := cbor.Unmarshal(raw, &s); err != nil {
		return err
	}
	*out = []byte(s)
	return nil
}

// SolcVersion renders the compiler version recorded in the trailer.
func (m *Metadata) SolcVersion() string {
	if len(m.Solc) == 3 {
		return fmt.Sprintf("%d.%d.%d", m.Solc[0], m.Solc[1], m.Solc[2])
	}
	return string(m.Solc)
}

// MatchesDocument reports whether the trailer's embedded hash commits to
// the given raw metadata document. Only ipfs (sha256 multihash) trailers
// can be recomputed; swarm hashes are reported as unsupported.
func (m *Metadata) MatchesDocument(doc []byte) (bool, error) {
	if len(m.IPFS) == 0 {
		if len(m.BzzR0) > 0 || len(m.BzzR1) > 0 {
			return false, fmt.Errorf("%w: trailer uses a swarm hash", ErrUnsupportedDocumentHash)
		}
		return false, ErrNoDocumentHash
	}
	if !bytes.HasPrefix(m.IPFS, sha256MultihashPrefix) {
		return false, fmt.Errorf("%w: multihash prefix %s", ErrUnsupportedDocumentHash, hexutil.Encode(m.IPFS[:min(2, len(m.IPFS))]))
	}
	return bytes.Equal(m.IPFS, DocumentHash(doc)), nil
}

// DocumentHash computes the sha256 multihash of a metadata document, the
// form solc embeds under the ipfs key.
func DocumentHash(doc []byte) []byte {
	digest := sha256.Sum256(doc)
	return append(bytes.Clone(sha256MultihashPrefix), digest[:]...)
}
