package bytecode

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Library placeholders occupy 20 bytes, 40 hex characters. New-style
// placeholders wrap a 34-char keccak prefix in __$...$__, old solc versions
// padded the library identifier with underscores instead.
const placeholderWidth = 40

var (
	placeholderRe     = regexp.MustCompile(`__(\$[0-9a-fA-F]{34}\$|[A-Za-z0-9_.:/$-]{36})__`)
	zeroedPlaceholder = strings.Repeat("0", placeholderWidth)
)

// DecodeArtifactCode decodes the hex object field of an artifact bytecode
// section. Unlinked artifacts embed textual library placeholders inside the
// hex, which would otherwise fail decoding; placeholders become zero bytes
// here and the affected ranges are handled through link references.
func DecodeArtifactCode(object string) ([]byte, error) {
	s := placeholderRe.ReplaceAllString(object, zeroedPlaceholder)
	if !strings.HasPrefix(s, "0x") {
		s = "0x" + s
	}
	code, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("decode artifact bytecode: %w", err)
	}
	return code, nil
}

// Site is a byte range inside bytecode holding deployment-specific data.
// Name carries the fully qualified library name for link sites and is empty
// for immutable sites.
type Site struct {
	Name   string
	Start  int
	Length int
}

func (s Site) end(size int) (int, bool) {
	if s.Start < 0 || s.Length <= 0 || s.Start+s.Length > size {
		return 0, false
	}
	return s.Start + s.Length, true
}

// NormalizeRefs describes which ranges Normalize rewrites. Addresses maps
// fully qualified library names to their linked deployment addresses.
type NormalizeRefs struct {
	LinkSites      []Site
	ImmutableSites []Site
	Addresses      map[string]common.Address
}

// Normalize rewrites deployment-specific ranges so two bytecodes become
// comparable: link sites are set to the supplied library address, or zeroed
// when none is known, and immutable sites are always zeroed. The same refs
// are applied to the compiled and the on-chain side, and a second pass over
// already-normalized code changes nothing. Sites that fall outside the code
// are skipped; a length mismatch surfaces as a comparison failure anyway.
func Normalize(code []byte, refs NormalizeRefs) []byte {
	out := bytes.Clone(code)
	for _, site := range refs.LinkSites {
		end, ok := site.end(len(out))
		if !ok {
			continue
		}
		if addr, found := refs.Addresses[site.Name]; found && site.Length == common.AddressLength {
			copy(out[site.Start:end], addr.Bytes())
		} else {
			clear(out[site.Start:end])
		}
	}
	for _, site := range refs.ImmutableSites {
		if end, ok := site.end(len(out)); ok {
			clear(out[site.Start:end])
		}
	}
	return out
}
