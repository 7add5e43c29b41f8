package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"ownck/internal/borrowck"
	"ownck/internal/ir"
)

// Digest is a SHA-256 content hash.
type Digest [32]byte

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

func (d Digest) IsZero() bool {
	return d == Digest{}
}

// CacheKey: H(schema || canonical program || options). The program is
// hashed in its msgpack form, so the same IR from TOML, YAML or .oir shares a
// key.
func CacheKey(prog *ir.Program, opts borrowck.Options) (Digest, error) {
	progData, err := ir.MarshalProgram(prog)
	if err != nil {
		return Digest{}, fmt.Errorf("cache key: %w", err)
	}
	optData, err := msgpack.Marshal(&opts)
	if err != nil {
		return Digest{}, fmt.Errorf("cache key: %w", err)
	}
	h := sha256.New()
	_, _ = h.Write([]byte{byte(diskCacheSchemaVersion >> 8), byte(diskCacheSchemaVersion)})
	_, _ = h.Write(progData)
	_, _ = h.Write(optData)
	var out Digest
	copy(out[:], h.Sum(nil))
	return out, nil
}
