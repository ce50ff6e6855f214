// Package objkey implements the key abstraction (C1): a stable, fast,
// non-cryptographic hash over arbitrary comparable key types, used by
// cache.Sharded to pick a shard and by policy/lrumad's eviction tie-break;
// the core otherwise treats keys as pure opaque comparable values.
package objkey

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Hashable lets a structured key type (a flow tuple, a block identifier)
// supply its own stable hash instead of going through the generic
// type-switch below. Keys that satisfy this interface are always hashed via
// Hash(), regardless of their underlying Go type.
type Hashable interface {
	Hash() uint64
}

// Hash computes a process-stable, well-distributed 64-bit hash of k.
// It is deliberately not cryptographic: xxhash is chosen for the same
// reason ahash is chosen in the reference implementation — raw speed on the
// simulator's and the sharded dispatcher's hot path.
//
// Supported without reflection: Hashable, string, []byte, and every
// built-in integer width. Anything else falls back to hashing its %v
// formatting, which is slow and only meant as a development aid — real key
// types should implement Hashable.
func Hash[K comparable](k K) uint64 {
	switch v := any(k).(type) {
	case Hashable:
		return v.Hash()
	case string:
		return xxhash.Sum64String(v)
	case []byte:
		return xxhash.Sum64(v)
	case uint64:
		return hashUint64(v)
	case uint32:
		return hashUint64(uint64(v))
	case uint16:
		return hashUint64(uint64(v))
	case uint8:
		return hashUint64(uint64(v))
	case uint:
		return hashUint64(uint64(v))
	case uintptr:
		return hashUint64(uint64(v))
	case int64:
		return hashUint64(uint64(v))
	case int32:
		return hashUint64(uint64(uint32(v)))
	case int16:
		return hashUint64(uint64(uint16(v)))
	case int8:
		return hashUint64(uint64(uint8(v)))
	case int:
		return hashUint64(uint64(v))
	default:
		return xxhash.Sum64String(fmt.Sprintf("%v", k))
	}
}

func hashUint64(u uint64) uint64 {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], u)
	return xxhash.Sum64(b[:])
}
