package objkey

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Opaque64 is the simplest key instantiation the boundary supplies: a bare
// 64-bit opaque identifier (e.g. an object id from a CDN access log).
type Opaque64 uint64

// Hash implements Hashable by routing through the shared uint64 hasher.
func (k Opaque64) Hash() uint64 { return hashUint64(uint64(k)) }

// FlowKey identifies a network flow by its 5-tuple, as used by packet-trace
// backed simulations (proj-preprocess's pcap_parser in the original
// implementation feeds keys of this shape into the core).
type FlowKey struct {
	SrcIP    uint32
	DstIP    uint32
	SrcPort  uint16
	DstPort  uint16
	Protocol uint8
}

// Hash packs the 5-tuple into its canonical 13-byte wire form and hashes
// that, so that two FlowKey values with the same fields always hash equal
// regardless of struct padding.
func (k FlowKey) Hash() uint64 {
	var b [13]byte
	binary.LittleEndian.PutUint32(b[0:4], k.SrcIP)
	binary.LittleEndian.PutUint32(b[4:8], k.DstIP)
	binary.LittleEndian.PutUint16(b[8:10], k.SrcPort)
	binary.LittleEndian.PutUint16(b[10:12], k.DstPort)
	b[12] = k.Protocol
	return sum(b[:])
}

// BlockKey identifies a storage block by the originating IRP pointer and
// disk number, as used by block-IO trace backed simulations (the MSR/MSN
// storage traces in the original implementation's proj-preprocess).
type BlockKey struct {
	IRPPtr  uint64
	DiskNum uint32
}

// Hash packs the pair into its canonical 12-byte wire form and hashes that.
func (k BlockKey) Hash() uint64 {
	var b [12]byte
	binary.LittleEndian.PutUint64(b[0:8], k.IRPPtr)
	binary.LittleEndian.PutUint32(b[8:12], k.DiskNum)
	return sum(b[:])
}

func sum(b []byte) uint64 {
	return xxhash.Sum64(b)
}
