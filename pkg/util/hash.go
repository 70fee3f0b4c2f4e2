package util

import (
	"encoding/binary"
)

const (
	murmurM    uint64 = 0xc6a4a7935bd1e995
	murmurSeed uint64 = 0xe17a1465
	murmurR           = 47
)

// HashBytes is MurmurHash64A of data.
func HashBytes(data []byte) uint64 {
	h := murmurSeed ^ (uint64(len(data)) * murmurM)
	for len(data) >= 8 {
		k := binary.LittleEndian.Uint64(data)
		k *= murmurM
		k ^= k >> murmurR
		k *= murmurM
		h ^= k
		h *= murmurM
		data = data[8:]
	}
	if len(data) > 0 {
		for i := len(data) - 1; i >= 0; i-- {
			h ^= uint64(data[i]) << (8 * i)
		}
		h *= murmurM
	}
	h ^= h >> murmurR
	h *= murmurM
	h ^= h >> murmurR
	return h
}
