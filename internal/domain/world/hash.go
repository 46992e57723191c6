package world

// Stable integer hashing for per-tile decisions. Nothing here touches
// math/rand so layouts never change between Go releases.

const (
	saltPresence uint64 = 0x243f6a8885a308d3
	saltType     uint64 = 0x13198a2e03707344
	saltCapacity uint64 = 0xa4093822299f31d0
)

// mix64 is the splitmix64 finalizer
func mix64(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

// hash2 hashes a seed, a salt and a full 64-bit coordinate pair.
// Multiplying by an odd constant is a bijection on uint64, so distinct
// coordinates never collapse before mixing.
func hash2(seed int64, salt uint64, x, y int64) uint64 {
	h := mix64(uint64(seed) ^ salt)
	h = mix64(h ^ (uint64(x) * 0x9e3779b97f4a7c15))
	h = mix64(h ^ (uint64(y) * 0xc2b2ae3d27d4eb4f))
	return h
}
