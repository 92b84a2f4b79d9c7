package rand

import (
	"crypto/rand"
	"encoding/binary"
)

// Int64 returns a random uint64 read from the crypto rand source.
func Int64() (uint64, error) {
	var buf [8]byte
	_, err := rand.Read(buf[:])

	return binary.LittleEndian.Uint64(buf[:]), err
}

// Intn returns a uniformly distributed random int in [0, n). n must be > 0.
func Intn(n int) (int, error) {
	v, err := Int64()
	if err != nil {
		return 0, err
	}
	return int(v % uint64(n)), nil
}
