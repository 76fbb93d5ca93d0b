package utils

import (
	"crypto/md5"
	"fmt"
	"hash/fnv"
)

// HashString is a hex digest for cache keys, not for anything secret.
func HashString(input string) string {
	hash := md5.Sum([]byte(input))
	return fmt.Sprintf("%x", hash)
}

// Pick maps input onto [0, n) so the same input always selects the same
// element. n must be positive.
func Pick(input string, n int) int {
	h := fnv.New32a()
	h.Write([]byte(input))
	return int(h.Sum32() % uint32(n))
}
