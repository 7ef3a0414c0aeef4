package utils

import (
	"crypto/rand"
	"encoding/binary"

	"github.com/bytedance/gopkg/lang/fastrand"
)

const randStrAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// RandStr generates a cryptographically secure random alphanumeric string of
// length n. Used for trigger identifiers.
func RandStr(n int) string {
	if n <= 0 {
		return ""
	}

	b := make([]byte, n)
	for i := range b {
		b[i] = randStrAlphabet[cryptoRandIntn(len(randStrAlphabet))]
	}
	return string(b)
}

func cryptoRandIntn(max int) int {
	var buf [8]byte
	_, _ = rand.Read(buf[:])
	return int(binary.LittleEndian.Uint64(buf[:]) % uint64(max))
}

// Jitter returns a non-negative pseudo-random duration count below n.
// Fast, non-cryptographic; used to spread scheduler ticks.
func Jitter(n uint32) uint32 {
	if n == 0 {
		return 0
	}
	return fastrand.Uint32n(n)
}

func Truncate(content string, maxLen int) string {
	if len(content) <= maxLen {
		return content
	}
	return content[:maxLen] + "..."
}

func Truncate80(content string) string {
	return Truncate(content, 80)
}
