package utils

import (
	"crypto/rand"

	"github.com/codedrop-dev/codedrop/internal/domain"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// GenerateCode returns a new batch code: CodeLength characters drawn
// uniformly from the 62-character alphanumeric alphabet. Uniqueness is
// not guaranteed here; the store rejects duplicates and the caller
// regenerates on the rare collision.
func GenerateCode() string {
	out := make([]byte, 0, domain.CodeLength)
	var buf [16]byte
	for len(out) < domain.CodeLength {
		if _, err := rand.Read(buf[:]); err != nil {
			// crypto/rand only fails when the OS entropy source is broken
			panic("utils: reading random source: " + err.Error())
		}
		for _, b := range buf {
			// rejection sampling keeps the per-character selection uniform:
			// 248 is the largest multiple of len(codeAlphabet) below 256
			if b >= 248 {
				continue
			}
			out = append(out, codeAlphabet[int(b)%len(codeAlphabet)])
			if len(out) == domain.CodeLength {
				break
			}
		}
	}
	return string(out)
}
