// Package regkey generates the single-use keys instructors use to join a course.
package regkey

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
)

// Generator derives a registration key for the record identified by id.
type Generator interface {
	Generate(id string) (string, error)
}

// SecureRandom appends a random signed 32-bit integer to the id.
// Keys are not checked for uniqueness.
type SecureRandom struct {
	source io.Reader
}

// NewSecureRandom returns a generator backed by crypto/rand.
func NewSecureRandom() *SecureRandom {
	return &SecureRandom{source: rand.Reader}
}

// Generate implements Generator.
func (g *SecureRandom) Generate(id string) (string, error) {
	src := g.source
	if src == nil {
		src = rand.Reader
	}
	var buf [4]byte
	if _, err := io.ReadFull(src, buf[:]); err != nil {
		return "", fmt.Errorf("read random registration suffix: %w", err)
	}
	n := int32(binary.BigEndian.Uint32(buf[:]))
	return id + strconv.FormatInt(int64(n), 10), nil
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(id string) (string, error)

// Generate implements Generator.
func (f GeneratorFunc) Generate(id string) (string, error) {
	return f(id)
}
