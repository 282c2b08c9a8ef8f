// Package sessionid generates time-sortable identifiers for draw sessions.
package sessionid

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/coder/quartz"
)

// Crockford's base32
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Length of an encoded ID
const Length = 26

// RandSource matches deck.RandSource so a seeded session gets a reproducible ID
type RandSource interface {
	IntN(n int) int
}

// Generator produces UUIDv7 session IDs
type Generator struct {
	rng   RandSource
	clock quartz.Clock
}

// NewGenerator creates a generator. A nil rng uses crypto/rand and a nil
// clock uses the wall clock.
func NewGenerator(rng RandSource, clock quartz.Clock) *Generator {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Generator{rng: rng, clock: clock}
}

// New returns a fresh ID from crypto/rand and the wall clock
func New() string {
	return NewGenerator(nil, nil).Generate()
}

// Generate creates a new ID
func (g *Generator) Generate() string {
	return encode(g.uuid())
}

func (g *Generator) uuid() [16]byte {
	var id [16]byte

	// 48-bit millisecond timestamp, then random bits with version and variant set
	now := g.clock.Now().UnixMilli()
	for i := 0; i < 6; i++ {
		id[i] = byte(now >> (40 - 8*i))
	}

	if g.rng != nil {
		for i := 6; i < 16; i++ {
			id[i] = byte(g.rng.IntN(256))
		}
	} else if _, err := rand.Read(id[6:]); err != nil {
		panic("failed to generate random bytes: " + err.Error())
	}

	id[6] = (id[6] & 0x0f) | 0x70
	id[8] = (id[8] & 0x3f) | 0x80
	return id
}

// encode writes 128 bits as 26 base32 characters, 5 bits at a time
func encode(data [16]byte) string {
	var sb strings.Builder
	sb.Grow(Length)

	for i := 0; i < Length; i++ {
		bitOffset := i * 5
		byteIndex := bitOffset / 8
		bitIndex := bitOffset % 8

		var value uint8
		if byteIndex < 16 {
			if bitIndex <= 3 {
				value = (data[byteIndex] >> (3 - bitIndex)) & 0x1f
			} else {
				value = (data[byteIndex] << (bitIndex - 3)) & 0x1f
				if byteIndex+1 < 16 {
					value |= data[byteIndex+1] >> (11 - bitIndex)
				}
			}
		}
		sb.WriteByte(alphabet[value])
	}
	return sb.String()
}

// Timestamp recovers the creation time encoded in an ID
func Timestamp(id string) (time.Time, error) {
	if err := Validate(id); err != nil {
		return time.Time{}, err
	}
	// The first 10 characters carry 50 bits; the top 48 are the timestamp
	var bits uint64
	for i := 0; i < 10; i++ {
		bits = bits<<5 | uint64(strings.IndexByte(alphabet, id[i]))
	}
	return time.UnixMilli(int64(bits >> 2)), nil
}

// Validate checks that id is 26 base32 characters encoding at most 128 bits
func Validate(id string) error {
	if len(id) != Length {
		return fmt.Errorf("session ID must be exactly %d characters, got %d", Length, len(id))
	}
	if id[0] > '7' {
		return fmt.Errorf("session ID first character must be 0-7, got %c", id[0])
	}
	for i := 0; i < len(id); i++ {
		if strings.IndexByte(alphabet, id[i]) < 0 {
			return fmt.Errorf("invalid character %q at position %d", id[i], i)
		}
	}
	return nil
}
