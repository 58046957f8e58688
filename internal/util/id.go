// Package util provides ID generation and time helpers for faultdesk.
package util

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// IDGenerator produces time-ordered UUIDv7 strings. IDs from one generator
// are strictly increasing, even within a millisecond.
type IDGenerator struct {
	mu       sync.Mutex
	now      func() time.Time
	lastTime int64
	counter  uint16
}

// NewIDGenerator creates a new ID generator.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{now: time.Now}
}

// NewID generates a new UUIDv7 identifier from this generator.
func (g *IDGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now().UnixMilli()
	switch {
	case now > g.lastTime:
		g.lastTime = now
		g.counter = 0
	case g.counter == 0x0FFF:
		// 12-bit sequence exhausted; borrow the next millisecond.
		g.lastTime++
		g.counter = 0
	default:
		g.counter++
	}

	return encodeV7(g.lastTime, g.counter)
}

func encodeV7(unixMilli int64, seq uint16) string {
	var id uuid.UUID

	binary.BigEndian.PutUint32(id[0:4], uint32(unixMilli>>16))
	binary.BigEndian.PutUint16(id[4:6], uint16(unixMilli))
	id[6] = 0x70 | byte(seq>>8)&0x0F
	id[7] = byte(seq)

	_, _ = rand.Read(id[8:])
	id[8] = id[8]&0x3F | 0x80

	return id.String()
}

// IsValidID checks if a string is a valid UUID format.
func IsValidID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// CodeGenerator issues sequential human-readable codes such as
// "TX-CEN01-00042" for assets registered in a district.
type CodeGenerator struct {
	mu   sync.Mutex
	last map[string]int
}

// NewCodeGenerator creates an empty code generator.
func NewCodeGenerator() *CodeGenerator {
	return &CodeGenerator{last: make(map[string]int)}
}

// Seed records the highest sequence already used for a prefix. Lower values
// are ignored.
func (c *CodeGenerator) Seed(prefix string, seq int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq > c.last[prefix] {
		c.last[prefix] = seq
	}
}

// Next returns the next code for kind in district, e.g. Next("TX", "CEN-01").
func (c *CodeGenerator) Next(kind, district string) string {
	prefix := CodePrefix(kind, district)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last[prefix]++
	return fmt.Sprintf("%s-%05d", prefix, c.last[prefix])
}

// CodePrefix builds the prefix shared by every code of a kind in a district.
func CodePrefix(kind, district string) string {
	d := strings.ToUpper(strings.ReplaceAll(district, "-", ""))
	return strings.ToUpper(kind) + "-" + d
}

// ParseCode splits a code into its prefix and sequence.
func ParseCode(code string) (prefix string, seq int, err error) {
	i := strings.LastIndex(code, "-")
	if i <= 0 || i == len(code)-1 {
		return "", 0, fmt.Errorf("invalid code format: %q", code)
	}
	if _, err := fmt.Sscanf(code[i+1:], "%d", &seq); err != nil {
		return "", 0, fmt.Errorf("invalid code format: %q: %w", code, err)
	}
	return code[:i], seq, nil
}

// DeterministicID generates a reproducible UUID for seed data and tests.
func DeterministicID(seed int64) string {
	var id uuid.UUID

	binary.BigEndian.PutUint64(id[0:8], uint64(seed))
	binary.BigEndian.PutUint64(id[8:16], uint64(seed*31))
	id[6] = id[6]&0x0F | 0x40
	id[8] = id[8]&0x3F | 0x80

	return id.String()
}
