// Package id provides centralized ID generation for the telemetry engine.
//
// This package offers type-safe ULID generation with:
//   - Lexicographic sortability: completed traces sort by start time
//   - Prefixed types: type-specific prefixes for debugging (trace_*, span_*)
//   - Type safety: separate types prevent ID misuse
//   - Performance: ~2μs per ULID, safe for hot span-open paths
//
// ULIDs are the single ID format across the engine. Uniqueness within
// process lifetime is all the span tracker requires; the timestamp
// component is a debugging bonus, not a correctness requirement.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// TraceID identifies one root-to-leaf execution tree.
type TraceID string

// SpanID identifies one unit of traced work within a trace.
type SpanID string

const (
	TracePrefix = "trace"
	SpanPrefix  = "span"
)

// Generator generates ULIDs with optional prefixes.
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex // Protects entropy reader
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the singleton generator instance.
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a new ULID generator backed by crypto/rand.
func NewGenerator() *Generator {
	return &Generator{
		entropy: rand.Reader,
	}
}

// NewGeneratorWithEntropy creates a generator with a custom entropy source.
// Useful for testing with deterministic entropy.
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{
		entropy: entropy,
	}
}

// Generate creates a new ULID.
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateString creates a new ULID as a string.
func (g *Generator) GenerateString() string {
	return g.Generate().String()
}

// GenerateWithPrefix creates a prefixed ULID string.
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.GenerateString())
}

// NewTraceID generates a fresh trace identifier.
func (g *Generator) NewTraceID() TraceID {
	return TraceID(g.GenerateWithPrefix(TracePrefix))
}

// NewSpanID generates a fresh span identifier.
func (g *Generator) NewSpanID() SpanID {
	return SpanID(g.GenerateWithPrefix(SpanPrefix))
}

// NewTraceID generates a trace identifier from the default generator.
func NewTraceID() TraceID {
	return Default().NewTraceID()
}

// NewSpanID generates a span identifier from the default generator.
func NewSpanID() SpanID {
	return Default().NewSpanID()
}

func (id TraceID) String() string { return string(id) }
func (id SpanID) String() string  { return string(id) }

// IsValid checks if an ID string is a valid ULID.
func IsValid(id string) bool {
	_, err := ulid.Parse(id)
	return err == nil
}

// Parse parses a ULID string.
func Parse(id string) (ulid.ULID, error) {
	return ulid.Parse(id)
}

// Timestamp extracts the timestamp from a ULID.
func Timestamp(id string) (time.Time, error) {
	parsed, err := Parse(id)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()), nil
}
