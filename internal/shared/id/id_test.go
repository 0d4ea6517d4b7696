package id

import (
	"strings"
	"sync"
	"testing"
)

func TestGenerate(t *testing.T) {
	gen := NewGenerator()

	id1 := gen.Generate()
	id2 := gen.Generate()

	if id1.String() == id2.String() {
		t.Error("Generated IDs should be unique")
	}
}

func TestGenerateString(t *testing.T) {
	gen := NewGenerator()

	id := gen.GenerateString()

	if len(id) != 26 {
		t.Errorf("ULID should be 26 characters, got %d", len(id))
	}
}

func TestPrefixedIDs(t *testing.T) {
	traceID := NewTraceID()
	spanID := NewSpanID()

	if !strings.HasPrefix(traceID.String(), TracePrefix+"_") {
		t.Errorf("trace ID should start with '%s_', got: %s", TracePrefix, traceID)
	}
	if !strings.HasPrefix(spanID.String(), SpanPrefix+"_") {
		t.Errorf("span ID should start with '%s_', got: %s", SpanPrefix, spanID)
	}

	// Verify ULID part is valid
	parts := strings.Split(traceID.String(), "_")
	if len(parts) != 2 {
		t.Errorf("Prefixed ID should have format 'prefix_ulid', got: %s", traceID)
	}
	if !IsValid(parts[1]) {
		t.Errorf("ULID part should be valid: %s", parts[1])
	}
}

func TestConcurrentGeneration(t *testing.T) {
	gen := NewGenerator()

	const goroutines = 10
	const perGoroutine = 100

	var mu sync.Mutex
	seen := make(map[string]bool)

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				id := gen.GenerateString()
				mu.Lock()
				if seen[id] {
					t.Errorf("duplicate ID generated: %s", id)
				}
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != goroutines*perGoroutine {
		t.Errorf("expected %d unique IDs, got %d", goroutines*perGoroutine, len(seen))
	}
}

func TestTimestampExtraction(t *testing.T) {
	gen := NewGenerator()
	raw := gen.GenerateString()

	ts, err := Timestamp(raw)
	if err != nil {
		t.Fatalf("failed to extract timestamp: %v", err)
	}
	if ts.IsZero() {
		t.Error("extracted timestamp should not be zero")
	}
}
