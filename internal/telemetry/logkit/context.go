package logkit

import (
	"context"

	"github.com/GriffinCanCode/minitel/internal/telemetry/attr"
)

type contextKey struct{}

var scopedFieldsKey contextKey

// WithFields returns a context whose log records carry fields in addition
// to whatever outer scopes contributed. Inner scopes win on key collision,
// and a scope ends when its context goes out of scope, so nested blocks
// compose and never leak fields past their extent:
//
//	ctx = logkit.WithFields(ctx, map[string]interface{}{"job": jobID})
//	process(ctx) // records inside carry job=...
func WithFields(ctx context.Context, fields map[string]interface{}) context.Context {
	merged := scopedFields(ctx).Merge(attr.From(fields))
	return context.WithValue(ctx, scopedFieldsKey, merged)
}

// scopedFields returns the merged field map accumulated by enclosing
// scopes. Never mutated; WithFields layers a copy.
func scopedFields(ctx context.Context) attr.Map {
	m, _ := ctx.Value(scopedFieldsKey).(attr.Map)
	return m
}
