/*
Package trace implements in-process span tracking without a telemetry SDK.

# Overview

The tracker manages nested span lifecycle: opening a span with no active
parent creates a trace, ending the root span emits the whole accumulated
tree as one unit to the configured sink. The active-span pointer travels
in context.Context, so concurrent traces on independent goroutines never
contaminate each other's nesting.

# Features

- Structural root detection (no active span at open time)
- Open-span registry with silent no-op on unknown or double End
- Append-only span events and closed-scalar attributes
- Scoped execution that ends the span on every exit path, panics included
- Tagged ended-with-error outcome instead of exception inspection
- One EmitTrace call per completed root, regardless of nesting depth

# Usage

	tracker := trace.New(sink)

	ctx, span := tracker.Start(ctx, "handle_request", nil)
	span.SetAttribute("request.size", size)
	tracker.AddEvent(ctx, "cache_miss", nil)
	defer span.End()

	// Scoped form, safe on early return and panic:
	err := tracker.Span(ctx, "load_profile", nil, func(ctx context.Context) error {
		return load(ctx)
	})

Telemetry bookkeeping never raises into calling code: sink failures are
logged to a fallback channel and swallowed.
*/
package trace
