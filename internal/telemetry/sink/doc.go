/*
Package sink implements consumers for the engine's outward contract.

# Overview

The cores call one way into sinks: EmitTrace once per completed root
trace, EmitReport on each metric flush, EmitRecord per passed-level log
call. Everything downstream of those three calls — formatting, transport,
retention — lives here, outside the cores.

# Implementations

  - Console: zap-rendered output for development and production stdout
  - JSONL: line-delimited JSON on any io.Writer
  - File: JSONL on disk, gzip when the path ends in .gz
  - HTTP: generic JSON forwarding to a collector, with retry and an
    export guard that suspends forwarding while the collector is down
  - Prom: bridges flushed reports onto a Prometheus registry
  - Broadcaster: fan-out to live WebSocket/API subscribers
  - Fanout: composes any of the above; Discard drops everything

Sinks may fail; the cores log the failure to a fallback channel and
carry on with their internal state untouched.
*/
package sink
