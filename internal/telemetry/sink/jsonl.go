package sink

import (
	"io"
	"sync"
	"time"

	"github.com/GriffinCanCode/minitel/internal/resource"
	"github.com/GriffinCanCode/minitel/internal/telemetry/logkit"
	"github.com/GriffinCanCode/minitel/internal/telemetry/metric"
	"github.com/GriffinCanCode/minitel/internal/telemetry/trace"
	"github.com/bytedance/sonic"
)

// envelope wraps one signal for line-delimited JSON output.
type envelope struct {
	Kind     string             `json:"kind"` // "trace" | "metrics" | "log"
	Time     time.Time          `json:"time"`
	Resource *resource.Resource `json:"resource,omitempty"`
	Trace    *trace.Trace       `json:"trace,omitempty"`
	Report   *metric.Report     `json:"report,omitempty"`
	Record   *logkit.Record     `json:"record,omitempty"`
}

// JSONL serializes each signal as one JSON line on a writer. Writes are
// serialized by a mutex so interleaved signals never shear a line.
type JSONL struct {
	mu  sync.Mutex
	w   io.Writer
	res *resource.Resource
	now func() time.Time
}

// NewJSONL creates a JSON-lines sink. res may be nil to omit the
// resource block from each line.
func NewJSONL(w io.Writer, res *resource.Resource) *JSONL {
	return &JSONL{w: w, res: res, now: time.Now}
}

func (j *JSONL) EmitTrace(t trace.Trace) error {
	return j.write(envelope{Kind: "trace", Trace: &t})
}

func (j *JSONL) EmitReport(r metric.Report) error {
	return j.write(envelope{Kind: "metrics", Report: &r})
}

func (j *JSONL) EmitRecord(r logkit.Record) error {
	return j.write(envelope{Kind: "log", Record: &r})
}

func (j *JSONL) write(env envelope) error {
	env.Time = j.now()
	env.Resource = j.res

	line, err := sonic.Marshal(env)
	if err != nil {
		return err
	}
	line = append(line, '\n')

	j.mu.Lock()
	defer j.mu.Unlock()
	_, err = j.w.Write(line)
	return err
}
