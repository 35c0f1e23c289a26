// Package stats aggregates latencies of repeated requests.
package stats

import (
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

const (
	// Range: 1 microsecond to 1 hour, 3 significant figures
	histogramMin     = 1
	histogramMax     = 3600000000
	histogramSigFigs = 3
)

// Recorder collects request latencies in an HDR histogram.
// It is not safe for concurrent use; repeated requests run one after another.
type Recorder struct {
	hist     *hdrhistogram.Histogram
	failures int
	bytes    int64
}

// Summary is a snapshot of a Recorder
type Summary struct {
	Count    int64         `json:"count" yaml:"count"`
	Failures int           `json:"failures" yaml:"failures"`
	Bytes    int64         `json:"bytes" yaml:"bytes"`
	Min      time.Duration `json:"min" yaml:"min"`
	Mean     time.Duration `json:"mean" yaml:"mean"`
	P50      time.Duration `json:"p50" yaml:"p50"`
	P90      time.Duration `json:"p90" yaml:"p90"`
	P99      time.Duration `json:"p99" yaml:"p99"`
	Max      time.Duration `json:"max" yaml:"max"`
}

// NewRecorder creates an empty Recorder
func NewRecorder() *Recorder {
	return &Recorder{
		hist: hdrhistogram.New(histogramMin, histogramMax, histogramSigFigs),
	}
}

// Record adds the latency of a completed exchange
func (r *Recorder) Record(latency time.Duration, bytes int) {
	micros := latency.Microseconds()

	// Clamp to valid range
	if micros < histogramMin {
		micros = histogramMin
	}
	if micros > histogramMax {
		micros = histogramMax
	}

	_ = r.hist.RecordValue(micros)
	r.bytes += int64(bytes)
}

// Fail counts a request that produced no response
func (r *Recorder) Fail() {
	r.failures++
}

// Summary returns the current aggregates. Durations are zero when nothing
// has been recorded.
func (r *Recorder) Summary() Summary {
	s := Summary{
		Count:    r.hist.TotalCount(),
		Failures: r.failures,
		Bytes:    r.bytes,
	}
	if s.Count == 0 {
		return s
	}

	s.Min = micros(r.hist.Min())
	s.Mean = time.Duration(r.hist.Mean() * float64(time.Microsecond))
	s.P50 = micros(r.hist.ValueAtQuantile(50))
	s.P90 = micros(r.hist.ValueAtQuantile(90))
	s.P99 = micros(r.hist.ValueAtQuantile(99))
	s.Max = micros(r.hist.Max())
	return s
}

func micros(v int64) time.Duration {
	return time.Duration(v) * time.Microsecond
}
