package importers

import (
	"fmt"
	"log"
)

// Phase is the lifecycle stage of an import run.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseValidating Phase = "validating"
	PhaseStreaming  Phase = "streaming"
	PhaseFinalizing Phase = "finalizing"
	PhaseDone       Phase = "done"
)

// Progress is a cumulative status update.
type Progress struct {
	Processed          int     `json:"processed"`
	Total              int     `json:"total"`
	Percentage         float64 `json:"percentage"`
	CurrentRecordLabel string  `json:"current_record_label"`
	Phase              Phase   `json:"phase"`
	Batch              int     `json:"batch"`
}

// ProgressSink receives progress after every batch. Errors and panics
// from a sink are logged and never reach the import.
type ProgressSink interface {
	OnProgress(Progress) error
}

// NopSink discards progress.
type NopSink struct{}

func (NopSink) OnProgress(Progress) error { return nil }

// LogSink writes progress to the standard logger.
type LogSink struct {
	Prefix string
}

func (s LogSink) OnProgress(p Progress) error {
	log.Printf("%s %s %d/%d (%.0f%%) %s", s.Prefix, p.Phase, p.Processed, p.Total, p.Percentage, p.CurrentRecordLabel)
	return nil
}

// SinkFunc adapts a function to ProgressSink.
type SinkFunc func(Progress) error

func (f SinkFunc) OnProgress(p Progress) error { return f(p) }

// MultiSink fans progress out to several sinks. A failing sink does not
// stop the others.
type MultiSink []ProgressSink

func (m MultiSink) OnProgress(p Progress) error {
	var first error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := safeNotify(s, p); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func percentage(processed, total int) float64 {
	if total <= 0 {
		return 0
	}
	pct := float64(processed) * 100 / float64(total)
	if pct > 100 {
		pct = 100
	}
	return pct
}

// safeNotify calls the sink, converting a panic into an error.
func safeNotify(sink ProgressSink, p Progress) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &sinkPanic{value: r}
		}
	}()
	return sink.OnProgress(p)
}

type sinkPanic struct{ value any }

func (p *sinkPanic) Error() string { return fmt.Sprintf("progress sink panicked: %v", p.value) }
