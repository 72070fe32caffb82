// Package anysink receives training metrics and text.
package anysink

import (
	"github.com/rs/zerolog/log"
)

// A Sink accepts scalar metrics and text keyed by a tag
// and a step index.
type Sink interface {
	Scalar(tag string, step int, value float64)
	Text(tag string, step int, text string)
}

// LogSink writes every metric as a log event.
type LogSink struct{}

// Scalar logs a metric at debug level.
func (LogSink) Scalar(tag string, step int, value float64) {
	log.Debug().Str("tag", tag).Int("step", step).Float64("value", value).Msg("metric")
}

// Text logs text at info level.
func (LogSink) Text(tag string, step int, text string) {
	log.Info().Str("tag", tag).Int("step", step).Msg(text)
}

// Multi forwards everything to a list of sinks.
type Multi []Sink

// Scalar forwards the metric.
func (m Multi) Scalar(tag string, step int, value float64) {
	for _, s := range m {
		s.Scalar(tag, step, value)
	}
}

// Text forwards the text.
func (m Multi) Text(tag string, step int, text string) {
	for _, s := range m {
		s.Text(tag, step, text)
	}
}

// Discard ignores everything.
type Discard struct{}

// Scalar does nothing.
func (Discard) Scalar(tag string, step int, value float64) {}

// Text does nothing.
func (Discard) Text(tag string, step int, text string) {}
