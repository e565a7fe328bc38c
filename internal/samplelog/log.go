// Package samplelog records the (elapsed time, temperature) curve of a run.
package samplelog

import (
	"errors"
	"fmt"

	"github.com/san-kum/cooldown/internal/thermal"
)

var ErrIndexOutOfRange = errors.New("samplelog: index out of range")

// Sample is one point of the cooldown curve.
type Sample struct {
	Elapsed     float64 `json:"elapsed_s"`
	Temperature float64 `json:"temperature_k"`
}

func (s Sample) Hours() float64   { return s.Elapsed / 3600 }
func (s Sample) Celsius() float64 { return s.Temperature - thermal.KelvinOffset }

// State returns the thermal state the sample was taken from.
func (s Sample) State() thermal.State {
	return thermal.State{Elapsed: s.Elapsed, Temperature: s.Temperature}
}

// Log is append-only. Index 0 always holds the initial condition and only
// Reset removes entries. Not safe for concurrent use.
type Log struct {
	samples []Sample
}

func New(initial Sample) *Log {
	l := &Log{samples: make([]Sample, 0, 256)}
	l.samples = append(l.samples, initial)
	return l
}

// FromState starts a log at the given state.
func FromState(s thermal.State) *Log {
	return New(Sample{Elapsed: s.Elapsed, Temperature: s.Temperature})
}

// Append records a sample. Cadence is the caller's business.
func (l *Log) Append(elapsed, tempK float64) {
	l.samples = append(l.samples, Sample{Elapsed: elapsed, Temperature: tempK})
}

// At returns sample i.
func (l *Log) At(i int) (Sample, error) {
	if i < 0 || i >= len(l.samples) {
		return Sample{}, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, len(l.samples))
	}
	return l.samples[i], nil
}

func (l *Log) Len() int { return len(l.samples) }

func (l *Log) First() Sample { return l.samples[0] }

func (l *Log) Last() Sample { return l.samples[len(l.samples)-1] }

// Samples returns a copy of the curve.
func (l *Log) Samples() []Sample {
	out := make([]Sample, len(l.samples))
	copy(out, l.samples)
	return out
}

// Times returns elapsed time in hours, the x axis of a chart.
func (l *Log) Times() []float64 {
	out := make([]float64, len(l.samples))
	for i, s := range l.samples {
		out[i] = s.Hours()
	}
	return out
}

// Temperatures returns the curve in °C.
func (l *Log) Temperatures() []float64 {
	out := make([]float64, len(l.samples))
	for i, s := range l.samples {
		out[i] = s.Celsius()
	}
	return out
}

// Reset truncates the log to a single initial sample.
func (l *Log) Reset(initial Sample) {
	l.samples = append(l.samples[:0], initial)
}
