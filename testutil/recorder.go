// Package testutil provides participants that record what the registry did
// to them, so tests can assert dispatch order and deltas.
package testutil

import (
	"github.com/comalice/updatable"
)

// Call is one Update observed by a Recorder.
type Call struct {
	Name  string
	Delta int64
}

// Log collects calls from several recorders in the order they happened.
type Log struct {
	calls []Call
}

// Calls returns the recorded calls.
func (l *Log) Calls() []Call {
	return l.calls
}

// Names returns the participant names in call order.
func (l *Log) Names() []string {
	names := make([]string, len(l.calls))
	for i, c := range l.calls {
		names[i] = c.Name
	}
	return names
}

// Reset forgets all calls.
func (l *Log) Reset() {
	l.calls = l.calls[:0]
}

func (l *Log) add(c Call) {
	l.calls = append(l.calls, c)
}

// Recorder is a participant that remembers every delta it was given.
type Recorder struct {
	updatable.Base

	Name   string
	Deltas []int64
	// Debug holds DebugMode() as seen at each Update.
	Debug []bool

	// OnUpdate, if set, runs after the call is recorded. Tests use it to
	// mutate the registry from inside a pass.
	OnUpdate func(delta int64)

	log *Log
}

// NewRecorder creates a recorder writing to log, which may be nil.
func NewRecorder(name string, log *Log) *Recorder {
	return &Recorder{Name: name, log: log}
}

// NewRecorders creates one recorder per name, all sharing log.
func NewRecorders(log *Log, names ...string) []*Recorder {
	recs := make([]*Recorder, len(names))
	for i, name := range names {
		recs[i] = NewRecorder(name, log)
	}
	return recs
}

// Update implements updatable.Participant.
func (r *Recorder) Update(delta int64) {
	r.Deltas = append(r.Deltas, delta)
	r.Debug = append(r.Debug, r.DebugMode())
	if r.log != nil {
		r.log.add(Call{Name: r.Name, Delta: delta})
	}
	if r.OnUpdate != nil {
		r.OnUpdate(delta)
	}
}

// Calls returns how many times Update ran.
func (r *Recorder) Calls() int {
	return len(r.Deltas)
}

// RegisterAll registers every recorder with reg and returns the handles in
// the same order.
func RegisterAll(reg *updatable.Registry, recs ...*Recorder) []updatable.Handle {
	handles := make([]updatable.Handle, len(recs))
	for i, rec := range recs {
		handles[i] = reg.Register(rec)
	}
	return handles
}
