// Package share holds values passed between cooperative tasks. Under the
// cooperative single-threaded model a put and a get can never interleave, so
// no locking is needed; the type boundary exists so a mutex can be added
// without touching call sites if the scheduler ever becomes preemptive.
package share

import "fmt"

// Share is a single-slot, overwrite-on-write holder for a float value.
type Share struct {
	name  string
	value float64
	set   bool
}

// New creates an empty share. The name only appears in diagnostics.
func New(name string) *Share {
	return &Share{name: name}
}

// Put overwrites the stored value.
func (s *Share) Put(v float64) {
	s.value = v
	s.set = true
}

// Get returns the most recently put value, or fallback if nothing has been
// put yet.
func (s *Share) Get(fallback float64) float64 {
	if !s.set {
		return fallback
	}
	return s.value
}

// Name returns the diagnostic name of the share.
func (s *Share) Name() string { return s.name }

func (s *Share) String() string {
	if !s.set {
		return fmt.Sprintf("%s: <unset>", s.name)
	}
	return fmt.Sprintf("%s: %g", s.name, s.value)
}
