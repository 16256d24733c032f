package lock

// Input is polled once per loop iteration for operator requests.
type Input interface {
	EnrollRequested() bool
	UnlockRequested() bool
	OverrideEngaged() bool
}

// MultiInput reports a request when any of its inputs does. Every input is
// polled on every call so latched inputs are drained together.
type MultiInput []Input

func (m MultiInput) EnrollRequested() bool {
	hit := false
	for _, in := range m {
		if in.EnrollRequested() {
			hit = true
		}
	}
	return hit
}

func (m MultiInput) UnlockRequested() bool {
	hit := false
	for _, in := range m {
		if in.UnlockRequested() {
			hit = true
		}
	}
	return hit
}

func (m MultiInput) OverrideEngaged() bool {
	hit := false
	for _, in := range m {
		if in.OverrideEngaged() {
			hit = true
		}
	}
	return hit
}

// StaticInput returns fixed answers. The zero value requests nothing.
type StaticInput struct {
	Enroll   bool
	Unlock   bool
	Override bool
}

func (s *StaticInput) EnrollRequested() bool { return s.Enroll }
func (s *StaticInput) UnlockRequested() bool { return s.Unlock }
func (s *StaticInput) OverrideEngaged() bool { return s.Override }

// edge turns a level into a rising-edge pulse.
type edge struct {
	prev bool
}

func (e *edge) rise(level bool) bool {
	fired := level && !e.prev
	e.prev = level
	return fired
}
