package profile

import "slices"

// Stopper ends a profiling session.
type Stopper interface{ Stop() }

// Profiler configures one profiling session.
type Profiler struct {
	// Mode is one of [Modes]. Profiling is disabled when Mode is empty or
	// unsupported.
	Mode string
	// Path is the output directory. The current directory is used when empty.
	Path string
	// Quiet suppresses the profiler's own log output.
	Quiet bool
}

// Enabled reports whether Start would begin profiling.
func (p Profiler) Enabled() bool {
	return p.Mode != "" && slices.Contains(Modes(), p.Mode)
}

// Start begins profiling. Stop on the result is always safe to call.
func (p Profiler) Start() Stopper {
	if !p.Enabled() {
		return ignore{}
	}

	return start(p)
}

type ignore struct{}

func (ignore) Stop() {}
