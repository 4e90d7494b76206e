// Package profile provides optional runtime profiling for shadervar.
//
// Profiling uses [github.com/pkg/profile] and is compiled in only with the
// pprof build tag:
//
//	go build -tags pprof .
//
// Without the tag, [Modes] is empty and [Profiler.Start] does nothing.
//
// A [Profiler] names one mode and an output directory:
//
//	p := profile.Profiler{Mode: "cpu", Path: "/tmp/profiles", Quiet: true}
//	defer p.Start().Stop()
//
// Profiles are written as <mode>.pprof in Path and can be inspected with
//
//	go tool pprof -http=: /tmp/profiles/cpu.pprof
//
// Profiling the compiled update routine is the usual reason to enable it:
//
//	shadervar --pprof-mode=cpu run --frames=100000 uniforms.yaml
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
