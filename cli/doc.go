// Package cli contains the command line interface for shadervar.
//
// # Usage
//
//	shadervar [flags] <command> [args]
//
// Commands:
//
//   - preprocess: run conditional compilation over shader sources, applying
//     -D defines and --set option overrides
//   - compile: compile a properties or YAML declaration file and print each
//     uniform at frame zero, or its disassembly with --disasm
//   - run: advance compiled declarations through simulated frames
//   - eval: evaluate one expression, or an #if condition
//   - fmt: rewrite declarations as yaml, properties or optimized trees
//   - repl: interactive session over a simulated host
//
// # Configuration
//
// Flags may be set in $XDG_CONFIG_HOME/shadervar/config.yaml. Keys are flag
// names; nested mappings join with hyphens, and a command name prefix scopes
// a key to one command:
//
//	log:
//	  level: debug
//	path: [~/shaderpacks/common]
//	run:
//	  frames: 600
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-file: Append log output to a file
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o shadervar .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default:
//     ~/.cache/shadervar/pprof)
package cli
