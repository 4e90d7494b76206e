// Package cmd implements the shadervar subcommands.
//
// Every command reads its inputs through a shared search path: a relative
// name that does not exist in the working directory is looked up in each
// --path directory, then in each directory of $SHADERVAR_PATH. The name "-"
// reads standard input.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the configuration file.
	ConfigIdentifier = "config"
)
