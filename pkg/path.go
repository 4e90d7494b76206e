package pkg

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// EnvPrefix is prepended to the names of environment variables read by
// shadervar, e.g. SHADERVAR_CONFIG_DIR.
var EnvPrefix = strings.ToUpper(Name) + "_"

// ConfigDir returns the directory holding config.yaml. It is
// $SHADERVAR_CONFIG_DIR if set, else a shadervar directory under the user
// configuration directory.
var ConfigDir = sync.OnceValue(func() string {
	return userDir("CONFIG_DIR", os.UserConfigDir, ".config")
})

// CacheDir returns the directory for REPL history, compiled expression caches
// and profiles. It is $SHADERVAR_CACHE_DIR if set, else a shadervar directory
// under the user cache directory.
var CacheDir = sync.OnceValue(func() string {
	return userDir("CACHE_DIR", os.UserCacheDir, ".cache")
})

// userDir resolves a per-user directory. When the platform base is unknown it
// falls back to home/hidden, then to the working directory.
func userDir(env string, base func() (string, error), hidden string) string {
	if dir := os.Getenv(EnvPrefix + env); dir != "" {
		return filepath.Clean(dir)
	}

	dir, err := base()
	if err != nil {
		if dir, err = os.UserHomeDir(); err == nil {
			dir = filepath.Join(dir, hidden)
		} else if dir, err = os.Getwd(); err != nil {
			dir = "."
		}
	}

	return filepath.Join(dir, Name)
}
