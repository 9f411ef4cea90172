package cli

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/lingo-build/lingo/pkg/cache"
	"github.com/lingo-build/lingo/pkg/errors"
)

// Environment variables read by lingo. A .env file in the project root
// supplies values the process environment does not set.
const (
	envCacheDir   = "LINGO_CACHE_DIR"
	envMaxThreads = "LINGO_MAX_THREADS"
	envKeepGoing  = "LINGO_KEEP_GOING"
)

// dotEnvFile is read from the project root.
const dotEnvFile = ".env"

// settings are the environment-level defaults of a project. Command-line
// flags override them.
type settings struct {
	CacheDir  string // download cache
	Threads   int    // parallel jobs per batch stage
	KeepGoing bool   // continue with other apps after a failure
}

// lookupFunc reads one environment variable. os.LookupEnv satisfies it.
type lookupFunc func(key string) (string, bool)

// loadSettings resolves settings for the project at root. Values from
// lookup win over the project's .env file.
func loadSettings(root string, lookup lookupFunc) (settings, error) {
	dotenv, err := readDotEnv(filepath.Join(root, dotEnvFile))
	if err != nil {
		return settings{}, err
	}
	get := func(key string) (string, bool) {
		if v, ok := lookup(key); ok && v != "" {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok && v != ""
	}

	s := settings{CacheDir: cache.DefaultDir(), Threads: runtime.NumCPU()}
	if v, ok := get(envCacheDir); ok {
		s.CacheDir = v
	}
	if v, ok := get(envMaxThreads); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return settings{}, errors.New(errors.ErrCodeInvalidInput, "%s must be a positive integer, got %q", envMaxThreads, v)
		}
		s.Threads = n
	}
	if v, ok := get(envKeepGoing); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return settings{}, errors.New(errors.ErrCodeInvalidInput, "%s must be a boolean, got %q", envKeepGoing, v)
		}
		s.KeepGoing = b
	}
	return s, nil
}

func readDotEnv(path string) (map[string]string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	env, err := godotenv.Read(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", path)
	}
	return env, nil
}
