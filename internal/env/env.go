package env

import (
	"os"

	"github.com/joho/godotenv"
)

// Flags is the one-time snapshot of the process environment signals that
// steer a build or dev-server run. It is resolved once at startup and
// never mutated afterwards.
type Flags struct {
	IsProduction bool
	IsEmbedMode  bool
}

const (
	// ModeVar selects production output when set to "production".
	ModeVar = "NODE_ENV"
	// EmbedVar selects the embed build/serve configuration when set to "1".
	EmbedVar = "WB_EMBED"
)

// Resolve loads a .env file if one is present in the working directory and
// reads the two mode signals from the process environment. A missing or
// unrecognized value resolves to the development, non-embed default.
func Resolve() Flags {
	// Best effort: a missing .env is the normal case.
	_ = godotenv.Load()
	return FromLookup(os.LookupEnv)
}

// FromLookup resolves flags from an explicit lookup function.
func FromLookup(lookup func(string) (string, bool)) Flags {
	var f Flags
	if v, ok := lookup(ModeVar); ok && v == "production" {
		f.IsProduction = true
	}
	if v, ok := lookup(EmbedVar); ok && v == "1" {
		f.IsEmbedMode = true
	}
	return f
}
