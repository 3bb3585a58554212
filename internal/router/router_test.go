package router

import (
	"testing"

	"github.com/henrik/wb/internal/env"
	"github.com/stretchr/testify/assert"
)

func TestSelectDefault(t *testing.T) {
	r := Select(false)
	assert.Equal(t, "index.html", r.IndexDocument)
	assert.Equal(t, "/index.html", r.FallbackPath)
}

func TestSelectEmbed(t *testing.T) {
	r := Select(true)
	assert.Equal(t, "index-embed.html", r.IndexDocument)
	assert.Equal(t, "/index-embed.html", r.FallbackPath)
}

func TestSelectFromEnvironmentSignal(t *testing.T) {
	lookup := func(vars map[string]string) func(string) (string, bool) {
		return func(key string) (string, bool) {
			v, ok := vars[key]
			return v, ok
		}
	}

	// Only the exact enable value selects the embed pair.
	for _, v := range []string{"", "0", "true", "on", "2"} {
		flags := env.FromLookup(lookup(map[string]string{env.EmbedVar: v}))
		assert.Equal(t, Select(false), Select(flags.IsEmbedMode), "signal %q", v)
	}

	flags := env.FromLookup(lookup(map[string]string{env.EmbedVar: "1"}))
	assert.Equal(t, Select(true), Select(flags.IsEmbedMode))
}
