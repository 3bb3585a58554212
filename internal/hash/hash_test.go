package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssetDeterministic(t *testing.T) {
	a, err := Asset([]byte("console.log(1)"))
	require.NoError(t, err)
	b, err := Asset([]byte("console.log(1)"))
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.True(t, Valid(a))
}

func TestAssetDistinguishesContent(t *testing.T) {
	a, err := Asset([]byte("a"))
	require.NoError(t, err)
	b, err := Asset([]byte("b"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestValidRejectsGarbage(t *testing.T) {
	assert.False(t, Valid("not-a-cid"))
	assert.False(t, Valid(""))
}
