package secrets

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "testadmin/pkg/domain-errors"
)

func TestGenerate(t *testing.T) {
	a, err := Generate()
	require.NoError(t, err)
	b, err := Generate()
	require.NoError(t, err)

	assert.Len(t, a, 43)
	assert.NotEqual(t, a, b)
}

func TestHashAndMatch(t *testing.T) {
	hash, err := Hash("s3cret")
	require.NoError(t, err)
	assert.True(t, IsHash(hash))

	assert.True(t, Match("s3cret", hash))
	assert.False(t, Match("wrong", hash))
	assert.False(t, Match("", hash))
}

func TestMatchPlaintext(t *testing.T) {
	assert.True(t, Match("s3cret", "s3cret"))
	assert.False(t, Match("s3cre", "s3cret"))
	assert.False(t, Match("", ""))
	assert.False(t, IsHash("s3cret"))
}

func TestHashRejectsBadInput(t *testing.T) {
	_, err := Hash("")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = Hash(strings.Repeat("x", 80))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}
