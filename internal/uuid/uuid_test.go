package uuid_test

import (
	"testing"

	googleuuid "github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/attribute-engine/internal/uuid"
)

func TestGoogleUUIDGenerator_New(t *testing.T) {
	gen := uuid.NewGoogleUUIDGenerator()

	first := gen.New()
	second := gen.New()

	_, err := googleuuid.Parse(first)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestSequentialGenerator_New(t *testing.T) {
	gen := uuid.NewSequentialGenerator("sub")

	assert.Equal(t, "sub-1", gen.New())
	assert.Equal(t, "sub-2", gen.New())
}
