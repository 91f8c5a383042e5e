package requestid

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestWithAndFrom(t *testing.T) {
	ctx := With(context.Background(), "abc-123")

	assert.Equal(t, "abc-123", From(ctx))
	assert.Equal(t, "abc-123", FromOrNew(ctx))
}

func TestFromEmptyContext(t *testing.T) {
	assert.Empty(t, From(context.Background()))
}

func TestFromOrNewGeneratesUUID(t *testing.T) {
	id := FromOrNew(context.Background())

	_, err := uuid.Parse(id)
	assert.NoError(t, err)
}
