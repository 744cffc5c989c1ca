package lock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLocker(t *testing.T) {
	ctx := context.Background()
	l := NewLocalLocker()
	key := DocumentKey(7)
	assert.Equal(t, "annotate:doc:lock:7", key)

	release, err := l.Acquire(ctx, key)
	require.NoError(t, err)

	_, err = l.Acquire(ctx, key)
	assert.ErrorIs(t, err, ErrNotAcquired)

	other, err := l.Acquire(ctx, DocumentKey(8))
	require.NoError(t, err)
	other()

	release()
	release()

	again, err := l.Acquire(ctx, key)
	require.NoError(t, err)
	again()
}
