package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderPublishAndClose(t *testing.T) {
	t.Parallel()

	p := NewProvider()
	require.NoError(t, p.Publish(context.Background(), []byte(`{"categories":3}`)))
	require.NoError(t, p.Publish(context.Background(), []byte(`{"categories":4}`)))

	msgs := p.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, `{"categories":3}`, string(msgs[0]))

	require.NoError(t, p.Close())
	assert.Error(t, p.Publish(context.Background(), []byte("late")))
}
