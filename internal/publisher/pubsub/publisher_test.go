package pubsub

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/jobs-observatory/internal/apperr"
)

func TestNewRequiresProjectAndTopic(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), "", "snapshots")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindConfig))

	_, err = New(context.Background(), "proj", "")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindConfig))
}

func TestPublishWithoutClient(t *testing.T) {
	t.Parallel()

	var p *Publisher
	_, err := p.Publish(context.Background(), "snapshots", map[string]string{})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindConfig))
	assert.NoError(t, p.Close())
}
