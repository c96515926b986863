package messaging

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/mtgkiosk/internal/domain/inventory"
	"github.com/xiebiao/mtgkiosk/internal/infrastructure/config"
)

type failingPublisher struct{ calls int }

func (f *failingPublisher) Publish(context.Context, string, interface{}) error {
	f.calls++
	return errors.New("broker down")
}

func TestNewPublisher_Disabled(t *testing.T) {
	pub, closeFn, err := NewPublisher(config.MQConfig{Enabled: false})
	require.NoError(t, err)
	assert.IsType(t, NoopPublisher{}, pub)
	assert.NoError(t, closeFn())
	assert.NoError(t, pub.Publish(context.Background(), inventory.EventImportCompleted, nil))
}

func TestPublishSafe(t *testing.T) {
	f := &failingPublisher{}
	assert.NotPanics(t, func() {
		PublishSafe(context.Background(), f, inventory.EventInventoryChanged, inventory.ChangedEvent{CardID: "x"})
		PublishSafe(context.Background(), nil, inventory.EventInventoryChanged, nil)
	})
	assert.Equal(t, 1, f.calls)
}
