package mq

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingPublisher struct{ err error }

func (f failingPublisher) Publish(context.Context, string, any) error { return f.err }
func (f failingPublisher) Close() error                               { return f.err }

func TestFanout_PublishesToAll(t *testing.T) {
	first := &RecordingPublisher{}
	second := &RecordingPublisher{}
	fanout := Fanout{first, NopPublisher{}, second}

	require.NoError(t, fanout.Publish(context.Background(), "settlement.completed", "q3"))

	for _, rec := range []*RecordingPublisher{first, second} {
		require.Len(t, rec.Messages, 1)
		assert.Equal(t, Message{RoutingKey: "settlement.completed", Body: "q3"}, rec.Messages[0])
	}
	assert.NoError(t, fanout.Close())
}

func TestFanout_ContinuesAfterFailure(t *testing.T) {
	boom := errors.New("broker down")
	rec := &RecordingPublisher{}
	fanout := Fanout{failingPublisher{err: boom}, rec}

	err := fanout.Publish(context.Background(), "settlement.night_pay.processed", 7)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, rec.Messages, 1)
	assert.ErrorIs(t, fanout.Close(), boom)
}
