package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/James9b/fake-api-ecommerce/internal/messaging"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs []kafkaGo.Message
	err  error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafkaGo.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func TestKafkaPublisher(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	t.Run("WritesKeyedJSON", func(t *testing.T) {
		w := &recordingWriter{}
		p := &kafkaPublisher{writer: w, topic: "catalog.mutations", log: logger}

		err := p.PublishEvent(context.Background(), "7", messaging.MutationEvent{Type: messaging.EventProductDeleted, ProductID: 7})
		require.NoError(t, err)
		require.Len(t, w.msgs, 1)
		require.Equal(t, "7", string(w.msgs[0].Key))

		var decoded messaging.MutationEvent
		require.NoError(t, json.Unmarshal(w.msgs[0].Value, &decoded))
		require.Equal(t, messaging.EventProductDeleted, decoded.Type)
		require.Equal(t, 7, decoded.ProductID)
	})

	t.Run("WrapsWriterErrors", func(t *testing.T) {
		boom := errors.New("broker down")
		p := &kafkaPublisher{writer: &recordingWriter{err: boom}, topic: "t", log: logger}

		err := p.PublishEvent(context.Background(), "1", messaging.MutationEvent{})
		require.ErrorIs(t, err, boom)
	})
}
