package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
)

type recordingWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func TestKafkaPublisherPublish(t *testing.T) {
	w := &recordingWriter{}
	p := &KafkaPublisher{writer: w}
	ev := ProductEvent{
		Type:         ProductUpdated,
		ProductID:    42,
		Image:        "abc.webp",
		ImageURL:     "/uploads/optimized/abc.webp",
		ThumbnailURL: "/uploads/thumbnails/abc-thumb.webp",
		OccurredAt:   time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
	if err := p.Publish(context.Background(), ev); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(w.msgs))
	}
	msg := w.msgs[0]
	if string(msg.Key) != "42" {
		t.Fatalf("key = %q", msg.Key)
	}
	if len(msg.Headers) != 1 || string(msg.Headers[0].Value) != string(ProductUpdated) {
		t.Fatalf("headers = %+v", msg.Headers)
	}
	var got ProductEvent
	if err := json.Unmarshal(msg.Value, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !got.OccurredAt.Equal(ev.OccurredAt) {
		t.Fatalf("occurredAt = %v", got.OccurredAt)
	}
	got.OccurredAt = ev.OccurredAt
	if got != ev {
		t.Fatalf("payload mismatch: %+v", got)
	}
}

func TestKafkaPublisherWriteError(t *testing.T) {
	p := &KafkaPublisher{writer: &recordingWriter{err: errors.New("broker down")}}
	if err := p.Publish(context.Background(), ProductEvent{Type: ProductDeleted, ProductID: 1}); err == nil {
		t.Fatal("expected error")
	}
}
