package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/well-registry/internal/domain"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	failures int
	calls    int
	written  []kafkago.Message
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	f.calls++
	if f.calls <= f.failures {
		return errors.New("leader not available")
	}
	f.written = append(f.written, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func testPublisher(w messageWriter) *Publisher {
	return &Publisher{writer: w, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func testChange(action domain.ChangeAction) domain.LocationChange {
	return domain.LocationChange{
		Action:     action,
		ID:         uuid.MustParse("6f1c1b52-7d5e-4b7a-9a55-3f3f4a1d2c10"),
		AgencyCode: "USGS",
		SiteNo:     "430406089232901",
		Source:     domain.SourceNWIS,
		User:       "admin",
		OccurredAt: time.Date(2024, 4, 26, 15, 10, 0, 0, time.UTC),
	}
}

func TestSerializeToMessage(t *testing.T) {
	change := testChange(domain.ActionCreated)

	msg, err := serializeToMessage(change)
	require.NoError(t, err)

	assert.Equal(t, []byte("6f1c1b52-7d5e-4b7a-9a55-3f3f4a1d2c10"), msg.Key)
	assert.JSONEq(t, `{
		"action": "created",
		"id": "6f1c1b52-7d5e-4b7a-9a55-3f3f4a1d2c10",
		"agency_cd": "USGS",
		"site_no": "430406089232901",
		"source": "nwis",
		"user": "admin",
		"occurred_at": "2024-04-26T15:10:00Z"
	}`, string(msg.Value))
	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "action", msg.Headers[0].Key)
	assert.Equal(t, []byte("created"), msg.Headers[0].Value)
	assert.Equal(t, "source", msg.Headers[1].Key)
	assert.Equal(t, []byte("nwis"), msg.Headers[1].Value)
	assert.Equal(t, []byte("2024-04-26T15:10:00Z"), msg.Headers[2].Value)
}

func TestPublishChanges_Batch(t *testing.T) {
	w := &fakeWriter{}
	p := testPublisher(w)

	err := p.PublishChanges(context.Background(), []domain.LocationChange{
		testChange(domain.ActionCreated), testChange(domain.ActionUpdated),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, w.calls)
	assert.Len(t, w.written, 2)
}

func TestPublishChanges_Empty(t *testing.T) {
	w := &fakeWriter{}
	require.NoError(t, testPublisher(w).PublishChanges(context.Background(), nil))
	assert.Zero(t, w.calls)
}

func TestPublishChanges_RetriesTransientFailure(t *testing.T) {
	w := &fakeWriter{failures: 1}

	err := testPublisher(w).PublishChanges(context.Background(), []domain.LocationChange{testChange(domain.ActionDeleted)})
	require.NoError(t, err)
	assert.Equal(t, 2, w.calls)
	assert.Len(t, w.written, 1)
}

func TestPublishChanges_GivesUp(t *testing.T) {
	w := &fakeWriter{failures: maxAttempts}

	err := testPublisher(w).PublishChanges(context.Background(), []domain.LocationChange{testChange(domain.ActionDeleted)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leader not available")
	assert.Equal(t, maxAttempts, w.calls)
}

func TestPublishChanges_StopsOnCancel(t *testing.T) {
	w := &fakeWriter{failures: maxAttempts}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := testPublisher(w).PublishChanges(ctx, []domain.LocationChange{testChange(domain.ActionDeleted)})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, w.calls)
}
