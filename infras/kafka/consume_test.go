package kafka

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quickRetry = retryPolicy{initial: time.Millisecond, max: 2 * time.Millisecond}

// fakeReader serves a fixed partition and records fetches and commits in order.
// Once drained it cancels the consumer.
type fakeReader struct {
	mu        sync.Mutex
	messages  []kafkaGo.Message
	fetchErrs []error
	cancel    context.CancelFunc
	events    []string
}

func (r *fakeReader) record(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, event)
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafkaGo.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.fetchErrs) > 0 {
		err := r.fetchErrs[0]
		r.fetchErrs = r.fetchErrs[1:]

		return kafkaGo.Message{}, err
	}

	if len(r.messages) == 0 {
		r.cancel()

		return kafkaGo.Message{}, ctx.Err()
	}

	msg := r.messages[0]
	r.messages = r.messages[1:]

	return msg, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafkaGo.Message) error {
	for _, msg := range msgs {
		r.record(fmt.Sprintf("commit:%d", msg.Offset))
	}

	return nil
}

func (r *fakeReader) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.events...)
}

func TestConsume(t *testing.T) {
	tests := []struct {
		name      string
		fetchErrs []error
		failures  map[int64]int
		want      []string
	}{
		{
			name: "commits each accepted message in order",
			want: []string{"handle:10", "commit:10", "handle:11", "commit:11"},
		},
		{
			name:     "failed message is retried before any later commit",
			failures: map[int64]int{10: 2},
			want:     []string{"handle:10", "handle:10", "handle:10", "commit:10", "handle:11", "commit:11"},
		},
		{
			name:      "fetch errors back off and resume",
			fetchErrs: []error{errors.New("broker unavailable")},
			want:      []string{"handle:10", "commit:10", "handle:11", "commit:11"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			reader := &fakeReader{
				messages:  []kafkaGo.Message{{Offset: 10}, {Offset: 11}},
				fetchErrs: tt.fetchErrs,
				cancel:    cancel,
			}

			remaining := map[int64]int{}
			for offset, count := range tt.failures {
				remaining[offset] = count
			}

			handler := func(_ context.Context, msg kafkaGo.Message) error {
				reader.record(fmt.Sprintf("handle:%d", msg.Offset))

				if remaining[msg.Offset] > 0 {
					remaining[msg.Offset]--

					return errors.New("store unavailable")
				}

				return nil
			}

			err := consume(ctx, reader, "payment.confirmed", handler, quickRetry)
			require.NoError(t, err)

			assert.Equal(t, tt.want, reader.Events())
		})
	}
}

func TestConsume_StopsWithoutCommittingRejectedMessage(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &fakeReader{messages: []kafkaGo.Message{{Offset: 10}, {Offset: 11}}, cancel: cancel}

	attempts := 0
	handler := func(_ context.Context, msg kafkaGo.Message) error {
		reader.record(fmt.Sprintf("handle:%d", msg.Offset))

		if attempts++; attempts == 3 {
			cancel()
		}

		return errors.New("store unavailable")
	}

	err := consume(ctx, reader, "payment.confirmed", handler, quickRetry)
	require.NoError(t, err)

	assert.Equal(t, []string{"handle:10", "handle:10", "handle:10"}, reader.Events())
}

func TestRetryPolicy_Next(t *testing.T) {
	policy := retryPolicy{initial: time.Second, max: 5 * time.Second}

	assert.Equal(t, time.Second, policy.next(0))
	assert.Equal(t, 2*time.Second, policy.next(time.Second))
	assert.Equal(t, 4*time.Second, policy.next(2*time.Second))
	assert.Equal(t, 5*time.Second, policy.next(4*time.Second))
}
