package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/feedwatch/pkg/domain"
	"github.com/umputun/feedwatch/pkg/scheduler/mocks"
)

// eventLog records notifier sends and pacing pauses in order
type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, s)
}

func (l *eventLog) get() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	res := make([]string, len(l.events))
	copy(res, l.events)
	return res
}

func newTestDispatcher(notifier Notifier, journal Journal, log *eventLog) *Dispatcher {
	d := NewDispatcher(DispatcherParams{Notifier: notifier, Journal: journal, Pacing: 3 * time.Second})
	d.sleep = func(_ context.Context, dur time.Duration) error {
		log.add("sleep " + dur.String())
		return nil
	}
	return d
}

func TestDispatcher_DispatchAll(t *testing.T) {
	t.Run("elevated first then normal, pause after each", func(t *testing.T) {
		log := &eventLog{}
		notifier := &mocks.NotifierMock{
			NotifyFunc: func(ctx context.Context, item domain.Item) error {
				log.add("send " + item.Title)
				return nil
			},
		}
		d := newTestDispatcher(notifier, nil, log)

		elevated := []domain.Item{{Title: "e1", Tier: domain.TierElevated}, {Title: "e2", Tier: domain.TierElevated}}
		normal := []domain.Item{{Title: "n1"}, {Title: "n2"}}
		sent, failed := d.DispatchAll(context.Background(), elevated, normal)

		assert.Equal(t, 4, sent)
		assert.Equal(t, 0, failed)
		assert.Equal(t, []string{
			"send e1", "sleep 3s", "send e2", "sleep 3s",
			"send n1", "sleep 3s", "send n2", "sleep 3s",
		}, log.get())
	})

	t.Run("failures don't stop remaining sends and are still paced", func(t *testing.T) {
		log := &eventLog{}
		notifier := &mocks.NotifierMock{
			NotifyFunc: func(ctx context.Context, item domain.Item) error {
				log.add("send " + item.Title)
				if item.Title == "e1" || item.Title == "n1" {
					return errors.New("telegram: Too Many Requests: retry after 5")
				}
				return nil
			},
		}
		d := newTestDispatcher(notifier, nil, log)

		sent, failed := d.DispatchAll(context.Background(),
			[]domain.Item{{Title: "e1", Tier: domain.TierElevated}}, []domain.Item{{Title: "n1"}, {Title: "n2"}})
		assert.Equal(t, 1, sent)
		assert.Equal(t, 2, failed)
		assert.Equal(t, []string{"send e1", "sleep 3s", "send n1", "sleep 3s", "send n2", "sleep 3s"}, log.get())
		assert.Len(t, notifier.NotifyCalls(), 3, "single attempt per item, no retry")
	})

	t.Run("empty lists", func(t *testing.T) {
		notifier := &mocks.NotifierMock{}
		log := &eventLog{}
		d := newTestDispatcher(notifier, nil, log)
		sent, failed := d.DispatchAll(context.Background(), nil, nil)
		assert.Zero(t, sent)
		assert.Zero(t, failed)
		assert.Empty(t, log.get())
	})

	t.Run("journal records every attempt", func(t *testing.T) {
		sendErr := errors.New("chat not found")
		notifier := &mocks.NotifierMock{
			NotifyFunc: func(ctx context.Context, item domain.Item) error {
				if item.Title == "bad" {
					return sendErr
				}
				return nil
			},
		}
		journal := &mocks.JournalMock{
			RecordFunc: func(ctx context.Context, item domain.Item, err error) error {
				return errors.New("database is locked")
			},
		}
		d := newTestDispatcher(notifier, journal, &eventLog{})

		sent, failed := d.DispatchAll(context.Background(), nil, []domain.Item{{Title: "good"}, {Title: "bad"}})
		assert.Equal(t, 1, sent, "journal failure doesn't affect dispatch")
		assert.Equal(t, 1, failed)

		calls := journal.RecordCalls()
		require.Len(t, calls, 2)
		assert.Equal(t, "good", calls[0].Item.Title)
		assert.NoError(t, calls[0].SendErr)
		assert.Equal(t, "bad", calls[1].Item.Title)
		assert.ErrorIs(t, calls[1].SendErr, sendErr)
	})

	t.Run("canceled context stops after current send", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		notifier := &mocks.NotifierMock{
			NotifyFunc: func(ctx context.Context, item domain.Item) error {
				cancel()
				return nil
			},
		}
		d := NewDispatcher(DispatcherParams{Notifier: notifier, Pacing: time.Hour})

		st := time.Now()
		sent, failed := d.DispatchAll(ctx, []domain.Item{{Title: "e1"}}, []domain.Item{{Title: "n1"}})
		assert.Equal(t, 1, sent)
		assert.Equal(t, 0, failed)
		assert.Len(t, notifier.NotifyCalls(), 1)
		assert.Less(t, time.Since(st), time.Minute, "pause is interrupted by cancellation")
	})
}

func TestDispatcher_RealPacing(t *testing.T) {
	var mu sync.Mutex
	var sentAt []time.Time
	notifier := &mocks.NotifierMock{
		NotifyFunc: func(ctx context.Context, item domain.Item) error {
			mu.Lock()
			sentAt = append(sentAt, time.Now())
			mu.Unlock()
			return nil
		},
	}
	d := NewDispatcher(DispatcherParams{Notifier: notifier, Pacing: 50 * time.Millisecond})
	st := time.Now()
	d.DispatchAll(context.Background(), []domain.Item{{Title: "a"}}, []domain.Item{{Title: "b"}, {Title: "c"}})

	require.Len(t, sentAt, 3)
	for i := 1; i < len(sentAt); i++ {
		assert.GreaterOrEqual(t, sentAt[i].Sub(sentAt[i-1]), 50*time.Millisecond)
	}
	assert.GreaterOrEqual(t, time.Since(st), 150*time.Millisecond, "pause follows the last send too")
}

func TestNewDispatcher_DefaultPacing(t *testing.T) {
	d := NewDispatcher(DispatcherParams{Notifier: &mocks.NotifierMock{}})
	assert.Equal(t, DefaultPacing, d.pacing)
	assert.Equal(t, 3*time.Second, d.pacing)
}
