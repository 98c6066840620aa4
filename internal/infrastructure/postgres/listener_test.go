package postgres

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Mayorista-api/internal/application/feed"
)

type fakeConn struct {
	payloads []string
	execSQL  string
}

func (c *fakeConn) Exec(_ context.Context, sql string, _ ...any) (pgconnCommandTag, error) {
	c.execSQL = sql
	return pgconnCommandTag{}, nil
}

func (c *fakeConn) WaitForNotification(ctx context.Context) (string, error) {
	if len(c.payloads) == 0 {
		return "", errors.New("conexión cerrada")
	}
	p := c.payloads[0]
	c.payloads = c.payloads[1:]
	return p, nil
}

func (c *fakeConn) Close(context.Context) error { return nil }

type captureBus struct {
	mu     sync.Mutex
	events []feed.OrderEvent
}

func (b *captureBus) Publish(_ context.Context, ev feed.OrderEvent) {
	b.mu.Lock()
	b.events = append(b.events, ev)
	b.mu.Unlock()
}

type countRecorder struct{ n int }

func (r *countRecorder) Reconnected() { r.n++ }

func TestListener_GivesUpAfterMaxReconnects(t *testing.T) {
	attempts := 0
	rec := &countRecorder{}
	l := &Listener{
		connect: func(context.Context) (notificationConn, error) {
			attempts++
			return nil, errors.New("connection refused")
		},
		channel:  "order_events",
		bus:      &captureBus{},
		recorder: rec,
		backoff:  reconnectBackOff(time.Millisecond, 5),
		log:      zerolog.Nop(),
	}

	err := l.Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "reintentos agotados")
	assert.Equal(t, 6, attempts, "intento inicial + 5 reintentos")
	assert.Equal(t, 5, rec.n)
}

func TestListener_PublishesDecodedEventsAndSkipsInvalid(t *testing.T) {
	conn := &fakeConn{payloads: []string{
		`{"order_id":"o1","company_id":"c1","old_status":"draft","new_status":"confirmed","changed_at":"2026-01-02T10:00:00Z"}`,
		`no-json`,
		`{"order_id":"o2","company_id":"c1","old_status":"confirmed","new_status":"processing","changed_at":"2026-01-02T11:00:00Z"}`,
	}}
	bus := &captureBus{}
	calls := 0
	l := &Listener{
		connect: func(context.Context) (notificationConn, error) {
			calls++
			if calls > 1 {
				return nil, errors.New("down")
			}
			return conn, nil
		},
		channel: "order_events",
		bus:     bus,
		backoff: reconnectBackOff(time.Millisecond, 1),
		log:     zerolog.Nop(),
	}

	err := l.Run(context.Background())

	require.Error(t, err)
	assert.Equal(t, `LISTEN "order_events"`, conn.execSQL)
	require.Len(t, bus.events, 2)
	assert.Equal(t, "o1", bus.events[0].OrderID)
	assert.Equal(t, "confirmed", bus.events[0].NewStatus)
	assert.Equal(t, "processing", bus.events[1].NewStatus)
}

func TestListener_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	l := &Listener{
		connect: func(context.Context) (notificationConn, error) {
			cancel()
			return nil, context.Canceled
		},
		channel: "order_events",
		bus:     &captureBus{},
		backoff: reconnectBackOff(time.Hour, 5),
		log:     zerolog.Nop(),
	}

	assert.NoError(t, l.Run(ctx))
}

func TestReconnectBackOff_DoublesFromBase(t *testing.T) {
	b := reconnectBackOff(time.Second, 3)()

	assert.Equal(t, time.Second, b.NextBackOff())
	assert.Equal(t, 2*time.Second, b.NextBackOff())
	assert.Equal(t, 4*time.Second, b.NextBackOff())
	assert.Equal(t, time.Duration(-1), b.NextBackOff())
}
