package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mmeshcher/delivery-partner/internal/metrics"
	"github.com/mmeshcher/delivery-partner/internal/model"
	"github.com/mmeshcher/delivery-partner/internal/order"
	"github.com/mmeshcher/delivery-partner/internal/session"
)

type stubFeed struct {
	payloads   []model.OrderPayload
	statusCode int
	retryAfter time.Duration
	err        error

	calls     int
	partnerID string
}

func (f *stubFeed) FetchOrders(ctx context.Context, partnerID string) ([]model.OrderPayload, int, time.Duration, error) {
	f.calls++
	f.partnerID = partnerID
	return f.payloads, f.statusCode, f.retryAfter, f.err
}

func TestPollDispatch_AddsNewOrders(t *testing.T) {
	svc := NewService(order.NewStore(), session.NewManager(), metrics.New(), zap.NewNop())
	login(t, svc)

	feed := &stubFeed{
		statusCode: http.StatusOK,
		payloads:   []model.OrderPayload{payload("ORD010", "30"), payload("ORD011", "25")},
	}

	assert.Equal(t, 2, svc.pollDispatch(context.Background(), feed))
	assert.Len(t, svc.PendingOrders(), 2)

	sess, err := svc.Session()
	require.NoError(t, err)
	assert.Equal(t, sess.Partner.ID, feed.partnerID)

	// повторная выдача тех же заказов не создаёт дубликатов
	assert.Equal(t, 0, svc.pollDispatch(context.Background(), feed))
	assert.Len(t, svc.PendingOrders(), 2)
}

func TestPollDispatch_SkippedWhileOffline(t *testing.T) {
	svc := NewService(order.NewStore(), session.NewManager(), metrics.New(), zap.NewNop())
	feed := &stubFeed{statusCode: http.StatusOK, payloads: []model.OrderPayload{payload("ORD010", "30")}}

	assert.Equal(t, 0, svc.pollDispatch(context.Background(), feed))

	login(t, svc)
	_, err := svc.ToggleOnline()
	require.NoError(t, err)

	assert.Equal(t, 0, svc.pollDispatch(context.Background(), feed))
	assert.Equal(t, 0, feed.calls)
}

func TestPollDispatch_TooManyRequestsHonoursContext(t *testing.T) {
	svc := NewService(order.NewStore(), session.NewManager(), metrics.New(), zap.NewNop())
	login(t, svc)

	feed := &stubFeed{statusCode: http.StatusTooManyRequests, retryAfter: time.Hour}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan int)
	go func() {
		done <- svc.pollDispatch(ctx, feed)
	}()

	select {
	case n := <-done:
		assert.Equal(t, 0, n)
	case <-time.After(time.Second):
		t.Fatalf("pollDispatch did not return after context cancellation")
	}
}

func TestRunDispatchFeed_NoFeed(t *testing.T) {
	svc := &Service{}

	done := make(chan struct{})
	go func() {
		svc.RunDispatchFeed(context.Background(), nil, time.Millisecond)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(200 * time.Millisecond):
		t.Fatalf("RunDispatchFeed did not return without feed")
	}
}

func TestRunDispatchFeed_StopsOnCancel(t *testing.T) {
	svc := NewService(order.NewStore(), session.NewManager(), metrics.New(), zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		svc.RunDispatchFeed(ctx, &stubFeed{}, 5*time.Millisecond)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("RunDispatchFeed did not stop after context cancellation")
	}
}
