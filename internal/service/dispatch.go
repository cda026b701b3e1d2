package service

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/delivery-partner/internal/model"
)

// OrderFeed описывает источник новых заказов от диспетчерской.
type OrderFeed interface {
	FetchOrders(ctx context.Context, partnerID string) ([]model.OrderPayload, int, time.Duration, error)
}

// RunDispatchFeed опрашивает ленту диспетчерской с указанным интервалом до отмены контекста.
// Пока партнёр офлайн или не вошёл в систему, лента не запрашивается.
func (s *Service) RunDispatchFeed(ctx context.Context, feed OrderFeed, interval time.Duration) {
	if feed == nil {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.pollDispatch(ctx, feed)
		}
	}
}

func (s *Service) pollDispatch(ctx context.Context, feed OrderFeed) int {
	sess, ok := s.sessions.Current()
	if !ok || !sess.Online {
		return 0
	}

	payloads, statusCode, retryAfter, err := feed.FetchOrders(ctx, sess.Partner.ID)
	if err != nil {
		s.logger.Warn("dispatch feed request failed", zap.Error(err))
		return 0
	}

	if statusCode == http.StatusTooManyRequests {
		if retryAfter > 0 {
			timer := time.NewTimer(retryAfter)
			select {
			case <-ctx.Done():
				timer.Stop()
			case <-timer.C:
			}
		}
		return 0
	}

	added := 0
	for _, p := range payloads {
		// Повторно присланные заказы отбрасываются хранилищем как дубликаты.
		if _, err := s.AddOrder(p); err != nil {
			continue
		}
		added++
	}

	if added > 0 {
		s.logger.Info("orders received from dispatch", zap.Int("count", added))
	}
	return added
}
