package order

import (
	"fmt"

	"github.com/mmeshcher/delivery-partner/internal/model"
)

// List возвращает снимок всех заказов в порядке добавления.
func (s *Store) List() []model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := make([]model.Order, 0, len(s.orders))
	for _, o := range s.orders {
		res = append(res, o.Clone())
	}
	return res
}

// Pending возвращает заказы в статусе pending в порядке добавления.
func (s *Store) Pending() []model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := make([]model.Order, 0)
	for _, o := range s.orders {
		if o.Status == model.OrderStatusPending {
			res = append(res, o.Clone())
		}
	}
	return res
}

// Active возвращает текущий активный заказ, если он есть.
func (s *Store) Active() (model.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activeID == "" {
		return model.Order{}, false
	}
	pos, ok := s.index[s.activeID]
	if !ok {
		return model.Order{}, false
	}
	return s.orders[pos].Clone(), true
}

// Get возвращает заказ по идентификатору.
func (s *Store) Get(id string) (model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := s.find(id)
	if err != nil {
		return model.Order{}, err
	}
	return o.Clone(), nil
}

// Stats возвращает количество заказов в каждом статусе.
func (s *Store) Stats() map[model.OrderStatus]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := map[model.OrderStatus]int{
		model.OrderStatusPending:   0,
		model.OrderStatusAccepted:  0,
		model.OrderStatusPicked:    0,
		model.OrderStatusDelivered: 0,
		model.OrderStatusCancelled: 0,
	}
	for _, o := range s.orders {
		res[o.Status]++
	}
	return res
}

// ParseFilter разбирает название фильтра; пустая строка означает все заказы.
func ParseFilter(v string) (model.Filter, error) {
	switch model.Filter(v) {
	case "", model.FilterAll:
		return model.FilterAll, nil
	case model.FilterActive:
		return model.FilterActive, nil
	case model.FilterCompleted:
		return model.FilterCompleted, nil
	default:
		return "", fmt.Errorf("unknown filter %q", v)
	}
}

// Filter отбирает заказы для отображения, сохраняя их порядок.
func Filter(orders []model.Order, f model.Filter) []model.Order {
	res := make([]model.Order, 0, len(orders))
	for _, o := range orders {
		if matches(o.Status, f) {
			res = append(res, o)
		}
	}
	return res
}

func matches(status model.OrderStatus, f model.Filter) bool {
	switch f {
	case model.FilterActive:
		return status == model.OrderStatusPending ||
			status == model.OrderStatusAccepted ||
			status == model.OrderStatusPicked
	case model.FilterCompleted:
		return status == model.OrderStatusDelivered || status == model.OrderStatusCancelled
	default:
		return true
	}
}
