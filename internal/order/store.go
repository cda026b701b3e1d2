// Package order реализует хранилище заказов и машину состояний их жизненного цикла.
package order

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mmeshcher/delivery-partner/internal/model"
	"github.com/mmeshcher/delivery-partner/internal/validation"
)

// Transition описывает событие жизненного цикла заказа.
type Transition string

const (
	TransitionAccept  Transition = "accept"
	TransitionReject  Transition = "reject"
	TransitionPickup  Transition = "pickup"
	TransitionDeliver Transition = "deliver"
)

// Store владеет коллекцией заказов и ссылкой на единственный активный заказ.
// Все операции выполняются атомарно под одной блокировкой.
type Store struct {
	mu       sync.Mutex
	orders   []*model.Order
	index    map[string]int
	activeID string
	now      func() time.Time
}

// Option настраивает Store.
type Option func(*Store)

// WithClock задаёт источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore создаёт пустое хранилище заказов.
func NewStore(opts ...Option) *Store {
	s := &Store{
		index: make(map[string]int),
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddOrder добавляет новый заказ в статусе pending. Если идентификатор не задан, он генерируется.
func (s *Store) AddOrder(p model.OrderPayload) (model.Order, error) {
	if err := validation.OrderPayload(p); err != nil {
		return model.Order{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := p.ID
	if id == "" {
		id = newOrderID()
	}
	if _, ok := s.index[id]; ok {
		return model.Order{}, fmt.Errorf("%w: %s", ErrDuplicate, id)
	}

	items := make([]model.OrderItem, len(p.Items))
	copy(items, p.Items)

	o := &model.Order{
		ID:               id,
		Status:           model.OrderStatusPending,
		PickupLocation:   p.PickupLocation,
		DeliveryLocation: p.DeliveryLocation,
		CustomerName:     p.CustomerName,
		CustomerPhone:    p.CustomerPhone,
		Items:            items,
		TotalAmount:      p.TotalAmount,
		DeliveryFee:      p.DeliveryFee,
		Distance:         p.Distance,
		EstimatedTime:    p.EstimatedTime,
		CreatedAt:        s.now(),
	}

	s.index[id] = len(s.orders)
	s.orders = append(s.orders, o)

	return o.Clone(), nil
}

func newOrderID() string {
	return "ORD-" + uuid.NewString()[:8]
}

// Accept переводит заказ из pending в accepted и делает его активным.
func (s *Store) Accept(id string) (model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := s.find(id)
	if err != nil {
		return model.Order{}, err
	}
	if o.Status != model.OrderStatusPending {
		return model.Order{}, fmt.Errorf("%w: accept %s in status %s", ErrInvalidTransition, id, o.Status)
	}
	if s.activeID != "" && s.activeID != id {
		return model.Order{}, fmt.Errorf("%w: %s", ErrActiveOrderExists, s.activeID)
	}

	now := s.now()
	o.Status = model.OrderStatusAccepted
	o.AcceptedAt = &now
	s.activeID = id

	return o.Clone(), nil
}

// Reject удаляет заказ из коллекции независимо от его статуса.
func (s *Store) Reject(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	s.orders = append(s.orders[:pos], s.orders[pos+1:]...)
	delete(s.index, id)
	for i := pos; i < len(s.orders); i++ {
		s.index[s.orders[i].ID] = i
	}

	if s.activeID == id {
		s.activeID = ""
	}

	return nil
}

// Pickup переводит заказ из accepted в picked.
func (s *Store) Pickup(id string) (model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := s.find(id)
	if err != nil {
		return model.Order{}, err
	}
	if o.Status != model.OrderStatusAccepted {
		return model.Order{}, fmt.Errorf("%w: pickup %s in status %s", ErrInvalidTransition, id, o.Status)
	}

	now := s.now()
	o.Status = model.OrderStatusPicked
	o.PickedAt = &now

	return o.Clone(), nil
}

// Deliver переводит заказ из picked в delivered. Ссылка на активный заказ
// сбрасывается только если она указывает на этот же заказ.
func (s *Store) Deliver(id string) (model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := s.find(id)
	if err != nil {
		return model.Order{}, err
	}
	if o.Status != model.OrderStatusPicked {
		return model.Order{}, fmt.Errorf("%w: deliver %s in status %s", ErrInvalidTransition, id, o.Status)
	}

	now := s.now()
	o.Status = model.OrderStatusDelivered
	o.DeliveredAt = &now
	if s.activeID == id {
		s.activeID = ""
	}

	return o.Clone(), nil
}

func (s *Store) find(id string) (*model.Order, error) {
	pos, ok := s.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.orders[pos], nil
}
