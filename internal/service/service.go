// Package service реализует бизнес-логику сервиса курьера-партнёра.
package service

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/delivery-partner/internal/earnings"
	"github.com/mmeshcher/delivery-partner/internal/metrics"
	"github.com/mmeshcher/delivery-partner/internal/model"
	"github.com/mmeshcher/delivery-partner/internal/order"
	"github.com/mmeshcher/delivery-partner/internal/session"
)

// ErrPartnerOffline возвращается при попытке принять заказ, находясь офлайн.
var ErrPartnerOffline = errors.New("partner is offline")

// OrderStore описывает контракт хранилища заказов, используемый сервисом.
type OrderStore interface {
	AddOrder(p model.OrderPayload) (model.Order, error)
	List() []model.Order
	Pending() []model.Order
	Active() (model.Order, bool)
	Get(id string) (model.Order, error)
	Stats() map[model.OrderStatus]int
	Accept(id string) (model.Order, error)
	Reject(id string) error
	Pickup(id string) (model.Order, error)
	Deliver(id string) (model.Order, error)
}

// SessionManager описывает контракт хранилища сессии партнёра.
type SessionManager interface {
	Login(c session.Credentials) (model.Session, error)
	Signup(r session.SignupRequest) (model.Session, error)
	Logout()
	ToggleOnline() (bool, error)
	UpdateProfile(u session.ProfileUpdate) (model.Partner, error)
	Current() (model.Session, bool)
	IsOnline() bool
}

// PendingFeed содержит ленту ожидающих заказов с учётом доступности партнёра.
type PendingFeed struct {
	Online bool          `json:"online"`
	Orders []model.Order `json:"orders"`
}

// Service содержит бизнес-логику сервиса курьера-партнёра.
type Service struct {
	orders   OrderStore
	sessions SessionManager
	metrics  *metrics.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewService создаёт сервис поверх хранилища заказов и менеджера сессии.
func NewService(orders OrderStore, sessions SessionManager, m *metrics.Metrics, logger *zap.Logger) *Service {
	s := &Service{
		orders:   orders,
		sessions: sessions,
		metrics:  m,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
	m.WatchOrderStats(orders.Stats)
	return s
}

// Login открывает сессию партнёра.
func (s *Service) Login(c session.Credentials) (model.Session, error) {
	sess, err := s.sessions.Login(c)
	if err != nil {
		return model.Session{}, err
	}
	s.logger.Info("partner logged in", zap.String("partner_id", sess.Partner.ID))
	s.metrics.SetOnline(sess.Online)
	return sess, nil
}

// Signup регистрирует партнёра и открывает сессию.
func (s *Service) Signup(r session.SignupRequest) (model.Session, error) {
	sess, err := s.sessions.Signup(r)
	if err != nil {
		return model.Session{}, err
	}
	s.logger.Info("partner signed up", zap.String("partner_id", sess.Partner.ID))
	s.metrics.SetOnline(sess.Online)
	return sess, nil
}

// Logout закрывает сессию партнёра. Заказы сохраняются.
func (s *Service) Logout() {
	s.sessions.Logout()
	s.metrics.SetOnline(false)
	s.logger.Info("partner logged out")
}

// Session возвращает текущую сессию.
func (s *Service) Session() (model.Session, error) {
	sess, ok := s.sessions.Current()
	if !ok {
		return model.Session{}, session.ErrNoSession
	}
	return sess, nil
}

// ToggleOnline переключает доступность партнёра.
func (s *Service) ToggleOnline() (bool, error) {
	online, err := s.sessions.ToggleOnline()
	if err != nil {
		return false, err
	}
	s.metrics.SetOnline(online)
	s.logger.Info("partner availability changed", zap.Bool("online", online))
	return online, nil
}

// UpdateProfile обновляет профиль партнёра.
func (s *Service) UpdateProfile(u session.ProfileUpdate) (model.Partner, error) {
	return s.sessions.UpdateProfile(u)
}

// AddOrder добавляет заказ из ленты диспетчерской.
func (s *Service) AddOrder(p model.OrderPayload) (model.Order, error) {
	o, err := s.orders.AddOrder(p)
	if err != nil {
		s.logger.Warn("order rejected by store", zap.String("order_id", p.ID), zap.Error(err))
		return model.Order{}, err
	}
	s.logger.Info("order added", zap.String("order_id", o.ID))
	return o, nil
}

// ListOrders возвращает заказы, отобранные фильтром отображения.
func (s *Service) ListOrders(f model.Filter) []model.Order {
	return order.Filter(s.orders.List(), f)
}

// PendingOrders возвращает все ожидающие заказы независимо от доступности партнёра.
func (s *Service) PendingOrders() []model.Order {
	return s.orders.Pending()
}

// PendingFeed возвращает ожидающие заказы для показа партнёру. Офлайн лента пуста.
func (s *Service) PendingFeed() PendingFeed {
	if !s.sessions.IsOnline() {
		return PendingFeed{Online: false, Orders: []model.Order{}}
	}
	return PendingFeed{Online: true, Orders: s.orders.Pending()}
}

// ActiveOrder возвращает активный заказ, если он есть.
func (s *Service) ActiveOrder() (model.Order, bool) {
	return s.orders.Active()
}

// GetOrder возвращает заказ по идентификатору.
func (s *Service) GetOrder(id string) (model.Order, error) {
	return s.orders.Get(id)
}

// AcceptOrder принимает заказ. Офлайн принять заказ нельзя.
func (s *Service) AcceptOrder(id string) (model.Order, error) {
	if !s.sessions.IsOnline() {
		s.commandFailed(order.TransitionAccept, id, ErrPartnerOffline)
		return model.Order{}, ErrPartnerOffline
	}
	o, err := s.orders.Accept(id)
	if err != nil {
		s.commandFailed(order.TransitionAccept, id, err)
		return model.Order{}, err
	}
	s.transitioned(order.TransitionAccept, o.ID, model.OrderStatusPending, o.Status)
	return o, nil
}

// RejectOrder отклоняет заказ, удаляя его из коллекции.
func (s *Service) RejectOrder(id string) error {
	if err := s.orders.Reject(id); err != nil {
		s.commandFailed(order.TransitionReject, id, err)
		return err
	}
	s.logger.Info("order rejected", zap.String("order_id", id))
	s.metrics.ObserveTransition(string(order.TransitionReject))
	return nil
}

// PickupOrder отмечает заказ забранным.
func (s *Service) PickupOrder(id string) (model.Order, error) {
	o, err := s.orders.Pickup(id)
	if err != nil {
		s.commandFailed(order.TransitionPickup, id, err)
		return model.Order{}, err
	}
	s.transitioned(order.TransitionPickup, o.ID, model.OrderStatusAccepted, o.Status)
	return o, nil
}

// DeliverOrder отмечает заказ доставленным.
func (s *Service) DeliverOrder(id string) (model.Order, error) {
	o, err := s.orders.Deliver(id)
	if err != nil {
		s.commandFailed(order.TransitionDeliver, id, err)
		return model.Order{}, err
	}
	s.transitioned(order.TransitionDeliver, o.ID, model.OrderStatusPicked, o.Status)
	return o, nil
}

// Earnings возвращает сводку заработка за период.
func (s *Service) Earnings(period string) (model.EarningsSummary, error) {
	return earnings.Summarize(s.orders.List(), period, s.now())
}

func (s *Service) transitioned(t order.Transition, id string, from, to model.OrderStatus) {
	s.logger.Info("order transition",
		zap.String("order_id", id),
		zap.String("transition", string(t)),
		zap.String("from", from.String()),
		zap.String("to", to.String()),
	)
	s.metrics.ObserveTransition(string(t))
}

func (s *Service) commandFailed(t order.Transition, id string, err error) {
	s.logger.Warn("order command refused",
		zap.String("order_id", id),
		zap.String("transition", string(t)),
		zap.Error(err),
	)
	s.metrics.ObserveCommandError(string(t), reason(err))
}

func reason(err error) string {
	switch {
	case errors.Is(err, order.ErrNotFound):
		return "not_found"
	case errors.Is(err, order.ErrActiveOrderExists):
		return "active_order_exists"
	case errors.Is(err, order.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, ErrPartnerOffline):
		return "offline"
	default:
		return "other"
	}
}
