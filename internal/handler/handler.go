// Package handler содержит HTTP-обработчики API сервиса курьера-партнёра.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/delivery-partner/internal/earnings"
	"github.com/mmeshcher/delivery-partner/internal/metrics"
	"github.com/mmeshcher/delivery-partner/internal/middleware"
	"github.com/mmeshcher/delivery-partner/internal/model"
	"github.com/mmeshcher/delivery-partner/internal/order"
	"github.com/mmeshcher/delivery-partner/internal/service"
	"github.com/mmeshcher/delivery-partner/internal/session"
	"github.com/mmeshcher/delivery-partner/internal/validation"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	Login(c session.Credentials) (model.Session, error)
	Signup(r session.SignupRequest) (model.Session, error)
	Logout()
	Session() (model.Session, error)
	ToggleOnline() (bool, error)
	UpdateProfile(u session.ProfileUpdate) (model.Partner, error)

	AddOrder(p model.OrderPayload) (model.Order, error)
	ListOrders(f model.Filter) []model.Order
	PendingFeed() service.PendingFeed
	ActiveOrder() (model.Order, bool)
	GetOrder(id string) (model.Order, error)
	AcceptOrder(id string) (model.Order, error)
	RejectOrder(id string) error
	PickupOrder(id string) (model.Order, error)
	DeliverOrder(id string) (model.Order, error)

	Earnings(period string) (model.EarningsSummary, error)
}

// Handler реализует HTTP-обработчики API сервиса курьера-партнёра.
type Handler struct {
	service        Service
	logger         *zap.Logger
	authMiddleware *middleware.AuthMiddleware
	metrics        *metrics.Metrics
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger, auth *middleware.AuthMiddleware, m *metrics.Metrics) *Handler {
	return &Handler{
		service:        s,
		logger:         logger,
		authMiddleware: auth,
		metrics:        m,
	}
}

// Login открывает сессию партнёра и устанавливает cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req session.Credentials
	if !h.decode(w, r, &req) {
		return
	}

	sess, err := h.service.Login(req)
	if err != nil {
		h.writeError(w, err, "login error")
		return
	}

	h.authMiddleware.SetAuthCookie(w, sess.Partner.ID)
	writeJSON(w, http.StatusOK, sess)
}

// Signup регистрирует партнёра, открывает сессию и устанавливает cookie.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req session.SignupRequest
	if !h.decode(w, r, &req) {
		return
	}

	sess, err := h.service.Signup(req)
	if err != nil {
		h.writeError(w, err, "signup error")
		return
	}

	h.authMiddleware.SetAuthCookie(w, sess.Partner.ID)
	writeJSON(w, http.StatusOK, sess)
}

// Logout закрывает сессию и удаляет cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.service.Logout()
	h.authMiddleware.ClearAuthCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// GetSession возвращает текущую сессию партнёра.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.Session()
	if err != nil {
		h.writeError(w, err, "get session error")
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

type onlineResponse struct {
	Online bool `json:"online"`
}

// ToggleOnline переключает доступность партнёра.
func (h *Handler) ToggleOnline(w http.ResponseWriter, r *http.Request) {
	online, err := h.service.ToggleOnline()
	if err != nil {
		h.writeError(w, err, "toggle online error")
		return
	}
	writeJSON(w, http.StatusOK, onlineResponse{Online: online})
}

// UpdateProfile обновляет профиль партнёра.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req session.ProfileUpdate
	if !h.decode(w, r, &req) {
		return
	}

	p, err := h.service.UpdateProfile(req)
	if err != nil {
		h.writeError(w, err, "update profile error")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// AddOrder принимает заказ из ленты диспетчерской.
func (h *Handler) AddOrder(w http.ResponseWriter, r *http.Request) {
	var req model.OrderPayload
	if !h.decode(w, r, &req) {
		return
	}

	o, err := h.service.AddOrder(req)
	if err != nil {
		h.writeError(w, err, "add order error")
		return
	}

	w.Header().Set("Location", "/api/orders/"+o.ID)
	writeJSON(w, http.StatusCreated, o)
}

// ListOrders возвращает заказы партнёра с учётом фильтра.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	f, err := order.ParseFilter(r.URL.Query().Get("filter"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, h.service.ListOrders(f))
}

// PendingOrders возвращает ленту ожидающих заказов.
func (h *Handler) PendingOrders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.PendingFeed())
}

// ActiveOrder возвращает активный заказ или 204, если его нет.
func (h *Handler) ActiveOrder(w http.ResponseWriter, r *http.Request) {
	o, ok := h.service.ActiveOrder()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// GetOrder возвращает заказ по идентификатору.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.GetOrder(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err, "get order error")
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// AcceptOrder принимает заказ.
func (h *Handler) AcceptOrder(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.AcceptOrder)
}

// PickupOrder отмечает заказ забранным.
func (h *Handler) PickupOrder(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.PickupOrder)
}

// DeliverOrder отмечает заказ доставленным.
func (h *Handler) DeliverOrder(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.DeliverOrder)
}

// RejectOrder отклоняет заказ.
func (h *Handler) RejectOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.service.RejectOrder(chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err, "reject order error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, apply func(id string) (model.Order, error)) {
	o, err := apply(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err, "order transition error")
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// GetEarnings возвращает сводку заработка за период.
func (h *Handler) GetEarnings(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Earnings(r.URL.Query().Get("period"))
	if err != nil {
		h.writeError(w, err, "get earnings error")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// RequireSession пропускает запрос, только если cookie принадлежит партнёру текущей сессии.
func (h *Handler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		partnerID, ok := middleware.GetPartnerIDFromContext(r.Context())
		if !ok {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		sess, err := h.service.Session()
		if err != nil || sess.Partner.ID != partnerID {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return false
	}
	return true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, order.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, order.ErrDuplicate),
		errors.Is(err, service.ErrPartnerOffline):
		return http.StatusConflict
	case errors.Is(err, session.ErrNoSession):
		return http.StatusUnauthorized
	case errors.Is(err, session.ErrInvalidCredentials),
		errors.Is(err, validation.ErrInvalid):
		return http.StatusUnprocessableEntity
	case errors.Is(err, earnings.ErrUnknownPeriod):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error, msg string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error(msg, zap.Error(err))
		http.Error(w, http.StatusText(status), status)
		return
	}
	http.Error(w, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
