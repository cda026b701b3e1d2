// Package session хранит сессию курьера-партнёра и его доступность для заказов.
package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mmeshcher/delivery-partner/internal/model"
	"github.com/mmeshcher/delivery-partner/internal/validation"
)

var (
	// ErrNoSession возвращается, если партнёр не вошёл в систему.
	ErrNoSession = errors.New("no active session")
	// ErrInvalidCredentials возвращается при некорректно сформированных учётных данных.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Credentials содержит данные для входа. Проверяется только формат, пароль не сверяется.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignupRequest содержит данные для регистрации партнёра.
type SignupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// ProfileUpdate содержит изменяемые поля профиля. Пустые поля не меняются.
type ProfileUpdate struct {
	Name          string `json:"name"`
	Phone         string `json:"phone" validate:"omitempty,e164"`
	VehicleType   string `json:"vehicle_type" validate:"omitempty,oneof=bike scooter car"`
	VehicleNumber string `json:"vehicle_number"`
}

// Manager хранит не более одной сессии партнёра.
type Manager struct {
	mu      sync.Mutex
	current *model.Session
	now     func() time.Time
}

// NewManager создаёт менеджер без активной сессии.
func NewManager() *Manager {
	return &Manager{
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Login открывает сессию для партнёра с указанным email и переводит его в онлайн.
func (m *Manager) Login(c Credentials) (model.Session, error) {
	c.Email = normalizeEmail(c.Email)
	if err := validation.Struct(c); err != nil {
		return model.Session{}, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}

	email := c.Email
	return m.start(model.Partner{
		ID:    partnerID(email),
		Name:  nameFromEmail(email),
		Email: email,
	}), nil
}

// Signup регистрирует партнёра с указанным именем и сразу открывает сессию.
func (m *Manager) Signup(r SignupRequest) (model.Session, error) {
	r.Email = normalizeEmail(r.Email)
	if err := validation.Struct(r); err != nil {
		return model.Session{}, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}

	email := r.Email
	return m.start(model.Partner{
		ID:    partnerID(email),
		Name:  strings.TrimSpace(r.Name),
		Email: email,
	}), nil
}

func (m *Manager) start(p model.Partner) model.Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = &model.Session{
		Partner:   p,
		Online:    true,
		StartedAt: m.now(),
	}
	return *m.current
}

// Logout закрывает текущую сессию. Заказы не затрагиваются.
func (m *Manager) Logout() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = nil
}

// ToggleOnline переключает доступность партнёра и возвращает новое значение.
func (m *Manager) ToggleOnline() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return false, ErrNoSession
	}
	m.current.Online = !m.current.Online
	return m.current.Online, nil
}

// UpdateProfile обновляет профиль партнёра текущей сессии.
func (m *Manager) UpdateProfile(u ProfileUpdate) (model.Partner, error) {
	if err := validation.Struct(u); err != nil {
		return model.Partner{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return model.Partner{}, ErrNoSession
	}

	p := &m.current.Partner
	if name := strings.TrimSpace(u.Name); name != "" {
		p.Name = name
	}
	if u.Phone != "" {
		p.Phone = u.Phone
	}
	if u.VehicleType != "" {
		p.VehicleType = u.VehicleType
	}
	if u.VehicleNumber != "" {
		p.VehicleNumber = strings.ToUpper(strings.TrimSpace(u.VehicleNumber))
	}
	return *p, nil
}

// Current возвращает текущую сессию, если она есть.
func (m *Manager) Current() (model.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return model.Session{}, false
	}
	return *m.current, true
}

// IsOnline сообщает, вошёл ли партнёр и доступен ли он для заказов.
func (m *Manager) IsOnline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.current != nil && m.current.Online
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// partnerID выводит стабильный идентификатор партнёра из email.
func partnerID(email string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+email)).String()
}

func nameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}
