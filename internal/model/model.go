// Package model содержит доменные сущности сервиса курьера-партнёра.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus описывает этап жизненного цикла заказа.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusAccepted  OrderStatus = "accepted"
	OrderStatusPicked    OrderStatus = "picked"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// IsValid сообщает, входит ли статус в закрытый набор статусов заказа.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusAccepted, OrderStatusPicked, OrderStatusDelivered, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

func (s OrderStatus) String() string {
	return string(s)
}

// Location описывает точку забора или доставки заказа.
type Location struct {
	Latitude  float64 `json:"latitude" yaml:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" yaml:"longitude" validate:"gte=-180,lte=180"`
	Address   string  `json:"address" yaml:"address" validate:"required"`
	Landmark  string  `json:"landmark,omitempty" yaml:"landmark"`
}

// OrderItem описывает позицию заказа.
type OrderItem struct {
	Name     string          `json:"name" yaml:"name" validate:"required"`
	Quantity int             `json:"quantity" yaml:"quantity" validate:"gt=0"`
	Price    decimal.Decimal `json:"price" yaml:"price"`
}

// Order описывает заказ на доставку и отметки времени его переходов.
type Order struct {
	ID               string          `json:"id"`
	Status           OrderStatus     `json:"status"`
	PickupLocation   Location        `json:"pickup_location"`
	DeliveryLocation Location        `json:"delivery_location"`
	CustomerName     string          `json:"customer_name"`
	CustomerPhone    string          `json:"customer_phone"`
	Items            []OrderItem     `json:"items"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	DeliveryFee      decimal.Decimal `json:"delivery_fee"`
	Distance         float64         `json:"distance"`
	EstimatedTime    int             `json:"estimated_time"`
	CreatedAt        time.Time       `json:"created_at"`
	AcceptedAt       *time.Time      `json:"accepted_at,omitempty"`
	PickedAt         *time.Time      `json:"picked_at,omitempty"`
	DeliveredAt      *time.Time      `json:"delivered_at,omitempty"`
}

// Clone возвращает копию заказа, не разделяющую память с оригиналом.
func (o Order) Clone() Order {
	c := o
	if o.Items != nil {
		c.Items = make([]OrderItem, len(o.Items))
		copy(c.Items, o.Items)
	}
	c.AcceptedAt = cloneTime(o.AcceptedAt)
	c.PickedAt = cloneTime(o.PickedAt)
	c.DeliveredAt = cloneTime(o.DeliveredAt)
	return c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// OrderPayload содержит данные для создания заказа, поступающие от диспетчерской.
type OrderPayload struct {
	ID               string          `json:"id,omitempty" yaml:"id"`
	PickupLocation   Location        `json:"pickup_location" yaml:"pickup_location"`
	DeliveryLocation Location        `json:"delivery_location" yaml:"delivery_location"`
	CustomerName     string          `json:"customer_name" yaml:"customer_name" validate:"required"`
	CustomerPhone    string          `json:"customer_phone" yaml:"customer_phone"`
	Items            []OrderItem     `json:"items" yaml:"items" validate:"required,min=1,dive"`
	TotalAmount      decimal.Decimal `json:"total_amount" yaml:"total_amount"`
	DeliveryFee      decimal.Decimal `json:"delivery_fee" yaml:"delivery_fee"`
	Distance         float64         `json:"distance" yaml:"distance" validate:"gte=0"`
	EstimatedTime    int             `json:"estimated_time" yaml:"estimated_time" validate:"gte=0"`
}

// Filter задаёт отображаемое подмножество списка заказов.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// Partner описывает курьера-партнёра.
type Partner struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone,omitempty"`
	VehicleType   string `json:"vehicle_type,omitempty"`
	VehicleNumber string `json:"vehicle_number,omitempty"`
}

// Session описывает текущую сессию партнёра и его доступность для заказов.
type Session struct {
	Partner   Partner   `json:"partner"`
	Online    bool      `json:"online"`
	StartedAt time.Time `json:"started_at"`
}

// Earning описывает заработок за один доставленный заказ.
type Earning struct {
	OrderID string          `json:"order_id"`
	Amount  decimal.Decimal `json:"amount"`
	Date    time.Time       `json:"date"`
}

// EarningsSummary содержит итог заработка за период.
type EarningsSummary struct {
	Period     string          `json:"period"`
	Total      decimal.Decimal `json:"total"`
	Deliveries int             `json:"deliveries"`
	Earnings   []Earning       `json:"earnings"`
}
