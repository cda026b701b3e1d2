// Package validation содержит функции валидации входных данных.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mmeshcher/delivery-partner/internal/model"
)

// ErrInvalid возвращается, если входные данные не прошли проверку.
var ErrInvalid = errors.New("validation failed")

const maxOrderIDLength = 64

var validate = validator.New(validator.WithRequiredStructEnabled())

// Struct проверяет структуру по тегам validate.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}

// OrderPayload проверяет данные для создания заказа, включая денежные суммы.
func OrderPayload(p model.OrderPayload) error {
	if p.ID != "" && !IsValidOrderID(p.ID) {
		return fmt.Errorf("%w: malformed order id %q", ErrInvalid, p.ID)
	}

	if err := Struct(p); err != nil {
		return err
	}

	if p.TotalAmount.IsNegative() {
		return fmt.Errorf("%w: total_amount must not be negative", ErrInvalid)
	}
	if p.DeliveryFee.IsNegative() {
		return fmt.Errorf("%w: delivery_fee must not be negative", ErrInvalid)
	}
	for i, item := range p.Items {
		if item.Price.IsNegative() {
			return fmt.Errorf("%w: items[%d].price must not be negative", ErrInvalid, i)
		}
	}

	return nil
}

// IsValidOrderID проверяет, что идентификатор заказа состоит из латиницы, цифр, '-' и '_'.
func IsValidOrderID(id string) bool {
	if id == "" || len(id) > maxOrderIDLength {
		return false
	}

	for _, ch := range id {
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9', ch == '-', ch == '_':
		default:
			return false
		}
	}

	return true
}
