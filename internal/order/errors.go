package order

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound возвращается, если заказа с указанным идентификатором нет в коллекции.
	ErrNotFound = errors.New("order not found")
	// ErrInvalidTransition возвращается, если заказ не находится в исходном статусе перехода.
	ErrInvalidTransition = errors.New("invalid order transition")
	// ErrActiveOrderExists возвращается при попытке принять заказ, пока другой заказ активен.
	ErrActiveOrderExists = fmt.Errorf("%w: another order is already active", ErrInvalidTransition)
	// ErrDuplicate возвращается при добавлении заказа с уже существующим идентификатором.
	ErrDuplicate = errors.New("order already exists")
)
