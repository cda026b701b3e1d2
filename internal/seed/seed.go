// Package seed загружает демонстрационные заказы из YAML-файла.
package seed

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mmeshcher/delivery-partner/internal/model"
)

// OrderAdder принимает заказы для добавления в хранилище.
type OrderAdder interface {
	AddOrder(p model.OrderPayload) (model.Order, error)
}

type fixture struct {
	Orders []model.OrderPayload `yaml:"orders"`
}

// LoadFile читает заказы из YAML-файла.
func LoadFile(path string) ([]model.OrderPayload, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// Load читает заказы из YAML-документа. Неизвестные поля считаются ошибкой.
func Load(r io.Reader) ([]model.OrderPayload, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var fx fixture
	if err := dec.Decode(&fx); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode seed file: %w", err)
	}

	return fx.Orders, nil
}

// Apply добавляет заказы по порядку и возвращает число добавленных.
// Ошибки по отдельным заказам объединяются, загрузка остальных продолжается.
func Apply(dst OrderAdder, payloads []model.OrderPayload) (int, error) {
	var (
		added int
		errs  error
	)
	for i, p := range payloads {
		if _, err := dst.AddOrder(p); err != nil {
			errs = errors.Join(errs, fmt.Errorf("seed order #%d (%s): %w", i, p.ID, err))
			continue
		}
		added++
	}
	return added, errs
}
