// Package earnings вычисляет заработок партнёра по доставленным заказам.
package earnings

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/delivery-partner/internal/model"
)

// ErrUnknownPeriod возвращается для неизвестного периода отчёта.
var ErrUnknownPeriod = errors.New("unknown earnings period")

const (
	PeriodToday = "today"
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodAll   = "all"
)

// FromOrders возвращает начисления по доставленным заказам, новые первыми.
func FromOrders(orders []model.Order) []model.Earning {
	res := make([]model.Earning, 0)
	for _, o := range orders {
		if o.Status != model.OrderStatusDelivered || o.DeliveredAt == nil {
			continue
		}
		res = append(res, model.Earning{
			OrderID: o.ID,
			Amount:  o.DeliveryFee,
			Date:    *o.DeliveredAt,
		})
	}

	sort.SliceStable(res, func(i, j int) bool {
		return res[i].Date.After(res[j].Date)
	})
	return res
}

// Summarize считает итог заработка за период, отсчитываемый от now.
func Summarize(orders []model.Order, period string, now time.Time) (model.EarningsSummary, error) {
	if period == "" {
		period = PeriodToday
	}

	since, err := periodStart(period, now)
	if err != nil {
		return model.EarningsSummary{}, err
	}

	summary := model.EarningsSummary{
		Period:   period,
		Total:    decimal.Zero,
		Earnings: make([]model.Earning, 0),
	}
	for _, e := range FromOrders(orders) {
		if e.Date.Before(since) || e.Date.After(now) {
			continue
		}
		summary.Earnings = append(summary.Earnings, e)
		summary.Total = summary.Total.Add(e.Amount)
		summary.Deliveries++
	}

	return summary, nil
}

func periodStart(period string, now time.Time) (time.Time, error) {
	switch period {
	case PeriodToday:
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location()), nil
	case PeriodWeek:
		return now.AddDate(0, 0, -7), nil
	case PeriodMonth:
		return now.AddDate(0, 0, -30), nil
	case PeriodAll:
		return time.Time{}, nil
	default:
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnknownPeriod, period)
	}
}
