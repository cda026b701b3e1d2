package earnings

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/delivery-partner/internal/model"
)

func delivered(id string, fee int64, at time.Time) model.Order {
	return model.Order{
		ID:          id,
		Status:      model.OrderStatusDelivered,
		DeliveryFee: decimal.NewFromInt(fee),
		DeliveredAt: &at,
	}
}

func TestFromOrders_OnlyDeliveredNewestFirst(t *testing.T) {
	now := time.Date(2026, 10, 16, 18, 0, 0, 0, time.UTC)
	orders := []model.Order{
		delivered("ORD001", 25, now.Add(-2*time.Hour)),
		{ID: "ORD002", Status: model.OrderStatusPicked, DeliveryFee: decimal.NewFromInt(35)},
		delivered("ORD003", 30, now.Add(-1*time.Hour)),
	}

	res := FromOrders(orders)
	if len(res) != 2 {
		t.Fatalf("len(FromOrders) = %d, want 2", len(res))
	}
	if res[0].OrderID != "ORD003" || res[1].OrderID != "ORD001" {
		t.Fatalf("unexpected order: %+v", res)
	}
	if !res[0].Amount.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("amount = %s, want 30", res[0].Amount)
	}
}

func TestSummarize(t *testing.T) {
	now := time.Date(2026, 10, 16, 18, 0, 0, 0, time.UTC)
	orders := []model.Order{
		delivered("ORD001", 25, now.Add(-1*time.Hour)),
		delivered("ORD002", 35, now.Add(-3*24*time.Hour)),
		delivered("ORD003", 30, now.Add(-20*24*time.Hour)),
		delivered("ORD004", 40, now.Add(-90*24*time.Hour)),
	}

	tests := []struct {
		period     string
		total      int64
		deliveries int
	}{
		{period: "", total: 25, deliveries: 1},
		{period: PeriodToday, total: 25, deliveries: 1},
		{period: PeriodWeek, total: 60, deliveries: 2},
		{period: PeriodMonth, total: 90, deliveries: 3},
		{period: PeriodAll, total: 130, deliveries: 4},
	}

	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			s, err := Summarize(orders, tt.period, now)
			if err != nil {
				t.Fatalf("Summarize error: %v", err)
			}
			if !s.Total.Equal(decimal.NewFromInt(tt.total)) {
				t.Fatalf("Total = %s, want %d", s.Total, tt.total)
			}
			if s.Deliveries != tt.deliveries || len(s.Earnings) != tt.deliveries {
				t.Fatalf("Deliveries = %d (%d lines), want %d", s.Deliveries, len(s.Earnings), tt.deliveries)
			}
		})
	}
}

func TestSummarize_UnknownPeriod(t *testing.T) {
	_, err := Summarize(nil, "year", time.Now())
	if !errors.Is(err, ErrUnknownPeriod) {
		t.Fatalf("expected ErrUnknownPeriod, got %v", err)
	}
}

func TestSummarize_Empty(t *testing.T) {
	s, err := Summarize(nil, PeriodWeek, time.Now())
	if err != nil {
		t.Fatalf("Summarize error: %v", err)
	}
	if !s.Total.IsZero() || s.Deliveries != 0 || s.Earnings == nil {
		t.Fatalf("unexpected summary: %+v", s)
	}
}
