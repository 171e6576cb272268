package service

import (
	"testing"
	"time"

	"backend/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func penaltyFixture(amount int64, dueDate time.Time, status string) *model.Liquidation {
	return &model.Liquidation{
		Amount:  decimal.NewFromInt(amount),
		DueDate: dueDate,
		Status:  status,
	}
}

func TestCalculatePenalty_FiveDaysOverdue(t *testing.T) {
	today := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	due := time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC)

	penalty := CalculatePenalty(
		penaltyFixture(50000, due, model.StatusOverdue),
		decimal.NewFromFloat(0.01),
		today,
	)

	// 50000 * 0.01 * 5 = 2500.00
	assert.Equal(t, "2500.00", penalty.StringFixed(2))
}

func TestCalculatePenalty_RoundsHalfUp(t *testing.T) {
	today := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	due := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	penalty := CalculatePenalty(
		penaltyFixture(333, due, model.StatusOverdue),
		decimal.NewFromFloat(0.015),
		today,
	)

	// 333 * 0.015 * 3 = 14.985 -> 14.99
	assert.Equal(t, "14.99", penalty.StringFixed(2))
}

func TestCalculatePenalty_ZeroCases(t *testing.T) {
	today := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	pastDue := today.AddDate(0, 0, -10)
	futureDue := today.AddDate(0, 0, 10)

	cases := []struct {
		name string
		liq  *model.Liquidation
		rate decimal.Decimal
	}{
		{"nil liquidation", nil, decimal.NewFromFloat(0.01)},
		{"zero rate", penaltyFixture(50000, pastDue, model.StatusOverdue), decimal.Zero},
		{"negative rate", penaltyFixture(50000, pastDue, model.StatusOverdue), decimal.NewFromFloat(-0.01)},
		{"already paid", penaltyFixture(50000, pastDue, model.StatusPaid), decimal.NewFromFloat(0.01)},
		{"due in the future", penaltyFixture(50000, futureDue, model.StatusPending), decimal.NewFromFloat(0.01)},
		{"due today", penaltyFixture(50000, today, model.StatusPending), decimal.NewFromFloat(0.01)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.True(t, CalculatePenalty(tc.liq, tc.rate, today).IsZero())
		})
	}
}

func TestCalculatePenalty_ClockZoneDoesNotChangeDayCount(t *testing.T) {
	due := time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC)
	rate := decimal.NewFromFloat(0.01)

	east := CalculatePenalty(
		penaltyFixture(50000, due, model.StatusOverdue),
		rate,
		time.Date(2026, 8, 31, 1, 0, 0, 0, time.FixedZone("UTC+3", 3*3600)),
	)
	west := CalculatePenalty(
		penaltyFixture(50000, due, model.StatusOverdue),
		rate,
		time.Date(2026, 8, 31, 22, 0, 0, 0, time.FixedZone("UTC-3", -3*3600)),
	)

	// Five whole calendar days overdue from either side of UTC.
	assert.Equal(t, "2500.00", east.StringFixed(2))
	assert.Equal(t, "2500.00", west.StringFixed(2))
}

func TestStatusForDueDate_DueTodayAcrossZones(t *testing.T) {
	due := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	west := time.Date(2026, 8, 31, 22, 0, 0, 0, time.FixedZone("UTC-3", -3*3600))
	assert.Equal(t, model.StatusPending, statusForDueDate(due, west))

	east := time.Date(2026, 9, 1, 1, 0, 0, 0, time.FixedZone("UTC+3", 3*3600))
	assert.Equal(t, model.StatusOverdue, statusForDueDate(due, east))
}

func TestCalculatePenalty_IgnoresTimeOfDay(t *testing.T) {
	due := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	morning := CalculatePenalty(
		penaltyFixture(10000, due, model.StatusOverdue),
		decimal.NewFromFloat(0.02),
		time.Date(2026, 8, 31, 1, 0, 0, 0, time.UTC),
	)
	evening := CalculatePenalty(
		penaltyFixture(10000, due, model.StatusOverdue),
		decimal.NewFromFloat(0.02),
		time.Date(2026, 8, 31, 23, 0, 0, 0, time.UTC),
	)

	assert.True(t, morning.Equal(evening))
	assert.Equal(t, "200.00", morning.StringFixed(2))
}
