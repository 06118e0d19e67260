package entitlement

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-NetsBookingService/internal/domain"
	"github.com/m04kA/SMC-NetsBookingService/pkg/ptr"
)

var now = time.Date(2026, 11, 2, 10, 0, 0, 0, time.UTC)

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func legacyRules() domain.UpgradeRules {
	return domain.LegacyFlatRule{
		BallTypeUpgrade: dec(150),
		PitchUpgrade:    dec(50),
		TimingUpgrade:   dec(100),
	}.Normalize()
}

func userPackage(rules domain.UpgradeRules) *domain.UserPackage {
	return &domain.UserPackage{
		ID:             7,
		UserID:         42,
		TotalSessions:  10,
		UsedSessions:   4,
		ActivationDate: now.AddDate(0, -1, 0),
		ExpiryDate:     now.AddDate(0, 1, 0),
		Status:         domain.PackageActive,
		Package: &domain.Package{
			ID:              3,
			MachineID:       ptr.Ptr(int64(1)),
			MachineCategory: domain.CategoryLeatherBall,
			BallTypeTier:    ptr.Ptr(domain.BallMachine),
			TimingTier:      domain.TimingDay,
			UpgradeRules:    rules,
		},
	}
}

func baseRequest() Request {
	return Request{
		UserID:    42,
		BallType:  domain.BallMachine,
		MachineID: ptr.Ptr(int64(1)),
		StartTime: "09:00",
		SlotCount: 2,
	}
}

func reasonOf(t *testing.T, err error) *Error {
	t.Helper()
	var e *Error
	require.True(t, errors.As(err, &e), "ожидалась ошибка пакета, получено %v", err)
	return e
}

func TestValidate_NoSurchargeWithinTier(t *testing.T) {
	v := NewValidator(domain.DefaultTimeSlabs())

	res, err := v.Validate(userPackage(legacyRules()), baseRequest(), now)
	require.NoError(t, err)

	assert.True(t, res.Total.IsZero())
	assert.Empty(t, res.Axes)
}

func TestValidate_OrderedFailures(t *testing.T) {
	v := NewValidator(domain.DefaultTimeSlabs())

	tests := []struct {
		name   string
		mutate func(up *domain.UserPackage, req *Request)
		reason Reason
		target error
	}{
		{
			name:   "чужой пакет",
			mutate: func(up *domain.UserPackage, req *Request) { req.UserID = 99 },
			reason: ReasonNotOwner,
			target: ErrNotOwner,
		},
		{
			name:   "отменённый пакет",
			mutate: func(up *domain.UserPackage, req *Request) { up.Status = domain.PackageCancelled },
			reason: ReasonInactive,
			target: ErrInactive,
		},
		{
			name:   "истёкший пакет",
			mutate: func(up *domain.UserPackage, req *Request) { up.ExpiryDate = now.Add(-time.Hour) },
			reason: ReasonExpired,
			target: ErrExpired,
		},
		{
			name:   "недостаточно сессий",
			mutate: func(up *domain.UserPackage, req *Request) { req.SlotCount = 7 },
			reason: ReasonInsufficientSessions,
			target: ErrInsufficientSessions,
		},
		{
			name:   "теннисный мяч в кожаном пакете",
			mutate: func(up *domain.UserPackage, req *Request) { req.BallType = domain.BallTennis },
			reason: ReasonCategoryMismatch,
			target: ErrCategoryMismatch,
		},
		{
			// владелец проверяется раньше срока
			name: "чужой и истёкший",
			mutate: func(up *domain.UserPackage, req *Request) {
				req.UserID = 99
				up.ExpiryDate = now.Add(-time.Hour)
			},
			reason: ReasonNotOwner,
			target: ErrNotOwner,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up := userPackage(legacyRules())
			req := baseRequest()
			tt.mutate(up, &req)

			_, err := v.Validate(up, req, now)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)
			assert.Equal(t, tt.reason, reasonOf(t, err).Reason)
		})
	}
}

func TestValidate_InsufficientReportsRemaining(t *testing.T) {
	v := NewValidator(domain.DefaultTimeSlabs())
	req := baseRequest()
	req.SlotCount = 8

	_, err := v.Validate(userPackage(legacyRules()), req, now)
	e := reasonOf(t, err)
	assert.Equal(t, 6, e.Remaining)
	assert.Contains(t, err.Error(), "6 remaining")
}

func TestValidate_AxesAreAdditive(t *testing.T) {
	v := NewValidator(domain.DefaultTimeSlabs())
	req := baseRequest()
	req.BallType = domain.BallLeather
	req.Pitch = ptr.Ptr(domain.PitchNatural)
	req.StartTime = "18:00"

	res, err := v.Validate(userPackage(legacyRules()), req, now)
	require.NoError(t, err)

	assert.Equal(t, []Axis{AxisBallType, AxisPitch, AxisTiming}, res.Axes)
	assert.True(t, res.PerSlot.Equal(dec(150+50+100)))
	assert.True(t, res.Total.Equal(dec(2*300)))
}

func TestValidate_PitchRankMonotonicity(t *testing.T) {
	v := NewValidator(domain.DefaultTimeSlabs())

	rules := domain.PathTableRule{
		PitchUpgrade: dec(70),
		PitchPaths:   map[string]decimal.Decimal{"ASTRO->NATURAL": dec(120)},
	}.Normalize()

	for _, tier := range domain.AllPitchTypes {
		for _, requested := range domain.AllPitchTypes {
			up := userPackage(rules)
			up.Package.PitchTier = ptr.Ptr(tier)
			req := baseRequest()
			req.Pitch = ptr.Ptr(requested)

			res, err := v.Validate(up, req, now)
			require.NoError(t, err)

			charge := res.Breakdown[AxisPitch]
			if requested.Rank() <= tier.Rank() {
				assert.True(t, charge.IsZero(), "%s -> %s", tier, requested)
			} else {
				assert.False(t, charge.IsNegative(), "%s -> %s", tier, requested)
			}
		}
	}

	// путь из таблицы важнее плоской суммы
	up := userPackage(rules)
	req := baseRequest()
	req.Pitch = ptr.Ptr(domain.PitchNatural)
	res, err := v.Validate(up, req, now)
	require.NoError(t, err)
	assert.True(t, res.Breakdown[AxisPitch].Equal(dec(120)))

	req.Pitch = ptr.Ptr(domain.PitchCement)
	res, err = v.Validate(up, req, now)
	require.NoError(t, err)
	assert.True(t, res.Breakdown[AxisPitch].Equal(dec(70)))
}

func TestValidate_MachineUpgrade(t *testing.T) {
	v := NewValidator(domain.DefaultTimeSlabs())
	rules := domain.PathTableRule{
		MachinePaths: map[string]decimal.Decimal{"1->2": dec(40)},
	}.Normalize()

	req := baseRequest()
	req.MachineID = ptr.Ptr(int64(2))
	res, err := v.Validate(userPackage(rules), req, now)
	require.NoError(t, err)
	assert.Equal(t, []Axis{AxisMachine}, res.Axes)
	assert.True(t, res.Total.Equal(dec(80)))

	// пути нет, доплата не взимается
	req.MachineID = ptr.Ptr(int64(3))
	res, err = v.Validate(userPackage(rules), req, now)
	require.NoError(t, err)
	assert.True(t, res.Total.IsZero())
}

func TestValidate_AnytimePackageHasNoTimingCharge(t *testing.T) {
	v := NewValidator(domain.DefaultTimeSlabs())
	up := userPackage(legacyRules())
	up.Package.TimingTier = domain.TimingAnytime
	req := baseRequest()
	req.StartTime = "19:30"

	res, err := v.Validate(up, req, now)
	require.NoError(t, err)
	assert.True(t, res.Breakdown[AxisTiming].IsZero())
}

func TestValidate_InvalidRequestIsNotRejection(t *testing.T) {
	v := NewValidator(domain.DefaultTimeSlabs())

	tests := []struct {
		name string
		up   *domain.UserPackage
		req  Request
	}{
		{"no package", nil, baseRequest()},
		{"package without catalog entry", &domain.UserPackage{UserID: 42}, baseRequest()},
		{"zero slots", userPackage(legacyRules()), Request{UserID: 42, BallType: domain.BallMachine, StartTime: "09:00"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Validate(tt.up, tt.req, now)
			assert.ErrorIs(t, err, ErrInvalidRequest)

			var rejection *Error
			assert.False(t, errors.As(err, &rejection))
		})
	}
}
