package validate_package

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-NetsBookingService/internal/domain"
	packagesRepo "github.com/m04kA/SMC-NetsBookingService/internal/infra/storage/packages"
	"github.com/m04kA/SMC-NetsBookingService/pkg/ptr"
)

var now = time.Date(2026, 11, 4, 10, 0, 0, 0, time.UTC)

type fakePackages struct {
	packages map[int64]*domain.UserPackage
	expired  []int64
}

func (f *fakePackages) GetUserPackage(_ context.Context, id int64) (*domain.UserPackage, error) {
	up, ok := f.packages[id]
	if !ok {
		return nil, packagesRepo.ErrUserPackageNotFound
	}
	return up, nil
}

func (f *fakePackages) MarkExpired(_ context.Context, id int64) error {
	f.expired = append(f.expired, id)
	return nil
}

type defaults struct{}

func (defaults) Effective(context.Context) (*domain.Policy, error) { return domain.DefaultPolicy(), nil }

type fixedTime struct{}

func (fixedTime) Now() time.Time { return now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func newUseCase(repo *fakePackages) *UseCase {
	uc := NewUseCase(repo, defaults{}, nopLogger{})
	uc.timeProvider = fixedTime{}
	return uc
}

func userPackage(expiry time.Time) *domain.UserPackage {
	return &domain.UserPackage{
		ID: 50, UserID: 7, TotalSessions: 10, UsedSessions: 4, ExpiryDate: expiry, Status: domain.PackageActive,
		Package: &domain.Package{
			ID:              5,
			MachineCategory: domain.CategoryLeatherBall,
			BallTypeTier:    ptr.Ptr(domain.BallMachine),
			TimingTier:      domain.TimingDay,
			UpgradeRules: domain.UpgradeRules{
				BallTypeUpgrade: decimal.NewFromInt(100),
				PitchFlat:       decimal.NewFromInt(80),
				TimingUpgrade:   decimal.NewFromInt(50),
			},
		},
	}
}

func TestExecute_SurchargeAxes(t *testing.T) {
	repo := &fakePackages{packages: map[int64]*domain.UserPackage{50: userPackage(now.AddDate(0, 1, 0))}}

	resp, err := newUseCase(repo).Execute(context.Background(), &Request{
		UserID:        7,
		UserPackageID: 50,
		BallType:      domain.BallLeather,
		PitchType:     ptr.Ptr(domain.PitchCement),
		StartTime:     "18:00",
		SlotCount:     2,
	})
	require.NoError(t, err)

	assert.True(t, resp.Valid)
	assert.Equal(t, []string{"ball_type", "pitch", "timing"}, resp.Axes)
	assert.True(t, resp.PerSlot.Equal(decimal.NewFromInt(230)))
	assert.True(t, resp.ExtraCharge.Equal(decimal.NewFromInt(460)))
	assert.Equal(t, 6, resp.Remaining)
}

func TestExecute_RejectionIsNotAnError(t *testing.T) {
	repo := &fakePackages{packages: map[int64]*domain.UserPackage{50: userPackage(now.AddDate(0, 1, 0))}}

	resp, err := newUseCase(repo).Execute(context.Background(), &Request{
		UserID: 7, UserPackageID: 50, BallType: domain.BallMachine, StartTime: "09:00", SlotCount: 7,
	})
	require.NoError(t, err)
	assert.False(t, resp.Valid)
	assert.Equal(t, "insufficient_sessions", resp.Reason)
	assert.Equal(t, 6, resp.Remaining)
}

func TestExecute_ExpiredIsPersisted(t *testing.T) {
	repo := &fakePackages{packages: map[int64]*domain.UserPackage{50: userPackage(now.AddDate(0, 0, -1))}}

	resp, err := newUseCase(repo).Execute(context.Background(), &Request{
		UserID: 7, UserPackageID: 50, BallType: domain.BallMachine, StartTime: "09:00",
	})
	require.NoError(t, err)
	assert.False(t, resp.Valid)
	assert.Equal(t, "expired", resp.Reason)
	assert.Equal(t, []int64{50}, repo.expired)
}

func TestExecute_Errors(t *testing.T) {
	uc := newUseCase(&fakePackages{packages: map[int64]*domain.UserPackage{}})

	_, err := uc.Execute(context.Background(), &Request{UserID: 7, UserPackageID: 1, BallType: domain.BallMachine, StartTime: "09:00"})
	assert.ErrorIs(t, err, ErrPackageNotFound)

	_, err = uc.Execute(context.Background(), &Request{UserID: 7, UserPackageID: 1, BallType: "CORK", StartTime: "09:00"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.Execute(context.Background(), &Request{UserID: 7, UserPackageID: 1, BallType: domain.BallMachine, StartTime: "9am"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
