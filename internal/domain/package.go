package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// UserPackageStatus статус купленного пакета
type UserPackageStatus string

const (
	PackageActive    UserPackageStatus = "ACTIVE"
	PackageExpired   UserPackageStatus = "EXPIRED"
	PackageCancelled UserPackageStatus = "CANCELLED"
)

// Package пакет сессий из каталога
type Package struct {
	ID              int64
	Name            string
	MachineID       *int64 // пакет привязан к машине
	MachineCategory MachineCategory
	BallTypeTier    *BallType  // nil покрывает любой мяч категории
	PitchTier       *PitchType // nil = базовое покрытие
	TimingTier      TimingTier
	TotalSessions   int
	ValidityDays    int
	Price           decimal.Decimal
	UpgradeRules    UpgradeRules
}

// UserPackage купленный пользователем пакет
type UserPackage struct {
	ID             int64
	PackageID      int64
	UserID         int64
	TotalSessions  int
	UsedSessions   int
	ActivationDate time.Time
	ExpiryDate     time.Time
	Status         UserPackageStatus
	Package        *Package
}

// RemainingSessions остаток сессий
func (p *UserPackage) RemainingSessions() int {
	if p.UsedSessions >= p.TotalSessions {
		return 0
	}
	return p.TotalSessions - p.UsedSessions
}

// IsExpiredAt срок действия истёк
func (p *UserPackage) IsExpiredAt(now time.Time) bool {
	return now.After(p.ExpiryDate)
}

// EffectiveStatus статус с ленивым переходом ACTIVE -> EXPIRED
func (p *UserPackage) EffectiveStatus(now time.Time) UserPackageStatus {
	if p.Status == PackageActive && p.IsExpiredAt(now) {
		return PackageExpired
	}
	return p.Status
}

// PackageBooking связь бронирования с пакетом
type PackageBooking struct {
	ID            int64
	BookingID     int64
	UserPackageID int64
	SessionsUsed  int
	ExtraCharge   decimal.Decimal
	CreatedAt     time.Time
}
