package create_booking

import (
	"context"
	"sync"
	"time"

	"github.com/m04kA/SMC-NetsBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-NetsBookingService/internal/infra/storage/booking"
	machineRepo "github.com/m04kA/SMC-NetsBookingService/internal/infra/storage/machine"
	packagesRepo "github.com/m04kA/SMC-NetsBookingService/internal/infra/storage/packages"
	"github.com/m04kA/SMC-NetsBookingService/internal/slots"
	"github.com/m04kA/SMC-NetsBookingService/pkg/types"
)

// memStore хранилище в памяти; txMu сериализует транзакции, как SERIALIZABLE + advisory lock
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	nextID   int64
	bookings []*domain.Booking
	packages map[int64]*domain.UserPackage
	links    []*domain.PackageBooking
	blocks   []*domain.BlockedSlot
	machines []*domain.Machine
}

func newMemStore() *memStore {
	return &memStore{
		packages: map[int64]*domain.UserPackage{},
		machines: []*domain.Machine{
			{ID: 1, Name: "Net 1", Category: domain.CategoryLeatherBall, OperatorRequired: true, IsActive: true},
			{ID: 2, Name: "Net 2", Category: domain.CategoryLeatherBall, OperatorRequired: true, IsActive: true},
			{ID: 3, Name: "Tennis", Category: domain.CategoryTennisBall, IsActive: true},
		},
	}
}

func (s *memStore) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	bookings := make([]*domain.Booking, len(s.bookings))
	for i, b := range s.bookings {
		c := *b
		bookings[i] = &c
	}
	packages := make(map[int64]*domain.UserPackage, len(s.packages))
	for id, p := range s.packages {
		c := *p
		packages[id] = &c
	}
	links := append([]*domain.PackageBooking(nil), s.links...)
	s.mu.Unlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.bookings, s.packages, s.links = bookings, packages, links
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *memStore) booked() []*domain.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]*domain.Booking, 0)
	for _, b := range s.bookings {
		if b.IsActive() {
			c := *b
			result = append(result, &c)
		}
	}
	return result
}

// bookingStore реализует BookingRepository
type bookingStore struct{ *memStore }

func (s bookingStore) Create(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.bookings {
		if existing.IsActive() && existing.BookingDate.Equal(b.BookingDate) &&
			existing.StartTime.Equal(b.StartTime) && existing.SameMachine(b.MachineID, b.BallType) {
			return nil, bookingRepo.ErrSlotTaken
		}
	}

	s.nextID++
	c := *b
	c.ID = s.nextID
	s.bookings = append(s.bookings, &c)

	out := c
	return &out, nil
}

func (s bookingStore) Update(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.bookings {
		if existing.ID == b.ID && existing.IsActive() {
			c := *b
			c.UserID = existing.UserID
			s.bookings[i] = &c
			out := c
			return &out, nil
		}
	}
	return nil, bookingRepo.ErrBookingNotFound
}

func (s bookingStore) FindConflicts(_ context.Context, q domain.ConflictQuery) ([]*domain.Booking, error) {
	onDate := make([]*domain.Booking, 0)
	for _, b := range s.booked() {
		if b.BookingDate.Equal(q.Date) {
			onDate = append(onDate, b)
		}
	}
	return slots.FindConflicts(onDate, q.Class, q.StartTime, q.EndTime), nil
}

func (s bookingStore) ListBookedOnDate(_ context.Context, date time.Time) ([]*domain.Booking, error) {
	result := make([]*domain.Booking, 0)
	for _, b := range s.booked() {
		if b.BookingDate.Equal(date) {
			result = append(result, b)
		}
	}
	return result, nil
}

func (s bookingStore) LockSlot(context.Context, time.Time, types.TimeString) error { return nil }

// blockStore реализует BlockRepository
type blockStore struct{ *memStore }

func (s blockStore) ListForDate(_ context.Context, date time.Time) ([]*domain.BlockedSlot, error) {
	result := make([]*domain.BlockedSlot, 0)
	for _, b := range s.blocks {
		if b.CoversDate(date) {
			result = append(result, b)
		}
	}
	return result, nil
}

// machineStore реализует MachineRepository
type machineStore struct{ *memStore }

func (s machineStore) GetByID(_ context.Context, id int64) (*domain.Machine, error) {
	for _, m := range s.machines {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, machineRepo.ErrMachineNotFound
}

func (s machineStore) ListActive(_ context.Context, category *domain.MachineCategory) ([]*domain.Machine, error) {
	result := make([]*domain.Machine, 0)
	for _, m := range s.machines {
		if m.IsActive && (category == nil || m.Category == *category) {
			result = append(result, m)
		}
	}
	return result, nil
}

// packageStore реализует PackageRepository
type packageStore struct{ *memStore }

func (s packageStore) GetUserPackage(_ context.Context, id int64) (*domain.UserPackage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	up, ok := s.packages[id]
	if !ok {
		return nil, packagesRepo.ErrUserPackageNotFound
	}
	c := *up
	return &c, nil
}

func (s packageStore) IncrementUsed(_ context.Context, id int64, n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	up, ok := s.packages[id]
	if !ok || up.Status != domain.PackageActive || up.UsedSessions+n > up.TotalSessions {
		return packagesRepo.ErrSessionsExhausted
	}
	up.UsedSessions += n
	return nil
}

func (s packageStore) MarkExpired(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if up, ok := s.packages[id]; ok && up.Status == domain.PackageActive {
		up.Status = domain.PackageExpired
	}
	return nil
}

func (s packageStore) CreateLink(_ context.Context, link *domain.PackageBooking) (*domain.PackageBooking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.links = append(s.links, link)
	return link, nil
}

func (s packageStore) GetLinkByBookingID(_ context.Context, bookingID int64) (*domain.PackageBooking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, link := range s.links {
		if link.BookingID == bookingID {
			c := *link
			return &c, nil
		}
	}
	return nil, packagesRepo.ErrLinkNotFound
}

type staticPolicy struct{ policy *domain.Policy }

func (p staticPolicy) Effective(context.Context) (*domain.Policy, error) { return p.policy, nil }

type admins map[int64]bool

func (a admins) IsAdmin(_ context.Context, id int64) bool { return a[id] }

type countingMetrics struct {
	mu       sync.Mutex
	created  int
	rejected map[string]int
}

func (m *countingMetrics) BookingCreated(string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created++
}

func (m *countingMetrics) BookingRejected(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rejected == nil {
		m.rejected = map[string]int{}
	}
	m.rejected[reason]++
}

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
