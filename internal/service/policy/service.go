package policy

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/m04kA/SMC-NetsBookingService/internal/domain"
	"github.com/m04kA/SMC-NetsBookingService/internal/service/policy/models"
)

// Service типизированный провайдер политики.
// Отсутствующие и некорректные ключи заменяются значениями по умолчанию здесь, а не в местах использования.
type Service struct {
	repo   PolicyRepository
	logger Logger
}

// NewService создает новый экземпляр сервиса политики
func NewService(repo PolicyRepository, logger Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// Effective читает все ключи и собирает действующую политику.
// Ошибка хранилища не прерывает запрос: возвращаются значения по умолчанию.
func (s *Service) Effective(ctx context.Context) (*domain.Policy, error) {
	policy := domain.DefaultPolicy()

	entries, err := s.repo.GetByKeys(ctx, domain.PolicyKeys)
	if err != nil {
		s.logger.Error("Effective: failed to load policy, using defaults: %v", err)
		return policy, nil
	}

	for _, entry := range entries {
		if entry.UpdatedAt.After(policy.Version) {
			policy.Version = entry.UpdatedAt
		}
	}

	if entry, ok := entries[domain.PolicyKeySlotDuration]; ok {
		if v, err := parseSlotDuration(entry.Value); err != nil {
			s.logger.Warn("Effective: %v, using default %d", err, policy.SlotDurationMinutes)
		} else {
			policy.SlotDurationMinutes = v
		}
	}

	if entry, ok := entries[domain.PolicyKeyOperatorCount]; ok {
		if v, err := parseOperatorCount(entry.Value); err != nil {
			s.logger.Warn("Effective: %v, using default %d", err, policy.OperatorCount)
		} else {
			policy.OperatorCount = v
		}
	}

	if entry, ok := entries[domain.PolicyKeyTimeSlabs]; ok {
		if v, err := parseTimeSlabs(entry.Value); err != nil {
			s.logger.Warn("Effective: %v, using default windows", err)
		} else {
			policy.TimeSlabs = v
		}
	}

	if entry, ok := entries[domain.PolicyKeyPitchCompatibility]; ok {
		v, skipped, err := parsePitchCompatibility(entry.Value)
		switch {
		case err != nil:
			s.logger.Warn("Effective: %v, all pitches allowed", err)
		default:
			s.warnSkipped(domain.PolicyKeyPitchCompatibility, skipped)
			policy.MachinePitchCompatibility = v
		}
	}

	if entry, ok := entries[domain.PolicyKeyPricingMatrix]; ok {
		v, skipped, err := parsePricingMatrix(entry.Value)
		switch {
		case err != nil:
			s.logger.Warn("Effective: %v, using default matrix", err)
		default:
			s.warnSkipped(domain.PolicyKeyPricingMatrix, skipped)
			policy.Pricing = v
		}
	}

	s.logger.Debug("Effective: policy version %s, slot %d min, operators %d",
		policy.Version.Format(time.RFC3339), policy.SlotDurationMinutes, policy.OperatorCount)

	return policy, nil
}

// Get действующая политика для API
func (s *Service) Get(ctx context.Context) (*models.PolicyResponse, error) {
	policy, err := s.Effective(ctx)
	if err != nil {
		return nil, err
	}
	return models.FromDomainPolicy(policy), nil
}

func (s *Service) warnSkipped(key string, skipped []string) {
	if len(skipped) == 0 {
		return
	}
	sort.Strings(skipped)
	s.logger.Warn("Effective: %s: skipped invalid entries [%s]", key, strings.Join(skipped, ", "))
}
