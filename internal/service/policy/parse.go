package policy

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/m04kA/SMC-NetsBookingService/internal/domain"
)

func parseSlotDuration(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidValue, domain.PolicyKeySlotDuration, err)
	}
	if n < domain.MinSlotDurationMinutes || n > domain.MaxSlotDurationMinutes {
		return 0, fmt.Errorf("%w: %s: %d out of range", ErrInvalidValue, domain.PolicyKeySlotDuration, n)
	}
	return n, nil
}

func parseOperatorCount(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidValue, domain.PolicyKeyOperatorCount, err)
	}
	if n < domain.MinOperatorCount || n > domain.MaxOperatorCount {
		return 0, fmt.Errorf("%w: %s: %d out of range", ErrInvalidValue, domain.PolicyKeyOperatorCount, n)
	}
	return n, nil
}

// parseTimeSlabs оба окна обязаны быть непустыми и не переходить через полночь
func parseTimeSlabs(raw string) (domain.TimeSlabConfig, error) {
	var cfg domain.TimeSlabConfig
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return cfg, fmt.Errorf("%w: %s: %v", ErrInvalidValue, domain.PolicyKeyTimeSlabs, err)
	}
	if !cfg.Morning.IsValid() || !cfg.Evening.IsValid() {
		return cfg, fmt.Errorf("%w: %s: empty or reversed window", ErrInvalidValue, domain.PolicyKeyTimeSlabs)
	}
	return cfg, nil
}

// parsePitchCompatibility {"1": ["ASTRO", "CEMENT"]}; неизвестные покрытия и машины пропускаются
func parsePitchCompatibility(raw string) (map[int64][]domain.PitchType, []string, error) {
	var parsed map[string][]string
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrInvalidValue, domain.PolicyKeyPitchCompatibility, err)
	}

	result := make(map[int64][]domain.PitchType, len(parsed))
	skipped := make([]string, 0)

	for key, pitches := range parsed {
		id, err := strconv.ParseInt(strings.TrimSpace(key), 10, 64)
		if err != nil {
			skipped = append(skipped, key)
			continue
		}

		allowed := make([]domain.PitchType, 0, len(pitches))
		for _, p := range pitches {
			pitch := domain.PitchType(strings.ToUpper(strings.TrimSpace(p)))
			if !pitch.IsValid() {
				skipped = append(skipped, fmt.Sprintf("%s:%s", key, p))
				continue
			}
			allowed = append(allowed, pitch)
		}
		result[id] = allowed
	}

	return result, skipped, nil
}

// parsePricingMatrix невалидные ячейки отбрасываются, вместо них работает матрица по умолчанию
func parsePricingMatrix(raw string) (domain.PricingMatrix, []string, error) {
	var parsed map[string]map[string]map[string]map[string]domain.PriceCell
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrInvalidValue, domain.PolicyKeyPricingMatrix, err)
	}

	matrix := domain.PricingMatrix{}
	skipped := make([]string, 0)

	for category, balls := range parsed {
		cat := domain.MachineCategory(strings.ToUpper(category))
		for ball, pitches := range balls {
			bt := domain.BallType(strings.ToUpper(ball))
			for pitch, slabs := range pitches {
				pt := domain.PitchType(strings.ToUpper(pitch))
				for slab, cell := range slabs {
					sl := domain.TimeSlab(strings.ToUpper(slab))
					path := strings.Join([]string{category, ball, pitch, slab}, ".")

					if !cat.IsValid() || !bt.IsValid() || bt.Category() != cat || !pt.IsValid() ||
						(sl != domain.SlabMorning && sl != domain.SlabEvening) || !cell.IsValid() {
						skipped = append(skipped, path)
						continue
					}
					matrix.Set(cat, bt, pt, sl, cell)
				}
			}
		}
	}

	return matrix, skipped, nil
}
