package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidUpgradeRules некорректный JSON правил доплат
var ErrInvalidUpgradeRules = errors.New("domain: invalid upgrade rules")

const pathSeparator = "->"

// UpgradeRule сырые правила доплат пакета в одном из двух форматов:
// LegacyFlatRule (одна сумма за повышение покрытия) или PathTableRule (таблица путей).
type UpgradeRule interface {
	Normalize() UpgradeRules
}

// LegacyFlatRule старый формат
//
//	{"ball_type_upgrade": 100, "pitch_upgrade": 50, "timing_upgrade": 80}
type LegacyFlatRule struct {
	BallTypeUpgrade decimal.Decimal `json:"ball_type_upgrade"`
	PitchUpgrade    decimal.Decimal `json:"pitch_upgrade"`
	TimingUpgrade   decimal.Decimal `json:"timing_upgrade"`
}

// PathTableRule текущий формат
//
//	{"ball_type_upgrade": 100, "pitch_paths": {"ASTRO->NATURAL": 90},
//	 "pitch_upgrade": 50, "timing_upgrade": 80, "machine_paths": {"1->2": 40}}
type PathTableRule struct {
	BallTypeUpgrade decimal.Decimal            `json:"ball_type_upgrade"`
	PitchPaths      map[string]decimal.Decimal `json:"pitch_paths"`
	PitchUpgrade    decimal.Decimal            `json:"pitch_upgrade"`
	TimingUpgrade   decimal.Decimal            `json:"timing_upgrade"`
	MachinePaths    map[string]decimal.Decimal `json:"machine_paths"`
}

// PitchPath путь повышения покрытия
type PitchPath struct {
	From PitchType
	To   PitchType
}

// MachinePath путь смены машины
type MachinePath struct {
	From int64
	To   int64
}

// UpgradeRules нормализованные правила, только их видит валидатор пакетов
type UpgradeRules struct {
	BallTypeUpgrade decimal.Decimal
	PitchPaths      map[PitchPath]decimal.Decimal
	PitchFlat       decimal.Decimal
	TimingUpgrade   decimal.Decimal
	MachinePaths    map[MachinePath]decimal.Decimal
}

// PitchSurcharge доплата за путь покрытия: значение из таблицы, иначе плоская сумма
func (r UpgradeRules) PitchSurcharge(from, to PitchType) decimal.Decimal {
	if v, ok := r.PitchPaths[PitchPath{From: from, To: to}]; ok {
		return v
	}
	return r.PitchFlat
}

// MachineSurcharge доплата за смену машины, отсутствие пути означает 0
func (r UpgradeRules) MachineSurcharge(from, to int64) decimal.Decimal {
	if v, ok := r.MachinePaths[MachinePath{From: from, To: to}]; ok {
		return v
	}
	return decimal.Zero
}

func (r LegacyFlatRule) Normalize() UpgradeRules {
	return UpgradeRules{
		BallTypeUpgrade: r.BallTypeUpgrade,
		PitchPaths:      map[PitchPath]decimal.Decimal{},
		PitchFlat:       r.PitchUpgrade,
		TimingUpgrade:   r.TimingUpgrade,
		MachinePaths:    map[MachinePath]decimal.Decimal{},
	}
}

// Normalize разбирает ключи путей; некорректные ключи пропускаются
func (r PathTableRule) Normalize() UpgradeRules {
	out := UpgradeRules{
		BallTypeUpgrade: r.BallTypeUpgrade,
		PitchPaths:      make(map[PitchPath]decimal.Decimal, len(r.PitchPaths)),
		PitchFlat:       r.PitchUpgrade,
		TimingUpgrade:   r.TimingUpgrade,
		MachinePaths:    make(map[MachinePath]decimal.Decimal, len(r.MachinePaths)),
	}

	for key, v := range r.PitchPaths {
		from, to, ok := splitPath(key)
		if !ok {
			continue
		}
		fromPitch, toPitch := PitchType(strings.ToUpper(from)), PitchType(strings.ToUpper(to))
		if !fromPitch.IsValid() || !toPitch.IsValid() {
			continue
		}
		out.PitchPaths[PitchPath{From: fromPitch, To: toPitch}] = v
	}

	for key, v := range r.MachinePaths {
		from, to, ok := splitPath(key)
		if !ok {
			continue
		}
		fromID, err1 := strconv.ParseInt(from, 10, 64)
		toID, err2 := strconv.ParseInt(to, 10, 64)
		if err1 != nil || err2 != nil {
			continue
		}
		out.MachinePaths[MachinePath{From: fromID, To: toID}] = v
	}

	return out
}

func splitPath(key string) (string, string, bool) {
	parts := strings.Split(key, pathSeparator)
	if len(parts) != 2 {
		return "", "", false
	}
	from, to := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	return from, to, from != "" && to != ""
}

// ParseUpgradeRule определяет формат по наличию таблиц путей
func ParseUpgradeRule(raw []byte) (UpgradeRule, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return LegacyFlatRule{}, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidUpgradeRules, err)
	}

	_, hasPitchPaths := fields["pitch_paths"]
	_, hasMachinePaths := fields["machine_paths"]

	if hasPitchPaths || hasMachinePaths {
		var rule PathTableRule
		if err := json.Unmarshal(raw, &rule); err != nil {
			return nil, fmt.Errorf("%w: path table: %v", ErrInvalidUpgradeRules, err)
		}
		return rule, nil
	}

	var rule LegacyFlatRule
	if err := json.Unmarshal(raw, &rule); err != nil {
		return nil, fmt.Errorf("%w: legacy: %v", ErrInvalidUpgradeRules, err)
	}
	return rule, nil
}

// NormalizeUpgradeRules разбирает и нормализует сырые правила
func NormalizeUpgradeRules(raw []byte) (UpgradeRules, error) {
	rule, err := ParseUpgradeRule(raw)
	if err != nil {
		return UpgradeRules{}, err
	}
	return rule.Normalize(), nil
}
