package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/worktime"
)

type SummaryRepository struct {
	s *Store
}

func NewSummaryRepository(s *Store) *SummaryRepository {
	return &SummaryRepository{s: s}
}

func (r *SummaryRepository) Upsert(_ context.Context, summary worktime.DailyWorkSummary) (worktime.DailyWorkSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	k := keyOf(summary.EmployeeID, summary.WorkDate)
	if existing, ok := r.s.t.summaries[k]; ok {
		summary.ID = existing.ID
	} else {
		summary.ID = newID()
	}
	r.s.t.summaries[k] = summary
	return summary, nil
}

func (r *SummaryRepository) Get(_ context.Context, employeeID string, workDate time.Time) (worktime.DailyWorkSummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	s, ok := r.s.t.summaries[keyOf(employeeID, workDate)]
	if !ok {
		return worktime.DailyWorkSummary{}, worktime.ErrSummaryNotFound
	}
	return s, nil
}

func (r *SummaryRepository) ListByRange(_ context.Context, employeeID string, from, to time.Time) ([]worktime.DailyWorkSummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []worktime.DailyWorkSummary
	for _, s := range r.s.t.summaries {
		if employeeID != "" && s.EmployeeID != employeeID {
			continue
		}
		if inRange(s.WorkDate, from, to) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EmployeeID != out[j].EmployeeID {
			return out[i].EmployeeID < out[j].EmployeeID
		}
		return dateString(out[i].WorkDate) < dateString(out[j].WorkDate)
	})
	return out, nil
}

// SumEarned implements leave.AccrualSource.
func (r *SummaryRepository) SumEarned(_ context.Context, employeeID string) (leave.EarnedMinutes, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var earned leave.EarnedMinutes
	for _, s := range r.s.t.summaries {
		if s.EmployeeID == employeeID {
			earned.Substitute += s.SubstituteMinutesEarned
			earned.Compensatory += s.CompensatoryMinutesEarned
		}
	}
	return earned, nil
}

type RuleConfigRepository struct {
	s *Store
}

func NewRuleConfigRepository(s *Store) *RuleConfigRepository {
	return &RuleConfigRepository{s: s}
}

// GetEffective picks the covering config with the latest EffectiveFrom.
func (r *RuleConfigRepository) GetEffective(_ context.Context, date time.Time) (worktime.RuleConfig, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var (
		best  worktime.RuleConfig
		found bool
	)
	for _, c := range r.s.t.rules {
		if !c.Covers(date) {
			continue
		}
		if !found || dateString(c.EffectiveFrom) > dateString(best.EffectiveFrom) {
			best, found = c, true
		}
	}
	if !found {
		return worktime.RuleConfig{}, worktime.ErrConfigurationMissing
	}
	return best, nil
}

func (r *RuleConfigRepository) Create(_ context.Context, cfg worktime.RuleConfig) (worktime.RuleConfig, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cfg.ID = newID()
	now := time.Now().UTC()
	cfg.CreatedAt, cfg.UpdatedAt = now, now
	r.s.t.rules = append(r.s.t.rules, cfg)
	return cfg, nil
}

type HolidayRepository struct {
	s *Store
}

func NewHolidayRepository(s *Store) *HolidayRepository {
	return &HolidayRepository{s: s}
}

func (r *HolidayRepository) IsHoliday(_ context.Context, date time.Time) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.t.holidays[dateString(date)]
	return ok, nil
}

func (r *HolidayRepository) Upsert(_ context.Context, h worktime.Holiday) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.t.holidays[dateString(h.Date)] = h
	return nil
}

func (r *HolidayRepository) ListByRange(_ context.Context, from, to time.Time) ([]worktime.Holiday, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []worktime.Holiday
	for _, h := range r.s.t.holidays {
		if inRange(h.Date, from, to) {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return dateString(out[i].Date) < dateString(out[j].Date) })
	return out, nil
}
