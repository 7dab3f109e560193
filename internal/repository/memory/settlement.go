package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/settlement"
	"github.com/shopspring/decimal"
)

type PeriodRepository struct {
	s *Store
}

func NewPeriodRepository(s *Store) *PeriodRepository {
	return &PeriodRepository{s: s}
}

func (r *PeriodRepository) Create(_ context.Context, p settlement.FlexWorkPeriod) (settlement.FlexWorkPeriod, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p.ID = newID()
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	r.s.t.periods[p.ID] = p
	return p, nil
}

func (r *PeriodRepository) GetByID(_ context.Context, id string) (settlement.FlexWorkPeriod, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.t.periods[id]
	if !ok {
		return settlement.FlexWorkPeriod{}, settlement.ErrPeriodNotFound
	}
	return p, nil
}

// GetForUpdate relies on the transactor for exclusion.
func (r *PeriodRepository) GetForUpdate(ctx context.Context, id string) (settlement.FlexWorkPeriod, error) {
	return r.GetByID(ctx, id)
}

func (r *PeriodRepository) List(_ context.Context) ([]settlement.FlexWorkPeriod, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]settlement.FlexWorkPeriod, 0, len(r.s.t.periods))
	for _, p := range r.s.t.periods {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartMonth.Before(out[j].StartMonth) })
	return out, nil
}

func (r *PeriodRepository) ListOverlapping(_ context.Context, from, to time.Time) ([]settlement.FlexWorkPeriod, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []settlement.FlexWorkPeriod
	for _, p := range r.s.t.periods {
		if p.Status == settlement.PeriodStatusCancelled {
			continue
		}
		if dateString(p.StartDate()) <= dateString(to) && dateString(p.EndDate()) >= dateString(from) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *PeriodRepository) UpdateStatus(_ context.Context, id string, status settlement.PeriodStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.t.periods[id]
	if !ok {
		return settlement.ErrPeriodNotFound
	}
	p.Status = status
	p.UpdatedAt = time.Now().UTC()
	r.s.t.periods[id] = p
	return nil
}

func (r *PeriodRepository) MarkSettled(_ context.Context, id string, settledAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.t.periods[id]
	if !ok {
		return settlement.ErrPeriodNotFound
	}
	if p.SettlementCompleted {
		return settlement.ErrSettlementConflict
	}
	p.SettlementCompleted = true
	p.SettledAt = &settledAt
	p.Status = settlement.PeriodStatusCompleted
	p.UpdatedAt = settledAt
	r.s.t.periods[id] = p
	return nil
}

// CoversDate implements worktime.FlexCalendar.
func (r *PeriodRepository) CoversDate(_ context.Context, date time.Time) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, p := range r.s.t.periods {
		if p.Status.Flexible() && p.Covers(date) {
			return true, nil
		}
	}
	return false, nil
}

type SettlementRepository struct {
	s *Store
}

func NewSettlementRepository(s *Store) *SettlementRepository {
	return &SettlementRepository{s: s}
}

func (r *SettlementRepository) CreateBatch(_ context.Context, rows []settlement.QuarterlySettlement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, row := range rows {
		for _, existing := range r.s.t.settlements {
			if existing.PeriodID == row.PeriodID && existing.EmployeeID == row.EmployeeID {
				return settlement.ErrSettlementConflict
			}
		}
	}
	now := time.Now().UTC()
	for i := range rows {
		rows[i].ID = newID()
		rows[i].CreatedAt = now
		r.s.t.settlements = append(r.s.t.settlements, rows[i])
	}
	return nil
}

func (r *SettlementRepository) ListByPeriod(_ context.Context, periodID string) ([]settlement.QuarterlySettlement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []settlement.QuarterlySettlement
	for _, row := range r.s.t.settlements {
		if row.PeriodID == periodID {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out, nil
}

type NightPayRepository struct {
	s *Store
}

func NewNightPayRepository(s *Store) *NightPayRepository {
	return &NightPayRepository{s: s}
}

func (r *NightPayRepository) Create(_ context.Context, p settlement.NightAllowancePayment) (settlement.NightAllowancePayment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.t.nightPays {
		if existing.EmployeeID == p.EmployeeID && existing.Year == p.Year && existing.Month == p.Month {
			return settlement.NightAllowancePayment{}, settlement.ErrNightPayAlreadyExists
		}
	}
	p.ID = newID()
	if p.ProcessedAt.IsZero() {
		p.ProcessedAt = time.Now().UTC()
	}
	r.s.t.nightPays = append(r.s.t.nightPays, p)
	return p, nil
}

// SumByEmployeeRange sums payments whose month starts inside [from, to].
func (r *NightPayRepository) SumByEmployeeRange(_ context.Context, employeeID string, from, to time.Time) (settlement.NightAllowanceTotal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	total := settlement.NightAllowanceTotal{Amount: decimal.Zero}
	for _, p := range r.s.t.nightPays {
		if p.EmployeeID != employeeID {
			continue
		}
		month := time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
		if inRange(month, from, to) {
			total.Amount = total.Amount.Add(p.Amount)
			total.Count++
		}
	}
	return total, nil
}

func (r *NightPayRepository) ListByMonth(_ context.Context, year int, month time.Month) ([]settlement.NightAllowancePayment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []settlement.NightAllowancePayment
	for _, p := range r.s.t.nightPays {
		if p.Year == year && p.Month == month {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out, nil
}
