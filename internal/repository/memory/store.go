// Package memory holds the in-process store used for development and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/settlement"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/worktime"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/google/uuid"
)

// Store keeps every table in maps guarded by one lock. Transactions are
// serialized and rolled back from a snapshot on error.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	t    tables
}

type dayKey struct {
	employeeID string
	date       string
}

func keyOf(employeeID string, date time.Time) dayKey {
	return dayKey{employeeID: employeeID, date: dateString(date)}
}

func dateString(t time.Time) string {
	return t.Format("2006-01-02")
}

// inRange compares calendar dates only, both ends inclusive.
func inRange(d, from, to time.Time) bool {
	s := dateString(d)
	return s >= dateString(from) && s <= dateString(to)
}

type tables struct {
	employees   map[string]employee.Employee
	events      []attendance.Event
	days        map[dayKey]attendance.DailyAttendance
	batches     []attendance.ImportBatch
	summaries   map[dayKey]worktime.DailyWorkSummary
	rules       []worktime.RuleConfig
	holidays    map[string]worktime.Holiday
	periods     map[string]settlement.FlexWorkPeriod
	settlements []settlement.QuarterlySettlement
	nightPays   []settlement.NightAllowancePayment
	ledger      []leave.Transaction
}

func newTables() tables {
	return tables{
		employees: make(map[string]employee.Employee),
		days:      make(map[dayKey]attendance.DailyAttendance),
		summaries: make(map[dayKey]worktime.DailyWorkSummary),
		holidays:  make(map[string]worktime.Holiday),
		periods:   make(map[string]settlement.FlexWorkPeriod),
	}
}

func (t tables) clone() tables {
	c := tables{
		employees:   make(map[string]employee.Employee, len(t.employees)),
		events:      append([]attendance.Event(nil), t.events...),
		days:        make(map[dayKey]attendance.DailyAttendance, len(t.days)),
		batches:     append([]attendance.ImportBatch(nil), t.batches...),
		summaries:   make(map[dayKey]worktime.DailyWorkSummary, len(t.summaries)),
		rules:       append([]worktime.RuleConfig(nil), t.rules...),
		holidays:    make(map[string]worktime.Holiday, len(t.holidays)),
		periods:     make(map[string]settlement.FlexWorkPeriod, len(t.periods)),
		settlements: append([]settlement.QuarterlySettlement(nil), t.settlements...),
		nightPays:   append([]settlement.NightAllowancePayment(nil), t.nightPays...),
		ledger:      append([]leave.Transaction(nil), t.ledger...),
	}
	for k, v := range t.employees {
		c.employees[k] = v
	}
	for k, v := range t.days {
		c.days[k] = v
	}
	for k, v := range t.summaries {
		c.summaries[k] = v
	}
	for k, v := range t.holidays {
		c.holidays[k] = v
	}
	for k, v := range t.periods {
		c.periods[k] = v
	}
	return c
}

func NewStore() *Store {
	return &Store{t: newTables()}
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

type txMarker struct{}

type transactor struct {
	s *Store
}

func NewTransactor(s *Store) database.Transactor {
	return &transactor{s: s}
}

// WithinTransaction implements database.Transactor. Nested calls join the outer one.
func (t *transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txMarker{}) != nil {
		return fn(ctx)
	}

	t.s.txMu.Lock()
	defer t.s.txMu.Unlock()

	t.s.mu.RLock()
	snapshot := t.s.t.clone()
	t.s.mu.RUnlock()

	if err := fn(context.WithValue(ctx, txMarker{}, true)); err != nil {
		t.s.mu.Lock()
		t.s.t = snapshot
		t.s.mu.Unlock()
		return err
	}
	return nil
}
