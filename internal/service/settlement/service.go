package settlement

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/settlement"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/worktime"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/lock"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/mq"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/storage"
	"github.com/shopspring/decimal"
)

const (
	settlementLockTTL = 5 * time.Minute

	RoutingKeySettlementCompleted = "settlement.completed"
	RoutingKeyNightPayProcessed   = "settlement.night_pay.processed"
)

type SettlementServiceImpl struct {
	tx             database.Transactor
	periodRepo     settlement.PeriodRepository
	settlementRepo settlement.SettlementRepository
	nightPayRepo   settlement.NightPayRepository
	summaryRepo    worktime.SummaryRepository
	ruleRepo       worktime.RuleConfigRepository
	recomputer     settlement.SummaryRecomputer
	directory      employee.Directory
	locker         lock.Locker
	publisher      mq.Publisher
	archive        storage.Archive
	now            func() time.Time
}

func NewSettlementService(
	tx database.Transactor,
	periodRepo settlement.PeriodRepository,
	settlementRepo settlement.SettlementRepository,
	nightPayRepo settlement.NightPayRepository,
	summaryRepo worktime.SummaryRepository,
	ruleRepo worktime.RuleConfigRepository,
	recomputer settlement.SummaryRecomputer,
	directory employee.Directory,
	locker lock.Locker,
	publisher mq.Publisher,
	archive storage.Archive,
) settlement.SettlementService {
	return &SettlementServiceImpl{
		tx:             tx,
		periodRepo:     periodRepo,
		settlementRepo: settlementRepo,
		nightPayRepo:   nightPayRepo,
		summaryRepo:    summaryRepo,
		ruleRepo:       ruleRepo,
		recomputer:     recomputer,
		directory:      directory,
		locker:         locker,
		publisher:      publisher,
		archive:        archive,
		now:            time.Now,
	}
}

// ========== PERIODS ==========

// CreatePeriod implements settlement.SettlementService.
func (s *SettlementServiceImpl) CreatePeriod(ctx context.Context, req settlement.CreatePeriodRequest) (settlement.FlexWorkPeriod, error) {
	if err := req.Validate(); err != nil {
		return settlement.FlexWorkPeriod{}, err
	}
	span := settlement.MonthSpan(req.ParsedStart, req.ParsedEnd)
	if span < 2 || span > 3 {
		return settlement.FlexWorkPeriod{}, fmt.Errorf("%w: got %d months", settlement.ErrInvalidPeriodSpan, span)
	}

	period := settlement.FlexWorkPeriod{
		Name:       req.Name,
		StartMonth: req.ParsedStart,
		EndMonth:   req.ParsedEnd,
		Status:     settlement.PeriodStatusPlanned,
	}

	var created settlement.FlexWorkPeriod
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		overlapping, err := s.periodRepo.ListOverlapping(ctx, period.StartDate(), period.EndDate())
		if err != nil {
			return fmt.Errorf("failed to check overlapping periods: %w", err)
		}
		if len(overlapping) > 0 {
			return settlement.ErrPeriodOverlap
		}
		created, err = s.periodRepo.Create(ctx, period)
		return err
	})
	if err != nil {
		return settlement.FlexWorkPeriod{}, err
	}

	slog.Info("Created flexible work period", "period_id", created.ID, "start", created.StartDate().Format("2006-01-02"), "end", created.EndDate().Format("2006-01-02"))
	return created, nil
}

// GetPeriod implements settlement.SettlementService.
func (s *SettlementServiceImpl) GetPeriod(ctx context.Context, id string) (settlement.FlexWorkPeriod, error) {
	return s.periodRepo.GetByID(ctx, id)
}

// ListPeriods implements settlement.SettlementService.
func (s *SettlementServiceImpl) ListPeriods(ctx context.Context) ([]settlement.FlexWorkPeriod, error) {
	return s.periodRepo.List(ctx)
}

// ActivatePeriod implements settlement.SettlementService.
func (s *SettlementServiceImpl) ActivatePeriod(ctx context.Context, id string) (settlement.FlexWorkPeriod, error) {
	return s.transition(ctx, id, settlement.PeriodStatusActive)
}

// CancelPeriod implements settlement.SettlementService.
func (s *SettlementServiceImpl) CancelPeriod(ctx context.Context, id string) (settlement.FlexWorkPeriod, error) {
	return s.transition(ctx, id, settlement.PeriodStatusCancelled)
}

func (s *SettlementServiceImpl) transition(ctx context.Context, id string, next settlement.PeriodStatus) (settlement.FlexWorkPeriod, error) {
	var (
		period          settlement.FlexWorkPeriod
		coverageChanged bool
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		period, err = s.periodRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !period.Status.CanTransition(next) {
			return fmt.Errorf("%w: %s to %s", settlement.ErrInvalidPeriodTransition, period.Status, next)
		}
		if err := s.periodRepo.UpdateStatus(ctx, id, next); err != nil {
			return fmt.Errorf("failed to update period status: %w", err)
		}
		previous := period.Status
		period.Status = next
		coverageChanged = previous.Flexible() != next.Flexible()
		return nil
	})
	if err != nil {
		return settlement.FlexWorkPeriod{}, err
	}
	slog.Info("Flexible work period status changed", "period_id", id, "status", next)

	if coverageChanged {
		s.refreshSummaries(ctx, period)
	}
	return period, nil
}

// refreshSummaries recomputes every stored summary inside the period so the
// basic and overtime split follows the period's new coverage. Failures are
// logged per day and never undo the transition.
func (s *SettlementServiceImpl) refreshSummaries(ctx context.Context, period settlement.FlexWorkPeriod) {
	summaries, err := s.summaryRepo.ListByRange(ctx, "", period.StartDate(), period.EndDate())
	if err != nil {
		slog.Error("Failed to list summaries for period recompute", "period_id", period.ID, "error", err)
		return
	}

	recomputed := 0
	for _, summary := range summaries {
		if _, err := s.recomputer.RecomputeDay(ctx, summary.EmployeeID, summary.WorkDate, nil); err != nil {
			slog.Warn("Failed to recompute summary after period change",
				"period_id", period.ID,
				"employee_id", summary.EmployeeID,
				"work_date", summary.WorkDate.Format("2006-01-02"),
				"error", err,
			)
			continue
		}
		recomputed++
	}
	slog.Info("Recomputed summaries for period", "period_id", period.ID, "status", period.Status, "recomputed", recomputed, "total", len(summaries))
}

// ActivateDuePeriods implements settlement.SettlementService.
func (s *SettlementServiceImpl) ActivateDuePeriods(ctx context.Context, today time.Time) (int, error) {
	periods, err := s.periodRepo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list periods: %w", err)
	}

	activated := 0
	for _, p := range periods {
		if p.Status != settlement.PeriodStatusPlanned || !p.Covers(today) {
			continue
		}
		if _, err := s.transition(ctx, p.ID, settlement.PeriodStatusActive); err != nil {
			slog.Warn("Failed to activate due period", "period_id", p.ID, "error", err)
			continue
		}
		activated++
	}
	return activated, nil
}

// ========== SETTLEMENT ==========

// RunQuarterlySettlement implements settlement.SettlementService.
func (s *SettlementServiceImpl) RunQuarterlySettlement(ctx context.Context, periodID string) (settlement.RunResult, error) {
	lockKey := "settlement:" + periodID
	token, ok, err := s.locker.TryLock(ctx, lockKey, settlementLockTTL)
	if err != nil {
		return settlement.RunResult{}, fmt.Errorf("failed to acquire settlement lock: %w", err)
	}
	if !ok {
		return settlement.RunResult{}, settlement.ErrSettlementInProgress
	}
	defer func() {
		if err := s.locker.Unlock(context.WithoutCancel(ctx), lockKey, token); err != nil {
			slog.Warn("Failed to release settlement lock", "period_id", periodID, "error", err)
		}
	}()

	var result settlement.RunResult
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		period, err := s.periodRepo.GetForUpdate(ctx, periodID)
		if err != nil {
			return err
		}
		if period.SettlementCompleted {
			return fmt.Errorf("%w: period %s was settled at %v", settlement.ErrSettlementConflict, period.ID, period.SettledAt)
		}
		if period.Status != settlement.PeriodStatusActive && period.Status != settlement.PeriodStatusCompleted {
			return fmt.Errorf("%w: period is %s", settlement.ErrSettlementConflict, period.Status)
		}

		cfg, err := s.ruleRepo.GetEffective(ctx, period.StartDate())
		if err != nil {
			return fmt.Errorf("failed to load rule configuration: %w", err)
		}

		rows, err := s.buildSettlements(ctx, period, cfg)
		if err != nil {
			return err
		}
		if err := s.settlementRepo.CreateBatch(ctx, rows); err != nil {
			return fmt.Errorf("failed to store settlements: %w", err)
		}

		settledAt := s.now().UTC()
		if err := s.periodRepo.MarkSettled(ctx, period.ID, settledAt); err != nil {
			return fmt.Errorf("failed to mark period settled: %w", err)
		}
		period.SettlementCompleted = true
		period.SettledAt = &settledAt
		period.Status = settlement.PeriodStatusCompleted

		result.Period = period
		result.Settlements = rows
		return nil
	})
	if err != nil {
		return settlement.RunResult{}, err
	}

	result.CSVExport, err = RenderCSV(result.Settlements)
	if err != nil {
		return settlement.RunResult{}, fmt.Errorf("failed to render settlement export: %w", err)
	}
	result.ArchivePath, err = s.archive.Save(ctx, exportPath(periodID), bytes.NewReader(result.CSVExport))
	if err != nil {
		slog.Error("Failed to archive settlement export", "period_id", periodID, "error", err)
	}

	total := decimal.Zero
	for _, row := range result.Settlements {
		total = total.Add(row.OvertimeAllowanceAmount)
	}
	event := settlement.SettlementCompletedEvent{
		PeriodID:    result.Period.ID,
		PeriodName:  result.Period.Name,
		Employees:   len(result.Settlements),
		TotalAmount: total.StringFixed(2),
		CompletedAt: *result.Period.SettledAt,
	}
	if err := s.publisher.Publish(ctx, RoutingKeySettlementCompleted, event); err != nil {
		slog.Error("Failed to publish settlement completion", "period_id", periodID, "error", err)
	}

	slog.Info("Quarterly settlement completed", "period_id", periodID, "employees", len(result.Settlements), "total_overtime_allowance", event.TotalAmount)
	return result, nil
}

func (s *SettlementServiceImpl) buildSettlements(ctx context.Context, period settlement.FlexWorkPeriod, cfg worktime.RuleConfig) ([]settlement.QuarterlySettlement, error) {
	summaries, err := s.summaryRepo.ListByRange(ctx, "", period.StartDate(), period.EndDate())
	if err != nil {
		return nil, fmt.Errorf("failed to list work summaries: %w", err)
	}

	var rows []settlement.QuarterlySettlement
	for _, totals := range Aggregate(summaries) {
		emp, err := s.directory.GetByID(ctx, totals.EmployeeID)
		if err != nil {
			return nil, fmt.Errorf("failed to load employee %s: %w", totals.EmployeeID, err)
		}
		paid, err := s.nightPayRepo.SumByEmployeeRange(ctx, emp.ID, period.StartDate(), period.EndDate())
		if err != nil {
			return nil, fmt.Errorf("failed to sum night allowance for %s: %w", emp.ID, err)
		}

		row := Settle(period, totals, emp.HourlyRate, paid.Amount, cfg)
		name := emp.FullName
		row.EmployeeName = &name
		row.EmployeeCode = emp.EmployeeCode
		rows = append(rows, row)
	}
	return rows, nil
}

// ListSettlements implements settlement.SettlementService.
func (s *SettlementServiceImpl) ListSettlements(ctx context.Context, periodID string) ([]settlement.QuarterlySettlement, error) {
	if _, err := s.periodRepo.GetByID(ctx, periodID); err != nil {
		return nil, err
	}
	rows, err := s.settlementRepo.ListByPeriod(ctx, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	if len(rows) == 0 {
		return nil, settlement.ErrSettlementNotFound
	}
	return rows, nil
}

func exportPath(periodID string) string {
	return "settlements/" + periodID + ".csv"
}

// ExportCSV implements settlement.SettlementService. The file archived at
// run time is served when present so repeated downloads stay identical.
func (s *SettlementServiceImpl) ExportCSV(ctx context.Context, periodID string) ([]byte, error) {
	rows, err := s.ListSettlements(ctx, periodID)
	if err != nil {
		return nil, err
	}

	archived, err := s.archive.Open(ctx, exportPath(periodID))
	switch {
	case err == nil:
		defer archived.Close()
		content, err := io.ReadAll(archived)
		if err != nil {
			return nil, fmt.Errorf("failed to read archived export: %w", err)
		}
		return content, nil
	case errors.Is(err, storage.ErrNotFound):
		return RenderCSV(rows)
	default:
		return nil, fmt.Errorf("failed to open archived export: %w", err)
	}
}

// ExportXLSX implements settlement.SettlementService.
func (s *SettlementServiceImpl) ExportXLSX(ctx context.Context, periodID string) ([]byte, error) {
	rows, err := s.ListSettlements(ctx, periodID)
	if err != nil {
		return nil, err
	}
	return RenderXLSX(rows)
}

// ========== NIGHT PAY ==========

// ProcessMonthlyNightPay implements settlement.SettlementService.
func (s *SettlementServiceImpl) ProcessMonthlyNightPay(ctx context.Context, year int, month time.Month) (settlement.NightPayResult, error) {
	if month < time.January || month > time.December {
		return settlement.NightPayResult{}, worktime.ErrInvalidMonth
	}
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)

	cfg, err := s.ruleRepo.GetEffective(ctx, from)
	if err != nil {
		return settlement.NightPayResult{}, fmt.Errorf("failed to load rule configuration: %w", err)
	}
	summaries, err := s.summaryRepo.ListByRange(ctx, "", from, to)
	if err != nil {
		return settlement.NightPayResult{}, fmt.Errorf("failed to list work summaries: %w", err)
	}

	result := settlement.NightPayResult{Year: year, Month: int(month)}
	for _, totals := range Aggregate(summaries) {
		if totals.NightMinutes == 0 {
			continue
		}
		emp, err := s.directory.GetByID(ctx, totals.EmployeeID)
		if err != nil {
			return settlement.NightPayResult{}, fmt.Errorf("failed to load employee %s: %w", totals.EmployeeID, err)
		}

		payment, err := s.nightPayRepo.Create(ctx, settlement.NightAllowancePayment{
			EmployeeID:   emp.ID,
			Year:         year,
			Month:        month,
			NightMinutes: totals.NightMinutes,
			HourlyRate:   emp.HourlyRate,
			Amount:       NightAllowance(totals.NightMinutes, emp.HourlyRate, cfg.NightRateMultiplier),
			ProcessedAt:  s.now().UTC(),
		})
		if errors.Is(err, settlement.ErrNightPayAlreadyExists) {
			result.Skipped++
			continue
		}
		if err != nil {
			return settlement.NightPayResult{}, fmt.Errorf("failed to store night allowance for %s: %w", emp.ID, err)
		}
		result.Processed = append(result.Processed, payment)
	}

	if len(result.Processed) > 0 {
		if err := s.publisher.Publish(ctx, RoutingKeyNightPayProcessed, settlement.NewNightPayResponse(result)); err != nil {
			slog.Error("Failed to publish night pay processing", "year", year, "month", month, "error", err)
		}
	}
	slog.Info("Processed monthly night pay", "year", year, "month", int(month), "processed", len(result.Processed), "skipped", result.Skipped)
	return result, nil
}
