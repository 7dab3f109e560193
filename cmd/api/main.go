package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/config"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/settlement"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/worktime"
	appHTTP "github.com/cmlabs-hris/attendance-engine/internal/handler/http"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/cron"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/lock"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/mq"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/sse"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/storage"
	"github.com/cmlabs-hris/attendance-engine/internal/repository/memory"
	"github.com/cmlabs-hris/attendance-engine/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/attendance-engine/internal/service/attendance"
	employeeService "github.com/cmlabs-hris/attendance-engine/internal/service/employee"
	leaveService "github.com/cmlabs-hris/attendance-engine/internal/service/leave"
	settlementService "github.com/cmlabs-hris/attendance-engine/internal/service/settlement"
	worktimeService "github.com/cmlabs-hris/attendance-engine/internal/service/worktime"
	"github.com/redis/go-redis/v9"
)

const version = "0.1.0"

type repositories struct {
	tx         database.Transactor
	employees  employee.EmployeeRepository
	events     attendance.EventRepository
	daily      attendance.DailyAttendanceRepository
	batches    attendance.ImportBatchRepository
	summaries  postgresql.SummaryStore
	rules      worktime.RuleConfigRepository
	holidays   worktime.HolidayRepository
	periods    settlement.PeriodRepository
	settlement settlement.SettlementRepository
	nightPay   settlement.NightPayRepository
	ledger     leave.LedgerRepository
	close      func()
}

func postgresRepositories(cfg *config.Config) (*repositories, error) {
	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return &repositories{
		tx:         postgresql.NewTransactor(db),
		employees:  postgresql.NewEmployeeRepository(db),
		events:     postgresql.NewEventRepository(db),
		daily:      postgresql.NewDailyAttendanceRepository(db),
		batches:    postgresql.NewImportBatchRepository(db),
		summaries:  postgresql.NewSummaryRepository(db),
		rules:      postgresql.NewRuleConfigRepository(db),
		holidays:   postgresql.NewHolidayRepository(db),
		periods:    postgresql.NewPeriodRepository(db),
		settlement: postgresql.NewSettlementRepository(db),
		nightPay:   postgresql.NewNightPayRepository(db),
		ledger:     postgresql.NewLedgerRepository(db),
		close:      db.Close,
	}, nil
}

// memoryRepositories seeds the default rule set, which the migration does
// for postgres.
func memoryRepositories() (*repositories, error) {
	store := memory.NewStore()
	rules := memory.NewRuleConfigRepository(store)
	if _, err := rules.Create(context.Background(), worktime.DefaultRuleConfig(time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC))); err != nil {
		return nil, fmt.Errorf("seed rule config: %w", err)
	}
	return &repositories{
		tx:         memory.NewTransactor(store),
		employees:  memory.NewEmployeeRepository(store),
		events:     memory.NewEventRepository(store),
		daily:      memory.NewDailyAttendanceRepository(store),
		batches:    memory.NewImportBatchRepository(store),
		summaries:  memory.NewSummaryRepository(store),
		rules:      rules,
		holidays:   memory.NewHolidayRepository(store),
		periods:    memory.NewPeriodRepository(store),
		settlement: memory.NewSettlementRepository(store),
		nightPay:   memory.NewNightPayRepository(store),
		ledger:     memory.NewLedgerRepository(store),
		close:      func() {},
	}, nil
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		l = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: l}))
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}
	slog.SetDefault(newLogger(cfg.App.LogLevel))
	loc := cfg.Location()

	var repos *repositories
	switch cfg.App.Storage {
	case "postgres":
		repos, err = postgresRepositories(cfg)
	case "memory":
		slog.Warn("Using in-memory storage, data is lost on restart")
		repos, err = memoryRepositories()
	}
	if err != nil {
		slog.Error("Failed to initialize storage", "storage", cfg.App.Storage, "error", err)
		os.Exit(1)
	}
	defer repos.close()

	var locker lock.Locker = lock.NewLocalLocker()
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			slog.Error("Failed to connect to redis", "addr", cfg.Redis.Addr, "error", err)
			os.Exit(1)
		}
		defer client.Close()
		locker = lock.NewRedisLocker(client, cfg.Redis.Prefix)
	}

	var publisher mq.Publisher = mq.NopPublisher{}
	if cfg.RabbitMQ.URL != "" {
		rabbit, err := mq.NewRabbitPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			slog.Error("Failed to connect to rabbitmq", "error", err)
			os.Exit(1)
		}
		publisher = rabbit
	}
	hub := sse.NewHub()
	events := mq.Fanout{publisher, hub}
	defer events.Close()

	archive, err := storage.NewLocalStorage(cfg.Archive.BasePath)
	if err != nil {
		slog.Error("Failed to initialize archive", "path", cfg.Archive.BasePath, "error", err)
		os.Exit(1)
	}

	reconcileOpts := attendanceService.DefaultReconcileOptions()
	reconcileOpts.PassageBackfill = cfg.Reconcile.PassageBackfill

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	employeeSvc := employeeService.NewEmployeeService(repos.employees)
	worktimeSvc := worktimeService.NewWorktimeService(repos.tx, loc, repos.daily, repos.summaries, repos.rules, repos.holidays, repos.periods,
		leaveService.NewEarnedBank(repos.ledger, repos.summaries))
	attendanceSvc := attendanceService.NewAttendanceService(
		repos.tx,
		loc,
		reconcileOpts,
		repos.employees,
		repos.events,
		repos.daily,
		repos.batches,
		worktimeSvc,
		archive,
	)
	settlementSvc := settlementService.NewSettlementService(
		repos.tx,
		repos.periods,
		repos.settlement,
		repos.nightPay,
		repos.summaries,
		repos.rules,
		worktimeSvc,
		repos.employees,
		locker,
		events,
		archive,
	)
	leaveSvc := leaveService.NewLeaveService(repos.tx, repos.ledger, repos.summaries, repos.employees)

	router := appHTTP.NewRouter(
		appHTTP.RouterOptions{
			AppName:        "attendance-engine",
			Version:        version,
			Env:            cfg.App.Env,
			AllowedOrigins: cfg.App.AllowedOrigins,
		},
		JWTService,
		appHTTP.Handlers{
			Employee:   appHTTP.NewEmployeeHandler(employeeSvc),
			Attendance: appHTTP.NewAttendanceHandler(attendanceSvc),
			Worktime:   appHTTP.NewWorktimeHandler(worktimeSvc),
			Settlement: appHTTP.NewSettlementHandler(settlementSvc),
			Leave:      appHTTP.NewLeaveHandler(leaveSvc),
			Events:     appHTTP.NewEventsHandler(hub),
		},
	)

	scheduler := cron.NewScheduler()
	cron.NewSettlementJobs(settlementSvc, loc).RegisterJobs(scheduler)
	scheduler.Start()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	// Open event streams would otherwise hold Shutdown until its deadline.
	server.RegisterOnShutdown(func() { hub.Close() })

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("Server running", "addr", server.Addr, "storage", cfg.App.Storage, "timezone", loc.String())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown error", "error", err)
	}
	scheduler.Stop()
}
